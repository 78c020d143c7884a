package models

// Validation status values written to the annotated verification report.
const (
	ValidationStatusValidated    = "Validated"
	ValidationStatusNotValidated = "Not Validated"
)

// Verification spreadsheet column names. These are the literal headers of the
// uploaded file, misspellings included.
const (
	ColRegion        = "Region"
	ColCircle        = "Circle"
	ColDivision      = "Division"
	ColSubDivision   = "Sub Division"
	ColBlock         = "Block"
	ColSchemeIDName  = "Schme ID  Name"
	ColVillage       = "Village"
	ColReservoir     = "Reservoir"
	ColTopicCL       = "Topic For CL"
	ColCLType        = "CL Type"
	ColTopicFlow     = "Topic For Flow Meter"
	ColTopicPressure = "Topic For Pressure"
)

// VerificationColumns is the required column set of a validation upload.
var VerificationColumns = []string{
	ColRegion, ColCircle, ColDivision, ColSubDivision, ColBlock,
	ColSchemeIDName, ColVillage, ColReservoir,
}

// ValidationRow is one parsed row of a verification spreadsheet. It lives for
// the duration of a single validation request and is persisted only as part
// of the output report.
type ValidationRow struct {
	Region        string
	Circle        string
	Division      string
	SubDivision   string
	Block         string
	SchemeID      string
	SchemeName    string
	Village       string
	Reservoir     string
	TopicCL       string
	CLType        string
	TopicFlow     string
	TopicPressure string

	ValidationStatus string
}

// TagStatusRow is one row of the final tag-status report: the asset identity,
// its six generated tag names and its three topic references.
type TagStatusRow struct {
	SchemeID           string
	VillageNameCap     string
	ReservoirCap       string
	NameOfTheReservoir string
	VillageName        string

	CLTag        string
	FlowRateTag  string
	TotalFlowTag string
	PressureTag  string
	CLErrorTag   string
	FlowErrorTag string

	TopicFlow     string
	TopicCL       string
	TopicPressure string
}
