// Package models contains the domain types shared across the reconciliation pipeline.
package models

// AssetStatus is the lifecycle status of an asset record.
// Inactive -> Validated -> Active/Inactive over one reconciliation run;
// Validated is always transient within a finalize pass.
type AssetStatus string

const (
	StatusInactive  AssetStatus = "Inactive"
	StatusValidated AssetStatus = "Validated"
	StatusActive    AssetStatus = "Active"
)

// AssetColumns is the fixed asset metadata schema. These names are an
// external contract with the store and with uploaded spreadsheets; an
// ingest file must carry every one of them.
var AssetColumns = []string{
	"Site_name", "State", "Region", "Circle", "Division", "Sub_Division", "Block",
	"Scheme_ID", "Scheme_Name", "Water_Source", "Water_Supply_Well", "Type_of_Well",
	"Depth_of_Well", "Diameter_of_well", "Pump_House_Location_Geotag_Latitude",
	"Pump_House_Location_Geotag_Longitude", "Pump_House_Location_Geotag",
	"Numbers_of_Pumps", "Type_of_Source", "Availability_of_Existing_Energy_Meter",
	"Working_condition_of_Energy_Meter", "Scheme_Category", "Name_of_the_Incharge",
	"Position", "Scheme_Contact", "Village_Name", "Population", "Household",
	"Habitation", "Name_of_Base_Reservoir", "Name_of_the_Reservoir", "Reservoir_Type",
	"Number_of_ESR", "Number_of_MBR", "Number_of_GSR", "Reservoir_Capacity", "Operator_Name",
	"Reservoir_Contact", "Reservoir_Geotag_Latitude", "Reservoir_Geotag_Longitude",
	"Reservoir_Geotag_Info", "Name_of_Source", "Inlet_Line_Size", "Inlet_Line_Material",
	"Inlet_Rising_Main_Line_Size", "Inlet_Rising_Main_Line_Material", "Number_of_Outlet",
	"Outlet_Line_Size", "Outlet_Line_Material", "Outlet_Distribution_Line_Size",
	"Outlet_Distribution_Line_Material", "Availability_of_Isolation_Valve",
	"Geo_Location_of_Flow_Meter_Latitude", "Geo_Location_of_Flow_Meter_Longitude",
	"Geo_Location_of_Flow_Meter", "Geo_Location_of_RCA_Latitude",
	"Geo_Location_of_RCA_Longitude", "Geo_Location_of_RCA", "Number_of_Distribution",
	"Critical_Pressure_Point_Location_Latitude", "Critical_Pressure_Point_Location_Longitude",
	"Critical_Pressure_Point_Location", "Distribution_Line_Size",
	"Distribution_Line_Material", "Reservoir_Category", "Status", "Number_of_Reservoir",
	"Reservoir_Capacity_Val", "Reservoir_Level_Population",
	"Reservoir_Level_Household", "MBR_LPCD_RESERVOIR",
}

// NumericColumns are the asset columns coerced to float64 on ingest.
// Values that fail coercion are stored as NULL.
var NumericColumns = map[string]bool{
	"Depth_of_Well":                     true,
	"Diameter_of_well":                  true,
	"Pump_House_Location_Geotag_Latitude":  true,
	"Pump_House_Location_Geotag_Longitude": true,
	"Numbers_of_Pumps":                  true,
	"Population":                        true,
	"Household":                         true,
	"Number_of_ESR":                     true,
	"Number_of_MBR":                     true,
	"Number_of_GSR":                     true,
	"Reservoir_Capacity":                true,
	"Reservoir_Geotag_Latitude":         true,
	"Reservoir_Geotag_Longitude":        true,
	"Inlet_Line_Size":                   true,
	"Inlet_Rising_Main_Line_Size":       true,
	"Number_of_Outlet":                  true,
	"Outlet_Line_Size":                  true,
	"Outlet_Distribution_Line_Size":     true,
	"Outlet_Distribution_Line_Material": true,
	"Availability_of_Isolation_Valve":   true,
	"Geo_Location_of_Flow_Meter_Latitude":  true,
	"Geo_Location_of_Flow_Meter_Longitude": true,
	"Geo_Location_of_RCA_Latitude":      true,
	"Geo_Location_of_RCA_Longitude":     true,
	"Number_of_Distribution":            true,
	"Critical_Pressure_Point_Location_Latitude":  true,
	"Critical_Pressure_Point_Location_Longitude": true,
	"Distribution_Line_Size":            true,
	"Number_of_Reservoir":               true,
	"Reservoir_Capacity_Val":            true,
	"Reservoir_Level_Population":        true,
	"Reservoir_Level_Household":         true,
	"ID":                                true,
}

// AssetKeyRow is the slice of an asset row used for composite-key matching
// during validation. The full 70-column record never leaves the store.
type AssetKeyRow struct {
	ID          int64  `db:"id"`
	SchemeID    string `db:"scheme_id"`
	SchemeName  string `db:"scheme_name"`
	Region      string `db:"region"`
	Circle      string `db:"circle"`
	Division    string `db:"division"`
	SubDivision string `db:"sub_division"`
	Block       string `db:"block"`
	VillageName string `db:"village_name"`
	Reservoir   string `db:"name_of_the_reservoir"`
}

// ValidatedAsset is one row of the Validated-assets join against the
// capitalization/count table. Column set is part of the store contract.
type ValidatedAsset struct {
	ID                  int64  `db:"id"`
	SiteName            string `db:"site_name"`
	CountRegion         string `db:"count_region"`
	SchemeID            string `db:"scheme_id"`
	SchemeName          string `db:"scheme_name"`
	VillageNameCap      string `db:"village_name_cap"`
	ReservoirCap        string `db:"reservoir_cap"`
	VillageName         string `db:"village_name"`
	NameOfTheReservoir  string `db:"name_of_the_reservoir"`
	Region              string `db:"region"`
	NameOfBaseReservoir string `db:"name_of_base_reservoir"`
}

// StatusUpdate is one pending final-status write, committed in a single batch
// at the end of the finalize stage.
type StatusUpdate struct {
	AssetID int64
	Status  AssetStatus
}
