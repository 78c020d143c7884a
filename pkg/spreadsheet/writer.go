package spreadsheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
)

// Report cell fill colors.
const (
	fillGreen  = "6DEC5E"
	fillGrey   = "9CA3AF"
	fillRed    = "ED3822"
	fillYellow = "FFFF00"
)

const (
	validationSheetName = "Validation_Status"
	tagsSheetName       = "Tags"

	validationStatusHeader = "Validation_Status"
)

// tagReportHeaders is the column order of the tag status report.
var tagReportHeaders = []string{
	"Scheme_ID",
	"village_name_cap",
	"Reservoir_Cap",
	"Name_of_the_Reservoir",
	"Village_Name",
	"CL_Tag",
	"FL_Rate_Tag",
	"Tot_FL_Tag",
	"Press_Tag",
	"Sen_Err_CL_Tag",
	"Sen_Err_FL_MTR_Tag",
	"Topic For Flow Meter",
	"Topic For CL",
	"Topic For Pressure",
}

var tagNameHeaders = map[string]bool{
	"CL_Tag":             true,
	"FL_Rate_Tag":        true,
	"Tot_FL_Tag":         true,
	"Press_Tag":          true,
	"Sen_Err_CL_Tag":     true,
	"Sen_Err_FL_MTR_Tag": true,
}

var topicHeaders = map[string]bool{
	"Topic For Flow Meter": true,
	"Topic For CL":         true,
	"Topic For Pressure":   true,
}

// WriteValidationReport re-emits the uploaded verification rows with a
// Validation_Status column appended. statuses is parallel to rows.
func WriteValidationReport(headers []string, rows []map[string]string, statuses []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet, err := f.NewSheet(validationSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create worksheet: %w", err)
	}
	f.SetActiveSheet(sheet)
	f.DeleteSheet("Sheet1")

	headerRow := make([]any, 0, len(headers)+1)
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	headerRow = append(headerRow, validationStatusHeader)
	if err := f.SetSheetRow(validationSheetName, "A1", &headerRow); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range rows {
		values := make([]any, 0, len(headers)+1)
		for _, h := range headers {
			values = append(values, row[h])
		}
		status := models.ValidationStatusNotValidated
		if i < len(statuses) {
			status = statuses[i]
		}
		values = append(values, status)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(validationSheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTagStatusReport renders the final report. Topic cells are colored by
// their communication status; tag cells by the provisioning outcome.
func WriteTagStatusReport(
	rows []models.TagStatusRow,
	topicResults map[string]models.TopicCheckResult,
	created map[string]bool,
	skipped map[string]bool,
) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet, err := f.NewSheet(tagsSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create worksheet: %w", err)
	}
	f.SetActiveSheet(sheet)
	f.DeleteSheet("Sheet1")

	styles, err := newFillStyles(f)
	if err != nil {
		return nil, err
	}

	headerRow := make([]any, 0, len(tagReportHeaders))
	for _, h := range tagReportHeaders {
		headerRow = append(headerRow, h)
	}
	if err := f.SetSheetRow(tagsSheetName, "A1", &headerRow); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range rows {
		values := tagRowValues(row)
		rowNum := i + 2

		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(tagsSheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", rowNum, err)
		}

		for col, header := range tagReportHeaders {
			value, _ := values[col].(string)
			styleID, ok := cellStyle(styles, header, value, topicResults, created, skipped)
			if !ok {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(tagsSheetName, cellName, cellName, styleID); err != nil {
				return nil, fmt.Errorf("failed to style cell %s: %w", cellName, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type fillStyles struct {
	green  int
	grey   int
	red    int
	yellow int
}

func newFillStyles(f *excelize.File) (fillStyles, error) {
	var s fillStyles
	var err error
	for _, def := range []struct {
		dst   *int
		color string
	}{
		{&s.green, fillGreen},
		{&s.grey, fillGrey},
		{&s.red, fillRed},
		{&s.yellow, fillYellow},
	} {
		*def.dst, err = f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{def.color}},
		})
		if err != nil {
			return s, fmt.Errorf("failed to create fill style: %w", err)
		}
	}
	return s, nil
}

// cellStyle picks a fill for a report cell, or none for a topic in an
// indeterminate state.
func cellStyle(
	styles fillStyles,
	header, value string,
	topicResults map[string]models.TopicCheckResult,
	created map[string]bool,
	skipped map[string]bool,
) (int, bool) {
	switch {
	case topicHeaders[header]:
		if value == "" || value == "nan" {
			return styles.grey, true
		}
		topicID := strings.TrimSuffix(value, ".0")
		result, ok := topicResults[topicID]
		if !ok {
			return 0, false
		}
		switch result.Status {
		case models.TopicCommunicated:
			return styles.green, true
		case models.TopicNotCommunicated:
			return styles.red, true
		case models.TopicError:
			return styles.yellow, true
		default:
			return 0, false
		}
	case tagNameHeaders[header]:
		if created[value] {
			return styles.green, true
		}
		if skipped[value] {
			return styles.grey, true
		}
		return styles.red, true
	default:
		return 0, false
	}
}

func tagRowValues(row models.TagStatusRow) []any {
	return []any{
		row.SchemeID,
		row.VillageNameCap,
		row.ReservoirCap,
		row.NameOfTheReservoir,
		row.VillageName,
		row.CLTag,
		row.FlowRateTag,
		row.TotalFlowTag,
		row.PressureTag,
		row.CLErrorTag,
		row.FlowErrorTag,
		row.TopicFlow,
		row.TopicCL,
		row.TopicPressure,
	}
}
