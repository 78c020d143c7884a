package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
)

func buildWorkbook(t *testing.T, headers []string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &headerRow))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadWorkbook(t *testing.T) {
	data := buildWorkbook(t,
		[]string{"Region", "Village", "Reservoir"},
		[][]any{
			{"Pune", "Kanheri", "ESR OL-1"},
			{"Nashik", "Wadgaon"},
		},
	)

	sheet, err := ReadWorkbook("verification.xlsx", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Region", "Village", "Reservoir"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Kanheri", sheet.Rows[0]["Village"])
	assert.Equal(t, "ESR OL-1", sheet.Rows[0]["Reservoir"])
	// short rows pad missing trailing cells with empty strings
	assert.Equal(t, "", sheet.Rows[1]["Reservoir"])
}

func TestReadWorkbookRejectsLegacyFormat(t *testing.T) {
	_, err := ReadWorkbook("metadata.xls", []byte("old binary format"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadWorkbook("metadata.csv", []byte("a,b,c"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSheetHasColumns(t *testing.T) {
	sheet := &Sheet{Headers: []string{"Region", "Village", "Extra"}}

	missing := sheet.HasColumns([]string{"Region", "Village"})
	assert.Empty(t, missing)

	missing = sheet.HasColumns([]string{"Region", "Reservoir", "Block"})
	assert.Equal(t, []string{"Reservoir", "Block"}, missing)
}

func TestWriteValidationReport(t *testing.T) {
	headers := []string{"Region", "Village"}
	rows := []map[string]string{
		{"Region": "Pune", "Village": "Kanheri"},
		{"Region": "Nashik", "Village": "Wadgaon"},
	}
	statuses := []string{models.ValidationStatusValidated, models.ValidationStatusNotValidated}

	data, err := WriteValidationReport(headers, rows, statuses)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Validation_Status")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Region", "Village", "Validation_Status"}, got[0])
	assert.Equal(t, []string{"Pune", "Kanheri", "Validated"}, got[1])
	assert.Equal(t, []string{"Nashik", "Wadgaon", "Not Validated"}, got[2])
}

func TestWriteTagStatusReport(t *testing.T) {
	rows := []models.TagStatusRow{
		{
			SchemeID:           "20003448",
			VillageNameCap:     "KANHERI",
			ReservoirCap:       "ESR_1",
			NameOfTheReservoir: "ESROUTLET1",
			VillageName:        "KANHERI",
			CLTag:              "JJM.MH_JJM_20003448_KANHERI_RES_ESR_1_CL",
			FlowRateTag:        "JJM.MH_JJM_20003448_KANHERI_RES_ESR_1_FL_RATE",
			TotalFlowTag:       "JJM.MH_JJM_20003448_KANHERI_RES_ESR_1_TOT_FL",
			PressureTag:        "JJM.MH_JJM_20003448_KANHERI_RES_ESR_1_PRESS",
			CLErrorTag:         "JJM.MH_JJM_20003448_KANHERI_RES_ESR_1_SEN_ERR_CL",
			FlowErrorTag:       "JJM.MH_JJM_20003448_KANHERI_RES_ESR_1_SEN_ERR_FL_MTR",
			TopicFlow:          "101.0",
			TopicCL:            "102",
			TopicPressure:      "",
		},
	}
	topicResults := map[string]models.TopicCheckResult{
		"101": {TopicID: "101", Status: models.TopicCommunicated},
		"102": {TopicID: "102", Status: models.TopicNotCommunicated},
	}
	created := map[string]bool{rows[0].CLTag: true}
	skipped := map[string]bool{rows[0].FlowRateTag: true}

	data, err := WriteTagStatusReport(rows, topicResults, created, skipped)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Tags")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "20003448", got[1][0])
	// topic value is reported verbatim even though the lookup strips ".0"
	assert.Equal(t, "101.0", got[1][11])
}
