package matchkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
)

func TestSplitSchemeIDName(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		schemeID   string
		schemeName string
	}{
		{"hyphen split", "1234-Pimpri RWSS", "1234", "Pimpri RWSS"},
		{"hyphen split keeps later hyphens", "1234-Pimpri-Chinchwad", "1234", "Pimpri-Chinchwad"},
		{"whitespace fallback", "1234 Pimpri RWSS", "1234", "Pimpri RWSS"},
		{"single token", "1234", "1234", ""},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, name := SplitSchemeIDName(tt.input)
			assert.Equal(t, tt.schemeID, id)
			assert.Equal(t, tt.schemeName, name)
		})
	}
}

func TestStripSubDivisionPrefix(t *testing.T) {
	assert.Equal(t, "Shirur", StripSubDivisionPrefix("Sub Division Shirur"))
	assert.Equal(t, "Shirur", StripSubDivisionPrefix("  Sub Division Shirur "))
	assert.Equal(t, "Shirur", StripSubDivisionPrefix("Shirur"))
}

func TestValidationKeyAgreement(t *testing.T) {
	// The same logical asset expressed as an upload row and a stored row
	// must produce identical keys despite case/spacing differences.
	row := models.ValidationRow{
		SchemeID:    "1234",
		SchemeName:  "pimpri rwss",
		Region:      " Amravati ",
		Circle:      "Akola",
		Division:    "Akola",
		SubDivision: "Shirur",
		Block:       "Barshitakli",
		Village:     "kanheri ",
		Reservoir:   "Existing 2 LL ESR- Outlet-2",
	}
	asset := models.AssetKeyRow{
		ID:          7,
		SchemeID:    " 1234 ",
		SchemeName:  "Pimpri RWSS",
		Region:      "AMRAVATI",
		Circle:      " akola",
		Division:    "AKOLA ",
		SubDivision: "shirur",
		Block:       "BARSHITAKLI",
		VillageName: "Kanheri",
		Reservoir:   "EXISTING 2 LL ESR-OUTLET-2",
	}
	assert.Equal(t, FromValidationRow(row), FromAssetRow(asset))
}

func TestBuildAssetIndex(t *testing.T) {
	rows := []models.AssetKeyRow{
		{ID: 1, SchemeID: "1", VillageName: "V1", Reservoir: "ESR-A"},
		{ID: 2, SchemeID: "1", VillageName: "V1", Reservoir: "esr-a"},
		{ID: 3, SchemeID: "2", VillageName: "V2", Reservoir: "ESR-B"},
	}
	idx := BuildAssetIndex(rows)

	key := FromAssetRow(rows[0])
	assert.ElementsMatch(t, []int64{1, 2}, idx[key])
	assert.Len(t, idx[FromAssetRow(rows[2])], 1)
}

func TestTopicLookup(t *testing.T) {
	rows := []models.ValidationRow{
		{Village: "Kanheri", Reservoir: "Existing 2 LL ESR-OL2", TopicPressure: "111"},
		{Village: "Wadgaon", Reservoir: "Existing ESR", TopicPressure: "222"},
	}
	lookup := NewTopicLookup(rows)

	// Normalized reservoir equality.
	got, ok := lookup.Find(models.ValidatedAsset{
		VillageName:        "KANHERI ",
		NameOfTheReservoir: "Existing 2 LL ESR- Outlet-2",
	})
	require.True(t, ok)
	assert.Equal(t, "111", got.TopicPressure)

	// Literal base-reservoir equality.
	got, ok = lookup.Find(models.ValidatedAsset{
		VillageName:         "Wadgaon",
		NameOfTheReservoir:  "Existing ESR-Outlet-9",
		NameOfBaseReservoir: "Existing ESR",
	})
	require.True(t, ok)
	assert.Equal(t, "222", got.TopicPressure)

	// No match.
	_, ok = lookup.Find(models.ValidatedAsset{VillageName: "Elsewhere", NameOfTheReservoir: "X"})
	assert.False(t, ok)
}
