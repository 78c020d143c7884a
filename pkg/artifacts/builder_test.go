package artifacts

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
)

var testPaths = Paths{
	PunePressure: "pune_pressure.json",
	Pressure:     "pressure.json",
	PuneTags:     "pune_tags.json",
	Tags:         "tags.json",
}

func newTestBuilder() (*Builder, *MemoryStore) {
	store := NewMemoryStore()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewBuilder(store, testPaths, logger), store
}

func TestBuildPressure(t *testing.T) {
	builder, store := newTestBuilder()
	rows := []models.ValidationRow{
		{TopicPressure: "12345"},
	}
	entries := []PressureEntry{
		{Topic: "12345", Tag: "JJM.MH_JJM_1_V_RES_R_PRESS"},
		{Topic: "99999", Tag: "JJM.MH_JJM_2_W_RES_S_PRESS"}, // not in the upload
	}

	require.NoError(t, builder.BuildPressure(context.Background(), rows, "Nashik", entries))

	doc := store.Docs["pressure.json"]
	require.NotNil(t, doc)
	// non-pune pressure topics get the leading zero pad
	assert.Equal(t, "JJM.MH_JJM_1_V_RES_R_PRESS", doc["012345"])
	assert.NotContains(t, doc, "099999")
}

func TestBuildPressurePuneSkipsPadding(t *testing.T) {
	builder, store := newTestBuilder()
	rows := []models.ValidationRow{{TopicPressure: "12345"}}
	entries := []PressureEntry{{Topic: "12345", Tag: "JJM.MH_JJM_1_V_RES_R_PRESS"}}

	require.NoError(t, builder.BuildPressure(context.Background(), rows, "Pune", entries))

	doc := store.Docs["pune_pressure.json"]
	require.NotNil(t, doc)
	assert.Equal(t, "JJM.MH_JJM_1_V_RES_R_PRESS", doc["12345"])
}

func TestBuildFlowRegionalFieldNames(t *testing.T) {
	builder, store := newTestBuilder()
	rows := []models.ValidationRow{{TopicFlow: "201"}}
	entry := FlowEntry{
		Topic:        "201",
		FlowRateTag:  "FL_RATE",
		TotalFlowTag: "TOT_FL",
		FlowErrorTag: "SEN_ERR_FL_MTR",
	}

	require.NoError(t, builder.BuildFlow(context.Background(), rows, "Pune", []FlowEntry{entry}))
	doc := store.Docs["pune_tags.json"]
	assert.Equal(t, map[string]any{
		"Volume_Flow":        "FL_RATE",
		"Positive_Totalizer": "TOT_FL",
		"Flow_error":         "SEN_ERR_FL_MTR",
	}, doc["201"])

	require.NoError(t, builder.BuildFlow(context.Background(), rows, "Nagpur", []FlowEntry{entry}))
	doc = store.Docs["tags.json"]
	assert.Equal(t, map[string]any{
		"Flow":       "FL_RATE",
		"Total":      "TOT_FL",
		"Flow_error": "SEN_ERR_FL_MTR",
	}, doc["201"])
}

func TestBuildChlorineScalarVariants(t *testing.T) {
	builder, store := newTestBuilder()
	rows := []models.ValidationRow{
		{TopicCL: "301", Reservoir: "ESR 1"},
		{TopicCL: "302", Reservoir: "GSR 1"},
	}
	entries := []ChlorineEntry{
		{Topic: "301", CLType: "RS 485", CLTag: "CL_A", CLErrorTag: "ERR_A"},
		{Topic: "302", CLType: "analog", CLTag: "CL_B", CLErrorTag: "ERR_B"},
	}

	require.NoError(t, builder.BuildChlorine(context.Background(), rows, "Nagpur", entries))

	doc := store.Docs["tags.json"]
	assert.Equal(t, map[string]any{"Cl": "CL_A", "Cl_Error": "ERR_A"}, doc["301"])
	assert.Equal(t, map[string]any{"AI1": "CL_B", "Cl_Error": "ERR_B"}, doc["302"])
}

func TestBuildChlorinePuneScalar(t *testing.T) {
	builder, store := newTestBuilder()
	rows := []models.ValidationRow{{TopicCL: "301", Reservoir: "ESR 1"}}
	entries := []ChlorineEntry{{Topic: "301", CLType: "rs485", CLTag: "CL_A", CLErrorTag: "ERR_A"}}

	require.NoError(t, builder.BuildChlorine(context.Background(), rows, "Pune", entries))

	// a pune single-reservoir analyser ignores the wiring type
	doc := store.Docs["pune_tags.json"]
	assert.Equal(t, map[string]any{"Chlorine": "CL_A", "Cl_error": "ERR_A"}, doc["301"])
}

func TestBuildChlorinePuneSharedAnalyser(t *testing.T) {
	builder, store := newTestBuilder()
	rows := []models.ValidationRow{
		{TopicCL: "400", Reservoir: "ESR OL-1"},
		{TopicCL: "400", Reservoir: "ESR OL-2"},
	}
	entries := []ChlorineEntry{
		{Topic: "400", CLTag: "CL_OL1", CLErrorTag: "ERR_OL1"},
		{Topic: "400", CLTag: "CL_OL2", CLErrorTag: "ERR_OL2"},
	}

	require.NoError(t, builder.BuildChlorine(context.Background(), rows, "Pune", entries))

	doc := store.Docs["pune_tags.json"]
	lists, ok := doc["400"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"CL_OL1", "CL_OL2"}, lists["Chlorine"])
	assert.Equal(t, []any{"ERR_OL1", "ERR_OL2"}, lists["Cl_error"])

	// a second run with the same entries must not duplicate list items
	require.NoError(t, builder.BuildChlorine(context.Background(), rows, "Pune", entries))
	doc = store.Docs["pune_tags.json"]
	lists = doc["400"].(map[string]any)
	assert.Equal(t, []any{"CL_OL1", "CL_OL2"}, lists["Chlorine"])
	assert.Equal(t, []any{"ERR_OL1", "ERR_OL2"}, lists["Cl_error"])
}

func TestBuildChlorineTopicNotInUpload(t *testing.T) {
	builder, store := newTestBuilder()
	rows := []models.ValidationRow{{TopicCL: "500", Reservoir: "ESR 1"}}
	entries := []ChlorineEntry{{Topic: "999", CLTag: "CL_X", CLErrorTag: "ERR_X"}}

	require.NoError(t, builder.BuildChlorine(context.Background(), rows, "Nagpur", entries))

	doc := store.Docs["tags.json"]
	assert.NotContains(t, doc, "999")
}
