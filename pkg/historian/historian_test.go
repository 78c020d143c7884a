package historian

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointSourceFor(t *testing.T) {
	tests := []struct {
		name     string
		region   string
		expected string
		wantErr  bool
	}{
		{name: "known region", region: "nagpur", expected: "NA"},
		{name: "mixed case with padding", region: "  Pune ", expected: "PUNE"},
		{name: "two word region", region: "Chhatrapati Sambhajinagar", expected: "CS"},
		{name: "unknown region", region: "mumbai", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ps, err := PointSourceFor(test.region)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, ps)
		})
	}
}

func TestResultMerge(t *testing.T) {
	result := Result{Created: []string{"A"}, Skipped: []string{"B"}, Errors: []string{}}
	result.Merge(Result{Created: []string{"A", "C"}, Skipped: []string{"B"}, Errors: []string{"boom"}})

	assert.Equal(t, []string{"A", "C"}, result.Created)
	assert.Equal(t, []string{"B"}, result.Skipped)
	assert.Equal(t, []string{"boom"}, result.Errors)
}

func TestClientCreateTags(t *testing.T) {
	existing := map[string]bool{"JJM.MH_JJM_1_V_RES_R_CL": true}
	var created []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/dataservers" && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(map[string]string{"WebId": "ds-1"})
		case r.URL.Path == "/points" && r.Method == http.MethodGet:
			if existing[pathTag(r.URL.Query().Get("path"))] {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		case r.URL.Path == "/dataservers/ds-1/points" && r.Method == http.MethodPost:
			var def pointDefinition
			require.NoError(t, json.NewDecoder(r.Body).Decode(&def))
			assert.Equal(t, "Float64", def.PointType)
			assert.Equal(t, "NA", def.PointSource)
			created = append(created, def.Name)
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	client := NewClient(Config{BaseURL: server.URL, ServerName: "pi-prod"}, logger)

	result, err := client.CreateTags(context.Background(), []string{
		"JJM.MH_JJM_1_V_RES_R_CL",
		"JJM.MH_JJM_1_V_RES_R_FL_RATE",
	}, "Nagpur")
	require.NoError(t, err)

	assert.Equal(t, []string{"JJM.MH_JJM_1_V_RES_R_FL_RATE"}, result.Created)
	assert.Equal(t, []string{"JJM.MH_JJM_1_V_RES_R_CL"}, result.Skipped)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"JJM.MH_JJM_1_V_RES_R_FL_RATE"}, created)
}

func TestClientCreateTagsUnknownRegion(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	client := NewClient(Config{BaseURL: "http://unused", ServerName: "pi-prod"}, logger)

	result, err := client.CreateTags(context.Background(), []string{"TAG"}, "atlantis")
	require.NoError(t, err)

	assert.Empty(t, result.Created)
	assert.Empty(t, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "atlantis")
}

// pathTag extracts the tag name from a \\server\tag lookup path.
func pathTag(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
