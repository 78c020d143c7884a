package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservoir(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips hyphens spaces and rewrites OL once",
			input:    "Existing 2 LL ESR- Outlet-2",
			expected: strings.Replace("EXISTING2LLESROUTLET2", "OL", "OUTLET", -1),
		},
		{
			name:     "OL suffix expands to OUTLET",
			input:    "Existing 0.20 LL ESR-OL1",
			expected: "EXISTING020LLESROUTLET1",
		},
		{
			name:     "OL inside unrelated words also rewrites",
			input:    "SOLAR ESR",
			expected: "SOUTLETARESR",
		},
		{
			name:     "periods removed",
			input:    "Proposed 0.85 LL MBR",
			expected: "PROPOSED085LLMBR",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Reservoir(tt.input))
		})
	}
}

func TestReservoirIdempotent(t *testing.T) {
	inputs := []string{
		"Existing 2 LL ESR- Outlet-2",
		"Proposed 0.85 LL MBR-Outlet-3",
		"Existing 0.20 LL ESR-OL1",
		"SOLAR ESR",
		"plain",
	}
	for _, in := range inputs {
		once := Reservoir(in)
		// "OUTLET" contains no "OL" substring, so a second pass is a no-op.
		assert.Equal(t, once, Reservoir(once), "input %q", in)
	}
}

func TestBaseReservoir(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Existing 2 LL ESR- Outlet-2", "Existing 2 LL ESR"},
		{"Proposed 0.85 LL MBR-Outlet-3", "Proposed 0.85 LL MBR"},
		{"Existing 0.20 LL ESR-OL1", "Existing 0.20 LL ESR"},
		{"Existing 0.20 LL ESR-ol 4", "Existing 0.20 LL ESR"},
		{"No Suffix Here", "No Suffix Here"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, BaseReservoir(tt.input), "input %q", tt.input)
	}
}

func TestPressureTopicID(t *testing.T) {
	tests := []struct {
		topic    string
		region   string
		expected string
	}{
		{"12345.0", "Amravati", "012345"},
		{"12345.0", "Pune", "12345"},
		{"12345.0", "pune", "12345"},
		{"012345", "Nagpur", "012345"},
		{" 12 345 ", "Nashik", "012345"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, PressureTopicID(tt.topic, tt.region), "topic %q region %q", tt.topic, tt.region)
	}
}

func TestOtherTopicID(t *testing.T) {
	assert.Equal(t, "861657074890273", OtherTopicID("861657074890273.0"))
	assert.Equal(t, "ABC123", OtherTopicID(" abc 123 "))
	assert.Equal(t, "", OtherTopicID(""))
}

func TestCleanValue(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		column   string
		expected any
	}{
		{"blank", "", "Region", nil},
		{"null sentinel", "null", "Region", nil},
		{"under construction sentinel", "Under Construction.", "Region", nil},
		{"will be updated sentinel", "will be updated later", "Region", nil},
		{"numeric coercion", "42.5", "Population", float64(42.5)},
		{"numeric failure", "n/a", "Population", nil},
		{"passthrough", "Amravati", "Region", "Amravati"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanValue(tt.value, tt.column))
		})
	}
}

func TestValidOutletReservoirs(t *testing.T) {
	in := []string{
		"Existing ESR-OL1",
		"Existing ESR Outlet-2",
		"Existing ESR Outlet 3",
		"Plain ESR",
		"SOLARESR", // "OL" without a number does not qualify
	}
	out := ValidOutletReservoirs(in)
	assert.Equal(t, []string{"Existing ESR-OL1", "Existing ESR Outlet-2", "Existing ESR Outlet 3"}, out)
}
