// Package normalize provides the field normalization functions used for
// asset matching and topic-ID canonicalization.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
)

// Sentinel strings treated as missing values on ingest.
var missingSentinels = map[string]bool{
	"":                      true,
	"null":                  true,
	"under construction.":   true,
	"will be updated later": true,
}

var (
	baseReservoirSuffixRe = regexp.MustCompile(`(?i)[-\s]*(Outlet[-\s]*\d+|OL[-\s]*\d+)$`)
	outletPatternRe       = regexp.MustCompile(`(?i)(?:\bOL\s*-?\s*\d+|\bOutlet\s*-?\s*\d+)`)
)

// Reservoir canonicalizes a reservoir name for matching: uppercase, trim,
// strip hyphens/periods/spaces, then rewrite "OL" to "OUTLET".
//
// The "OL" rewrite is substring-based and also fires inside unrelated words
// ("SOLAR" becomes "SOUTLETAR"). That is the established matching identity on
// both the write and query side; do not "fix" it here without migrating the
// stored normalized values with it.
func Reservoir(value string) string {
	val := strings.ToUpper(strings.TrimSpace(value))
	val = strings.ReplaceAll(val, "-", "")
	val = strings.ReplaceAll(val, ".", "")
	val = strings.ReplaceAll(val, " ", "")
	val = strings.ReplaceAll(val, "OL", "OUTLET")
	return val
}

// BaseReservoir strips a trailing outlet suffix ("-Outlet-2", "-OL1", ...)
// to recover the shared base reservoir name. Returns "" for empty input.
func BaseReservoir(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return baseReservoirSuffixRe.ReplaceAllString(name, "")
}

// PressureTopicID canonicalizes a pressure topic ID: uppercase, strip spaces,
// drop a trailing ".0", then left-pad a single leading zero unless the region
// is pune or the value already starts with "0". Region match is
// case-insensitive.
func PressureTopicID(topicID, region string) string {
	id := OtherTopicID(topicID)
	if !strings.EqualFold(strings.TrimSpace(region), "pune") && !strings.HasPrefix(id, "0") {
		id = "0" + id
	}
	return id
}

// OtherTopicID canonicalizes a flow-meter or chlorine topic ID: uppercase,
// strip spaces, drop a trailing ".0".
func OtherTopicID(topicID string) string {
	id := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(topicID), " ", ""))
	id = strings.TrimSuffix(id, ".0")
	return id
}

// CleanValue converts a raw spreadsheet cell to its storable form. Missing
// and sentinel values become nil. Numeric-typed columns are coerced to
// float64, nil on failure. Everything else passes through unchanged.
func CleanValue(value, columnName string) any {
	if missingSentinels[strings.ToLower(strings.TrimSpace(value))] {
		return nil
	}
	if models.NumericColumns[columnName] {
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil
		}
		return f
	}
	return value
}

// ValidOutletReservoirs filters a reservoir list to names containing an
// outlet-numbered pattern ("OL-3", "Outlet 2", ...) anywhere in the string.
func ValidOutletReservoirs(reservoirs []string) []string {
	valid := make([]string, 0, len(reservoirs))
	for _, res := range reservoirs {
		if outletPatternRe.MatchString(strings.TrimSpace(res)) {
			valid = append(valid, res)
		}
	}
	return valid
}

// UpperTrim is the uppercase-and-trim transform applied to location fields
// before composite-key comparison.
func UpperTrim(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
