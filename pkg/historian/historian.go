// Package historian provisions data-archive tags on the PI Web API for
// reconciled assets.
package historian

import (
	"fmt"
	"strings"
)

// pointSourceByRegion maps a region to the historian point source assigned to
// its tags.
var pointSourceByRegion = map[string]string{
	"amravati":                  "AU",
	"nagpur":                    "NA",
	"chhatrapati sambhajinagar": "CS",
	"nashik":                    "NASHIK",
	"pune":                      "PUNE",
	"konkan":                    "KONKAN",
}

// PointSourceFor resolves the point source for a region, case and whitespace
// insensitively.
func PointSourceFor(region string) (string, error) {
	ps, ok := pointSourceByRegion[strings.ToLower(strings.TrimSpace(region))]
	if !ok {
		return "", fmt.Errorf("invalid region '%s'. Point Source not found in map", region)
	}
	return ps, nil
}

// Result reports the outcome of one provisioning batch. A tag lands in
// exactly one bucket. Errors are messages, not tag names.
type Result struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
	Errors  []string `json:"errors"`
}

// Merge folds another batch result into r, dropping duplicates so a tag
// provisioned for several assets is reported once.
func (r *Result) Merge(other Result) {
	r.Created = appendUnique(r.Created, other.Created)
	r.Skipped = appendUnique(r.Skipped, other.Skipped)
	r.Errors = appendUnique(r.Errors, other.Errors)
}

func appendUnique(dst []string, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			seen[s] = true
			dst = append(dst, s)
		}
	}
	return dst
}
