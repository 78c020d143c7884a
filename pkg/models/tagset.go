package models

import (
	"fmt"
	"strings"
)

// TagSet holds the six historian tag names generated for one asset. Tag names
// are a pure function of (scheme id, village, reservoir); two assets collide
// only if that triple is identical.
type TagSet struct {
	CL        string
	FlowRate  string
	TotalFlow string
	Pressure  string
	CLError   string
	FlowError string
}

const tagTemplate = "JJM.MH_JJM_%s_%s_RES_%s_%s"

// NewTagSet derives the tag names for an asset. Village and reservoir are
// uppercased with spaces replaced by underscores, matching the historian
// naming convention.
func NewTagSet(schemeID, village, reservoir string) TagSet {
	v := strings.ReplaceAll(strings.ToUpper(village), " ", "_")
	r := strings.ReplaceAll(strings.ToUpper(reservoir), " ", "_")
	name := func(suffix string) string {
		return fmt.Sprintf(tagTemplate, schemeID, v, r, suffix)
	}
	return TagSet{
		CL:        name("CL"),
		FlowRate:  name("FL_RATE"),
		TotalFlow: name("TOT_FL"),
		Pressure:  name("PRESS"),
		CLError:   name("SEN_ERR_CL"),
		FlowError: name("SEN_ERR_FL_MTR"),
	}
}

// All returns the six tag names in creation order.
func (t TagSet) All() []string {
	return []string{t.CL, t.FlowRate, t.TotalFlow, t.Pressure, t.CLError, t.FlowError}
}
