// Package matchkey builds the composite keys that associate uploaded rows
// with stored assets, and the in-memory indexes used for O(1) matching.
package matchkey

import (
	"strings"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/normalize"
)

// IngestKey identifies an asset at ingest time: exact
// (Name_of_the_Reservoir, Village_Name) equality.
type IngestKey struct {
	Reservoir string
	Village   string
}

// NewIngestKey builds the ingest dedup/lookup key for a raw row.
func NewIngestKey(reservoir, village string) IngestKey {
	return IngestKey{Reservoir: reservoir, Village: village}
}

// ValidationKey is the broader composite key used at validation time. All
// location fields are uppercase-trimmed; the reservoir is passed through the
// shared normalization so the write side and the query side agree.
type ValidationKey struct {
	SchemeID    string
	SchemeName  string
	Region      string
	Circle      string
	Division    string
	SubDivision string
	Block       string
	Village     string
	Reservoir   string
}

// FromValidationRow builds the key for a parsed verification row.
func FromValidationRow(row models.ValidationRow) ValidationKey {
	return ValidationKey{
		SchemeID:    strings.TrimSpace(row.SchemeID),
		SchemeName:  normalize.UpperTrim(row.SchemeName),
		Region:      normalize.UpperTrim(row.Region),
		Circle:      normalize.UpperTrim(row.Circle),
		Division:    normalize.UpperTrim(row.Division),
		SubDivision: normalize.UpperTrim(row.SubDivision),
		Block:       normalize.UpperTrim(row.Block),
		Village:     normalize.UpperTrim(row.Village),
		Reservoir:   normalize.Reservoir(row.Reservoir),
	}
}

// FromAssetRow builds the same key from a stored asset row, applying the
// identical transforms so both sides meet on equal ground.
func FromAssetRow(row models.AssetKeyRow) ValidationKey {
	return ValidationKey{
		SchemeID:    strings.TrimSpace(row.SchemeID),
		SchemeName:  normalize.UpperTrim(row.SchemeName),
		Region:      normalize.UpperTrim(row.Region),
		Circle:      normalize.UpperTrim(row.Circle),
		Division:    normalize.UpperTrim(row.Division),
		SubDivision: normalize.UpperTrim(row.SubDivision),
		Block:       normalize.UpperTrim(row.Block),
		Village:     normalize.UpperTrim(row.VillageName),
		Reservoir:   normalize.Reservoir(row.Reservoir),
	}
}

// AssetIndex maps validation composite keys to the asset row IDs carrying
// that key. Built once per validation request from a single store scan.
type AssetIndex map[ValidationKey][]int64

// BuildAssetIndex indexes asset key rows by their validation key.
func BuildAssetIndex(rows []models.AssetKeyRow) AssetIndex {
	idx := make(AssetIndex, len(rows))
	for _, row := range rows {
		key := FromAssetRow(row)
		idx[key] = append(idx[key], row.ID)
	}
	return idx
}

// TopicLookup finds the verification row feeding an asset's topic references
// during finalize: village must match uppercase-trimmed, and the reservoir
// must match either by shared normalization or literally against the asset's
// base reservoir name.
type TopicLookup struct {
	rows []models.ValidationRow
}

// NewTopicLookup wraps the cached verification rows for finalize-time lookup.
func NewTopicLookup(rows []models.ValidationRow) *TopicLookup {
	return &TopicLookup{rows: rows}
}

// Find returns the first verification row matching the asset, or false.
func (l *TopicLookup) Find(asset models.ValidatedAsset) (models.ValidationRow, bool) {
	village := normalize.UpperTrim(asset.VillageName)
	reservoir := normalize.Reservoir(asset.NameOfTheReservoir)
	base := normalize.UpperTrim(asset.NameOfBaseReservoir)

	for _, row := range l.rows {
		if normalize.UpperTrim(row.Village) != village {
			continue
		}
		if normalize.Reservoir(row.Reservoir) == reservoir || normalize.UpperTrim(row.Reservoir) == base {
			return row, true
		}
	}
	return models.ValidationRow{}, false
}

// SplitSchemeIDName splits the combined "Schme ID  Name" cell into
// (Scheme_ID, Scheme_Name): on the first hyphen when present, otherwise on
// the first whitespace run with an empty name when there is no second token.
func SplitSchemeIDName(full string) (schemeID, schemeName string) {
	if i := strings.Index(full, "-"); i >= 0 {
		return strings.TrimSpace(full[:i]), strings.TrimSpace(full[i+1:])
	}
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	schemeID = parts[0]
	if len(parts) > 1 {
		schemeName = strings.Join(parts[1:], " ")
	}
	return schemeID, schemeName
}

// StripSubDivisionPrefix removes one leading "Sub Division" literal from the
// Sub_Division cell when present (case-insensitive detection, as uploaded
// files carry it inconsistently).
func StripSubDivisionPrefix(subDivision string) string {
	s := strings.TrimSpace(subDivision)
	if strings.HasPrefix(strings.ToUpper(s), "SUB DIVISION") {
		return strings.TrimSpace(s[len("Sub Division"):])
	}
	return s
}
