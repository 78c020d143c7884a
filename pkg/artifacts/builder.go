package artifacts

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/normalize"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/tracing"
)

// Paths locates the four mapping documents. Pune has its own pair because its
// ingestion bridge expects a different schema.
type Paths struct {
	PunePressure string
	Pressure     string
	PuneTags     string
	Tags         string
}

func isPune(region string) bool {
	return strings.ToLower(strings.TrimSpace(region)) == "pune"
}

func (p Paths) pressurePath(region string) string {
	if isPune(region) {
		return p.PunePressure
	}
	return p.Pressure
}

func (p Paths) tagsPath(region string) string {
	if isPune(region) {
		return p.PuneTags
	}
	return p.Tags
}

// PressureEntry is one pressure sensor slated for mapping.
type PressureEntry struct {
	Topic string
	Tag   string
}

// FlowEntry is one flow meter slated for mapping.
type FlowEntry struct {
	Topic        string
	FlowRateTag  string
	TotalFlowTag string
	FlowErrorTag string
}

// ChlorineEntry is one chlorine analyser slated for mapping.
type ChlorineEntry struct {
	Topic      string
	CLType     string
	CLTag      string
	CLErrorTag string
}

// Builder rewrites the mapping documents from validated assets. Only topics
// present in the current validation upload are written; stale entries for
// other topics are left alone.
type Builder struct {
	store  DocumentStore
	paths  Paths
	logger ectologger.Logger
}

func NewBuilder(store DocumentStore, paths Paths, logger ectologger.Logger) *Builder {
	return &Builder{
		store:  store,
		paths:  paths,
		logger: logger,
	}
}

// BuildPressure maps pressure topics to their single tag name.
func (b *Builder) BuildPressure(ctx context.Context, rows []models.ValidationRow, region string, entries []PressureEntry) error {
	ctx, span := tracing.StartSpan(ctx, "artifacts.Builder.BuildPressure")
	defer span.End()

	allowed := make(map[string]bool)
	for _, row := range rows {
		if row.TopicPressure != "" {
			allowed[normalize.PressureTopicID(row.TopicPressure, region)] = true
		}
	}

	path := b.paths.pressurePath(region)
	doc, err := b.store.Load(ctx, path)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		topic := normalize.PressureTopicID(entry.Topic, region)
		if !allowed[topic] {
			continue
		}
		doc[topic] = entry.Tag
	}

	return b.store.Save(ctx, path, doc)
}

// BuildFlow maps flow topics to the region's flow field names.
func (b *Builder) BuildFlow(ctx context.Context, rows []models.ValidationRow, region string, entries []FlowEntry) error {
	ctx, span := tracing.StartSpan(ctx, "artifacts.Builder.BuildFlow")
	defer span.End()

	allowed := make(map[string]bool)
	for _, row := range rows {
		if row.TopicFlow != "" {
			allowed[normalize.OtherTopicID(row.TopicFlow)] = true
		}
	}

	path := b.paths.tagsPath(region)
	doc, err := b.store.Load(ctx, path)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		topic := normalize.OtherTopicID(entry.Topic)
		if !allowed[topic] {
			continue
		}
		if isPune(region) {
			doc[topic] = map[string]any{
				"Volume_Flow":        entry.FlowRateTag,
				"Positive_Totalizer": entry.TotalFlowTag,
				"Flow_error":         entry.FlowErrorTag,
			}
		} else {
			doc[topic] = map[string]any{
				"Flow":       entry.FlowRateTag,
				"Total":      entry.TotalFlowTag,
				"Flow_error": entry.FlowErrorTag,
			}
		}
	}

	return b.store.Save(ctx, path, doc)
}

// BuildChlorine maps chlorine topics. Pune analysers shared by several
// reservoirs accumulate tag lists; everything else maps to scalar fields
// chosen by the analyser wiring type.
func (b *Builder) BuildChlorine(ctx context.Context, rows []models.ValidationRow, region string, entries []ChlorineEntry) error {
	ctx, span := tracing.StartSpan(ctx, "artifacts.Builder.BuildChlorine")
	defer span.End()

	// topic -> reservoirs sharing that analyser in this upload
	reservoirsByTopic := make(map[string][]string)
	for _, row := range rows {
		if row.TopicCL == "" || row.Reservoir == "" {
			continue
		}
		topic := normalize.OtherTopicID(row.TopicCL)
		reservoirsByTopic[topic] = append(reservoirsByTopic[topic], row.Reservoir)
	}

	path := b.paths.tagsPath(region)
	doc, err := b.store.Load(ctx, path)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		topic := normalize.OtherTopicID(entry.Topic)
		reservoirs, ok := reservoirsByTopic[topic]
		if !ok {
			continue
		}

		if isPune(region) && len(reservoirs) > 1 {
			valid := normalize.ValidOutletReservoirs(reservoirs)
			b.logger.WithContext(ctx).WithFields(map[string]any{
				"topic":      topic,
				"reservoirs": valid,
			}).Debug("chlorine analyser shared across reservoirs")

			lists := chlorineLists(doc, topic)
			lists["Chlorine"] = appendUnique(toStringList(lists["Chlorine"]), entry.CLTag)
			lists["Cl_error"] = appendUnique(toStringList(lists["Cl_error"]), entry.CLErrorTag)
			doc[topic] = lists
			continue
		}

		if isPune(region) {
			doc[topic] = map[string]any{
				"Chlorine": entry.CLTag,
				"Cl_error": entry.CLErrorTag,
			}
			continue
		}

		if isRS485(entry.CLType) {
			doc[topic] = map[string]any{
				"Cl":       entry.CLTag,
				"Cl_Error": entry.CLErrorTag,
			}
		} else {
			doc[topic] = map[string]any{
				"AI1":      entry.CLTag,
				"Cl_Error": entry.CLErrorTag,
			}
		}
	}

	return b.store.Save(ctx, path, doc)
}

func isRS485(clType string) bool {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(clType)), " ", "") == "rs485"
}

// chlorineLists returns the list-shaped value for a shared analyser topic,
// replacing any scalar value left from an earlier single-reservoir run.
func chlorineLists(doc map[string]any, topic string) map[string]any {
	existing, ok := doc[topic].(map[string]any)
	if !ok {
		return map[string]any{"Chlorine": []any{}, "Cl_error": []any{}}
	}
	if _, ok := existing["Chlorine"].([]any); !ok {
		return map[string]any{"Chlorine": []any{}, "Cl_error": []any{}}
	}
	return existing
}

func toStringList(v any) []any {
	list, ok := v.([]any)
	if !ok {
		return []any{}
	}
	return list
}

func appendUnique(list []any, value string) []any {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
