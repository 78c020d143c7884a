package reconcile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/artifacts"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/events"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/historian"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/matchkey"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/normalize"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/sessioncache"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/spreadsheet"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/tracing"
)

// FinalizeSummary reports the outcome of the finalize stage.
type FinalizeSummary struct {
	Active        int
	Inactive      int
	SkippedAssets int
	TagResult     historian.Result
	Report        []byte
	Elapsed       time.Duration
}

// assetWork carries one validated asset through the finalize loop.
type assetWork struct {
	assetID int64
	row     models.TagStatusRow
}

// Finalize provisions historian tags for every Validated asset, runs one
// batched telemetry check over their topics, flips each asset to Active or
// Inactive and rewrites the region mapping documents.
func (e *Engine) Finalize(ctx context.Context, sessionID string) (FinalizeSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Engine.Finalize")
	defer span.End()

	start := time.Now()
	summary := FinalizeSummary{
		TagResult: historian.Result{Created: []string{}, Skipped: []string{}, Errors: []string{}},
	}

	entry, err := e.sessions.Get(ctx, sessionID, sessioncache.SlotValidationFile)
	if errors.Is(err, sessioncache.ErrNotFound) {
		return summary, ErrNoValidationSession
	}
	if err != nil {
		return summary, err
	}

	sheet, err := spreadsheet.ReadWorkbook(entry.Filename, entry.Data)
	if err != nil {
		return summary, err
	}
	rows := parseValidationRows(sheet)
	lookup := matchkey.NewTopicLookup(rows)

	assets, err := e.assets.ListValidatedJoined(ctx)
	if err != nil {
		return summary, err
	}
	if len(assets) == 0 {
		return summary, ErrNoValidatedAssets
	}

	var work []assetWork
	topicBatch := map[models.SensorType][]string{}
	pressureByRegion := map[string][]artifacts.PressureEntry{}
	flowByRegion := map[string][]artifacts.FlowEntry{}
	chlorineByRegion := map[string][]artifacts.ChlorineEntry{}

	for _, asset := range assets {
		row, ok := lookup.Find(asset)
		if !ok {
			e.logger.WithContext(ctx).WithFields(map[string]any{
				"village":   asset.VillageName,
				"reservoir": asset.NameOfTheReservoir,
			}).Warn("no verification row for validated asset, skipping")
			summary.SkippedAssets++
			continue
		}

		tagSet := models.NewTagSet(asset.SchemeID, asset.VillageNameCap, asset.ReservoirCap)
		region := asset.Region

		pressureByRegion[region] = append(pressureByRegion[region], artifacts.PressureEntry{
			Topic: row.TopicPressure,
			Tag:   tagSet.Pressure,
		})
		flowByRegion[region] = append(flowByRegion[region], artifacts.FlowEntry{
			Topic:        row.TopicFlow,
			FlowRateTag:  tagSet.FlowRate,
			TotalFlowTag: tagSet.TotalFlow,
			FlowErrorTag: tagSet.FlowError,
		})
		chlorineByRegion[region] = append(chlorineByRegion[region], artifacts.ChlorineEntry{
			Topic:      row.TopicCL,
			CLType:     row.CLType,
			CLTag:      tagSet.CL,
			CLErrorTag: tagSet.CLError,
		})

		addTopic(topicBatch, models.SensorFlowMeter, row.TopicFlow)
		addTopic(topicBatch, models.SensorChlorine, row.TopicCL)
		addTopic(topicBatch, models.SensorPressure, row.TopicPressure)

		result, err := e.tags.CreateTags(ctx, tagSet.All(), region)
		if err != nil {
			return summary, err
		}
		summary.TagResult.Merge(result)

		work = append(work, assetWork{
			assetID: asset.ID,
			row: models.TagStatusRow{
				SchemeID:           asset.SchemeID,
				VillageNameCap:     asset.VillageNameCap,
				ReservoirCap:       asset.ReservoirCap,
				NameOfTheReservoir: strings.ToUpper(normalize.Reservoir(asset.NameOfTheReservoir)),
				VillageName:        normalize.UpperTrim(asset.VillageName),
				CLTag:              tagSet.CL,
				FlowRateTag:        tagSet.FlowRate,
				TotalFlowTag:       tagSet.TotalFlow,
				PressureTag:        tagSet.Pressure,
				CLErrorTag:         tagSet.CLError,
				FlowErrorTag:       tagSet.FlowError,
				TopicFlow:          row.TopicFlow,
				TopicCL:            row.TopicCL,
				TopicPressure:      row.TopicPressure,
			},
		})
	}

	topicResults := map[string]models.TopicCheckResult{}
	if len(topicBatch) > 0 {
		topicResults, err = e.checker.Check(ctx, topicBatch)
		if err != nil {
			return summary, err
		}
	}

	// one asset is Active if any of its three topics communicated
	updates := make([]models.StatusUpdate, 0, len(work))
	var statusEvents []*events.AssetStatusEvent
	for _, w := range work {
		status := models.StatusInactive
		eventType := "asset.deactivated"
		for _, topic := range []string{w.row.TopicCL, w.row.TopicFlow, w.row.TopicPressure} {
			topic = stripFloatSuffix(topic)
			if topic == "" {
				continue
			}
			if result, ok := topicResults[topic]; ok && result.Status == models.TopicCommunicated {
				status = models.StatusActive
				eventType = "asset.activated"
				break
			}
		}
		if status == models.StatusActive {
			summary.Active++
		} else {
			summary.Inactive++
		}
		updates = append(updates, models.StatusUpdate{AssetID: w.assetID, Status: status})
		statusEvents = append(statusEvents, &events.AssetStatusEvent{
			EventType: eventType,
			SchemeID:  w.row.SchemeID,
			Village:   w.row.VillageName,
			Reservoir: w.row.NameOfTheReservoir,
			Status:    status,
		})
	}

	if err := e.assets.CommitFinalStatuses(ctx, updates); err != nil {
		return summary, err
	}

	for region, entries := range pressureByRegion {
		if err := e.artifacts.BuildPressure(ctx, rows, region, entries); err != nil {
			return summary, err
		}
	}
	for region, entries := range flowByRegion {
		if err := e.artifacts.BuildFlow(ctx, rows, region, entries); err != nil {
			return summary, err
		}
	}
	for region, entries := range chlorineByRegion {
		if err := e.artifacts.BuildChlorine(ctx, rows, region, entries); err != nil {
			return summary, err
		}
	}

	tagRows := make([]models.TagStatusRow, len(work))
	for i, w := range work {
		tagRows[i] = w.row
	}
	report, err := spreadsheet.WriteTagStatusReport(tagRows, topicResults, toSet(summary.TagResult.Created), toSet(summary.TagResult.Skipped))
	if err != nil {
		return summary, err
	}
	summary.Report = report

	reportEntry := sessioncache.Entry{Filename: "active_meta_data.xlsx", Data: report}
	if err := e.sessions.Put(ctx, sessionID, sessioncache.SlotTagReport, reportEntry, e.config.SessionTTL); err != nil {
		return summary, err
	}

	elapsed := time.Since(start)
	summary.Elapsed = elapsed
	e.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id": sessionID,
		"active":     summary.Active,
		"inactive":   summary.Inactive,
		"skipped":    summary.SkippedAssets,
		"elapsed":    elapsed.String(),
	}).Info("finalize complete")

	e.publishStatuses(ctx, statusEvents)
	e.publishStage(ctx, &events.StageCompletedEvent{
		Stage:     "finalize",
		SessionID: sessionID,
		Processed: len(work),
		Matched:   summary.Active,
		Skipped:   summary.SkippedAssets,
		ElapsedMS: elapsed.Milliseconds(),
	})

	return summary, nil
}

// addTopic queues a topic for the batched check, dropping empties and the
// spreadsheet float artifact suffix.
func addTopic(batch map[models.SensorType][]string, sensorType models.SensorType, topic string) {
	topic = stripFloatSuffix(topic)
	if topic == "" {
		return
	}
	for _, existing := range batch[sensorType] {
		if existing == topic {
			return
		}
	}
	batch[sensorType] = append(batch[sensorType], topic)
}

func stripFloatSuffix(topic string) string {
	return strings.TrimSuffix(strings.TrimSpace(topic), ".0")
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
