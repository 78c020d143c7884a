package reconcile

import (
	"context"
	"time"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/events"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/matchkey"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/normalize"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/spreadsheet"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/tracing"
)

// IngestSummary reports the outcome of a metadata ingest.
type IngestSummary struct {
	Inserted   int
	Updated    int
	Duplicates int
	Elapsed    time.Duration
}

// IngestMetadata loads a master metadata workbook into the store. Rows are
// deduplicated on (reservoir, village) keeping the first occurrence; every
// stored row starts Inactive regardless of the uploaded Status value.
func (e *Engine) IngestMetadata(ctx context.Context, filename string, data []byte) (IngestSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Engine.IngestMetadata")
	defer span.End()

	start := time.Now()
	summary := IngestSummary{}

	sheet, err := spreadsheet.ReadWorkbook(filename, data)
	if err != nil {
		return summary, err
	}
	if len(sheet.Rows) == 0 {
		return summary, ErrEmptyInput
	}
	if missing := sheet.HasColumns(models.AssetColumns); len(missing) > 0 {
		return summary, &SchemaError{Missing: missing}
	}

	seen := make(map[matchkey.IngestKey]bool, len(sheet.Rows))
	for _, row := range sheet.Rows {
		key := matchkey.NewIngestKey(row["Name_of_the_Reservoir"], row["Village_Name"])
		if seen[key] {
			summary.Duplicates++
			continue
		}
		seen[key] = true

		status, found, err := e.assets.GetStatus(ctx, key.Reservoir, key.Village)
		if err != nil {
			return summary, err
		}

		if found {
			if status != models.StatusInactive {
				affected, err := e.assets.SetStatusByIngestKey(ctx, key.Reservoir, key.Village, models.StatusInactive)
				if err != nil {
					return summary, err
				}
				summary.Updated += int(affected)
			}
			continue
		}

		values := make(map[string]any, len(models.AssetColumns))
		for _, col := range models.AssetColumns {
			if col == "Status" {
				values[col] = string(models.StatusInactive)
				continue
			}
			values[col] = normalize.CleanValue(row[col], col)
		}
		if err := e.assets.Insert(ctx, values); err != nil {
			return summary, err
		}
		summary.Inserted++
	}

	summary.Elapsed = time.Since(start)
	e.logger.WithContext(ctx).WithFields(map[string]any{
		"inserted":   summary.Inserted,
		"updated":    summary.Updated,
		"duplicates": summary.Duplicates,
		"elapsed":    summary.Elapsed.String(),
	}).Info("asset metadata ingest complete")

	e.publishStage(ctx, &events.StageCompletedEvent{
		Stage:     "ingest",
		Processed: summary.Inserted + summary.Updated,
		Skipped:   summary.Duplicates,
		ElapsedMS: summary.Elapsed.Milliseconds(),
	})

	return summary, nil
}
