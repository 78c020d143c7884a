package reconcile

import (
	"context"
	"time"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/events"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/matchkey"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/sessioncache"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/spreadsheet"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/tracing"
)

// ValidationSummary reports the outcome of a validation pass. Report is the
// annotated workbook, also cached on the session.
type ValidationSummary struct {
	Validated   int
	Invalidated int
	Report      []byte
	Elapsed     time.Duration
}

// Validate matches a field verification upload against stored assets and
// promotes matches to Validated. The raw upload is cached on the session for
// the finalize stage.
func (e *Engine) Validate(ctx context.Context, sessionID, filename string, data []byte) (ValidationSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Engine.Validate")
	defer span.End()

	start := time.Now()
	summary := ValidationSummary{}

	sheet, err := spreadsheet.ReadWorkbook(filename, data)
	if err != nil {
		return summary, err
	}
	if len(sheet.Rows) == 0 {
		return summary, ErrEmptyInput
	}
	if missing := sheet.HasColumns(models.VerificationColumns); len(missing) > 0 {
		return summary, &SchemaError{Missing: missing}
	}

	// the raw upload feeds the finalize stage
	entry := sessioncache.Entry{Filename: filename, Data: data}
	if err := e.sessions.Put(ctx, sessionID, sessioncache.SlotValidationFile, entry, e.config.SessionTTL); err != nil {
		return summary, err
	}

	rows := parseValidationRows(sheet)

	keyRows, err := e.assets.ListKeyFields(ctx)
	if err != nil {
		return summary, err
	}
	index := matchkey.BuildAssetIndex(keyRows)

	statuses := make([]string, len(rows))
	var matchedIDs []int64
	var statusEvents []*events.AssetStatusEvent
	for i, row := range rows {
		statuses[i] = models.ValidationStatusNotValidated

		ids := index[matchkey.FromValidationRow(row)]
		if len(ids) == 0 {
			continue
		}

		matchedIDs = append(matchedIDs, ids...)
		statuses[i] = models.ValidationStatusValidated
		summary.Validated += len(ids)
		statusEvents = append(statusEvents, &events.AssetStatusEvent{
			EventType: "asset.validated",
			SchemeID:  row.SchemeID,
			Village:   row.Village,
			Reservoir: row.Reservoir,
			Status:    models.StatusValidated,
		})
	}
	summary.Invalidated = len(rows) - summary.Validated

	if _, err := e.assets.UpdateStatusByIDs(ctx, matchedIDs, models.StatusValidated); err != nil {
		return summary, err
	}

	report, err := spreadsheet.WriteValidationReport(sheet.Headers, sheet.Rows, statuses)
	if err != nil {
		return summary, err
	}
	summary.Report = report

	reportEntry := sessioncache.Entry{Filename: "validation_status_report.xlsx", Data: report}
	if err := e.sessions.Put(ctx, sessionID, sessioncache.SlotValidationReport, reportEntry, e.config.SessionTTL); err != nil {
		return summary, err
	}

	elapsed := time.Since(start)
	summary.Elapsed = elapsed
	e.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id":  sessionID,
		"validated":   summary.Validated,
		"invalidated": summary.Invalidated,
		"elapsed":     elapsed.String(),
	}).Info("validation complete")

	e.publishStatuses(ctx, statusEvents)
	e.publishStage(ctx, &events.StageCompletedEvent{
		Stage:     "validate",
		SessionID: sessionID,
		Processed: len(rows),
		Matched:   summary.Validated,
		ElapsedMS: elapsed.Milliseconds(),
	})

	return summary, nil
}

// parseValidationRows maps sheet rows to typed rows, splitting the combined
// scheme cell and stripping the Sub Division prefix.
func parseValidationRows(sheet *spreadsheet.Sheet) []models.ValidationRow {
	rows := make([]models.ValidationRow, 0, len(sheet.Rows))
	for _, raw := range sheet.Rows {
		schemeID, schemeName := matchkey.SplitSchemeIDName(raw[models.ColSchemeIDName])
		rows = append(rows, models.ValidationRow{
			Region:        raw[models.ColRegion],
			Circle:        raw[models.ColCircle],
			Division:      raw[models.ColDivision],
			SubDivision:   matchkey.StripSubDivisionPrefix(raw[models.ColSubDivision]),
			Block:         raw[models.ColBlock],
			SchemeID:      schemeID,
			SchemeName:    schemeName,
			Village:       raw[models.ColVillage],
			Reservoir:     raw[models.ColReservoir],
			TopicCL:       raw[models.ColTopicCL],
			CLType:        raw[models.ColCLType],
			TopicFlow:     raw[models.ColTopicFlow],
			TopicPressure: raw[models.ColTopicPressure],
		})
	}
	return rows
}
