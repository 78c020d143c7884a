// Package asset persists the asset metadata records and their lifecycle
// status in Postgres.
package asset

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/database"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/tracing"
)

const (
	metadataTable = "asset_metadata_new"
	countTable    = "asset_metadata_count"
)

// insertColumns is AssetColumns lowered to the store's column names, computed
// once.
var insertColumns = func() []string {
	cols := make([]string, len(models.AssetColumns))
	for i, col := range models.AssetColumns {
		cols[i] = strings.ToLower(col)
	}
	return cols
}()

// Repository handles asset metadata persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetStatus returns the stored status for an asset keyed by its literal
// reservoir and village values. found is false when no such row exists.
func (r *Repository) GetStatus(ctx context.Context, reservoir, village string) (models.AssetStatus, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "asset.Repository.GetStatus")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("status")
	sb.From(metadataTable)
	sb.Where(
		sb.Equal("name_of_the_reservoir", reservoir),
		sb.Equal("village_name", village),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var status string
	err := r.db.GetContext(ctx, &status, query, args...)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"reservoir": reservoir, "village": village}).Error("Failed to look up asset status")
		return "", false, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to look up asset status: %v", err)
	}
	return models.AssetStatus(status), true, nil
}

// Insert stores one full metadata record. values is keyed by the canonical
// column names of models.AssetColumns; absent keys insert NULL.
func (r *Repository) Insert(ctx context.Context, values map[string]any) error {
	ctx, span := tracing.StartSpan(ctx, "asset.Repository.Insert")
	defer span.End()

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(metadataTable)
	ib.Cols(insertColumns...)

	row := make([]any, len(models.AssetColumns))
	for i, col := range models.AssetColumns {
		row[i] = values[col]
	}
	ib.Values(row...)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"reservoir": values["Name_of_the_Reservoir"],
			"village":   values["Village_Name"],
		}).Error("Failed to insert asset record")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to insert asset record: %v", err)
	}
	return nil
}

// SetStatusByIngestKey overwrites the status of the asset with the given
// literal reservoir and village values, returning affected rows.
func (r *Repository) SetStatusByIngestKey(ctx context.Context, reservoir, village string, status models.AssetStatus) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "asset.Repository.SetStatusByIngestKey")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(metadataTable)
	ub.Set(ub.Assign("status", string(status)))
	ub.Where(
		ub.Equal("name_of_the_reservoir", reservoir),
		ub.Equal("village_name", village),
	)

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"reservoir": reservoir, "village": village}).Error("Failed to update asset status")
		return 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update asset status: %v", err)
	}
	affected, _ := result.RowsAffected()
	return affected, nil
}

// ListKeyFields returns the matching key fields of every asset record. The
// validation stage normalizes and indexes these in memory.
func (r *Repository) ListKeyFields(ctx context.Context) ([]models.AssetKeyRow, error) {
	ctx, span := tracing.StartSpan(ctx, "asset.Repository.ListKeyFields")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "scheme_id", "scheme_name", "region", "circle", "division", "sub_division", "block", "village_name", "name_of_the_reservoir")
	sb.From(metadataTable)

	query, args := sb.Build()
	var rows []models.AssetKeyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list asset key fields")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list asset key fields: %v", err)
	}
	return rows, nil
}

// UpdateStatusByIDs sets the status of every asset in ids, returning affected
// rows.
func (r *Repository) UpdateStatusByIDs(ctx context.Context, ids []int64, status models.AssetStatus) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "asset.Repository.UpdateStatusByIDs")
	defer span.End()

	if len(ids) == 0 {
		return 0, nil
	}

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(metadataTable)
	ub.Set(ub.Assign("status", string(status)))
	idArgs := make([]any, len(ids))
	for i, id := range ids {
		idArgs[i] = id
	}
	ub.Where(ub.In("id", idArgs...))

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("ids", len(ids)).Error("Failed to batch update asset status")
		return 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to batch update asset status: %v", err)
	}
	affected, _ := result.RowsAffected()
	return affected, nil
}

// ListValidatedJoined returns every Validated asset joined against the
// capitalization table that supplies the tag-name forms of village and
// reservoir.
func (r *Repository) ListValidatedJoined(ctx context.Context) ([]models.ValidatedAsset, error) {
	ctx, span := tracing.StartSpan(ctx, "asset.Repository.ListValidatedJoined")
	defer span.End()

	query := `
		SELECT amn.id, amn.site_name, amc.region AS count_region, amn.scheme_id, amn.scheme_name,
		       amc.village_name_cap, amc.reservoir_cap, amn.village_name, amn.name_of_the_reservoir,
		       amn.region, amn.name_of_base_reservoir
		FROM asset_metadata_new amn
		INNER JOIN asset_metadata_count amc
		    ON amn.scheme_id = amc.scheme_id
		   AND UPPER(TRIM(amn.village_name)) = UPPER(TRIM(amc.village_name))
		   AND UPPER(REPLACE(TRIM(amn.name_of_the_reservoir), ' ', '')) =
		       UPPER(REPLACE(TRIM(amc.name_of_the_reservoir), ' ', ''))
		WHERE amn.status = $1
	`
	var rows []models.ValidatedAsset
	if err := r.db.SelectContext(ctx, &rows, query, string(models.StatusValidated)); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list validated assets")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list validated assets: %v", err)
	}
	return rows, nil
}

// CommitFinalStatuses applies all finalize-stage status flips in one
// transaction so a half-finished run never leaves a mixed batch behind.
func (r *Repository) CommitFinalStatuses(ctx context.Context, updates []models.StatusUpdate) error {
	ctx, span := tracing.StartSpan(ctx, "asset.Repository.CommitFinalStatuses")
	defer span.End()

	if len(updates) == 0 {
		return nil
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	for _, update := range updates {
		ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
		ub.Update(metadataTable)
		ub.Set(ub.Assign("status", string(update.Status)))
		ub.Where(ub.Equal("id", update.AssetID))

		query, args := ub.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithField("asset_id", update.AssetID).Error("Failed to apply final status")
			return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to apply final status: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to commit final statuses: %v", err)
	}
	return nil
}
