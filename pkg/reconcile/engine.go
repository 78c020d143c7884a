// Package reconcile drives the three-stage asset reconciliation pipeline:
// metadata ingest, validation against field uploads, and telemetry-backed
// finalization.
package reconcile

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/artifacts"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/events"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/historian"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/sessioncache"
)

// AssetStore is the persistence surface the engine needs. Implemented by
// internal/repositories/asset.
type AssetStore interface {
	GetStatus(ctx context.Context, reservoir, village string) (models.AssetStatus, bool, error)
	Insert(ctx context.Context, values map[string]any) error
	SetStatusByIngestKey(ctx context.Context, reservoir, village string, status models.AssetStatus) (int64, error)
	ListKeyFields(ctx context.Context) ([]models.AssetKeyRow, error)
	UpdateStatusByIDs(ctx context.Context, ids []int64, status models.AssetStatus) (int64, error)
	ListValidatedJoined(ctx context.Context) ([]models.ValidatedAsset, error)
	CommitFinalStatuses(ctx context.Context, updates []models.StatusUpdate) error
}

// TopicChecker performs one batched topic communication check.
type TopicChecker interface {
	Check(ctx context.Context, batch map[models.SensorType][]string) (map[string]models.TopicCheckResult, error)
}

// ArtifactBuilder rewrites the region mapping documents.
type ArtifactBuilder interface {
	BuildPressure(ctx context.Context, rows []models.ValidationRow, region string, entries []artifacts.PressureEntry) error
	BuildFlow(ctx context.Context, rows []models.ValidationRow, region string, entries []artifacts.FlowEntry) error
	BuildChlorine(ctx context.Context, rows []models.ValidationRow, region string, entries []artifacts.ChlorineEntry) error
}

// Config tunes the engine.
type Config struct {
	// SessionTTL bounds how long an uploaded validation file stays usable.
	SessionTTL time.Duration
}

// Engine owns the pipeline. One Engine serves all sessions; state between
// stages lives in the session cache and the asset store.
type Engine struct {
	assets    AssetStore
	sessions  sessioncache.Store
	checker   TopicChecker
	tags      historian.TagCreator
	artifacts ArtifactBuilder
	emitter   events.Emitter // optional
	config    Config
	logger    ectologger.Logger
}

func NewEngine(
	assets AssetStore,
	sessions sessioncache.Store,
	checker TopicChecker,
	tags historian.TagCreator,
	builder ArtifactBuilder,
	emitter events.Emitter,
	config Config,
	logger ectologger.Logger,
) *Engine {
	if config.SessionTTL <= 0 {
		config.SessionTTL = 2 * time.Hour
	}
	return &Engine{
		assets:    assets,
		sessions:  sessions,
		checker:   checker,
		tags:      tags,
		artifacts: builder,
		emitter:   emitter,
		config:    config,
		logger:    logger,
	}
}

func (e *Engine) publishStage(ctx context.Context, event *events.StageCompletedEvent) {
	if e.emitter == nil {
		return
	}
	if err := e.emitter.PublishStageCompleted(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithField("stage", event.Stage).
			Warn("failed to publish stage event")
	}
}

func (e *Engine) publishStatuses(ctx context.Context, statusEvents []*events.AssetStatusEvent) {
	if e.emitter == nil || len(statusEvents) == 0 {
		return
	}
	if err := e.emitter.PublishStatusEvents(ctx, statusEvents); err != nil {
		e.logger.WithContext(ctx).WithError(err).Warn("failed to publish asset status events")
	}
}
