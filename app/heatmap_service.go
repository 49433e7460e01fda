package app

import (
	"context"
	"fmt"
	"time"

	"healthcorr/adapters/stats/engine"
	"healthcorr/domain/core"
	"healthcorr/domain/correlation"
	"healthcorr/domain/survey"
	"healthcorr/internal"
	"healthcorr/internal/dataset"
	"healthcorr/internal/profiling"
	"healthcorr/ports"
)

// HeatmapService loads survey rows into a dataset and builds views and snapshots over it
type HeatmapService struct {
	source    ports.RowSource
	processor *dataset.Processor
	engine    *engine.StatsEngine
	profiler  *profiling.DataProfiler
	repo      ports.MatrixRepository
	logger    *internal.Logger
}

// Session is one loaded dataset plus its interactive view
type Session struct {
	View     *View                       `json:"-"`
	Stats    dataset.BuildStats          `json:"stats"`
	Profiles []profiling.VariableProfile `json:"profiles"`
	LoadedAt core.Timestamp              `json:"loaded_at"`
	LoadMs   int64                       `json:"load_ms"`
}

// NewHeatmapService creates a heatmap service. repo may be nil, in which case
// snapshot operations return core.ErrStorageDisabled.
func NewHeatmapService(source ports.RowSource, processor *dataset.Processor, eng *engine.StatsEngine, repo ports.MatrixRepository, logger *internal.Logger) *HeatmapService {
	logger = internal.OrDefault(logger).With("heatmap")
	return &HeatmapService{
		source:    source,
		processor: processor,
		engine:    eng,
		profiler:  profiling.NewDataProfiler(logger),
		repo:      repo,
		logger:    logger,
	}
}

// Load reads the source, filters rows and builds a natural-order view
func (s *HeatmapService) Load(ctx context.Context, cb survey.Codebook, scheme ColorScheme) (*Session, error) {
	start := time.Now()

	rows, err := s.source.ReadRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	ds, stats := s.processor.Build(rows, cb)

	view, err := NewView(ctx, s.engine, cb, ds, scheme)
	if err != nil {
		return nil, fmt.Errorf("failed to build view: %w", err)
	}

	session := &Session{
		View:     view,
		Stats:    stats,
		Profiles: s.profiler.ProfileDataset(ds, cb),
		LoadedAt: core.Now(),
		LoadMs:   time.Since(start).Milliseconds(),
	}
	s.logger.Info("loaded %d variables over %d rows in %dms", cb.Len(), ds.Len(), session.LoadMs)
	return session, nil
}

// SnapshotsEnabled reports whether a repository is configured
func (s *HeatmapService) SnapshotsEnabled() bool {
	return s.repo != nil
}

// SaveSnapshot persists the view's current state
func (s *HeatmapService) SaveSnapshot(ctx context.Context, view *View) (*correlation.Snapshot, error) {
	if s.repo == nil {
		return nil, core.ErrStorageDisabled
	}
	snap := view.State().Snapshot()
	if err := s.repo.Save(ctx, &snap); err != nil {
		return nil, err
	}
	s.logger.Debug("saved snapshot %s (%s, %s)", snap.ID, snap.Mode, snap.Fingerprint.Short())
	return &snap, nil
}

// GetSnapshot loads a stored snapshot
func (s *HeatmapService) GetSnapshot(ctx context.Context, id core.SnapshotID) (*correlation.Snapshot, error) {
	if s.repo == nil {
		return nil, core.ErrStorageDisabled
	}
	return s.repo.Get(ctx, id)
}

// ListSnapshots returns the most recent snapshots first
func (s *HeatmapService) ListSnapshots(ctx context.Context, limit int) ([]ports.SnapshotSummary, error) {
	if s.repo == nil {
		return nil, core.ErrStorageDisabled
	}
	return s.repo.List(ctx, limit)
}
