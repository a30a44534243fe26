package syncapi

import (
	"context"

	"catalog-sync/core/archive"
	"catalog-sync/core/export"
	"catalog-sync/core/model"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/store"

	"go.uber.org/zap"
)

// Service wires the reconciler, the propagation pipeline and the run-report
// archive behind the HTTP surface.
type Service struct {
	reconciler *reconcile.Reconciler
	pipeline   *export.Pipeline
	store      store.Store
	archive    *archive.Archive
	logger     *zap.Logger
}

// NewService creates a sync service. The archive may be nil when report
// archiving is disabled.
func NewService(reconciler *reconcile.Reconciler, pipeline *export.Pipeline, st store.Store, arch *archive.Archive, logger *zap.Logger) *Service {
	return &Service{
		reconciler: reconciler,
		pipeline:   pipeline,
		store:      st,
		archive:    arch,
		logger:     logger,
	}
}

// Reconcile runs a full reconciliation pass over the scope and archives the
// report when archiving is enabled.
func (s *Service) Reconcile(ctx context.Context, scopeID string) *reconcile.RunReport {
	return s.ReconcileTypes(ctx, scopeID, model.TypeOrder)
}

// ReconcileTypes runs a reconciliation pass restricted to the given asset
// types.
func (s *Service) ReconcileTypes(ctx context.Context, scopeID string, types []model.AssetType) *reconcile.RunReport {
	report := s.reconciler.ReconcileTypes(ctx, scopeID, types)
	s.archiveReport(ctx, scopeID, "reconcile", report.RunID, report)
	return report
}

// Propagate runs a propagation pass over the scope and archives the report.
func (s *Service) Propagate(ctx context.Context, scopeID string, dryRun bool) *export.PropagationReport {
	report := s.pipeline.Propagate(ctx, scopeID, dryRun)
	if !dryRun {
		s.archiveReport(ctx, scopeID, "propagate", report.RunID, report)
	}
	return report
}

// Status returns lifecycle and propagation state counts for the scope.
func (s *Service) Status(ctx context.Context, scopeID string) (map[string]int64, error) {
	return s.store.CountByState(ctx, scopeID)
}

// Reports lists the archived run reports for the scope.
func (s *Service) Reports(ctx context.Context, scopeID string) ([]string, error) {
	if s.archive == nil {
		return nil, nil
	}
	return s.archive.List(ctx, scopeID)
}

// archiveReport stores a run report, logging instead of failing: archiving
// is bookkeeping, not part of the run's outcome.
func (s *Service) archiveReport(ctx context.Context, scopeID, kind, runID string, report any) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Save(ctx, scopeID, kind, runID, report); err != nil {
		s.logger.Warn("failed to archive run report",
			zap.String("scope", scopeID),
			zap.String("kind", kind),
			zap.Error(err))
	}
}
