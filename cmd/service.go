package cmd

import (
	"context"
	"fmt"

	"catalog-sync/core/archive"
	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/export"
	"catalog-sync/core/logger"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/storage"
	"catalog-sync/core/store"
	"catalog-sync/feature/governance"
	"catalog-sync/feature/source"
	"catalog-sync/feature/syncapi"

	"go.uber.org/zap"
)

// buildService wires configuration, logger, store, adapters and archive into
// the sync service shared by the CLI commands and the HTTP server. Overrides
// run after the config is loaded, so command flags can adjust it.
func buildService(ctx context.Context, overrides ...func(*config.Config)) (*syncapi.Service, *config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	for _, override := range overrides {
		override(cfg)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	st := store.NewGormStore(db)
	if err := st.Migrate(); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	var arch *archive.Archive
	if cfg.Sync.ArchiveReports {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		arch = archive.New(client, cfg.Storage.Bucket, l)
		if err := arch.EnsureBucket(ctx); err != nil {
			// Archiving is bookkeeping; a missing bucket should not stop a run.
			l.Warn("report archive unavailable", zap.Error(err))
			arch = nil
		}
	}

	reconciler := reconcile.NewReconciler(source.NewClient(cfg.Source, l), st, l)
	pipeline := export.NewPipeline(st, governance.NewClient(cfg.Governance, l), l)

	return syncapi.NewService(reconciler, pipeline, st, arch, l), cfg, l, nil
}

// resolveScopes returns the explicit scope when given, otherwise the
// configured scope list.
func resolveScopes(cfg *config.Config, scope string) ([]string, error) {
	if scope != "" {
		return []string{scope}, nil
	}
	scopes := cfg.Sync.ScopeList()
	if len(scopes) == 0 {
		return nil, fmt.Errorf("no scope given and sync.scopes is empty")
	}
	return scopes, nil
}
