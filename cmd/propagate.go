package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	propagateScope  string
	propagateDryRun bool
)

// propagateCmd runs the two-phase export from the command line.
var propagateCmd = &cobra.Command{
	Use:   "propagate",
	Short: "Propagate pending local state to the governance catalog",
	Long: `Export pending records to the downstream governance catalog in
dependency order. Upserts for all asset types run first; deletions are
deferred until every upsert phase has completed.

Examples:
  # Propagate every configured scope
  catalog-sync propagate

  # Plan only, no downstream calls
  catalog-sync propagate --scope site-a --dry-run`,
	RunE: runPropagate,
}

func init() {
	propagateCmd.Flags().StringVar(&propagateScope, "scope", "", "Scope (site) to propagate; defaults to sync.scopes")
	propagateCmd.Flags().BoolVar(&propagateDryRun, "dry-run", false, "Report planned work without calling the downstream catalog")
	RootCmd.AddCommand(propagateCmd)
}

func runPropagate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, cfg, l, err := buildService(ctx)
	if err != nil {
		return err
	}
	defer l.Sync()

	scopes, err := resolveScopes(cfg, propagateScope)
	if err != nil {
		return err
	}

	failed := 0
	for _, scope := range scopes {
		l.Info("Starting propagation", zap.String("scope", scope), zap.Bool("dry_run", propagateDryRun))
		report := svc.Propagate(ctx, scope, propagateDryRun)

		for _, result := range report.PerType {
			l.Info("Type propagated",
				zap.String("scope", scope),
				zap.String("type", result.Type),
				zap.Int("upserted", result.Upserted),
				zap.Int("deleted", result.Deleted),
				zap.Int("skipped", result.Skipped),
				zap.Int("errors", len(result.Errors)))
		}
		if !report.Success {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("propagation failed for %d scope(s)", failed)
	}
	return nil
}
