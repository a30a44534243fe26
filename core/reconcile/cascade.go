package reconcile

import (
	"context"
	"fmt"

	"catalog-sync/core/model"
	"catalog-sync/core/store"

	"go.uber.org/zap"
)

// Cascade soft-deletes a record and, recursively, its dependents.
//
// Absence detection only runs at the top of a hierarchy subtree per pass,
// so the cascade marks children immediately instead of waiting for each
// child type's own absence check.
type Cascade struct {
	store  store.Store
	logger *zap.Logger
}

// NewCascade creates a cascade engine over the given store.
func NewCascade(st store.Store, logger *zap.Logger) *Cascade {
	return &Cascade{store: st, logger: logger}
}

// SoftDelete tombstones the record, derives its propagation state, persists
// it, then walks the hierarchy edges into its dependents. It returns the
// total number of records marked, the given one included.
func (c *Cascade) SoftDelete(ctx context.Context, rec *model.AssetRecord) (int, error) {
	if rec.LifecycleState == model.LifecycleDeleted {
		return 0, nil
	}

	rec.LifecycleState = model.LifecycleDeleted
	rec.PropagationState = model.DerivePropagation(model.LifecycleDeleted, rec.PropagationState)
	if err := c.store.Upsert(ctx, rec); err != nil {
		return 0, fmt.Errorf("soft delete %s: %w", rec.Key(), err)
	}

	c.logger.Debug("soft deleted",
		zap.String("key", rec.Key().String()),
		zap.String("propagation", string(rec.PropagationState)))

	deleted := 1
	for _, childType := range model.ChildTypes[rec.Type] {
		children, err := c.store.ListChildren(ctx, childType, rec.Type, rec.AssetID, rec.ScopeID)
		if err != nil {
			return deleted, err
		}
		for _, child := range children {
			n, err := c.SoftDelete(ctx, child)
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
	}
	return deleted, nil
}
