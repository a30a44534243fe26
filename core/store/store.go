package store

import (
	"context"

	"catalog-sync/core/model"
)

// Store is the durable asset store. It performs no change detection of its
// own; the reconciler decides what to write and the pipeline decides what to
// read.
type Store interface {
	// GetByNaturalKey returns the record with the given key, or nil when no
	// such record exists.
	GetByNaturalKey(ctx context.Context, key model.NaturalKey) (*model.AssetRecord, error)

	// GetAllActive returns every non-DELETED record of one type in a scope.
	GetAllActive(ctx context.Context, assetType model.AssetType, scopeID string) ([]*model.AssetRecord, error)

	// ListByLifecycle returns every record of one type in a scope that is in
	// one of the given lifecycle states. DELETED records are included when
	// asked for, unlike GetAllActive.
	ListByLifecycle(ctx context.Context, assetType model.AssetType, scopeID string, states ...model.Lifecycle) ([]*model.AssetRecord, error)

	// ListChildren returns the non-DELETED records of childType whose parent
	// edge points at the given parent record. Used by the cascade walk.
	ListChildren(ctx context.Context, childType model.AssetType, parentType model.AssetType, parentID, scopeID string) ([]*model.AssetRecord, error)

	// Upsert writes the record keyed by its natural key: an existing row is
	// updated in place, otherwise a new row is created. Re-ingesting the same
	// source asset never creates a duplicate.
	Upsert(ctx context.Context, record *model.AssetRecord) error

	// CountByState returns lifecycle and propagation state counts for one
	// scope, keyed by state name.
	CountByState(ctx context.Context, scopeID string) (map[string]int64, error)
}
