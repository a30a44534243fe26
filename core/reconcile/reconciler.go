package reconcile

import (
	"context"
	"fmt"
	"time"

	"catalog-sync/core/fingerprint"
	"catalog-sync/core/model"
	"catalog-sync/core/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reconciler mirrors one asset type at a time from the source catalog into
// the local store, classifying every record against its stored fingerprint
// and soft-deleting what the source no longer reports.
//
// A single logical writer per scope is assumed: two concurrent passes over
// the same scope would race on the seen-key absence check and could produce
// spurious deletes.
type Reconciler struct {
	source  Source
	store   store.Store
	cascade *Cascade
	logger  *zap.Logger
}

// NewReconciler creates a reconciler over the given source and store.
func NewReconciler(source Source, st store.Store, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		source:  source,
		store:   st,
		cascade: NewCascade(st, logger),
		logger:  logger,
	}
}

// ReconcileType runs one pass for a single asset type and scope.
//
// Every fetched record is classified via its fingerprint and upserted; the
// natural keys seen are tracked, and every active local record whose key was
// not seen is handed to the cascade engine. A per-record mapping error skips
// that record and the pass continues; only a fetch failure aborts the pass.
func (r *Reconciler) ReconcileType(ctx context.Context, assetType model.AssetType, scopeID string) (*Result, error) {
	records, err := r.source.Fetch(ctx, assetType, scopeID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s in %s: %w", assetType, scopeID, err)
	}

	result := &Result{Type: string(assetType)}
	seen := make(map[model.NaturalKey]struct{}, len(records))

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if rec.Type != assetType {
			result.Errors = append(result.Errors, fmt.Sprintf("record %s is a %s, expected %s", rec.ID, rec.Type, assetType))
			continue
		}

		// Seen means present in this fetch. Marked before any store call so
		// a per-record failure leaves the record untouched rather than
		// feeding it into the absence check below.
		key := rec.Key(scopeID)
		seen[key] = struct{}{}

		existing, err := r.store.GetByNaturalKey(ctx, key)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		digest := fingerprint.Digest(rec.FingerprintFields)
		lifecycle := fingerprint.Classify(existing, digest)

		merged := r.merge(existing, rec, key, digest, lifecycle)
		if err := r.store.Upsert(ctx, merged); err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		switch lifecycle {
		case model.LifecycleNew:
			result.New++
		case model.LifecycleUpdated:
			result.Updated++
		default:
			result.Unchanged++
		}
	}

	// Absence check: anything active in the store but missing from this
	// fetch is gone at the source. Cascade so dependents are marked in the
	// same cycle even though their own type's pass may run before or after.
	active, err := r.store.GetAllActive(ctx, assetType, scopeID)
	if err != nil {
		return nil, fmt.Errorf("load active %s in %s: %w", assetType, scopeID, err)
	}
	for _, rec := range active {
		if _, ok := seen[rec.Key()]; ok {
			continue
		}
		deleted, err := r.cascade.SoftDelete(ctx, rec)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Deleted += deleted
	}

	r.logger.Info("reconciled asset type",
		zap.String("type", string(assetType)),
		zap.String("scope", scopeID),
		zap.Int("new", result.New),
		zap.Int("updated", result.Updated),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("deleted", result.Deleted),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// ReconcileScope runs a full pass over every asset type in hierarchy order
// and aggregates a run report. A fetch failure for one type is recorded and
// the remaining types still run.
func (r *Reconciler) ReconcileScope(ctx context.Context, scopeID string) *RunReport {
	return r.ReconcileTypes(ctx, scopeID, model.TypeOrder)
}

// ReconcileTypes runs a pass restricted to the given asset types. Types are
// always processed in hierarchy order regardless of the order given.
func (r *Reconciler) ReconcileTypes(ctx context.Context, scopeID string, types []model.AssetType) *RunReport {
	report := &RunReport{
		RunID:     uuid.NewString(),
		ScopeID:   scopeID,
		StartedAt: time.Now(),
		Failed:    make(map[string]string),
	}

	requested := make(map[model.AssetType]bool, len(types))
	for _, t := range types {
		requested[t] = true
	}

	for _, assetType := range model.TypeOrder {
		if !requested[assetType] {
			continue
		}
		result, err := r.ReconcileType(ctx, assetType, scopeID)
		if err != nil {
			r.logger.Error("reconciliation pass failed",
				zap.String("type", string(assetType)),
				zap.String("scope", scopeID),
				zap.Error(err))
			report.Failed[string(assetType)] = err.Error()
			continue
		}
		report.Results = append(report.Results, *result)
	}

	report.Duration = time.Since(report.StartedAt)
	if len(report.Failed) == 0 {
		report.Failed = nil
	}
	return report
}

// merge builds the record to persist from the fetched fields and, when
// present, the stored row's identity and propagation state.
func (r *Reconciler) merge(existing *model.AssetRecord, rec NormalizedRecord, key model.NaturalKey, digest string, lifecycle model.Lifecycle) *model.AssetRecord {
	current := model.PropagationNotSynced
	if existing != nil {
		current = existing.PropagationState
	}
	next := model.DerivePropagation(lifecycle, current)

	// A revived tombstone that was already queued for deletion downstream
	// must be re-upserted there instead.
	if existing != nil && existing.LifecycleState == model.LifecycleDeleted &&
		next == model.PropagationPendingDelete {
		next = model.PropagationPendingUpdate
	}

	merged := &model.AssetRecord{
		Type:             key.Type,
		AssetID:          key.AssetID,
		WorksheetID:      key.WorksheetID,
		ScopeID:          key.ScopeID,
		Name:             rec.Name,
		Metadata:         rec.Fields,
		Fingerprint:      digest,
		LifecycleState:   lifecycle,
		PropagationState: next,
		ParentType:       rec.ParentType,
		ParentID:         rec.ParentID,
		DataSourceID:     rec.DataSourceID,
	}
	if existing != nil {
		merged.ID = existing.ID
		merged.CreatedAt = existing.CreatedAt
	}
	return merged
}
