package export

import (
	"context"
	"time"

	"catalog-sync/core/model"
	"catalog-sync/core/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pipeline drives the two-phase export of local state to the downstream
// governance catalog: every asset type's pending upserts are submitted in
// dependency order first, and deletions are deferred until all upsert phases
// have completed. The downstream catalog resolves relations by identifier at
// upsert time, so deleting a parent before a still-unprocessed child has
// (re-)established its relation would silently drop that relation.
type Pipeline struct {
	store  store.Store
	target Target
	mapper *Mapper
	logger *zap.Logger
}

// NewPipeline creates a propagation pipeline over the given store and target.
func NewPipeline(st store.Store, target Target, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:  st,
		target: target,
		mapper: NewMapper(st),
		logger: logger,
	}
}

// pendingDelete carries a deferred deletion through to the second phase.
type pendingDelete struct {
	record     *model.AssetRecord
	identifier string
}

// Propagate runs one full propagation pass for a scope.
//
// Per type: records pending an upsert (NEW/UPDATED lifecycle, not yet
// confirmed SYNCED) are mapped and submitted as one batch; records pending
// deletion are collected for the deferred phase. A failed batch for one type
// leaves its records pending and does not block later types. Deferred
// deletions run at the end even when an upsert stage failed, so the
// downstream catalog is not left holding stale assets.
//
// With dryRun set, no downstream call is made and no state advances; the
// report carries the planned counts.
func (p *Pipeline) Propagate(ctx context.Context, scopeID string, dryRun bool) *PropagationReport {
	report := &PropagationReport{
		RunID:     uuid.NewString(),
		ScopeID:   scopeID,
		DryRun:    dryRun,
		Success:   true,
		StartedAt: time.Now(),
	}

	var deferred []pendingDelete
	deferredByType := make(map[model.AssetType][]pendingDelete)

	// Phase one: upserts in dependency order, deletions collected.
	for _, assetType := range model.TypeOrder {
		result := TypeResult{Type: string(assetType)}

		records, err := p.store.ListByLifecycle(ctx, assetType, scopeID,
			model.LifecycleNew, model.LifecycleUpdated, model.LifecycleActive, model.LifecycleDeleted)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			report.Success = false
			report.PerType = append(report.PerType, result)
			continue
		}

		var toUpsert []*model.AssetRecord
		for _, rec := range records {
			switch {
			case rec.LifecycleState == model.LifecycleDeleted:
				if rec.PropagationState == model.PropagationPendingDelete {
					del, err := p.collectDelete(ctx, rec)
					if err != nil {
						result.Errors = append(result.Errors, err.Error())
						continue
					}
					deferredByType[assetType] = append(deferredByType[assetType], del)
				} else {
					// Tombstone the downstream catalog never saw.
					result.Skipped++
				}
			case rec.PropagationState == model.PropagationSynced:
				// Already confirmed synced and untouched since.
				result.Skipped++
			case rec.LifecycleState == model.LifecycleActive:
				result.Skipped++
			default:
				toUpsert = append(toUpsert, rec)
			}
		}

		p.upsertBatch(ctx, orderForSubmission(toUpsert), dryRun, &result)
		if len(result.Errors) > 0 {
			report.Success = false
		}
		report.PerType = append(report.PerType, result)
	}

	// Phase two: deferred deletions, leaves first so containment edges
	// disappear bottom-up in operator-visible order.
	for i := len(model.TypeOrder) - 1; i >= 0; i-- {
		deferred = append(deferred, deferredByType[model.TypeOrder[i]]...)
	}
	p.deleteDeferred(ctx, deferred, dryRun, report)

	report.Duration = time.Since(report.StartedAt)
	return report
}

// upsertBatch maps and submits one type's pending records, then advances
// propagation state for every asset the downstream confirmed.
func (p *Pipeline) upsertBatch(ctx context.Context, records []*model.AssetRecord, dryRun bool, result *TypeResult) {
	if len(records) == 0 {
		return
	}

	assets := make([]MappedAsset, 0, len(records))
	byIdentifier := make(map[string]*model.AssetRecord, len(records))
	for _, rec := range records {
		asset, err := p.mapper.Map(ctx, rec)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		assets = append(assets, *asset)
		byIdentifier[asset.Identifier] = rec
	}
	if len(assets) == 0 {
		return
	}

	if dryRun {
		result.Upserted += len(assets)
		return
	}

	batch, err := p.target.UpsertBatch(ctx, assets)
	if err != nil {
		// Records stay pending and retry on the next run.
		result.Errors = append(result.Errors, err.Error())
		return
	}

	for _, outcome := range batch.Outcomes {
		rec, ok := byIdentifier[outcome.Identifier]
		if !ok {
			continue
		}
		if !outcome.OK() {
			result.Errors = append(result.Errors, outcome.Identifier+": "+outcome.Error)
			continue
		}
		rec.PropagationState = model.PropagationSynced
		if err := p.store.Upsert(ctx, rec); err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Upserted++
	}
}

// collectDelete computes the identifier a tombstoned record was exported
// under, for the deferred delete phase.
func (p *Pipeline) collectDelete(ctx context.Context, rec *model.AssetRecord) (pendingDelete, error) {
	ancestors, err := AncestorChain(ctx, p.store, rec)
	if err != nil {
		return pendingDelete{}, err
	}
	return pendingDelete{record: rec, identifier: Identifier(rec, ancestors)}, nil
}

// deleteDeferred resolves and deletes the accumulated identifiers. An
// identifier the downstream no longer knows is a no-op success: the asset is
// already gone, which is the desired end state.
func (p *Pipeline) deleteDeferred(ctx context.Context, deferred []pendingDelete, dryRun bool, report *PropagationReport) {
	resultFor := func(t string) *TypeResult {
		for i := range report.PerType {
			if report.PerType[i].Type == t {
				return &report.PerType[i]
			}
		}
		report.PerType = append(report.PerType, TypeResult{Type: t})
		return &report.PerType[len(report.PerType)-1]
	}

	for _, del := range deferred {
		result := resultFor(string(del.record.Type))

		if dryRun {
			result.Deleted++
			continue
		}

		internalID, ok, err := p.target.ResolveIdentifier(ctx, del.identifier)
		if err != nil {
			result.Errors = append(result.Errors, del.identifier+": "+err.Error())
			report.Success = false
			continue
		}
		if ok {
			if err := p.target.Delete(ctx, internalID); err != nil {
				result.Errors = append(result.Errors, del.identifier+": "+err.Error())
				report.Success = false
				continue
			}
		}

		// SYNCED doubles as "this lifecycle event has been communicated".
		del.record.PropagationState = model.PropagationSynced
		if err := p.store.Upsert(ctx, del.record); err != nil {
			result.Errors = append(result.Errors, err.Error())
			report.Success = false
			continue
		}
		result.Deleted++

		p.logger.Debug("deleted downstream",
			zap.String("identifier", del.identifier),
			zap.Bool("resolved", ok))
	}
}

// orderForSubmission sorts one type's batch so parents precede children when
// both are in the batch (nested projects). Best-effort only: relation
// resolution is by stable identifier regardless of submission order.
func orderForSubmission(records []*model.AssetRecord) []*model.AssetRecord {
	if len(records) < 2 {
		return records
	}
	// Keyed by the full natural key: report attributes share an asset id
	// across worksheets and must each be submitted.
	inBatch := make(map[string]int, len(records))
	for i, rec := range records {
		inBatch[rec.Key().String()] = i
	}

	var ordered []*model.AssetRecord
	visited := make(map[string]bool, len(records))
	var visit func(rec *model.AssetRecord)
	visit = func(rec *model.AssetRecord) {
		key := rec.Key().String()
		if visited[key] {
			return
		}
		visited[key] = true
		if rec.ParentType == rec.Type {
			parentKey := model.NaturalKey{Type: rec.Type, AssetID: rec.ParentID, ScopeID: rec.ScopeID}
			if idx, ok := inBatch[parentKey.String()]; ok {
				visit(records[idx])
			}
		}
		ordered = append(ordered, rec)
	}
	for _, rec := range records {
		visit(rec)
	}
	return ordered
}
