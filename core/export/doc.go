// Package export propagates reconciled local state to the downstream
// governance catalog.
//
// # Components
//
//   - Identifier: deterministic, hierarchy-encoded identifier built from the
//     scope, the ancestor chain and the record's own natural key and name.
//     Identical across runs, so resubmission upserts instead of duplicating.
//   - Mapper: turns a local record plus its resolved ancestors into the
//     downstream asset representation with typed relations.
//   - Pipeline: drives the two-phase export. All asset types upsert in
//     dependency order first; deletions are deferred to a second phase so
//     relations submitted during the run never reference an already-deleted
//     asset.
//
// Sync bookkeeping lives in the records' propagation state: the pipeline
// only ever advances it to SYNCED after a confirmed downstream call, leaving
// failed records pending so the next run naturally retries them.
package export
