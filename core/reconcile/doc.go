// Package reconcile mirrors the source catalog's asset hierarchy into the
// local store with full change tracking.
//
// The source has no change feed, so change detection is fingerprint-based:
// each fetched record is digested over its semantically meaningful fields and
// classified against the stored digest (NEW / UPDATED / ACTIVE). Records
// absent from the latest fetch are soft-deleted, and deletion cascades down
// the hierarchy edges so dependents are marked within the same cycle.
//
// # Architecture
//
// 1. Source: the adapter boundary. Returns normalized, typed records per
// asset type and scope; pagination, auth and retries live behind it.
//
// 2. Reconciler: walks one asset type per pass, classifies and upserts every
// record, tracks seen natural keys, and runs the absence check.
//
// 3. Cascade: recursive soft-delete walk over the hierarchy edges
// (server -> site -> project -> workbook -> {worksheet, datasource} ->
// report attribute).
//
// Records are never physically deleted. DELETED is a tombstone that keeps
// history and lets the propagation pipeline tell the downstream catalog
// about removals.
package reconcile
