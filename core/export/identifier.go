package export

import (
	"context"
	"strings"

	"catalog-sync/core/model"
	"catalog-sync/core/store"
)

// segmentSeparator joins identifier path segments. The downstream catalog
// treats the identifier as an opaque string, so the only requirement is
// determinism.
const segmentSeparator = " > "

// maxAncestorDepth bounds the parent walk against malformed parent cycles.
const maxAncestorDepth = 16

// Identifier builds the deterministic, hierarchy-encoded identifier for a
// record given its ancestor chain (outermost first). Re-running over
// unchanged data yields the same string, so downstream submission is an
// upsert rather than a duplicate.
//
// Layout: scope, ancestor ids outermost-first, then the record's own natural
// key and name. Report attributes additionally carry the worksheet they are
// scoped to.
func Identifier(rec *model.AssetRecord, ancestors []*model.AssetRecord) string {
	segments := make([]string, 0, len(ancestors)+2)
	segments = append(segments, rec.ScopeID)
	for _, a := range ancestors {
		segments = append(segments, string(a.Type)+":"+a.AssetID)
	}
	own := string(rec.Type) + ":" + rec.AssetID
	if rec.WorksheetID != "" {
		own += "@" + rec.WorksheetID
	}
	segments = append(segments, own, rec.Name)
	return strings.Join(segments, segmentSeparator)
}

// AncestorChain loads the record's ancestors outermost-first by walking the
// parent edges through the store. The walk tolerates gaps: an unresolvable
// parent (never ingested) simply truncates the chain there.
func AncestorChain(ctx context.Context, st store.Store, rec *model.AssetRecord) ([]*model.AssetRecord, error) {
	var chain []*model.AssetRecord
	parentType, parentID := rec.ParentType, rec.ParentID
	for depth := 0; parentType != "" && parentID != "" && depth < maxAncestorDepth; depth++ {
		parent, err := st.GetByNaturalKey(ctx, model.NaturalKey{
			Type:    parentType,
			AssetID: parentID,
			ScopeID: rec.ScopeID,
		})
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		chain = append([]*model.AssetRecord{parent}, chain...)
		parentType, parentID = parent.ParentType, parent.ParentID
	}
	return chain, nil
}
