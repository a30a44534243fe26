package reconcile

import (
	"context"
	"fmt"
	"testing"

	"catalog-sync/core/model"
	"catalog-sync/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// seedSubtree stores one ACTIVE project containing workbooks x worksheets,
// one report attribute per worksheet, plus a nested child project.
func seedSubtree(t *testing.T, st store.Store, workbooks, worksheets int) *model.AssetRecord {
	t.Helper()
	ctx := context.Background()

	project := &model.AssetRecord{
		Type: model.TypeProject, AssetID: "P1", ScopeID: "site-a", Name: "Sales",
		LifecycleState: model.LifecycleActive, PropagationState: model.PropagationSynced,
		ParentType: model.TypeSite, ParentID: "S1",
	}
	require.NoError(t, st.Upsert(ctx, project))

	nested := &model.AssetRecord{
		Type: model.TypeProject, AssetID: "P2", ScopeID: "site-a", Name: "Sales Sub",
		LifecycleState: model.LifecycleActive, PropagationState: model.PropagationSynced,
		ParentType: model.TypeProject, ParentID: "P1",
	}
	require.NoError(t, st.Upsert(ctx, nested))

	for w := 0; w < workbooks; w++ {
		wbID := fmt.Sprintf("WB%d", w)
		require.NoError(t, st.Upsert(ctx, &model.AssetRecord{
			Type: model.TypeWorkbook, AssetID: wbID, ScopeID: "site-a",
			LifecycleState: model.LifecycleActive, PropagationState: model.PropagationSynced,
			ParentType: model.TypeProject, ParentID: "P1",
		}))
		for s := 0; s < worksheets; s++ {
			wsID := fmt.Sprintf("WS%d-%d", w, s)
			require.NoError(t, st.Upsert(ctx, &model.AssetRecord{
				Type: model.TypeWorksheet, AssetID: wsID, ScopeID: "site-a",
				LifecycleState: model.LifecycleActive, PropagationState: model.PropagationSynced,
				ParentType: model.TypeWorkbook, ParentID: wbID,
			}))
			require.NoError(t, st.Upsert(ctx, &model.AssetRecord{
				Type: model.TypeReportAttribute, AssetID: fmt.Sprintf("F%d-%d", w, s),
				WorksheetID: wsID, ScopeID: "site-a",
				LifecycleState: model.LifecycleActive, PropagationState: model.PropagationSynced,
				ParentType: model.TypeWorksheet, ParentID: wsID,
			}))
		}
	}
	return project
}

func TestCascade_Completeness(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	project := seedSubtree(t, st, 3, 2)

	cascade := NewCascade(st, zap.NewNop())
	deleted, err := cascade.SoftDelete(ctx, project)
	require.NoError(t, err)

	// P1 + nested P2 + 3 workbooks + 3*2 worksheets + 3*2 attributes.
	assert.Equal(t, 1+1+3+6+6, deleted)

	for _, assetType := range model.TypeOrder {
		active, err := st.GetAllActive(ctx, assetType, "site-a")
		require.NoError(t, err)
		assert.Empty(t, active, "no %s should stay active", assetType)
	}

	// Everything synced before is now queued for downstream deletion.
	attrs, err := st.ListByLifecycle(ctx, model.TypeReportAttribute, "site-a", model.LifecycleDeleted)
	require.NoError(t, err)
	require.Len(t, attrs, 6)
	for _, attr := range attrs {
		assert.Equal(t, model.PropagationPendingDelete, attr.PropagationState)
	}
}

func TestCascade_NeverSyncedNeedsNoDelete(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	rec := &model.AssetRecord{
		Type: model.TypeProject, AssetID: "P9", ScopeID: "site-a",
		LifecycleState: model.LifecycleNew, PropagationState: model.PropagationNotSynced,
	}
	require.NoError(t, st.Upsert(ctx, rec))

	cascade := NewCascade(st, zap.NewNop())
	deleted, err := cascade.SoftDelete(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	stored, _ := st.GetByNaturalKey(ctx, rec.Key())
	assert.Equal(t, model.LifecycleDeleted, stored.LifecycleState)
	// The downstream catalog never saw it, so nothing is queued.
	assert.Equal(t, model.PropagationNotSynced, stored.PropagationState)
}

func TestCascade_AlreadyDeletedIsNoop(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	rec := &model.AssetRecord{
		Type: model.TypeProject, AssetID: "P1", ScopeID: "site-a",
		LifecycleState: model.LifecycleDeleted, PropagationState: model.PropagationPendingDelete,
	}
	require.NoError(t, st.Upsert(ctx, rec))

	cascade := NewCascade(st, zap.NewNop())
	deleted, err := cascade.SoftDelete(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}
