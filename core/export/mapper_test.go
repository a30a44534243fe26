package export

import (
	"context"
	"testing"

	"catalog-sync/core/model"
	"catalog-sync/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedHierarchy(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()
	records := []*model.AssetRecord{
		{Type: model.TypeSite, AssetID: "S1", ScopeID: "site-a", Name: "Main"},
		{Type: model.TypeProject, AssetID: "P1", ScopeID: "site-a", Name: "Sales",
			ParentType: model.TypeSite, ParentID: "S1"},
		{Type: model.TypeWorkbook, AssetID: "WB1", ScopeID: "site-a", Name: "Revenue",
			ParentType: model.TypeProject, ParentID: "P1",
			Metadata: map[string]string{"owner": "alice", "description": ""}},
		{Type: model.TypeWorksheet, AssetID: "WS1", ScopeID: "site-a", Name: "Overview",
			ParentType: model.TypeWorkbook, ParentID: "WB1"},
		{Type: model.TypeDataSource, AssetID: "DS1", ScopeID: "site-a", Name: "Warehouse",
			ParentType: model.TypeWorkbook, ParentID: "WB1"},
		{Type: model.TypeReportAttribute, AssetID: "F1", WorksheetID: "WS1", ScopeID: "site-a",
			Name: "Total Sales", ParentType: model.TypeWorksheet, ParentID: "WS1",
			DataSourceID: "DS1",
			Metadata:     map[string]string{"data_type": "REAL", "formula": "  "}},
	}
	for _, rec := range records {
		rec.LifecycleState = model.LifecycleActive
		require.NoError(t, st.Upsert(ctx, rec))
	}
}

func TestIdentifier_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seedHierarchy(t, st)

	rec, err := st.GetByNaturalKey(ctx, model.NaturalKey{Type: model.TypeWorkbook, AssetID: "WB1", ScopeID: "site-a"})
	require.NoError(t, err)

	first, err := AncestorChain(ctx, st, rec)
	require.NoError(t, err)
	second, err := AncestorChain(ctx, st, rec)
	require.NoError(t, err)

	assert.Equal(t, Identifier(rec, first), Identifier(rec, second))
	assert.Equal(t, "site-a > site:S1 > project:P1 > workbook:WB1 > Revenue", Identifier(rec, first))
}

func TestMap_Workbook(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seedHierarchy(t, st)
	mapper := NewMapper(st)

	rec, _ := st.GetByNaturalKey(ctx, model.NaturalKey{Type: model.TypeWorkbook, AssetID: "WB1", ScopeID: "site-a"})
	asset, err := mapper.Map(ctx, rec)
	require.NoError(t, err)

	assert.Equal(t, "Revenue", asset.Name)
	assert.Equal(t, "workbook", asset.Type)
	// Blank values are omitted, not sent as empty strings.
	assert.Equal(t, map[string]string{"owner": "alice"}, asset.Attributes)
	require.Len(t, asset.Relations, 1)
	assert.Equal(t, RelationContains, asset.Relations[0].Type)
	assert.Equal(t, "site-a > site:S1 > project:P1 > Sales", asset.Relations[0].Target)
}

func TestMap_ReportAttributeSourcesFrom(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seedHierarchy(t, st)
	mapper := NewMapper(st)

	rec, _ := st.GetByNaturalKey(ctx, model.NaturalKey{
		Type: model.TypeReportAttribute, AssetID: "F1", WorksheetID: "WS1", ScopeID: "site-a"})
	asset, err := mapper.Map(ctx, rec)
	require.NoError(t, err)

	// Whitespace-only formula is omitted.
	assert.Equal(t, map[string]string{"data_type": "REAL"}, asset.Attributes)

	require.Len(t, asset.Relations, 2)
	assert.Equal(t, RelationContains, asset.Relations[0].Type)
	assert.Equal(t, RelationSourcesFrom, asset.Relations[1].Type)
	assert.Contains(t, asset.Relations[1].Target, "datasource:DS1")
}

func TestMap_OrphanOmitsParentRelation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	orphan := &model.AssetRecord{
		Type: model.TypeProject, AssetID: "P9", ScopeID: "site-a", Name: "Orphan",
		LifecycleState: model.LifecycleNew,
		ParentType:     model.TypeProject, ParentID: "never-ingested",
	}
	require.NoError(t, st.Upsert(ctx, orphan))

	asset, err := NewMapper(st).Map(ctx, orphan)
	require.NoError(t, err)
	assert.Empty(t, asset.Relations)
	assert.Equal(t, "site-a > project:P9 > Orphan", asset.Identifier)
}
