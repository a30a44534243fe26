package syncapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"catalog-sync/core/export"
	"catalog-sync/core/model"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubSource serves a fixed set of normalized records per asset type.
type stubSource struct {
	records map[model.AssetType][]reconcile.NormalizedRecord
	err     error
}

func (s *stubSource) Fetch(_ context.Context, assetType model.AssetType, _ string) ([]reconcile.NormalizedRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records[assetType], nil
}

// acceptAllTarget acknowledges every asset it is handed.
type acceptAllTarget struct{}

func (acceptAllTarget) UpsertBatch(_ context.Context, assets []export.MappedAsset) (*export.BatchResult, error) {
	outcomes := make([]export.AssetOutcome, len(assets))
	for i, asset := range assets {
		outcomes[i] = export.AssetOutcome{Identifier: asset.Identifier}
	}
	return &export.BatchResult{Outcomes: outcomes}, nil
}

func (acceptAllTarget) ResolveIdentifier(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (acceptAllTarget) Delete(context.Context, string) error { return nil }

func newTestApp(source reconcile.Source) (*fiber.App, store.Store) {
	logger := zap.NewNop()
	st := store.NewMemoryStore()
	service := NewService(
		reconcile.NewReconciler(source, st, logger),
		export.NewPipeline(st, acceptAllTarget{}, logger),
		st, nil, logger)

	app := fiber.New()
	NewHandler(service).RegisterRoutes(app)
	return app, st
}

func projectSource() *stubSource {
	return &stubSource{records: map[model.AssetType][]reconcile.NormalizedRecord{
		model.TypeProject: {{
			Type:              model.TypeProject,
			ID:                "P1",
			Name:              "Finance",
			Fields:            map[string]string{"name": "Finance"},
			FingerprintFields: []string{"P1", "Finance"},
		}},
	}}
}

func TestHandleReconcile(t *testing.T) {
	app, st := newTestApp(projectSource())

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/reconcile/site-a", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report reconcile.RunReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "site-a", report.ScopeID)
	assert.NotEmpty(t, report.RunID)

	stored, err := st.GetByNaturalKey(context.Background(), model.NaturalKey{
		Type: model.TypeProject, AssetID: "P1", ScopeID: "site-a",
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.LifecycleNew, stored.LifecycleState)
}

func TestHandleReconcile_SourceFailure(t *testing.T) {
	app, _ := newTestApp(&stubSource{err: errors.New("source unavailable")})

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/reconcile/site-a", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var report reconcile.RunReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.NotEmpty(t, report.Failed)
}

func TestHandlePropagate(t *testing.T) {
	app, st := newTestApp(projectSource())

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/reconcile/site-a", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/sync/propagate/site-a", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report export.PropagationReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.True(t, report.Success)
	assert.False(t, report.DryRun)

	stored, err := st.GetByNaturalKey(context.Background(), model.NaturalKey{
		Type: model.TypeProject, AssetID: "P1", ScopeID: "site-a",
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.PropagationSynced, stored.PropagationState)
}

func TestHandlePropagate_DryRun(t *testing.T) {
	app, st := newTestApp(projectSource())

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/reconcile/site-a", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/sync/propagate/site-a?dry_run=true", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report export.PropagationReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.True(t, report.DryRun)

	stored, err := st.GetByNaturalKey(context.Background(), model.NaturalKey{
		Type: model.TypeProject, AssetID: "P1", ScopeID: "site-a",
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.PropagationNotSynced, stored.PropagationState)
}

func TestHandleStatus(t *testing.T) {
	app, _ := newTestApp(projectSource())

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/reconcile/site-a", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/sync/status/site-a", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var counts map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&counts))
	assert.Equal(t, int64(1), counts["lifecycle:NEW"])
	assert.Equal(t, int64(1), counts["propagation:NOT_SYNCED"])
}

func TestHandleReports_ArchivingDisabled(t *testing.T) {
	app, _ := newTestApp(projectSource())

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/reports/site-a", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var reports []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reports))
	assert.Empty(t, reports)
}
