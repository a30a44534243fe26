package store

import (
	"context"
	"testing"

	"catalog-sync/core/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func recordColumns() []string {
	return []string{"id", "type", "asset_id", "worksheet_id", "scope_id", "name",
		"fingerprint", "lifecycle_state", "propagation_state", "parent_type", "parent_id"}
}

func TestGormGetByNaturalKey(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewGormStore(db)

	rows := sqlmock.NewRows(recordColumns()).
		AddRow(7, "project", "P1", "", "site-a", "Finance", "abc", "ACTIVE", "SYNCED", "site", "S1")
	mock.ExpectQuery("SELECT \\* FROM `asset_records`").WillReturnRows(rows)

	rec, err := st.GetByNaturalKey(context.Background(), model.NaturalKey{
		Type: model.TypeProject, AssetID: "P1", ScopeID: "site-a",
	})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, uint(7), rec.ID)
	assert.Equal(t, "Finance", rec.Name)
	assert.Equal(t, model.PropagationSynced, rec.PropagationState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormGetByNaturalKey_Missing(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewGormStore(db)

	mock.ExpectQuery("SELECT \\* FROM `asset_records`").
		WillReturnRows(sqlmock.NewRows(recordColumns()))

	rec, err := st.GetByNaturalKey(context.Background(), model.NaturalKey{
		Type: model.TypeProject, AssetID: "nope", ScopeID: "site-a",
	})

	// Absence is not an error.
	assert.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUpsert_Insert(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewGormStore(db)

	mock.ExpectQuery("SELECT \\* FROM `asset_records`").
		WillReturnRows(sqlmock.NewRows(recordColumns()))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `asset_records`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rec := &model.AssetRecord{
		Type: model.TypeProject, AssetID: "P1", ScopeID: "site-a",
		Name:           "Finance",
		LifecycleState: model.LifecycleNew, PropagationState: model.PropagationNotSynced,
	}
	require.NoError(t, st.Upsert(context.Background(), rec))
	assert.Equal(t, uint(1), rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUpsert_UpdateKeepsIdentity(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewGormStore(db)

	existing := sqlmock.NewRows(recordColumns()).
		AddRow(7, "project", "P1", "", "site-a", "Finance", "abc", "ACTIVE", "SYNCED", "site", "S1")
	mock.ExpectQuery("SELECT \\* FROM `asset_records`").WillReturnRows(existing)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `asset_records` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := &model.AssetRecord{
		Type: model.TypeProject, AssetID: "P1", ScopeID: "site-a",
		Name:           "Finance Renamed",
		LifecycleState: model.LifecycleUpdated, PropagationState: model.PropagationPendingUpdate,
	}
	require.NoError(t, st.Upsert(context.Background(), rec))

	// The existing row id survives so the natural key stays unique.
	assert.Equal(t, uint(7), rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCountByState(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewGormStore(db)

	rows := sqlmock.NewRows([]string{"lifecycle_state", "propagation_state", "n"}).
		AddRow("ACTIVE", "SYNCED", 5).
		AddRow("UPDATED", "PENDING_UPDATE", 2).
		AddRow("DELETED", "SYNCED", 1)
	mock.ExpectQuery("SELECT lifecycle_state, propagation_state, count\\(\\*\\) as n FROM `asset_records`").
		WillReturnRows(rows)

	counts, err := st.CountByState(context.Background(), "site-a")
	require.NoError(t, err)
	assert.Equal(t, int64(5), counts["lifecycle:ACTIVE"])
	assert.Equal(t, int64(2), counts["lifecycle:UPDATED"])
	assert.Equal(t, int64(6), counts["propagation:SYNCED"])
	assert.Equal(t, int64(2), counts["propagation:PENDING_UPDATE"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
