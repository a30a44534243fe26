package store

import (
	"context"
	"errors"
	"fmt"

	"catalog-sync/core/model"

	"gorm.io/gorm"
)

// GormStore implements Store on top of a gorm MySQL connection.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by the given connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the asset_records table.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&model.AssetRecord{})
}

func (s *GormStore) GetByNaturalKey(ctx context.Context, key model.NaturalKey) (*model.AssetRecord, error) {
	var rec model.AssetRecord
	err := s.db.WithContext(ctx).
		Where("type = ? AND asset_id = ? AND worksheet_id = ? AND scope_id = ?",
			key.Type, key.AssetID, key.WorksheetID, key.ScopeID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return &rec, nil
}

func (s *GormStore) GetAllActive(ctx context.Context, assetType model.AssetType, scopeID string) ([]*model.AssetRecord, error) {
	var recs []*model.AssetRecord
	err := s.db.WithContext(ctx).
		Where("type = ? AND scope_id = ? AND lifecycle_state <> ?",
			assetType, scopeID, model.LifecycleDeleted).
		Order("asset_id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list active %s in %s: %w", assetType, scopeID, err)
	}
	return recs, nil
}

func (s *GormStore) ListByLifecycle(ctx context.Context, assetType model.AssetType, scopeID string, states ...model.Lifecycle) ([]*model.AssetRecord, error) {
	var recs []*model.AssetRecord
	err := s.db.WithContext(ctx).
		Where("type = ? AND scope_id = ? AND lifecycle_state IN ?", assetType, scopeID, states).
		Order("asset_id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list %s by lifecycle in %s: %w", assetType, scopeID, err)
	}
	return recs, nil
}

func (s *GormStore) ListChildren(ctx context.Context, childType model.AssetType, parentType model.AssetType, parentID, scopeID string) ([]*model.AssetRecord, error) {
	var recs []*model.AssetRecord
	err := s.db.WithContext(ctx).
		Where("type = ? AND parent_type = ? AND parent_id = ? AND scope_id = ? AND lifecycle_state <> ?",
			childType, parentType, parentID, scopeID, model.LifecycleDeleted).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list children of %s/%s: %w", parentType, parentID, err)
	}
	return recs, nil
}

func (s *GormStore) Upsert(ctx context.Context, record *model.AssetRecord) error {
	existing, err := s.GetByNaturalKey(ctx, record.Key())
	if err != nil {
		return err
	}
	if existing != nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	}
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("upsert %s: %w", record.Key(), err)
	}
	return nil
}

func (s *GormStore) CountByState(ctx context.Context, scopeID string) (map[string]int64, error) {
	type row struct {
		LifecycleState   string
		PropagationState string
		N                int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&model.AssetRecord{}).
		Select("lifecycle_state, propagation_state, count(*) as n").
		Where("scope_id = ?", scopeID).
		Group("lifecycle_state, propagation_state").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count states in %s: %w", scopeID, err)
	}
	counts := make(map[string]int64)
	for _, r := range rows {
		counts["lifecycle:"+r.LifecycleState] += r.N
		counts["propagation:"+r.PropagationState] += r.N
	}
	return counts, nil
}
