package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"catalog-sync/core/model"
)

// MemoryStore is an in-memory Store used by tests and dry runs. It applies
// the same natural-key upsert semantics as the gorm implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[model.NaturalKey]*model.AssetRecord
	nextID  uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[model.NaturalKey]*model.AssetRecord), nextID: 1}
}

func (s *MemoryStore) GetByNaturalKey(_ context.Context, key model.NaturalKey) (*model.AssetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) GetAllActive(_ context.Context, assetType model.AssetType, scopeID string) ([]*model.AssetRecord, error) {
	return s.filter(func(r *model.AssetRecord) bool {
		return r.Type == assetType && r.ScopeID == scopeID && r.LifecycleState != model.LifecycleDeleted
	}), nil
}

func (s *MemoryStore) ListByLifecycle(_ context.Context, assetType model.AssetType, scopeID string, states ...model.Lifecycle) ([]*model.AssetRecord, error) {
	wanted := make(map[model.Lifecycle]bool, len(states))
	for _, st := range states {
		wanted[st] = true
	}
	return s.filter(func(r *model.AssetRecord) bool {
		return r.Type == assetType && r.ScopeID == scopeID && wanted[r.LifecycleState]
	}), nil
}

func (s *MemoryStore) ListChildren(_ context.Context, childType model.AssetType, parentType model.AssetType, parentID, scopeID string) ([]*model.AssetRecord, error) {
	return s.filter(func(r *model.AssetRecord) bool {
		return r.Type == childType && r.ParentType == parentType && r.ParentID == parentID &&
			r.ScopeID == scopeID && r.LifecycleState != model.LifecycleDeleted
	}), nil
}

func (s *MemoryStore) Upsert(_ context.Context, record *model.AssetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := record.Key()
	now := time.Now()
	if existing, ok := s.records[key]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		record.ID = s.nextID
		s.nextID++
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	cp := *record
	s.records[key] = &cp
	return nil
}

func (s *MemoryStore) CountByState(_ context.Context, scopeID string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, r := range s.records {
		if r.ScopeID != scopeID {
			continue
		}
		counts["lifecycle:"+string(r.LifecycleState)]++
		counts["propagation:"+string(r.PropagationState)]++
	}
	return counts, nil
}

func (s *MemoryStore) filter(keep func(*model.AssetRecord) bool) []*model.AssetRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.AssetRecord
	for _, r := range s.records {
		if keep(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out
}
