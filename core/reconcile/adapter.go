package reconcile

import (
	"context"
	"fmt"

	"catalog-sync/core/model"
)

// Source fetches normalized records from the source catalog. Implementations
// handle pagination, authentication and retries internally and return the
// complete set for one asset type in one scope.
type Source interface {
	// Fetch returns every record of the given type currently present in the
	// scope. A returned error aborts the reconciliation pass for that type
	// with no local state mutated.
	Fetch(ctx context.Context, assetType model.AssetType, scopeID string) ([]NormalizedRecord, error)
}

// NormalizedRecord is one source asset flattened at the adapter boundary.
// The core never sees the source API's raw shape.
type NormalizedRecord struct {
	// Type is the asset type this record belongs to.
	Type model.AssetType `json:"type"`

	// ID is the source catalog's stable identifier for the asset.
	ID string `json:"id"`

	// WorksheetID scopes report attributes to the worksheet they appear on.
	// Empty for every other type.
	WorksheetID string `json:"worksheet_id,omitempty"`

	// Name is the display name.
	Name string `json:"name"`

	// Fields holds the type-specific descriptive metadata to persist.
	Fields map[string]string `json:"fields,omitempty"`

	// FingerprintFields are the fingerprint-relevant values in their fixed
	// per-type order. Volatile values (timestamps, counters) are excluded by
	// the adapter.
	FingerprintFields []string `json:"fingerprint_fields"`

	// ParentType/ParentID is the containment edge, already resolved by the
	// adapter. Both empty when the asset has no parent (server records,
	// published datasources).
	ParentType model.AssetType `json:"parent_type,omitempty"`
	ParentID   string          `json:"parent_id,omitempty"`

	// DataSourceID is the cross edge for report attributes.
	DataSourceID string `json:"datasource_id,omitempty"`
}

// Validate reports why the record cannot be mapped to a local record, or nil.
func (r NormalizedRecord) Validate() error {
	if !r.Type.IsValid() {
		return fmt.Errorf("unknown asset type %q", r.Type)
	}
	if r.ID == "" {
		return fmt.Errorf("%s record has no id", r.Type)
	}
	if r.Type == model.TypeReportAttribute && r.WorksheetID == "" {
		return fmt.Errorf("report attribute %s has no worksheet", r.ID)
	}
	if r.Type != model.TypeReportAttribute && r.WorksheetID != "" {
		return fmt.Errorf("%s record %s carries a worksheet scope", r.Type, r.ID)
	}
	return nil
}

// Key returns the natural key the record maps to within a scope.
func (r NormalizedRecord) Key(scopeID string) model.NaturalKey {
	return model.NaturalKey{
		Type:        r.Type,
		AssetID:     r.ID,
		WorksheetID: r.WorksheetID,
		ScopeID:     scopeID,
	}
}
