package model

import (
	"time"
)

// AssetType identifies one level of the catalog hierarchy.
type AssetType string

const (
	TypeServer          AssetType = "server"
	TypeSite            AssetType = "site"
	TypeProject         AssetType = "project"
	TypeWorkbook        AssetType = "workbook"
	TypeWorksheet       AssetType = "worksheet"
	TypeDataSource      AssetType = "datasource"
	TypeReportAttribute AssetType = "reportattribute"
)

// TypeOrder is the fixed dependency order of asset types: parents before
// children. Reconciliation walks it top-down and the propagation pipeline
// upserts in this order so relations resolve against already-present parents.
var TypeOrder = []AssetType{
	TypeServer,
	TypeSite,
	TypeProject,
	TypeWorkbook,
	TypeWorksheet,
	TypeDataSource,
	TypeReportAttribute,
}

// ChildTypes maps each asset type to the dependent types a soft delete
// cascades into. Nested projects are reached through the Project->Project
// parent edge, so TypeProject lists itself. Published datasources carry no
// parent edge and rely on their own absence check instead of a cascade.
var ChildTypes = map[AssetType][]AssetType{
	TypeServer:    {TypeSite},
	TypeSite:      {TypeProject},
	TypeProject:   {TypeProject, TypeWorkbook},
	TypeWorkbook:  {TypeWorksheet, TypeDataSource},
	TypeWorksheet: {TypeReportAttribute},
}

// IsValid reports whether t is a known asset type.
func (t AssetType) IsValid() bool {
	for _, k := range TypeOrder {
		if t == k {
			return true
		}
	}
	return false
}

// Lifecycle represents the local change-tracking state of an asset.
type Lifecycle string

const (
	// LifecycleNew marks an asset first seen in the latest pass.
	LifecycleNew Lifecycle = "NEW"
	// LifecycleUpdated marks an asset whose fingerprint changed.
	LifecycleUpdated Lifecycle = "UPDATED"
	// LifecycleActive marks an asset whose pending change has been seen
	// unchanged on a subsequent pass.
	LifecycleActive Lifecycle = "ACTIVE"
	// LifecycleDeleted is the tombstone state. Records are never physically
	// removed so the downstream catalog can be told about removals.
	LifecycleDeleted Lifecycle = "DELETED"
)

// Propagation represents whether the asset's lifecycle state has been
// communicated to the downstream governance catalog.
type Propagation string

const (
	PropagationNotSynced     Propagation = "NOT_SYNCED"
	PropagationPendingSync   Propagation = "PENDING_SYNC"
	PropagationSynced        Propagation = "SYNCED"
	PropagationPendingUpdate Propagation = "PENDING_UPDATE"
	PropagationPendingDelete Propagation = "PENDING_DELETE"
)

// NaturalKey uniquely identifies an asset within its scope.
// WorksheetID is empty for every type except report attributes, where the
// same underlying field can recur per worksheet.
type NaturalKey struct {
	Type        AssetType `json:"type"`
	AssetID     string    `json:"asset_id"`
	WorksheetID string    `json:"worksheet_id,omitempty"`
	ScopeID     string    `json:"scope_id"`
}

// String renders the key for logging and set membership.
func (k NaturalKey) String() string {
	s := string(k.Type) + "/" + k.AssetID
	if k.WorksheetID != "" {
		s += "@" + k.WorksheetID
	}
	return s + "#" + k.ScopeID
}

// AssetRecord is the locally mirrored copy of one catalog asset.
// One row per concrete asset, keyed by its natural key.
type AssetRecord struct {
	ID uint `gorm:"primaryKey" json:"-"`

	Type        AssetType `gorm:"size:32;uniqueIndex:idx_natural_key;index:idx_parent" json:"type"`
	AssetID     string    `gorm:"size:128;uniqueIndex:idx_natural_key" json:"asset_id"`
	WorksheetID string    `gorm:"size:128;uniqueIndex:idx_natural_key" json:"worksheet_id,omitempty"`
	ScopeID     string    `gorm:"size:128;uniqueIndex:idx_natural_key;index:idx_parent" json:"scope_id"`

	Name string `gorm:"size:255" json:"name"`

	// Metadata holds the type-specific descriptive fields of the asset
	// (description, owner, content URL, data type, ...).
	Metadata map[string]string `gorm:"serializer:json" json:"metadata,omitempty"`

	// Fingerprint is the hex digest over the fingerprint-relevant fields.
	Fingerprint string `gorm:"size:64" json:"fingerprint"`

	LifecycleState   Lifecycle   `gorm:"size:16;index" json:"lifecycle_state"`
	PropagationState Propagation `gorm:"size:16;index" json:"propagation_state"`

	// ParentType/ParentID form the containment edge used by the cascade
	// walk: Site->Server, Project->Site or Project->Project, Workbook->
	// Project, Worksheet->Workbook, DataSource->Workbook (optional, empty
	// for published datasources), ReportAttribute->Worksheet.
	ParentType AssetType `gorm:"size:32;index:idx_parent" json:"parent_type,omitempty"`
	ParentID   string    `gorm:"size:128;index:idx_parent" json:"parent_id,omitempty"`

	// DataSourceID is the cross edge from a report attribute to the
	// datasource it sources from. Not part of the cascade.
	DataSourceID string `gorm:"size:128" json:"datasource_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name independent of gorm pluralization.
func (AssetRecord) TableName() string {
	return "asset_records"
}

// Key returns the record's natural key.
func (r *AssetRecord) Key() NaturalKey {
	return NaturalKey{
		Type:        r.Type,
		AssetID:     r.AssetID,
		WorksheetID: r.WorksheetID,
		ScopeID:     r.ScopeID,
	}
}
