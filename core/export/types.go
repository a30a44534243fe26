package export

import (
	"context"
	"time"
)

// Relation types used in the downstream catalog's relation model.
const (
	RelationContains    = "contains"
	RelationSourcesFrom = "sources from"
)

// Relation is a typed edge from a mapped asset to another asset's
// deterministic identifier.
type Relation struct {
	// Type is the relation type tag.
	Type string `json:"type"`

	// Target is the deterministic identifier of the related asset.
	Target string `json:"target"`
}

// MappedAsset is the downstream catalog's representation of one local record.
type MappedAsset struct {
	// Identifier is the deterministic, hierarchy-encoded identifier. It is
	// stable across runs, so resubmission is an upsert, never a duplicate.
	Identifier string `json:"identifier"`

	// Name is the display name.
	Name string `json:"name"`

	// Type is the downstream asset type tag.
	Type string `json:"type"`

	// Attributes holds non-empty attribute values. Blank source values are
	// omitted, never sent as empty strings.
	Attributes map[string]string `json:"attributes,omitempty"`

	// Relations are the typed edges to related assets.
	Relations []Relation `json:"relations,omitempty"`
}

// AssetOutcome is the downstream result for one asset in a batch.
type AssetOutcome struct {
	// Identifier is the asset the outcome refers to.
	Identifier string `json:"identifier"`

	// Error is empty on success.
	Error string `json:"error,omitempty"`
}

// OK reports whether the asset was accepted.
func (o AssetOutcome) OK() bool {
	return o.Error == ""
}

// BatchResult is the downstream response to one batch upsert call.
type BatchResult struct {
	Outcomes []AssetOutcome `json:"outcomes"`
}

// Target is the downstream governance catalog adapter.
type Target interface {
	// UpsertBatch submits one batch of mapped assets and returns a per-asset
	// outcome. The call-level error covers transport failures only.
	UpsertBatch(ctx context.Context, assets []MappedAsset) (*BatchResult, error)

	// ResolveIdentifier resolves a deterministic identifier to the
	// downstream internal id. Returns ok=false when the asset is absent.
	ResolveIdentifier(ctx context.Context, identifier string) (internalID string, ok bool, err error)

	// Delete removes the asset with the given internal id.
	Delete(ctx context.Context, internalID string) error
}

// TypeResult summarizes the pipeline outcome for one asset type.
type TypeResult struct {
	Type     string `json:"type"`
	Upserted int    `json:"upserted"`
	Deleted  int    `json:"deleted"`
	Skipped  int    `json:"skipped"`

	// Errors holds per-record and per-batch failure descriptions. Affected
	// records keep their PENDING_* state and are retried on the next run.
	Errors []string `json:"errors,omitempty"`
}

// PropagationReport aggregates one propagation run over a scope.
type PropagationReport struct {
	RunID     string        `json:"run_id"`
	ScopeID   string        `json:"scope_id"`
	DryRun    bool          `json:"dry_run,omitempty"`
	PerType   []TypeResult  `json:"per_type"`
	Success   bool          `json:"success"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}
