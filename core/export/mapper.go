package export

import (
	"context"
	"strings"

	"catalog-sync/core/model"
	"catalog-sync/core/store"
)

// Mapper turns local records into the downstream catalog's representation.
type Mapper struct {
	store store.Store
}

// NewMapper creates a mapper that resolves related records from the store.
func NewMapper(st store.Store) *Mapper {
	return &Mapper{store: st}
}

// Map produces the downstream asset for one local record.
//
// Blank attribute values are omitted. A record with no resolvable parent
// (an orphaned nested project, say) still maps successfully, simply without
// the containment relation.
func (m *Mapper) Map(ctx context.Context, rec *model.AssetRecord) (*MappedAsset, error) {
	ancestors, err := AncestorChain(ctx, m.store, rec)
	if err != nil {
		return nil, err
	}

	asset := &MappedAsset{
		Identifier: Identifier(rec, ancestors),
		Name:       rec.Name,
		Type:       string(rec.Type),
	}

	for k, v := range rec.Metadata {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if asset.Attributes == nil {
			asset.Attributes = make(map[string]string)
		}
		asset.Attributes[k] = v
	}

	// Containment relation to the nearest resolvable ancestor.
	if len(ancestors) > 0 {
		parent := ancestors[len(ancestors)-1]
		asset.Relations = append(asset.Relations, Relation{
			Type:   RelationContains,
			Target: Identifier(parent, ancestors[:len(ancestors)-1]),
		})
	}

	// Cross edge: report attribute sources from a datasource.
	if rec.Type == model.TypeReportAttribute && rec.DataSourceID != "" {
		ds, err := m.store.GetByNaturalKey(ctx, model.NaturalKey{
			Type:    model.TypeDataSource,
			AssetID: rec.DataSourceID,
			ScopeID: rec.ScopeID,
		})
		if err != nil {
			return nil, err
		}
		if ds != nil {
			dsAncestors, err := AncestorChain(ctx, m.store, ds)
			if err != nil {
				return nil, err
			}
			asset.Relations = append(asset.Relations, Relation{
				Type:   RelationSourcesFrom,
				Target: Identifier(ds, dsAncestors),
			})
		}
	}

	return asset, nil
}
