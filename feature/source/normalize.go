package source

import (
	"catalog-sync/core/model"
	"catalog-sync/core/reconcile"
)

// normalize flattens one wire asset into a normalized record. The
// fingerprint-relevant fields go in a fixed per-type order; volatile fields
// (UpdatedAt, UsageCount) are deliberately excluded so unchanged assets do
// not spuriously report as updated.
func normalize(assetType model.AssetType, scopeID string, raw rawAsset) reconcile.NormalizedRecord {
	rec := reconcile.NormalizedRecord{
		Type:         assetType,
		ID:           raw.ID,
		Name:         raw.Name,
		WorksheetID:  raw.WorksheetID,
		ParentType:   model.AssetType(raw.ParentType),
		ParentID:     raw.ParentID,
		DataSourceID: raw.DataSourceID,
		Fields:       metadataFields(assetType, raw),
	}
	rec.FingerprintFields = fingerprintFields(assetType, scopeID, raw)
	return rec
}

// fingerprintFields returns the digest input in its fixed per-type order.
func fingerprintFields(assetType model.AssetType, scopeID string, raw rawAsset) []string {
	base := []string{raw.ID, raw.Name, raw.Description, raw.ParentID, raw.Owner, scopeID}
	switch assetType {
	case model.TypeWorkbook, model.TypeDataSource:
		return append(base, raw.ContentURL)
	case model.TypeReportAttribute:
		return append(base, raw.WorksheetID, raw.DataSourceID, raw.DataType, raw.Role, raw.Formula)
	default:
		return base
	}
}

// metadataFields builds the descriptive metadata persisted on the record.
// Empty values are kept out so the export mapper never sees blanks.
func metadataFields(assetType model.AssetType, raw rawAsset) map[string]string {
	fields := make(map[string]string)
	put := func(k, v string) {
		if v != "" {
			fields[k] = v
		}
	}
	put("description", raw.Description)
	put("owner", raw.Owner)
	switch assetType {
	case model.TypeWorkbook, model.TypeDataSource:
		put("content_url", raw.ContentURL)
	case model.TypeReportAttribute:
		put("data_type", raw.DataType)
		put("role", raw.Role)
		put("formula", raw.Formula)
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
