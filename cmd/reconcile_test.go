package cmd

import (
	"testing"

	"catalog-sync/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssetTypes(t *testing.T) {
	t.Run("Empty defaults to all", func(t *testing.T) {
		types, err := parseAssetTypes("")
		require.NoError(t, err)
		assert.Equal(t, model.TypeOrder, types)
	})

	t.Run("Subset with whitespace", func(t *testing.T) {
		types, err := parseAssetTypes(" workbook, worksheet ")
		require.NoError(t, err)
		assert.Equal(t, []model.AssetType{model.TypeWorkbook, model.TypeWorksheet}, types)
	})

	t.Run("Unknown type rejected", func(t *testing.T) {
		_, err := parseAssetTypes("workbook,dashboard")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dashboard")
	})

	t.Run("Only separators rejected", func(t *testing.T) {
		_, err := parseAssetTypes(" , ,")
		assert.Error(t, err)
	})
}
