package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleReturnsDistinctCatalogItems(t *testing.T) {
	items, err := Sample(10)
	require.NoError(t, err)
	require.Len(t, items, 10)

	known := make(map[string]bool, len(TrashItems))
	for _, item := range TrashItems {
		known[item] = true
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		assert.True(t, known[item], "item %q not in catalog", item)
		assert.False(t, seen[item], "item %q drawn twice", item)
		seen[item] = true
	}
}

func TestSampleFullCatalog(t *testing.T) {
	items, err := Sample(len(TrashItems))
	require.NoError(t, err)
	assert.Len(t, items, len(TrashItems))
}

func TestSampleRejectsOversizedRequest(t *testing.T) {
	_, err := Sample(len(TrashItems) + 1)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = Sample(-1)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestTierItemCounts(t *testing.T) {
	tests := []struct {
		tier SizeTier
		want int
	}{
		{TierSnack, 5},
		{TierMedium, 10},
		{TierFeast, 15},
		{SizeTier("banquet"), 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.tier.ItemCount(), "tier %s", tt.tier)
	}
}
