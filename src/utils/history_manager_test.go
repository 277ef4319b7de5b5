package utils

import (
	"testing"

	"token-pulse/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryManagerRecordAndBound(t *testing.T) {
	hm := NewHistoryManager(3)

	for i := 1; i <= 5; i++ {
		hm.Record("a", models.PricePoint{Timestamp: int64(i), Price: float64(i)})
	}

	points, ok := hm.History("a")
	require.True(t, ok)
	require.Len(t, points, 3)
	assert.Equal(t, int64(3), points[0].Timestamp)
	assert.Equal(t, int64(5), points[2].Timestamp)

	latest, ok := hm.Latest("a")
	require.True(t, ok)
	assert.Equal(t, 5.0, latest.Price)
}

func TestHistoryManagerSeedOnlyOnce(t *testing.T) {
	hm := NewHistoryManager(10)

	hm.Seed("a", models.PricePoint{Timestamp: 1, Price: 1})
	hm.Seed("a", models.PricePoint{Timestamp: 2, Price: 2})

	points, ok := hm.History("a")
	require.True(t, ok)
	assert.Equal(t, []models.PricePoint{{Timestamp: 1, Price: 1}}, points)
}

func TestHistoryManagerDropAndCleanup(t *testing.T) {
	hm := NewHistoryManager(0)
	hm.Record("a", models.PricePoint{Timestamp: 1, Price: 1})
	hm.Record("b", models.PricePoint{Timestamp: 1, Price: 1})
	hm.Record("c", models.PricePoint{Timestamp: 1, Price: 1})
	assert.Equal(t, 3, hm.TokenCount())

	hm.Drop("a", "missing")
	_, ok := hm.History("a")
	assert.False(t, ok)
	_, ok = hm.Latest("a")
	assert.False(t, ok)
	assert.Equal(t, 2, hm.TokenCount())

	hm.Cleanup()
	assert.Equal(t, 0, hm.TokenCount())
}
