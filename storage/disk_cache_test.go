package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gsc-exporter/models"
	"gsc-exporter/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(stage string, dims ...string) models.CacheKey {
	return models.CacheKey{
		Property: models.Property{
			Raw:  "sc-domain:example.com",
			Host: "example.com",
		},
		Window: models.DateWindow{
			Start: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, time.July, 31, 0, 0, 0, 0, time.UTC),
			Label: "2025-07",
		},
		Dimensions: dims,
		Stage:      stage,
	}
}

func newTestCache(t *testing.T) *DiskCache {
	t.Helper()
	cache, err := NewDiskCache(t.TempDir(), utils.NewLogger("error"))
	require.NoError(t, err)
	return cache
}

func TestDiskCacheRowsRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	key := testKey("rows", "query")

	rows := []models.PerformanceRow{
		{Keys: []string{"blue widgets"}, Clicks: 12, Impressions: 340, CTR: 0.0353, Position: 4.2},
		{Keys: []string{"red widgets"}, Clicks: 0, Impressions: 15, CTR: 0, Position: 48.7},
	}
	require.NoError(t, cache.WriteRows(key, rows))

	got, ok := cache.ReadRows(key)
	require.True(t, ok)
	assert.Equal(t, rows, got)
}

func TestDiskCacheRecordsRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	key := testKey("summary")

	records := []models.MonthlyRecord{
		{
			Property: "sc-domain:example.com", Month: "2025-07",
			Clicks: 1234, Impressions: 56789, CTR: 0.0217, Position: 12.4,
			UniqueQueries: 4100, UniquePages: 312, QueriesTruncated: true,
		},
	}
	require.NoError(t, cache.WriteRecords(key, records))

	got, ok := cache.ReadRecords(key)
	require.True(t, ok)
	assert.Equal(t, records, got)
}

func TestDiskCacheRecordsWithDistributionRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	key := testKey("summary")

	records := []models.MonthlyRecord{
		{
			Property: "sc-domain:example.com", Month: "2025-07",
			Clicks: 100, Impressions: 1000, CTR: 0.1, Position: 2,
			Positions: &models.PositionDistribution{
				Pos1to3:     models.BucketStats{Clicks: 80, Impressions: 700},
				Pos4to10:    models.BucketStats{Clicks: 20, Impressions: 300},
				TotalClicks: 100, TotalImprs: 1000,
			},
		},
	}
	require.NoError(t, cache.WriteRecords(key, records))

	got, ok := cache.ReadRecords(key)
	require.True(t, ok)
	assert.Equal(t, records, got)
}

func TestDiskCacheMissOnAbsentKey(t *testing.T) {
	cache := newTestCache(t)
	_, ok := cache.ReadRows(testKey("rows", "query"))
	assert.False(t, ok)
	_, ok = cache.ReadRecords(testKey("summary"))
	assert.False(t, ok)
}

func TestDiskCacheCorruptFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewDiskCache(dir, utils.NewLogger("error"))
	require.NoError(t, err)

	key := testKey("summary")
	path := filepath.Join(dir, key.FileName())
	require.NoError(t, os.WriteFile(path, []byte("site_url,month\ngarbage"), 0644))

	_, ok := cache.ReadRecords(key)
	assert.False(t, ok, "a file that does not parse is a miss, never a partial read")
}

func TestDiskCacheDistinctQueriesDistinctKeys(t *testing.T) {
	queryKey := testKey("rows", "query")
	pageKey := testKey("rows", "page")
	assert.NotEqual(t, queryKey.FileName(), pageKey.FileName())

	summary := testKey("summary")
	assert.NotEqual(t, queryKey.FileName(), summary.FileName())
}

func TestDiskCacheSameHostPropertiesDoNotShareEntries(t *testing.T) {
	cache := newTestCache(t)

	domainKey := testKey("summary")
	prefixKey := domainKey
	prefixKey.Property = models.Property{Raw: "https://www.example.com/", Host: "www.example.com"}

	rec := models.MonthlyRecord{Property: "sc-domain:example.com", Month: "2025-07", Clicks: 12}
	require.NoError(t, cache.WriteRecords(domainKey, []models.MonthlyRecord{rec}))

	// The prefix property on the same host is a different data set and
	// must see a miss, not the domain property's record.
	_, ok := cache.ReadRecords(prefixKey)
	assert.False(t, ok)
}

func TestDiskCacheWriteReplacesEntry(t *testing.T) {
	cache := newTestCache(t)
	key := testKey("rows", "query")

	first := []models.PerformanceRow{{Keys: []string{"old"}, Clicks: 1, Impressions: 2, Position: 3}}
	second := []models.PerformanceRow{{Keys: []string{"new"}, Clicks: 4, Impressions: 5, Position: 6}}
	require.NoError(t, cache.WriteRows(key, first))
	require.NoError(t, cache.WriteRows(key, second))

	got, ok := cache.ReadRows(key)
	require.True(t, ok)
	assert.Equal(t, second, got)
}
