package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gsc-exporter/models"
	"gsc-exporter/utils"
)

// DiskCache stores fetched rows and assembled records as one flat CSV
// file per cache key. Reads are all-or-nothing: a file that fails to
// parse into the expected column set is a silent miss, never a partial
// recovery. Entries are never aged out; each file is scoped to one
// specific dated query, so staleness only occurs for parameter
// combinations nobody asks for again.
type DiskCache struct {
	dir    string
	logger *utils.Logger
}

// NewDiskCache creates the cache directory if needed.
func NewDiskCache(dir string, logger *utils.Logger) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DiskCache{dir: dir, logger: logger}, nil
}

// ReadRows returns the cached rows for key, or a miss.
func (c *DiskCache) ReadRows(key models.CacheKey) ([]models.PerformanceRow, bool) {
	f, err := os.Open(c.path(key))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	rows, err := decodeRows(f)
	if err != nil {
		c.logger.Debug("Cache entry %s is unreadable, treating as miss: %v", key.FileName(), err)
		return nil, false
	}
	return rows, true
}

// WriteRows stores rows under key, replacing any previous entry.
func (c *DiskCache) WriteRows(key models.CacheKey, rows []models.PerformanceRow) error {
	f, err := os.Create(c.path(key))
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()
	return encodeRows(f, key.Dimensions, rows)
}

// ReadRecords returns the cached records for key, or a miss.
func (c *DiskCache) ReadRecords(key models.CacheKey) ([]models.MonthlyRecord, bool) {
	f, err := os.Open(c.path(key))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	records, err := decodeRecords(f)
	if err != nil {
		c.logger.Debug("Cache entry %s is unreadable, treating as miss: %v", key.FileName(), err)
		return nil, false
	}
	return records, true
}

// WriteRecords stores records under key, replacing any previous entry.
func (c *DiskCache) WriteRecords(key models.CacheKey, records []models.MonthlyRecord) error {
	f, err := os.Create(c.path(key))
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()
	return encodeRecords(f, records)
}

func (c *DiskCache) path(key models.CacheKey) string {
	return filepath.Join(c.dir, key.FileName())
}
