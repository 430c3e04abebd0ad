package storage

import "gsc-exporter/models"

// RecordStore is a durable sink for assembled monthly records.
type RecordStore interface {
	SaveRecords(records []models.MonthlyRecord) error
	Close() error
}
