package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gsc-exporter/models"
	"gsc-exporter/utils"
)

// CSVWriter exports monthly records to report CSV files.
type CSVWriter struct {
	logger *utils.Logger
}

// NewCSVWriter creates a new CSVWriter.
func NewCSVWriter(logger *utils.Logger) *CSVWriter {
	return &CSVWriter{logger: logger}
}

// WriteRecords writes the records to filePath, creating the directory
// if needed.
func (w *CSVWriter) WriteRecords(filePath string, records []models.MonthlyRecord) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if err := encodeRecords(file, records); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	w.logger.Info("Records written to: %s (%d rows)", filePath, len(records))
	return nil
}
