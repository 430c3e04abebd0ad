package storage

import (
	"database/sql"
	"fmt"
	"time"

	"gsc-exporter/models"
	"gsc-exporter/utils"

	_ "github.com/lib/pq"
)

// PostgresWriter stores monthly records in PostgreSQL. Optional sink:
// only wired up when a DATABASE_URL is configured.
type PostgresWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresWriter opens a connection pool and pings the DB.
func NewPostgresWriter(connStr string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return &PostgresWriter{db: db, logger: logger}, nil
}

// CreateTable creates the monthly_performance table if it is missing.
func (w *PostgresWriter) CreateTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS monthly_performance (
		id SERIAL PRIMARY KEY,
		property TEXT NOT NULL,
		month TEXT NOT NULL,
		clicks DOUBLE PRECISION NOT NULL,
		impressions DOUBLE PRECISION NOT NULL,
		ctr DOUBLE PRECISION NOT NULL,
		position DOUBLE PRECISION NOT NULL,
		unique_queries INTEGER NOT NULL DEFAULT 0,
		unique_pages INTEGER NOT NULL DEFAULT 0,
		queries_truncated BOOLEAN NOT NULL DEFAULT FALSE,
		pages_truncated BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (property, month)
	)`
	if _, err := w.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// SaveRecords upserts records in a single transaction. A re-run for
// the same (property, month) replaces the previous values.
func (w *PostgresWriter) SaveRecords(records []models.MonthlyRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO monthly_performance
			(property, month, clicks, impressions, ctr, position,
			 unique_queries, unique_pages, queries_truncated, pages_truncated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (property, month) DO UPDATE SET
			clicks = EXCLUDED.clicks,
			impressions = EXCLUDED.impressions,
			ctr = EXCLUDED.ctr,
			position = EXCLUDED.position,
			unique_queries = EXCLUDED.unique_queries,
			unique_pages = EXCLUDED.unique_pages,
			queries_truncated = EXCLUDED.queries_truncated,
			pages_truncated = EXCLUDED.pages_truncated`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(
			rec.Property, rec.Month, rec.Clicks, rec.Impressions,
			rec.CTR, rec.Position, rec.UniqueQueries, rec.UniquePages,
			rec.QueriesTruncated, rec.PagesTruncated,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert record for %s %s: %w", rec.Property, rec.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.Info("Stored %d records in PostgreSQL", len(records))
	return nil
}

// Close releases the connection pool.
func (w *PostgresWriter) Close() error {
	return w.db.Close()
}
