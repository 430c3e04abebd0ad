package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gsc-exporter/models"
)

var recordHeader = []string{
	"site_url", "month", "clicks", "impressions", "ctr", "position",
	"queries", "pages", "queries_truncated", "pages_truncated",
}

var distributionHeader = []string{
	"clicks_pos_1_3", "impressions_pos_1_3",
	"clicks_pos_4_10", "impressions_pos_4_10",
	"clicks_pos_11_20", "impressions_pos_11_20",
	"clicks_pos_21_plus", "impressions_pos_21_plus",
	"total_clicks", "total_impressions",
}

var rowMetricHeader = []string{"clicks", "impressions", "ctr", "position"}

// encodeRows writes performance rows as a flat CSV: one column per
// dimension key, then the four metric columns.
func encodeRows(w io.Writer, dimensions []string, rows []models.PerformanceRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := append(append([]string{}, dimensions...), rowMetricHeader...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		rec := append(append([]string{}, r.Keys...),
			formatFloat(r.Clicks),
			formatFloat(r.Impressions),
			formatFloat(r.CTR),
			formatFloat(r.Position),
		)
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// decodeRows parses a rows CSV back. The header locates the metric
// columns; everything before "clicks" is a dimension key. Any parse
// failure invalidates the whole file.
func decodeRows(r io.Reader) ([]models.PerformanceRow, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	nKeys := -1
	for i, col := range header {
		if col == "clicks" {
			nKeys = i
			break
		}
	}
	if nKeys < 0 || len(header) != nKeys+len(rowMetricHeader) {
		return nil, fmt.Errorf("unexpected column set %v", header)
	}

	var rows []models.PerformanceRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := models.PerformanceRow{Keys: append([]string{}, rec[:nKeys]...)}
		if row.Clicks, err = strconv.ParseFloat(rec[nKeys], 64); err != nil {
			return nil, err
		}
		if row.Impressions, err = strconv.ParseFloat(rec[nKeys+1], 64); err != nil {
			return nil, err
		}
		if row.CTR, err = strconv.ParseFloat(rec[nKeys+2], 64); err != nil {
			return nil, err
		}
		if row.Position, err = strconv.ParseFloat(rec[nKeys+3], 64); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// encodeRecords writes monthly records. The ten distribution columns
// are appended only when at least one record carries a distribution.
func encodeRecords(w io.Writer, records []models.MonthlyRecord) error {
	withDist := false
	for _, rec := range records {
		if rec.Positions != nil {
			withDist = true
			break
		}
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := append([]string{}, recordHeader...)
	if withDist {
		header = append(header, distributionHeader...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Property,
			rec.Month,
			formatFloat(rec.Clicks),
			formatFloat(rec.Impressions),
			formatFloat(rec.CTR),
			formatFloat(rec.Position),
			strconv.Itoa(rec.UniqueQueries),
			strconv.Itoa(rec.UniquePages),
			strconv.FormatBool(rec.QueriesTruncated),
			strconv.FormatBool(rec.PagesTruncated),
		}
		if withDist {
			d := rec.Positions
			if d == nil {
				d = &models.PositionDistribution{}
			}
			row = append(row,
				formatFloat(d.Pos1to3.Clicks), formatFloat(d.Pos1to3.Impressions),
				formatFloat(d.Pos4to10.Clicks), formatFloat(d.Pos4to10.Impressions),
				formatFloat(d.Pos11to20.Clicks), formatFloat(d.Pos11to20.Impressions),
				formatFloat(d.Pos21Plus.Clicks), formatFloat(d.Pos21Plus.Impressions),
				formatFloat(d.TotalClicks), formatFloat(d.TotalImprs),
			)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// decodeRecords parses a records CSV, accepting files with or without
// the distribution columns.
func decodeRecords(r io.Reader) ([]models.MonthlyRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	withDist := false
	switch len(header) {
	case len(recordHeader):
	case len(recordHeader) + len(distributionHeader):
		withDist = true
	default:
		return nil, fmt.Errorf("unexpected column set %v", header)
	}
	for i, col := range recordHeader {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected column %q at %d", header[i], i)
		}
	}

	var records []models.MonthlyRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := models.MonthlyRecord{Property: row[0], Month: row[1]}
		floats := make([]float64, 4)
		for i := 0; i < 4; i++ {
			if floats[i], err = strconv.ParseFloat(row[2+i], 64); err != nil {
				return nil, err
			}
		}
		rec.Clicks, rec.Impressions, rec.CTR, rec.Position = floats[0], floats[1], floats[2], floats[3]
		if rec.UniqueQueries, err = strconv.Atoi(row[6]); err != nil {
			return nil, err
		}
		if rec.UniquePages, err = strconv.Atoi(row[7]); err != nil {
			return nil, err
		}
		if rec.QueriesTruncated, err = strconv.ParseBool(row[8]); err != nil {
			return nil, err
		}
		if rec.PagesTruncated, err = strconv.ParseBool(row[9]); err != nil {
			return nil, err
		}
		if withDist {
			d := &models.PositionDistribution{}
			vals := make([]float64, 10)
			for i := 0; i < 10; i++ {
				if vals[i], err = strconv.ParseFloat(row[10+i], 64); err != nil {
					return nil, err
				}
			}
			d.Pos1to3 = models.BucketStats{Clicks: vals[0], Impressions: vals[1]}
			d.Pos4to10 = models.BucketStats{Clicks: vals[2], Impressions: vals[3]}
			d.Pos11to20 = models.BucketStats{Clicks: vals[4], Impressions: vals[5]}
			d.Pos21Plus = models.BucketStats{Clicks: vals[6], Impressions: vals[7]}
			d.TotalClicks, d.TotalImprs = vals[8], vals[9]
			rec.Positions = d
		}
		records = append(records, rec)
	}
	return records, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
