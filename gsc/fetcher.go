package gsc

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gsc-exporter/models"
	"gsc-exporter/utils"

	"google.golang.org/api/googleapi"
	webmasters "google.golang.org/api/webmasters/v3"
)

// Fetcher drives the paginated search analytics query protocol:
// requests advance startRow by rowLimit and stop when a page comes
// back short. HTTP 403 is surfaced as OutcomePermissionDenied and
// never retried; 400 and 404 mean the window has no data; anything
// else is retried with backoff and then downgraded to OutcomeEmpty.
type Fetcher struct {
	client     *Client
	logger     *utils.Logger
	maxRetries int
	retryBase  time.Duration
}

// NewFetcher creates a Fetcher over the given client.
func NewFetcher(client *Client, maxRetries int, logger *utils.Logger) *Fetcher {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Fetcher{
		client:     client,
		logger:     logger,
		maxRetries: maxRetries,
		retryBase:  500 * time.Millisecond,
	}
}

// FetchRows retrieves every row for the window and dimension set,
// concatenating pages until a short page signals the end of data.
// A failure mid-pagination discards the partial result and reports
// the window as empty.
func (f *Fetcher) FetchRows(ctx context.Context, site string, w models.DateWindow, dimensions []string, rowLimit int64) models.FetchResult {
	var all []models.PerformanceRow
	var startRow int64

	for {
		req := &webmasters.SearchAnalyticsQueryRequest{
			StartDate:  w.StartString(),
			EndDate:    w.EndString(),
			Dimensions: dimensions,
			RowLimit:   rowLimit,
			StartRow:   startRow,
		}
		resp, err := f.queryPage(ctx, site, req)
		if err != nil {
			return models.FetchResult{Outcome: f.classify(err, site, w)}
		}
		for _, r := range resp.Rows {
			all = append(all, convertRow(r))
		}
		if int64(len(resp.Rows)) < rowLimit {
			break
		}
		startRow += rowLimit
	}

	if len(all) == 0 {
		return models.FetchResult{Outcome: models.OutcomeEmpty}
	}
	return models.FetchResult{Outcome: models.OutcomeOK, Rows: all}
}

// FetchTotals retrieves the window's aggregate metrics in a single
// dimensionless request; the API answers with at most one row.
func (f *Fetcher) FetchTotals(ctx context.Context, site string, w models.DateWindow) models.FetchResult {
	req := &webmasters.SearchAnalyticsQueryRequest{
		StartDate: w.StartString(),
		EndDate:   w.EndString(),
	}
	resp, err := f.queryPage(ctx, site, req)
	if err != nil {
		return models.FetchResult{Outcome: f.classify(err, site, w)}
	}
	if len(resp.Rows) == 0 {
		return models.FetchResult{Outcome: models.OutcomeEmpty}
	}
	return models.FetchResult{
		Outcome: models.OutcomeOK,
		Rows:    []models.PerformanceRow{convertRow(resp.Rows[0])},
	}
}

// CountUnique counts the distinct values of one dimension over the
// window by paging through them. When pagination fails partway the
// count so far is kept and flagged truncated: a lower bound, not an
// exact cardinality.
func (f *Fetcher) CountUnique(ctx context.Context, site string, w models.DateWindow, dimension string, rowLimit int64) models.CountResult {
	var count int
	var startRow int64

	f.logger.Debug("Counting unique %ss for %s (%s)...", dimension, site, w.Label)
	for {
		req := &webmasters.SearchAnalyticsQueryRequest{
			StartDate:  w.StartString(),
			EndDate:    w.EndString(),
			Dimensions: []string{dimension},
			RowLimit:   rowLimit,
			StartRow:   startRow,
		}
		resp, err := f.queryPage(ctx, site, req)
		if err != nil {
			outcome := f.classify(err, site, w)
			if outcome == models.OutcomePermissionDenied {
				return models.CountResult{Outcome: outcome}
			}
			if count > 0 {
				f.logger.Warn("Unique %s count for %s is incomplete (stopped at %d): %v", dimension, site, count, err)
				return models.CountResult{Outcome: models.OutcomeOK, Count: count, Truncated: true}
			}
			return models.CountResult{Outcome: models.OutcomeEmpty}
		}
		count += len(resp.Rows)
		if int64(len(resp.Rows)) < rowLimit {
			break
		}
		startRow += rowLimit
	}

	return models.CountResult{Outcome: models.OutcomeOK, Count: count}
}

// queryPage issues one page request, retrying transient failures with
// backoff. Permission and no-data responses are permanent and returned
// immediately.
func (f *Fetcher) queryPage(ctx context.Context, site string, req *webmasters.SearchAnalyticsQueryRequest) (*webmasters.SearchAnalyticsQueryResponse, error) {
	var resp *webmasters.SearchAnalyticsQueryResponse
	err := utils.RetryWithBackoff(f.maxRetries, f.retryBase, func() error {
		r, err := f.client.query(ctx, site, req)
		if err != nil {
			if isTerminal(err) {
				return utils.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}, f.logger)
	return resp, err
}

// classify maps a terminal fetch error onto the outcome taxonomy.
func (f *Fetcher) classify(err error, site string, w models.DateWindow) models.Outcome {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusForbidden:
			f.logger.Warn("Insufficient permission for %s", site)
			return models.OutcomePermissionDenied
		case http.StatusBadRequest, http.StatusNotFound:
			f.logger.Debug("No data available for %s from %s to %s", site, w.StartString(), w.EndString())
			return models.OutcomeEmpty
		}
	}
	f.logger.Error("Fetch failed for %s (%s): %v", site, w.Label, err)
	return models.OutcomeEmpty
}

// isTerminal reports whether err can never succeed on retry.
func isTerminal(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	switch gerr.Code {
	case http.StatusForbidden, http.StatusBadRequest, http.StatusNotFound:
		return true
	}
	return false
}

func convertRow(r *webmasters.ApiDataRow) models.PerformanceRow {
	return models.PerformanceRow{
		Keys:        r.Keys,
		Clicks:      r.Clicks,
		Impressions: r.Impressions,
		CTR:         r.Ctr,
		Position:    r.Position,
	}
}
