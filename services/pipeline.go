package services

import (
	"context"

	"gsc-exporter/models"
	"gsc-exporter/utils"

	"golang.org/x/sync/errgroup"
)

// RowFetcher is the remote-query boundary the pipeline drives. The
// production implementation is gsc.Fetcher.
type RowFetcher interface {
	FetchRows(ctx context.Context, site string, w models.DateWindow, dimensions []string, rowLimit int64) models.FetchResult
	FetchTotals(ctx context.Context, site string, w models.DateWindow) models.FetchResult
	CountUnique(ctx context.Context, site string, w models.DateWindow, dimension string, rowLimit int64) models.CountResult
}

// Cache is the opt-in read / unconditional write store for fetched
// rows and assembled records. A nil Cache disables caching entirely.
type Cache interface {
	ReadRows(key models.CacheKey) ([]models.PerformanceRow, bool)
	WriteRows(key models.CacheKey, rows []models.PerformanceRow) error
	ReadRecords(key models.CacheKey) ([]models.MonthlyRecord, bool)
	WriteRecords(key models.CacheKey, records []models.MonthlyRecord) error
}

// PipelineOptions tunes one pipeline run.
type PipelineOptions struct {
	UseCache            bool  // read back cached results before fetching
	Workers             int   // concurrent properties; 1 = sequential
	RowLimit            int64 // page size for paginated fetches
	IncludeUniqueCounts bool  // count unique queries and pages per window
	IncludePositions    bool  // build the position distribution per window
}

// Pipeline walks every property over every window, newest first,
// fetching and aggregating into MonthlyRecords. Permission denial
// abandons the remaining (older) windows of that property only;
// a window with no data is skipped and iteration continues.
type Pipeline struct {
	fetcher RowFetcher
	cache   Cache
	logger  *utils.Logger
	opts    PipelineOptions
}

// NewPipeline creates a Pipeline. cache may be nil.
func NewPipeline(fetcher RowFetcher, cache Cache, opts PipelineOptions, logger *utils.Logger) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.RowLimit < 1 {
		opts.RowLimit = 25000
	}
	return &Pipeline{fetcher: fetcher, cache: cache, logger: logger, opts: opts}
}

// Run processes the given properties over the given windows and
// returns the records in property order (as passed, normally sorted)
// with each property's windows newest first, regardless of how workers
// interleave. Duplicate property identifiers are processed once.
// Run never fails: missing data degrades to fewer records.
func (p *Pipeline) Run(ctx context.Context, props []models.Property, windows []models.DateWindow) []models.MonthlyRecord {
	tracker := utils.NewTracker()
	unique := make([]models.Property, 0, len(props))
	for _, prop := range props {
		if tracker.Add(prop.Raw) {
			unique = append(unique, prop)
		} else {
			p.logger.Debug("Skipping duplicate property %s", prop.Raw)
		}
	}

	perProperty := make([][]models.MonthlyRecord, len(unique))

	var g errgroup.Group
	g.SetLimit(p.opts.Workers)
	for i, prop := range unique {
		g.Go(func() error {
			perProperty[i] = p.runProperty(ctx, prop, windows)
			return nil
		})
	}
	_ = g.Wait()

	var records []models.MonthlyRecord
	for _, recs := range perProperty {
		records = append(records, recs...)
	}
	return records
}

// runProperty walks one property's windows sequentially; the pagination
// cursor makes each fetch inherently serial, so there is exactly one
// in-flight fetch per property.
func (p *Pipeline) runProperty(ctx context.Context, prop models.Property, windows []models.DateWindow) []models.MonthlyRecord {
	p.logger.Info("Fetching data for %s property: %s", prop.Kind, prop.Raw)

	var records []models.MonthlyRecord
	for _, w := range windows {
		rec, outcome := p.processWindow(ctx, prop, w)
		switch outcome {
		case models.OutcomePermissionDenied:
			// Permission is a property-level attribute: all older
			// windows would fail the same way.
			p.logger.Warn("Permission denied for %s, skipping its remaining windows", prop.Raw)
			return records
		case models.OutcomeEmpty:
			continue
		}
		records = append(records, rec)
	}
	return records
}

// processWindow assembles one MonthlyRecord for (property, window).
func (p *Pipeline) processWindow(ctx context.Context, prop models.Property, w models.DateWindow) (models.MonthlyRecord, models.Outcome) {
	key := models.CacheKey{Property: prop, Window: w, Stage: "summary"}
	if p.opts.UseCache && p.cache != nil {
		if cached, ok := p.cache.ReadRecords(key); ok && len(cached) == 1 {
			p.logger.Info("Using cached data for %s (%s)", prop.Raw, w.Label)
			return cached[0], models.OutcomeOK
		}
	}

	totals := p.fetcher.FetchTotals(ctx, prop.Raw, w)
	if totals.Outcome != models.OutcomeOK {
		return models.MonthlyRecord{}, totals.Outcome
	}
	row := totals.Rows[0]

	rec := models.MonthlyRecord{
		Property:    prop.Raw,
		Month:       w.Label,
		Clicks:      row.Clicks,
		Impressions: row.Impressions,
		CTR:         row.CTR,
		Position:    row.Position,
	}

	if p.opts.IncludeUniqueCounts {
		queries := p.fetcher.CountUnique(ctx, prop.Raw, w, "query", p.opts.RowLimit)
		if queries.Outcome == models.OutcomePermissionDenied {
			return models.MonthlyRecord{}, models.OutcomePermissionDenied
		}
		rec.UniqueQueries = queries.Count
		rec.QueriesTruncated = queries.Truncated || queries.Outcome == models.OutcomeEmpty

		pages := p.fetcher.CountUnique(ctx, prop.Raw, w, "page", p.opts.RowLimit)
		if pages.Outcome == models.OutcomePermissionDenied {
			return models.MonthlyRecord{}, models.OutcomePermissionDenied
		}
		rec.UniquePages = pages.Count
		rec.PagesTruncated = pages.Truncated || pages.Outcome == models.OutcomeEmpty
	}

	if p.opts.IncludePositions {
		dist, outcome := p.positionDistribution(ctx, prop, w)
		if outcome == models.OutcomePermissionDenied {
			return models.MonthlyRecord{}, models.OutcomePermissionDenied
		}
		if outcome == models.OutcomeOK {
			rec.Positions = &dist
		}
	}

	rec.Normalize()

	if p.cache != nil {
		if err := p.cache.WriteRecords(key, []models.MonthlyRecord{rec}); err != nil {
			p.logger.Warn("Could not cache record for %s (%s): %v", prop.Raw, w.Label, err)
		}
	}
	return rec, models.OutcomeOK
}

// positionDistribution fetches per-query rows (cache-first) and folds
// them into position buckets.
func (p *Pipeline) positionDistribution(ctx context.Context, prop models.Property, w models.DateWindow) (models.PositionDistribution, models.Outcome) {
	dims := []string{"query"}
	key := models.CacheKey{Property: prop, Window: w, Dimensions: dims, Stage: "rows"}

	if p.opts.UseCache && p.cache != nil {
		if rows, ok := p.cache.ReadRows(key); ok {
			return AggregatePositions(rows), models.OutcomeOK
		}
	}

	res := p.fetcher.FetchRows(ctx, prop.Raw, w, dims, p.opts.RowLimit)
	if res.Outcome != models.OutcomeOK {
		return models.PositionDistribution{}, res.Outcome
	}
	if p.cache != nil {
		if err := p.cache.WriteRows(key, res.Rows); err != nil {
			p.logger.Warn("Could not cache rows for %s (%s): %v", prop.Raw, w.Label, err)
		}
	}
	return AggregatePositions(res.Rows), models.OutcomeOK
}
