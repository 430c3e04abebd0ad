package gsc

import (
	"context"
	"fmt"
	"time"

	"gsc-exporter/models"
	"gsc-exporter/utils"

	"google.golang.org/api/option"
	webmasters "google.golang.org/api/webmasters/v3"
)

// availabilityProbeDays is how many days back the client probes when
// determining the latest date with data.
const availabilityProbeDays = 5

// Client wraps the Search Console (webmasters v3) service with rate
// limiting shared across all callers.
type Client struct {
	svc     *webmasters.Service
	logger  *utils.Logger
	limiter *utils.RateLimiter
}

// NewClient builds a Client authenticated through the given provider.
func NewClient(ctx context.Context, provider CredentialProvider, rateDelayMs int, logger *utils.Logger) (*Client, error) {
	ts, err := provider.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return NewClientWithOptions(ctx, rateDelayMs, logger, option.WithTokenSource(ts))
}

// NewClientWithOptions builds a Client with explicit service options.
// Tests use this to point the service at a local HTTP server.
func NewClientWithOptions(ctx context.Context, rateDelayMs int, logger *utils.Logger, opts ...option.ClientOption) (*Client, error) {
	svc, err := webmasters.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create search console service: %w", err)
	}
	return &Client{
		svc:     svc,
		logger:  logger,
		limiter: utils.NewRateLimiter(rateDelayMs),
	}, nil
}

// ListSites fetches every verified property in the account.
func (c *Client) ListSites(ctx context.Context) ([]string, error) {
	c.limiter.Wait()
	resp, err := c.svc.Sites.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("could not list sites: %w", err)
	}
	sites := make([]string, 0, len(resp.SiteEntry))
	for _, entry := range resp.SiteEntry {
		sites = append(sites, entry.SiteUrl)
	}
	return sites, nil
}

// LatestAvailableDate walks backwards from today looking for the most
// recent day the API has data for, probing with a one-row query per
// day. The API answers 400 for dates too recent to have data; that and
// an empty response both mean "try the previous day". Falls back to
// today when nothing is found within the probe range.
func (c *Client) LatestAvailableDate(ctx context.Context, site string) time.Time {
	today := time.Now()
	for i := 0; i < availabilityProbeDays; i++ {
		check := today.AddDate(0, 0, -i)
		day := check.Format(models.DateLayout)
		c.logger.Debug("Checking for data availability on %s...", day)

		req := &webmasters.SearchAnalyticsQueryRequest{
			StartDate:  day,
			EndDate:    day,
			Dimensions: []string{"date"},
			RowLimit:   1,
		}
		resp, err := c.query(ctx, site, req)
		if err != nil {
			c.logger.Debug("No data for %s (%v), checking previous day", day, err)
			continue
		}
		if len(resp.Rows) > 0 {
			c.logger.Info("Latest available data for %s: %s", site, day)
			return check
		}
	}
	c.logger.Warn("Could not determine latest available date within %d days, using today", availabilityProbeDays)
	return today
}

// query issues one search analytics request, honouring the rate limiter.
func (c *Client) query(ctx context.Context, site string, req *webmasters.SearchAnalyticsQueryRequest) (*webmasters.SearchAnalyticsQueryResponse, error) {
	c.limiter.Wait()
	return c.svc.Searchanalytics.Query(site, req).Context(ctx).Do()
}
