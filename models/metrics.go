package models

// PerformanceRow is one row of Search Console query data. Keys are
// positionally aligned to the dimensions requested; clicks and
// impressions arrive as floats on the wire and are kept that way.
type PerformanceRow struct {
	Keys        []string
	Clicks      float64
	Impressions float64
	CTR         float64
	Position    float64
}

// BucketStats accumulates clicks and impressions for one position bucket.
type BucketStats struct {
	Clicks      float64
	Impressions float64
}

// PositionDistribution folds query rows into the four fixed ranking
// ranges used by the reports: page one top (1-3), rest of page one
// (4-10), page two (11-20) and everything beyond (21+). Rows with a
// position below 1 are excluded from the buckets and the totals.
type PositionDistribution struct {
	Pos1to3     BucketStats
	Pos4to10    BucketStats
	Pos11to20   BucketStats
	Pos21Plus   BucketStats
	TotalClicks float64
	TotalImprs  float64
}

// MonthlyRecord is the aggregation unit: one property over one window.
// Created once by the pipeline and never updated in place.
type MonthlyRecord struct {
	Property    string
	Month       string
	Clicks      float64
	Impressions float64
	CTR         float64
	Position    float64

	// Unique counts are lower bounds when the matching truncated flag
	// is set, because the paginated count hit the API's row cap.
	UniqueQueries    int
	UniquePages      int
	QueriesTruncated bool
	PagesTruncated   bool

	Positions *PositionDistribution
}

// Normalize enforces the zero-impressions edge case: without
// impressions there is no meaningful CTR or average position.
func (r *MonthlyRecord) Normalize() {
	if r.Impressions == 0 {
		r.CTR = 0
		r.Position = 0
	}
}
