package services

import "gsc-exporter/models"

// Bucket boundaries encode the SEO reporting convention: top of page
// one, rest of page one, page two, beyond page two. They are fixed on
// purpose.
const (
	bucketTopMax        = 3
	bucketFirstPageMax  = 10
	bucketSecondPageMax = 20
)

// AggregatePositions folds per-query rows into the four position
// buckets. Rows reporting a position below 1 contribute to neither the
// buckets nor the totals, which keeps the totals equal to the bucket
// sums. Whether such rows occur in real data is unconfirmed; the
// exclusion mirrors what the reports have always done.
func AggregatePositions(rows []models.PerformanceRow) models.PositionDistribution {
	var dist models.PositionDistribution
	for _, row := range rows {
		if row.Position < 1 {
			continue
		}
		dist.TotalClicks += row.Clicks
		dist.TotalImprs += row.Impressions

		switch {
		case row.Position <= bucketTopMax:
			dist.Pos1to3.Clicks += row.Clicks
			dist.Pos1to3.Impressions += row.Impressions
		case row.Position <= bucketFirstPageMax:
			dist.Pos4to10.Clicks += row.Clicks
			dist.Pos4to10.Impressions += row.Impressions
		case row.Position <= bucketSecondPageMax:
			dist.Pos11to20.Clicks += row.Clicks
			dist.Pos11to20.Impressions += row.Impressions
		default:
			dist.Pos21Plus.Clicks += row.Clicks
			dist.Pos21Plus.Impressions += row.Impressions
		}
	}
	return dist
}
