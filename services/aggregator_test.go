package services

import (
	"testing"

	"gsc-exporter/models"

	"github.com/stretchr/testify/assert"
)

func TestAggregatePositionsBuckets(t *testing.T) {
	rows := []models.PerformanceRow{
		{Clicks: 100, Impressions: 1000, Position: 2},
		{Clicks: 10, Impressions: 500, Position: 4},
		{Clicks: 5, Impressions: 300, Position: 10},
		{Clicks: 2, Impressions: 200, Position: 15},
		{Clicks: 1, Impressions: 100, Position: 21},
		{Clicks: 1, Impressions: 50, Position: 87.4},
	}
	dist := AggregatePositions(rows)

	assert.Equal(t, 100.0, dist.Pos1to3.Clicks)
	assert.Equal(t, 1000.0, dist.Pos1to3.Impressions)
	assert.Equal(t, 15.0, dist.Pos4to10.Clicks)
	assert.Equal(t, 800.0, dist.Pos4to10.Impressions)
	assert.Equal(t, 2.0, dist.Pos11to20.Clicks)
	assert.Equal(t, 2.0, dist.Pos21Plus.Clicks)
	assert.Equal(t, 150.0, dist.Pos21Plus.Impressions)
}

func TestAggregatePositionsTotalsEqualBucketSums(t *testing.T) {
	rows := []models.PerformanceRow{
		{Clicks: 3, Impressions: 30, Position: 1},
		{Clicks: 7, Impressions: 70, Position: 3.5},
		{Clicks: 11, Impressions: 110, Position: 20},
		{Clicks: 13, Impressions: 130, Position: 200},
	}
	dist := AggregatePositions(rows)

	bucketClicks := dist.Pos1to3.Clicks + dist.Pos4to10.Clicks + dist.Pos11to20.Clicks + dist.Pos21Plus.Clicks
	bucketImprs := dist.Pos1to3.Impressions + dist.Pos4to10.Impressions + dist.Pos11to20.Impressions + dist.Pos21Plus.Impressions
	assert.Equal(t, dist.TotalClicks, bucketClicks)
	assert.Equal(t, dist.TotalImprs, bucketImprs)
	assert.Equal(t, 34.0, dist.TotalClicks)
}

func TestAggregatePositionsExcludesSubOnePositions(t *testing.T) {
	rows := []models.PerformanceRow{
		{Clicks: 100, Impressions: 1000, Position: 2},
		{Clicks: 50, Impressions: 500, Position: 0.5},
		{Clicks: 25, Impressions: 250, Position: 0},
	}
	dist := AggregatePositions(rows)

	assert.Equal(t, 100.0, dist.TotalClicks, "sub-1 positions contribute to no totals")
	assert.Equal(t, 1000.0, dist.TotalImprs)
	assert.Equal(t, 100.0, dist.Pos1to3.Clicks)
	assert.Equal(t, 0.0, dist.Pos4to10.Clicks+dist.Pos11to20.Clicks+dist.Pos21Plus.Clicks)
}

func TestAggregatePositionsEmpty(t *testing.T) {
	dist := AggregatePositions(nil)
	assert.Equal(t, models.PositionDistribution{}, dist)
}

