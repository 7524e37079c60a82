package usecase_test

import (
	"testing"

	"pr-velocity-service/internal/domain"
	"pr-velocity-service/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func avg(v float64) *float64 { return &v }

func TestCombineBuckets_WeightedMeans(t *testing.T) {
	// среднее взвешивается числом наблюдений бакета: (10*2 + 20*8) / 10 = 18,
	// а не наивное (10+20)/2 = 15
	buckets := []*domain.WeekBucket{
		{ID: 1, Merged: 2, AvgHoursToMerge: avg(10.0)},
		{ID: 2, Merged: 8, AvgHoursToMerge: avg(20.0)},
	}

	agg := usecase.CombineBuckets(buckets)

	assert.Equal(t, 2, agg.Buckets)
	assert.Equal(t, 10, agg.Merged)
	assert.NotNil(t, agg.AvgHoursToMerge)
	assert.InDelta(t, 18.0, *agg.AvgHoursToMerge, 0.001)
}

func TestCombineBuckets_ZeroWeightSkipped(t *testing.T) {
	buckets := []*domain.WeekBucket{
		{ID: 1, FirstReviewed: 4, AvgHoursToFirstReview: avg(6.0)},
		// бакет без наблюдений не влияет на среднее, даже при непустом поле
		{ID: 2, FirstReviewed: 0, AvgHoursToFirstReview: avg(99.0)},
		{ID: 3, FirstReviewed: 2},
	}

	agg := usecase.CombineBuckets(buckets)

	assert.Equal(t, 6, agg.FirstReviewed)
	assert.NotNil(t, agg.AvgHoursToFirstReview)
	assert.InDelta(t, 6.0, *agg.AvgHoursToFirstReview, 0.001)
}

func TestCombineBuckets_NoObservations(t *testing.T) {
	buckets := []*domain.WeekBucket{
		{ID: 1, Started: 3},
		{ID: 2, Started: 1},
	}

	agg := usecase.CombineBuckets(buckets)

	assert.Equal(t, 4, agg.Started)
	assert.Nil(t, agg.AvgHoursToFirstReview)
	assert.Nil(t, agg.AvgHoursToMerge)
}

func TestCombineBuckets_CountsSummed(t *testing.T) {
	buckets := []*domain.WeekBucket{
		{ID: 1, Started: 1, Merged: 2, FirstReviewed: 3, Cancelled: 1, Open: 5, Late: 1, Stale: 0},
		{ID: 2, Started: 2, Merged: 1, FirstReviewed: 0, Cancelled: 0, Open: 3, Late: 1, Stale: 2},
	}

	agg := usecase.CombineBuckets(buckets)

	assert.Equal(t, 3, agg.Started)
	assert.Equal(t, 3, agg.Merged)
	assert.Equal(t, 3, agg.FirstReviewed)
	assert.Equal(t, 1, agg.Cancelled)
	assert.Equal(t, 8, agg.Open)
	assert.Equal(t, 2, agg.Late)
	assert.Equal(t, 2, agg.Stale)
}

func TestCombineBuckets_Empty(t *testing.T) {
	agg := usecase.CombineBuckets(nil)

	assert.Equal(t, 0, agg.Buckets)
	assert.Equal(t, 0, agg.Started)
	assert.Nil(t, agg.AvgHoursToMerge)
}
