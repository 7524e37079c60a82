package usecase

import (
	"math"

	"pr-velocity-service/internal/domain"
)

// CombineBuckets сводит статистику набора бакетов разных репозиториев в один
// явный агрегат. Счетчики суммируются; средние считаются взвешенно по
// соответствующему счетчику бакета — наивное среднее средних искажало бы
// картину, так как бакеты покрывают разное число PR.
func CombineBuckets(buckets []*domain.WeekBucket) *domain.AggregatedBucketStats {
	agg := &domain.AggregatedBucketStats{
		Buckets: len(buckets),
	}

	var reviewWeighted, mergeWeighted float64
	var reviewWeight, mergeWeight int

	for _, b := range buckets {
		agg.Started += b.Started
		agg.Merged += b.Merged
		agg.FirstReviewed += b.FirstReviewed
		agg.Cancelled += b.Cancelled
		agg.Open += b.Open
		agg.Late += b.Late
		agg.Stale += b.Stale

		// бакеты с нулевым весом пропускаются
		if b.AvgHoursToFirstReview != nil && b.FirstReviewed > 0 {
			reviewWeighted += *b.AvgHoursToFirstReview * float64(b.FirstReviewed)
			reviewWeight += b.FirstReviewed
		}
		if b.AvgHoursToMerge != nil && b.Merged > 0 {
			mergeWeighted += *b.AvgHoursToMerge * float64(b.Merged)
			mergeWeight += b.Merged
		}
	}

	agg.AvgHoursToFirstReview = weightedMean(reviewWeighted, reviewWeight)
	agg.AvgHoursToMerge = weightedMean(mergeWeighted, mergeWeight)
	return agg
}

func weightedMean(weightedSum float64, weight int) *float64 {
	if weight == 0 {
		return nil
	}
	m := math.Round(weightedSum/float64(weight)*100) / 100
	return &m
}
