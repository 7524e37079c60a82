package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"pr-velocity-service/internal/domain"
	"pr-velocity-service/internal/workdays"
)

// Пороговые значения бэклога: дни от первого одобрения до конца недели бакета.
const (
	lateMinDays  = 8
	lateMaxDays  = 27
	staleMinDays = 28
)

// StatsUseCase пересчитывает кэшированные метрики недельных бакетов.
type StatsUseCase struct {
	prs     domain.PRRepository
	reviews domain.ReviewRepository
	buckets domain.BucketRepository
	catalog domain.BucketUseCase
	loc     *time.Location
	now     func() time.Time
}

// NewStatsUseCase создает новый экземпляр StatsUseCase. Часы передаются
// явно, чтобы расчеты на "текущую неделю" были воспроизводимы в тестах.
func NewStatsUseCase(
	prs domain.PRRepository,
	reviews domain.ReviewRepository,
	buckets domain.BucketRepository,
	catalog domain.BucketUseCase,
	loc *time.Location,
	now func() time.Time,
) *StatsUseCase {
	if now == nil {
		now = time.Now
	}
	return &StatsUseCase{
		prs:     prs,
		reviews: reviews,
		buckets: buckets,
		catalog: catalog,
		loc:     loc,
		now:     now,
	}
}

// UpdateBucket пересчитывает метрики одного бакета из исходных данных.
func (uc *StatsUseCase) UpdateBucket(ctx context.Context, bucketID int64) (*domain.WeekBucket, error) {
	bucket, err := uc.buckets.GetByID(ctx, bucketID)
	if err != nil {
		return nil, err
	}

	prs, err := uc.prs.ListByRepo(ctx, bucket.RepoID)
	if err != nil {
		return nil, err
	}
	reviewsByPR, err := uc.reviews.ListByRepo(ctx, bucket.RepoID)
	if err != nil {
		return nil, err
	}

	if err := uc.recompute(bucket, prs, reviewsByPR); err != nil {
		return nil, err
	}
	if err := uc.buckets.UpdateStats(ctx, bucket); err != nil {
		return nil, err
	}
	return bucket, nil
}

// recompute заполняет кэшируемые поля бакета по PR его репозитория.
func (uc *StatsUseCase) recompute(bucket *domain.WeekBucket, prs []*domain.PullRequest, reviewsByPR map[int64][]*domain.Review) error {
	endInstant := bucket.EndInstant(uc.loc)

	bucket.Started = 0
	bucket.Merged = 0
	bucket.FirstReviewed = 0
	bucket.Cancelled = 0
	bucket.Open = 0
	bucket.Late = 0
	bucket.Stale = 0

	var reviewHours, mergeHours []float64

	inBucket := func(ref *int64) bool {
		return ref != nil && *ref == bucket.ID
	}

	for _, pr := range prs {
		reviews := reviewsByPR[pr.ID]

		// started: PR, перешедшие в ready-for-review на этой неделе
		if !pr.IsDraft && inBucket(pr.ReadyBucketID) {
			bucket.Started++
		}

		// merged + часы до мержа (PR без ready-for-review не учитываются в среднем)
		if inBucket(pr.MergedBucketID) {
			bucket.Merged++
			if pr.ReadyForReviewAt != nil && pr.MergedAt != nil {
				if pr.MergedAt.Before(*pr.ReadyForReviewAt) {
					return fmt.Errorf("%w: pull request %d merged before ready-for-review",
						domain.ErrNegativeDuration, pr.Number)
				}
				mergeHours = append(mergeHours, workdays.Hours(pr.ReadyForReviewAt, pr.MergedAt))
			}
		}

		// firstReviewed + часы до первого подходящего ревью
		if inBucket(pr.FirstReviewBucketID) {
			bucket.FirstReviewed++
			if first := domain.ValidFirstReview(pr, reviews); first != nil {
				if first.SubmittedAt.Before(*pr.ReadyForReviewAt) {
					return fmt.Errorf("%w: pull request %d reviewed before ready-for-review",
						domain.ErrNegativeDuration, pr.Number)
				}
				t := first.SubmittedAt
				reviewHours = append(reviewHours, workdays.Hours(pr.ReadyForReviewAt, &t))
			}
		}

		// cancelled: закрыт без мержа на этой неделе
		if pr.State == domain.PRStateClosed && pr.MergedAt == nil && inBucket(pr.ClosedBucketID) {
			bucket.Cancelled++
		}

		// срез открытых на конец недели
		openAtEnd := !pr.IsDraft &&
			!pr.CreatedAt.After(endInstant) &&
			(pr.ClosedAt == nil || pr.ClosedAt.After(endInstant))
		if openAtEnd {
			bucket.Open++
		}

		// late/stale: открыт, не вмержен к концу недели, одобрен давно
		notMergedAtEnd := pr.MergedAt == nil || pr.MergedAt.After(endInstant)
		if openAtEnd && notMergedAtEnd {
			if approved := domain.EarliestApproved(reviews); approved != nil {
				days := int(endInstant.Sub(approved.SubmittedAt).Hours() / 24)
				switch {
				case days >= staleMinDays:
					bucket.Stale++
				case days >= lateMinDays && days <= lateMaxDays:
					bucket.Late++
				}
			}
		}
	}

	bucket.AvgHoursToFirstReview = mean(reviewHours)
	bucket.AvgHoursToMerge = mean(mergeHours)
	return nil
}

// GenerateForRepo достраивает бакеты от самой ранней веховой метки
// репозитория до текущей недели и пересчитывает их статистику.
// Повторный вызов не создает новых бакетов и не меняет значений.
func (uc *StatsUseCase) GenerateForRepo(ctx context.Context, repoID int64) ([]*domain.WeekBucket, error) {
	// 1. Ищем самую раннюю веховую метку
	earliest, err := uc.prs.EarliestMilestone(ctx, repoID)
	if err != nil {
		return nil, err
	}
	if earliest == nil {
		// PR еще нет — нечего достраивать
		return []*domain.WeekBucket{}, nil
	}

	// 2. Достраиваем бакеты до текущей недели
	if _, err := uc.catalog.GenerateRange(ctx, repoID, *earliest, uc.now()); err != nil {
		return nil, err
	}

	// 3. Пересчитываем статистику каждого бакета; исходные данные
	// загружаем один раз
	prs, err := uc.prs.ListByRepo(ctx, repoID)
	if err != nil {
		return nil, err
	}
	reviewsByPR, err := uc.reviews.ListByRepo(ctx, repoID)
	if err != nil {
		return nil, err
	}
	buckets, err := uc.buckets.ListByRepo(ctx, repoID)
	if err != nil {
		return nil, err
	}

	for _, bucket := range buckets {
		if err := uc.recompute(bucket, prs, reviewsByPR); err != nil {
			return nil, err
		}
		if err := uc.buckets.UpdateStats(ctx, bucket); err != nil {
			return nil, err
		}
	}
	return buckets, nil
}

// Overview агрегирует бакеты всех репозиториев за последние weeks недель.
func (uc *StatsUseCase) Overview(ctx context.Context, weeks int) (*domain.AggregatedBucketStats, error) {
	if weeks <= 0 {
		weeks = 12
	}

	from := WeekStart(uc.now(), uc.loc).AddDate(0, 0, -7*(weeks-1))
	buckets, err := uc.buckets.ListSince(ctx, from)
	if err != nil {
		return nil, err
	}

	agg := CombineBuckets(buckets)
	agg.Weeks = weeks
	return agg, nil
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := math.Round(sum/float64(len(values))*100) / 100
	return &m
}
