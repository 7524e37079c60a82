package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pr-velocity-service/internal/domain"
)

// ClassifierUseCase раскладывает веховые метки PR по недельным бакетам.
type ClassifierUseCase struct {
	prs     domain.PRRepository
	reviews domain.ReviewRepository
	buckets domain.BucketRepository
	catalog domain.BucketUseCase
	loc     *time.Location
}

// NewClassifierUseCase создает новый экземпляр ClassifierUseCase.
func NewClassifierUseCase(
	prs domain.PRRepository,
	reviews domain.ReviewRepository,
	buckets domain.BucketRepository,
	catalog domain.BucketUseCase,
	loc *time.Location,
) *ClassifierUseCase {
	return &ClassifierUseCase{
		prs:     prs,
		reviews: reviews,
		buckets: buckets,
		catalog: catalog,
		loc:     loc,
	}
}

// milestoneTimes возвращает фактические моменты четырех веховых меток.
// Метка первого ревью берется из ValidFirstReview, а не из времени загрузки:
// всегда самое раннее подходящее ревью, даже если оно пришло в базу позже.
func (uc *ClassifierUseCase) milestoneTimes(ctx context.Context, pr *domain.PullRequest) (map[domain.Milestone]*time.Time, error) {
	reviews, err := uc.reviews.ListByPR(ctx, pr.ID)
	if err != nil {
		return nil, err
	}

	times := map[domain.Milestone]*time.Time{
		domain.MilestoneReadyForReview: pr.ReadyForReviewAt,
		domain.MilestoneMerged:         pr.MergedAt,
		domain.MilestoneClosed:         pr.ClosedAt,
	}
	if first := domain.ValidFirstReview(pr, reviews); first != nil {
		t := first.SubmittedAt
		times[domain.MilestoneFirstReview] = &t
	} else {
		times[domain.MilestoneFirstReview] = nil
	}
	return times, nil
}

// Classify — чистый поиск: назначает только существующие бакеты, ничего не
// создает и не сохраняет. Используется при аудите дрейфа.
func (uc *ClassifierUseCase) Classify(ctx context.Context, pr *domain.PullRequest) (domain.BucketRefs, error) {
	var refs domain.BucketRefs

	times, err := uc.milestoneTimes(ctx, pr)
	if err != nil {
		return refs, err
	}

	for _, milestone := range domain.Milestones {
		at := times[milestone]
		if at == nil {
			continue
		}

		bucket, err := uc.buckets.GetByDate(ctx, pr.RepoID, at.In(uc.loc))
		if err != nil {
			if errors.Is(err, domain.ErrBucketNotFound) {
				continue
			}
			return domain.BucketRefs{}, err
		}
		if err := validateOwnership(pr, bucket); err != nil {
			return domain.BucketRefs{}, err
		}
		refs.Set(milestone, &bucket.ID)
	}
	return refs, nil
}

// ClassifyAndEnsure создает недостающие бакеты и сохраняет ссылки PR.
// Все четыре ссылки коммитятся одной записью.
func (uc *ClassifierUseCase) ClassifyAndEnsure(ctx context.Context, pr *domain.PullRequest) (*domain.PullRequest, error) {
	var refs domain.BucketRefs

	times, err := uc.milestoneTimes(ctx, pr)
	if err != nil {
		return nil, err
	}

	// 1. Находим или создаем бакет каждой присутствующей метки
	for _, milestone := range domain.Milestones {
		at := times[milestone]
		if at == nil {
			continue
		}

		bucket, err := uc.catalog.FindOrCreate(ctx, pr.RepoID, *at)
		if err != nil {
			return nil, err
		}

		// 2. Владелец бакета обязан совпадать с владельцем PR
		if err := validateOwnership(pr, bucket); err != nil {
			return nil, err
		}
		refs.Set(milestone, &bucket.ID)
	}

	// 3. Сохраняем все ссылки одним запросом
	if err := uc.prs.UpdateBucketRefs(ctx, pr.ID, refs); err != nil {
		return nil, err
	}

	pr.ApplyRefs(refs)
	return pr, nil
}

// IngestPullRequest принимает запись PR и его ревью от коллектора:
// валидирует, апсертит и переклассифицирует.
func (uc *ClassifierUseCase) IngestPullRequest(ctx context.Context, repoID int64, pr *domain.PullRequest, reviews []*domain.Review) (*domain.PullRequest, error) {
	// 1. Валидация входных данных
	if pr.Number <= 0 {
		return nil, domain.ErrInvalidPRNumber
	}
	if err := validateMilestoneOrder(pr); err != nil {
		return nil, err
	}

	// 2. Апсертим PR (повторная загрузка страницы идемпотентна)
	pr.RepoID = repoID
	upserted, err := uc.prs.Upsert(ctx, pr)
	if err != nil {
		return nil, err
	}

	// 3. Апсертим ревью: дубликаты гасятся уникальным ограничением
	for _, rv := range reviews {
		rv.PullRequestID = upserted.ID
		if err := uc.reviews.Upsert(ctx, rv); err != nil {
			return nil, err
		}
	}

	// 4. Переклассифицируем: могла появиться новая метка либо более раннее
	// подходящее ревью
	return uc.ClassifyAndEnsure(ctx, upserted)
}

// validateOwnership проверяет, что бакет принадлежит репозиторию PR.
func validateOwnership(pr *domain.PullRequest, bucket *domain.WeekBucket) error {
	if bucket.RepoID != pr.RepoID {
		return fmt.Errorf("%w: pull request %d of repo %d got bucket %d of repo %d",
			domain.ErrBucketRepoMismatch, pr.Number, pr.RepoID, bucket.ID, bucket.RepoID)
	}
	return nil
}

// validateMilestoneOrder проверяет монотонность присутствующих веховых меток.
func validateMilestoneOrder(pr *domain.PullRequest) error {
	after := func(base time.Time, t *time.Time) bool {
		return t != nil && t.Before(base)
	}
	if after(pr.CreatedAt, pr.ReadyForReviewAt) ||
		after(pr.CreatedAt, pr.MergedAt) ||
		after(pr.CreatedAt, pr.ClosedAt) {
		return domain.ErrMilestoneOrder
	}
	if pr.ReadyForReviewAt != nil && after(*pr.ReadyForReviewAt, pr.MergedAt) {
		return domain.ErrMilestoneOrder
	}
	return nil
}
