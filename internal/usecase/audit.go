package usecase

import (
	"context"

	"pr-velocity-service/internal/domain"
)

// AuditUseCase находит и чинит дрейф классификации: расхождения между
// сохраненными ссылками на бакеты и бакетами, пересчитанными из веховых
// меток. Во время обычной классификации никогда не вызывается — починка
// идет только по явному запросу.
type AuditUseCase struct {
	prs        domain.PRRepository
	reviews    domain.ReviewRepository
	classifier domain.ClassifierUseCase
	stats      domain.StatsUseCase
}

// NewAuditUseCase создает новый экземпляр AuditUseCase.
func NewAuditUseCase(
	prs domain.PRRepository,
	reviews domain.ReviewRepository,
	classifier domain.ClassifierUseCase,
	stats domain.StatsUseCase,
) *AuditUseCase {
	return &AuditUseCase{
		prs:        prs,
		reviews:    reviews,
		classifier: classifier,
		stats:      stats,
	}
}

// Audit сравнивает сохраненные ссылки каждого PR с результатом чистого
// поиска классификатора и возвращает структурированные расхождения.
func (uc *AuditUseCase) Audit(ctx context.Context, repoID int64) ([]*domain.Discrepancy, error) {
	prs, err := uc.prs.ListByRepo(ctx, repoID)
	if err != nil {
		return nil, err
	}

	discrepancies := make([]*domain.Discrepancy, 0)
	for _, pr := range prs {
		found, err := uc.auditPR(ctx, pr)
		if err != nil {
			return nil, err
		}
		discrepancies = append(discrepancies, found...)
	}
	return discrepancies, nil
}

// auditPR проверяет четыре слота одного PR.
func (uc *AuditUseCase) auditPR(ctx context.Context, pr *domain.PullRequest) ([]*domain.Discrepancy, error) {
	expected, err := uc.classifier.Classify(ctx, pr)
	if err != nil {
		return nil, err
	}

	reviews, err := uc.reviews.ListByPR(ctx, pr.ID)
	if err != nil {
		return nil, err
	}

	present := map[domain.Milestone]bool{
		domain.MilestoneReadyForReview: pr.ReadyForReviewAt != nil,
		domain.MilestoneFirstReview:    domain.ValidFirstReview(pr, reviews) != nil,
		domain.MilestoneMerged:         pr.MergedAt != nil,
		domain.MilestoneClosed:         pr.ClosedAt != nil,
	}

	stored := pr.Refs()
	found := make([]*domain.Discrepancy, 0)

	for _, milestone := range domain.Milestones {
		storedRef := stored.Get(milestone)
		expectedRef := expected.Get(milestone)

		var kind domain.DriftKind
		switch {
		case !present[milestone] && storedRef != nil:
			// метки нет, а ссылка осталась
			kind = domain.DriftOrphanedAssociation
		case present[milestone] && storedRef == nil && expectedRef != nil:
			// корректный бакет существует, но не привязан
			kind = domain.DriftMissingAssociation
		case present[milestone] && storedRef != nil &&
			(expectedRef == nil || *expectedRef != *storedRef):
			// ссылка указывает на бакет, не содержащий метку
			kind = domain.DriftMisassociated
		default:
			continue
		}

		found = append(found, &domain.Discrepancy{
			PullRequestID:    pr.ID,
			Number:           pr.Number,
			Milestone:        milestone,
			Kind:             kind,
			StoredBucketID:   storedRef,
			ExpectedBucketID: expectedRef,
		})
	}
	return found, nil
}

// Repair чинит найденные расхождения. Идемпотентен: после успешного прогона
// повторный аудит не находит расхождений. В режиме dryRun только считает.
func (uc *AuditUseCase) Repair(ctx context.Context, repoID int64, dryRun bool) (*domain.RepairReport, error) {
	discrepancies, err := uc.Audit(ctx, repoID)
	if err != nil {
		return nil, err
	}

	report := &domain.RepairReport{
		DryRun:        dryRun,
		Discrepancies: discrepancies,
	}
	for _, d := range discrepancies {
		switch d.Kind {
		case domain.DriftMisassociated:
			report.Reassigned++
		case domain.DriftMissingAssociation:
			report.Assigned++
		case domain.DriftOrphanedAssociation:
			report.Cleared++
		}
	}

	if dryRun || len(discrepancies) == 0 {
		return report, nil
	}

	// 1. Группируем расхождения по PR и правим ссылки одной записью на PR
	byPR := make(map[int64][]*domain.Discrepancy)
	order := make([]int64, 0)
	for _, d := range discrepancies {
		if _, seen := byPR[d.PullRequestID]; !seen {
			order = append(order, d.PullRequestID)
		}
		byPR[d.PullRequestID] = append(byPR[d.PullRequestID], d)
	}

	affected := make(map[int64]struct{})
	for _, prID := range order {
		pr, err := uc.prs.GetByID(ctx, prID)
		if err != nil {
			return nil, err
		}

		refs := pr.Refs()
		for _, d := range byPR[prID] {
			if d.StoredBucketID != nil {
				affected[*d.StoredBucketID] = struct{}{}
			}
			if d.ExpectedBucketID != nil {
				affected[*d.ExpectedBucketID] = struct{}{}
			}
			refs.Set(d.Milestone, d.ExpectedBucketID)
		}

		if err := uc.prs.UpdateBucketRefs(ctx, prID, refs); err != nil {
			return nil, err
		}
	}

	// 2. Пересчитываем статистику затронутых бакетов
	for bucketID := range affected {
		if _, err := uc.stats.UpdateBucket(ctx, bucketID); err != nil {
			return nil, err
		}
		report.BucketsRecomputed++
	}

	return report, nil
}
