// Package mocks содержит testify-моки контрактов domain для unit-тестов.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"pr-velocity-service/internal/domain"
)

// RepoRepository — мок domain.RepoRepository.
type RepoRepository struct {
	mock.Mock
}

func (m *RepoRepository) Create(ctx context.Context, name string) (*domain.Repo, error) {
	args := m.Called(ctx, name)
	if repo, ok := args.Get(0).(*domain.Repo); ok {
		return repo, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoRepository) GetByName(ctx context.Context, name string) (*domain.Repo, error) {
	args := m.Called(ctx, name)
	if repo, ok := args.Get(0).(*domain.Repo); ok {
		return repo, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoRepository) GetByID(ctx context.Context, id int64) (*domain.Repo, error) {
	args := m.Called(ctx, id)
	if repo, ok := args.Get(0).(*domain.Repo); ok {
		return repo, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoRepository) GetAll(ctx context.Context) ([]*domain.Repo, error) {
	args := m.Called(ctx)
	if repos, ok := args.Get(0).([]*domain.Repo); ok {
		return repos, args.Error(1)
	}
	return nil, args.Error(1)
}

// BucketRepository — мок domain.BucketRepository.
type BucketRepository struct {
	mock.Mock
}

func (m *BucketRepository) InsertIgnoreConflict(ctx context.Context, bucket *domain.WeekBucket) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

func (m *BucketRepository) GetByPeriod(ctx context.Context, repoID int64, year, week int) (*domain.WeekBucket, error) {
	args := m.Called(ctx, repoID, year, week)
	if b, ok := args.Get(0).(*domain.WeekBucket); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BucketRepository) GetByID(ctx context.Context, id int64) (*domain.WeekBucket, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*domain.WeekBucket); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BucketRepository) GetByDate(ctx context.Context, repoID int64, day time.Time) (*domain.WeekBucket, error) {
	args := m.Called(ctx, repoID, day)
	if b, ok := args.Get(0).(*domain.WeekBucket); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BucketRepository) ListByRepo(ctx context.Context, repoID int64) ([]*domain.WeekBucket, error) {
	args := m.Called(ctx, repoID)
	if buckets, ok := args.Get(0).([]*domain.WeekBucket); ok {
		return buckets, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BucketRepository) ListSince(ctx context.Context, from time.Time) ([]*domain.WeekBucket, error) {
	args := m.Called(ctx, from)
	if buckets, ok := args.Get(0).([]*domain.WeekBucket); ok {
		return buckets, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BucketRepository) FindOverlapping(ctx context.Context, repoID int64, begin, end time.Time, year, week int) ([]*domain.WeekBucket, error) {
	args := m.Called(ctx, repoID, begin, end, year, week)
	if buckets, ok := args.Get(0).([]*domain.WeekBucket); ok {
		return buckets, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BucketRepository) UpdateStats(ctx context.Context, bucket *domain.WeekBucket) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

// PRRepository — мок domain.PRRepository.
type PRRepository struct {
	mock.Mock
}

func (m *PRRepository) Upsert(ctx context.Context, pr *domain.PullRequest) (*domain.PullRequest, error) {
	args := m.Called(ctx, pr)
	if upserted, ok := args.Get(0).(*domain.PullRequest); ok {
		return upserted, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PRRepository) GetByID(ctx context.Context, id int64) (*domain.PullRequest, error) {
	args := m.Called(ctx, id)
	if pr, ok := args.Get(0).(*domain.PullRequest); ok {
		return pr, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PRRepository) GetByNumber(ctx context.Context, repoID, number int64) (*domain.PullRequest, error) {
	args := m.Called(ctx, repoID, number)
	if pr, ok := args.Get(0).(*domain.PullRequest); ok {
		return pr, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PRRepository) ListByRepo(ctx context.Context, repoID int64) ([]*domain.PullRequest, error) {
	args := m.Called(ctx, repoID)
	if prs, ok := args.Get(0).([]*domain.PullRequest); ok {
		return prs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PRRepository) UpdateBucketRefs(ctx context.Context, prID int64, refs domain.BucketRefs) error {
	args := m.Called(ctx, prID, refs)
	return args.Error(0)
}

func (m *PRRepository) EarliestMilestone(ctx context.Context, repoID int64) (*time.Time, error) {
	args := m.Called(ctx, repoID)
	if t, ok := args.Get(0).(*time.Time); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

// ReviewRepository — мок domain.ReviewRepository.
type ReviewRepository struct {
	mock.Mock
}

func (m *ReviewRepository) Upsert(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *ReviewRepository) ListByPR(ctx context.Context, prID int64) ([]*domain.Review, error) {
	args := m.Called(ctx, prID)
	if reviews, ok := args.Get(0).([]*domain.Review); ok {
		return reviews, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReviewRepository) ListByRepo(ctx context.Context, repoID int64) (map[int64][]*domain.Review, error) {
	args := m.Called(ctx, repoID)
	if reviews, ok := args.Get(0).(map[int64][]*domain.Review); ok {
		return reviews, args.Error(1)
	}
	return nil, args.Error(1)
}

// BucketUseCase — мок domain.BucketUseCase.
type BucketUseCase struct {
	mock.Mock
}

func (m *BucketUseCase) FindOrCreate(ctx context.Context, repoID int64, at time.Time) (*domain.WeekBucket, error) {
	args := m.Called(ctx, repoID, at)
	if b, ok := args.Get(0).(*domain.WeekBucket); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BucketUseCase) GenerateRange(ctx context.Context, repoID int64, from, to time.Time) ([]*domain.WeekBucket, error) {
	args := m.Called(ctx, repoID, from, to)
	if buckets, ok := args.Get(0).([]*domain.WeekBucket); ok {
		return buckets, args.Error(1)
	}
	return nil, args.Error(1)
}

// ClassifierUseCase — мок domain.ClassifierUseCase.
type ClassifierUseCase struct {
	mock.Mock
}

func (m *ClassifierUseCase) Classify(ctx context.Context, pr *domain.PullRequest) (domain.BucketRefs, error) {
	args := m.Called(ctx, pr)
	if refs, ok := args.Get(0).(domain.BucketRefs); ok {
		return refs, args.Error(1)
	}
	return domain.BucketRefs{}, args.Error(1)
}

func (m *ClassifierUseCase) ClassifyAndEnsure(ctx context.Context, pr *domain.PullRequest) (*domain.PullRequest, error) {
	args := m.Called(ctx, pr)
	if classified, ok := args.Get(0).(*domain.PullRequest); ok {
		return classified, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClassifierUseCase) IngestPullRequest(ctx context.Context, repoID int64, pr *domain.PullRequest, reviews []*domain.Review) (*domain.PullRequest, error) {
	args := m.Called(ctx, repoID, pr, reviews)
	if classified, ok := args.Get(0).(*domain.PullRequest); ok {
		return classified, args.Error(1)
	}
	return nil, args.Error(1)
}

// StatsUseCase — мок domain.StatsUseCase.
type StatsUseCase struct {
	mock.Mock
}

func (m *StatsUseCase) UpdateBucket(ctx context.Context, bucketID int64) (*domain.WeekBucket, error) {
	args := m.Called(ctx, bucketID)
	if b, ok := args.Get(0).(*domain.WeekBucket); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StatsUseCase) GenerateForRepo(ctx context.Context, repoID int64) ([]*domain.WeekBucket, error) {
	args := m.Called(ctx, repoID)
	if buckets, ok := args.Get(0).([]*domain.WeekBucket); ok {
		return buckets, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StatsUseCase) Overview(ctx context.Context, weeks int) (*domain.AggregatedBucketStats, error) {
	args := m.Called(ctx, weeks)
	if agg, ok := args.Get(0).(*domain.AggregatedBucketStats); ok {
		return agg, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditUseCase — мок domain.AuditUseCase.
type AuditUseCase struct {
	mock.Mock
}

func (m *AuditUseCase) Audit(ctx context.Context, repoID int64) ([]*domain.Discrepancy, error) {
	args := m.Called(ctx, repoID)
	if discrepancies, ok := args.Get(0).([]*domain.Discrepancy); ok {
		return discrepancies, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuditUseCase) Repair(ctx context.Context, repoID int64, dryRun bool) (*domain.RepairReport, error) {
	args := m.Called(ctx, repoID, dryRun)
	if report, ok := args.Get(0).(*domain.RepairReport); ok {
		return report, args.Error(1)
	}
	return nil, args.Error(1)
}
