package usecase_test

import (
	"context"
	"testing"
	"time"

	"pr-velocity-service/internal/domain"
	"pr-velocity-service/internal/mocks"
	"pr-velocity-service/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func tp(t time.Time) *time.Time { return &t }

func onDay(day int) any {
	return mock.MatchedBy(func(d time.Time) bool { return d.Day() == day })
}

func TestClassifierUseCase_Classify_PureLookup(t *testing.T) {
	ctx := context.Background()
	prRepo := &mocks.PRRepository{}
	reviewRepo := &mocks.ReviewRepository{}
	bucketRepo := &mocks.BucketRepository{}
	catalog := &mocks.BucketUseCase{}
	uc := usecase.NewClassifierUseCase(prRepo, reviewRepo, bucketRepo, catalog, time.UTC)

	ready := time.Date(2024, time.January, 10, 10, 0, 0, 0, time.UTC)
	merged := time.Date(2024, time.January, 16, 10, 0, 0, 0, time.UTC)
	pr := &domain.PullRequest{ID: 1, RepoID: 1, Number: 42, ReadyForReviewAt: &ready, MergedAt: &merged}

	// самое раннее подходящее ревью побеждает, даже если пришло в базу позже;
	// ревью до ready-for-review игнорируются
	reviewRepo.On("ListByPR", ctx, int64(1)).Return([]*domain.Review{
		{ID: 3, SubmittedAt: time.Date(2024, time.January, 10, 15, 0, 0, 0, time.UTC)},
		{ID: 4, SubmittedAt: time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)},
		{ID: 5, SubmittedAt: time.Date(2024, time.January, 9, 9, 0, 0, 0, time.UTC)},
	}, nil)

	week2 := &domain.WeekBucket{ID: 10, RepoID: 1, Year: 2024, Week: 2}
	bucketRepo.On("GetByDate", ctx, int64(1), onDay(10)).Return(week2, nil)
	// бакета недели мержа еще нет — чистый поиск оставляет nil
	bucketRepo.On("GetByDate", ctx, int64(1), onDay(16)).Return(nil, domain.ErrBucketNotFound)

	refs, err := uc.Classify(ctx, pr)

	assert.NoError(t, err)
	assert.NotNil(t, refs.Ready)
	assert.Equal(t, int64(10), *refs.Ready)
	assert.NotNil(t, refs.FirstReview)
	assert.Equal(t, int64(10), *refs.FirstReview)
	assert.Nil(t, refs.Merged)
	assert.Nil(t, refs.Closed)
	// ничего не создается и не пишется
	catalog.AssertNotCalled(t, "FindOrCreate", mock.Anything, mock.Anything, mock.Anything)
	prRepo.AssertNotCalled(t, "UpdateBucketRefs", mock.Anything, mock.Anything, mock.Anything)
}

func TestClassifierUseCase_ClassifyAndEnsure_Success(t *testing.T) {
	ctx := context.Background()
	prRepo := &mocks.PRRepository{}
	reviewRepo := &mocks.ReviewRepository{}
	bucketRepo := &mocks.BucketRepository{}
	catalog := &mocks.BucketUseCase{}
	uc := usecase.NewClassifierUseCase(prRepo, reviewRepo, bucketRepo, catalog, time.UTC)

	ready := time.Date(2024, time.January, 10, 10, 0, 0, 0, time.UTC)
	merged := time.Date(2024, time.January, 16, 10, 0, 0, 0, time.UTC)
	pr := &domain.PullRequest{ID: 1, RepoID: 1, Number: 42, ReadyForReviewAt: &ready, MergedAt: &merged}

	reviewRepo.On("ListByPR", ctx, int64(1)).Return([]*domain.Review{}, nil)

	week2 := &domain.WeekBucket{ID: 10, RepoID: 1, Year: 2024, Week: 2}
	week3 := &domain.WeekBucket{ID: 11, RepoID: 1, Year: 2024, Week: 3}
	catalog.On("FindOrCreate", ctx, int64(1), ready).Return(week2, nil)
	catalog.On("FindOrCreate", ctx, int64(1), merged).Return(week3, nil)

	prRepo.On("UpdateBucketRefs", ctx, int64(1), mock.MatchedBy(func(refs domain.BucketRefs) bool {
		return refs.Ready != nil && *refs.Ready == 10 &&
			refs.FirstReview == nil &&
			refs.Merged != nil && *refs.Merged == 11 &&
			refs.Closed == nil
	})).Return(nil)

	classified, err := uc.ClassifyAndEnsure(ctx, pr)

	assert.NoError(t, err)
	assert.NotNil(t, classified.ReadyBucketID)
	assert.Equal(t, int64(10), *classified.ReadyBucketID)
	assert.NotNil(t, classified.MergedBucketID)
	assert.Equal(t, int64(11), *classified.MergedBucketID)
	prRepo.AssertExpectations(t)
}

func TestClassifierUseCase_ClassifyAndEnsure_CrossRepoRejected(t *testing.T) {
	ctx := context.Background()
	prRepo := &mocks.PRRepository{}
	reviewRepo := &mocks.ReviewRepository{}
	bucketRepo := &mocks.BucketRepository{}
	catalog := &mocks.BucketUseCase{}
	uc := usecase.NewClassifierUseCase(prRepo, reviewRepo, bucketRepo, catalog, time.UTC)

	ready := time.Date(2024, time.January, 10, 10, 0, 0, 0, time.UTC)
	pr := &domain.PullRequest{ID: 1, RepoID: 1, Number: 42, ReadyForReviewAt: &ready}

	reviewRepo.On("ListByPR", ctx, int64(1)).Return([]*domain.Review{}, nil)

	// бакет чужого репозитория — жесткое нарушение, не тихое зануление
	foreign := &domain.WeekBucket{ID: 77, RepoID: 2, Year: 2024, Week: 2}
	catalog.On("FindOrCreate", ctx, int64(1), ready).Return(foreign, nil)

	classified, err := uc.ClassifyAndEnsure(ctx, pr)

	assert.ErrorIs(t, err, domain.ErrBucketRepoMismatch)
	assert.Nil(t, classified)
	prRepo.AssertNotCalled(t, "UpdateBucketRefs", mock.Anything, mock.Anything, mock.Anything)
}

func TestClassifierUseCase_IngestPullRequest_Validation(t *testing.T) {
	ctx := context.Background()
	prRepo := &mocks.PRRepository{}
	reviewRepo := &mocks.ReviewRepository{}
	bucketRepo := &mocks.BucketRepository{}
	catalog := &mocks.BucketUseCase{}
	uc := usecase.NewClassifierUseCase(prRepo, reviewRepo, bucketRepo, catalog, time.UTC)

	created := time.Date(2024, time.January, 10, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		pr       *domain.PullRequest
		expected error
	}{
		{
			"Invalid number",
			&domain.PullRequest{Number: 0, CreatedAt: created},
			domain.ErrInvalidPRNumber,
		},
		{
			"Merged before created",
			&domain.PullRequest{Number: 1, CreatedAt: created, MergedAt: tp(created.Add(-time.Hour))},
			domain.ErrMilestoneOrder,
		},
		{
			"Merged before ready",
			&domain.PullRequest{Number: 1, CreatedAt: created,
				ReadyForReviewAt: tp(created.Add(2 * time.Hour)),
				MergedAt:         tp(created.Add(time.Hour))},
			domain.ErrMilestoneOrder,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			classified, err := uc.IngestPullRequest(ctx, 1, tc.pr, nil)
			assert.ErrorIs(t, err, tc.expected)
			assert.Nil(t, classified)
		})
	}
	prRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestClassifierUseCase_IngestPullRequest_Success(t *testing.T) {
	ctx := context.Background()
	prRepo := &mocks.PRRepository{}
	reviewRepo := &mocks.ReviewRepository{}
	bucketRepo := &mocks.BucketRepository{}
	catalog := &mocks.BucketUseCase{}
	uc := usecase.NewClassifierUseCase(prRepo, reviewRepo, bucketRepo, catalog, time.UTC)

	created := time.Date(2024, time.January, 10, 10, 0, 0, 0, time.UTC)
	ready := created.Add(time.Hour)
	incoming := &domain.PullRequest{Number: 42, State: domain.PRStateOpen, CreatedAt: created, ReadyForReviewAt: &ready}
	upserted := &domain.PullRequest{ID: 7, RepoID: 1, Number: 42, State: domain.PRStateOpen, CreatedAt: created, ReadyForReviewAt: &ready}

	prRepo.On("Upsert", ctx, incoming).Return(upserted, nil)
	reviewRepo.On("Upsert", ctx, mock.MatchedBy(func(rv *domain.Review) bool {
		return rv.PullRequestID == 7 && rv.Author == "alice"
	})).Return(nil)
	reviewRepo.On("ListByPR", ctx, int64(7)).Return([]*domain.Review{}, nil)

	week2 := &domain.WeekBucket{ID: 10, RepoID: 1, Year: 2024, Week: 2}
	catalog.On("FindOrCreate", ctx, int64(1), ready).Return(week2, nil)
	prRepo.On("UpdateBucketRefs", ctx, int64(7), mock.Anything).Return(nil)

	classified, err := uc.IngestPullRequest(ctx, 1, incoming, []*domain.Review{
		{Author: "alice", State: domain.ReviewStateApproved, SubmittedAt: ready.Add(time.Hour)},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), classified.ID)
	prRepo.AssertExpectations(t)
	reviewRepo.AssertExpectations(t)
}
