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

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekStart(t *testing.T) {
	testCases := []struct {
		name     string
		at       time.Time
		expected time.Time
	}{
		{"Monday stays", date(2024, time.January, 8), date(2024, time.January, 8)},
		{"Wednesday backs up", time.Date(2024, time.January, 10, 15, 30, 0, 0, time.UTC), date(2024, time.January, 8)},
		{"Sunday backs up", date(2024, time.January, 14), date(2024, time.January, 8)},
		{"Year boundary", date(2025, time.January, 1), date(2024, time.December, 30)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := usecase.WeekStart(tc.at, time.UTC)
			assert.True(t, got.Equal(tc.expected), "got %v, want %v", got, tc.expected)
		})
	}
}

func TestBucketUseCase_FindOrCreate_Existing(t *testing.T) {
	ctx := context.Background()
	bucketRepo := &mocks.BucketRepository{}
	uc := usecase.NewBucketUseCase(bucketRepo, time.UTC)

	existing := &domain.WeekBucket{ID: 10, RepoID: 1, Year: 2024, Week: 2}
	bucketRepo.On("GetByPeriod", ctx, int64(1), 2024, 2).Return(existing, nil)

	// среда 10 января → неделя понедельника 8 января, ISO week 2
	bucket, err := uc.FindOrCreate(ctx, 1, time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.Equal(t, existing, bucket)
	bucketRepo.AssertNotCalled(t, "InsertIgnoreConflict", mock.Anything, mock.Anything)
}

func TestBucketUseCase_FindOrCreate_Creates(t *testing.T) {
	ctx := context.Background()
	bucketRepo := &mocks.BucketRepository{}
	uc := usecase.NewBucketUseCase(bucketRepo, time.UTC)

	created := &domain.WeekBucket{ID: 11, RepoID: 1, Year: 2024, Week: 2,
		BeginDate: date(2024, time.January, 8), EndDate: date(2024, time.January, 14)}

	bucketRepo.On("GetByPeriod", ctx, int64(1), 2024, 2).Return(nil, domain.ErrBucketNotFound).Once()
	bucketRepo.On("FindOverlapping", ctx, int64(1), mock.Anything, mock.Anything, 2024, 2).
		Return([]*domain.WeekBucket{}, nil)
	bucketRepo.On("InsertIgnoreConflict", ctx, mock.MatchedBy(func(b *domain.WeekBucket) bool {
		return b.RepoID == 1 && b.Year == 2024 && b.Week == 2 &&
			b.BeginDate.Equal(date(2024, time.January, 8)) &&
			b.EndDate.Equal(date(2024, time.January, 14))
	})).Return(nil)
	bucketRepo.On("GetByPeriod", ctx, int64(1), 2024, 2).Return(created, nil).Once()

	bucket, err := uc.FindOrCreate(ctx, 1, time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.Equal(t, created, bucket)
	bucketRepo.AssertExpectations(t)
}

func TestBucketUseCase_FindOrCreate_YearBoundaryKey(t *testing.T) {
	ctx := context.Background()
	bucketRepo := &mocks.BucketRepository{}
	uc := usecase.NewBucketUseCase(bucketRepo, time.UTC)

	// 31 декабря 2024 лежит в неделе понедельника 30 декабря 2024,
	// которая по ISO относится к первой неделе 2025 года: ключ (2025, 1)
	created := &domain.WeekBucket{ID: 12, RepoID: 1, Year: 2025, Week: 1}
	bucketRepo.On("GetByPeriod", ctx, int64(1), 2025, 1).Return(nil, domain.ErrBucketNotFound).Once()
	bucketRepo.On("FindOverlapping", ctx, int64(1), mock.Anything, mock.Anything, 2025, 1).
		Return([]*domain.WeekBucket{}, nil)
	bucketRepo.On("InsertIgnoreConflict", ctx, mock.MatchedBy(func(b *domain.WeekBucket) bool {
		return b.Year == 2025 && b.Week == 1 &&
			b.BeginDate.Equal(date(2024, time.December, 30)) &&
			b.EndDate.Equal(date(2025, time.January, 5))
	})).Return(nil)
	bucketRepo.On("GetByPeriod", ctx, int64(1), 2025, 1).Return(created, nil).Once()

	bucket, err := uc.FindOrCreate(ctx, 1, date(2024, time.December, 31))

	assert.NoError(t, err)
	assert.Equal(t, created, bucket)
}

func TestBucketUseCase_FindOrCreate_YearBoundaryKeysDistinct(t *testing.T) {
	ctx := context.Background()
	bucketRepo := &mocks.BucketRepository{}
	uc := usecase.NewBucketUseCase(bucketRepo, time.UTC)

	// 2024 начинается с понедельника: неделя 1–7 января — (2024, 1),
	// неделя 30 декабря — (2025, 1). Декабрьская метка не должна
	// резолвиться в январский бакет
	janBucket := &domain.WeekBucket{ID: 1, RepoID: 1, Year: 2024, Week: 1,
		BeginDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 7)}
	decBucket := &domain.WeekBucket{ID: 2, RepoID: 1, Year: 2025, Week: 1,
		BeginDate: date(2024, time.December, 30), EndDate: date(2025, time.January, 5)}
	bucketRepo.On("GetByPeriod", ctx, int64(1), 2024, 1).Return(janBucket, nil)
	bucketRepo.On("GetByPeriod", ctx, int64(1), 2025, 1).Return(decBucket, nil)

	january, err := uc.FindOrCreate(ctx, 1, date(2024, time.January, 3))
	assert.NoError(t, err)
	december, err := uc.FindOrCreate(ctx, 1, date(2024, time.December, 31))
	assert.NoError(t, err)

	assert.NotEqual(t, january.ID, december.ID)
	assert.True(t, december.ContainsDate(date(2024, time.December, 31)))
	assert.False(t, january.ContainsDate(date(2024, time.December, 31)))
}

func TestBucketUseCase_FindOrCreate_OverlapIsFatal(t *testing.T) {
	ctx := context.Background()
	bucketRepo := &mocks.BucketRepository{}
	uc := usecase.NewBucketUseCase(bucketRepo, time.UTC)

	conflicting := &domain.WeekBucket{ID: 99, RepoID: 1, Year: 2023, Week: 52}
	bucketRepo.On("GetByPeriod", ctx, int64(1), 2024, 2).Return(nil, domain.ErrBucketNotFound)
	bucketRepo.On("FindOverlapping", ctx, int64(1), mock.Anything, mock.Anything, 2024, 2).
		Return([]*domain.WeekBucket{conflicting}, nil)

	bucket, err := uc.FindOrCreate(ctx, 1, date(2024, time.January, 10))

	assert.ErrorIs(t, err, domain.ErrBucketOverlap)
	assert.Nil(t, bucket)
	bucketRepo.AssertNotCalled(t, "InsertIgnoreConflict", mock.Anything, mock.Anything)
}

func TestBucketUseCase_GenerateRange(t *testing.T) {
	ctx := context.Background()
	bucketRepo := &mocks.BucketRepository{}
	uc := usecase.NewBucketUseCase(bucketRepo, time.UTC)

	// среда 10 января → вторник 23 января: недели 8, 15 и 22 января
	weeks := []struct {
		week   int
		bucket *domain.WeekBucket
	}{
		{2, &domain.WeekBucket{ID: 1, RepoID: 1, Year: 2024, Week: 2}},
		{3, &domain.WeekBucket{ID: 2, RepoID: 1, Year: 2024, Week: 3}},
		{4, &domain.WeekBucket{ID: 3, RepoID: 1, Year: 2024, Week: 4}},
	}
	for _, w := range weeks {
		bucketRepo.On("GetByPeriod", ctx, int64(1), 2024, w.week).Return(w.bucket, nil)
	}

	buckets, err := uc.GenerateRange(ctx, 1,
		date(2024, time.January, 10), date(2024, time.January, 23))

	assert.NoError(t, err)
	assert.Len(t, buckets, 3)
	assert.Equal(t, int64(1), buckets[0].ID)
	assert.Equal(t, int64(3), buckets[2].ID)
}
