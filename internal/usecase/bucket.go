package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pr-velocity-service/internal/domain"
)

// BucketUseCase реализует каталог недельных бакетов.
type BucketUseCase struct {
	buckets domain.BucketRepository
	loc     *time.Location
}

// NewBucketUseCase создает новый экземпляр BucketUseCase. Канонический пояс
// для границ недель передается явно, глобальное состояние не используется.
func NewBucketUseCase(buckets domain.BucketRepository, loc *time.Location) *BucketUseCase {
	return &BucketUseCase{
		buckets: buckets,
		loc:     loc,
	}
}

// FindOrCreate возвращает бакет недели, содержащей момент at, создавая его
// при необходимости. Безопасен при конкурентных вызовах: вставка идет через
// уникальное ограничение, проигравший гонку перечитывает строку победителя.
func (uc *BucketUseCase) FindOrCreate(ctx context.Context, repoID int64, at time.Time) (*domain.WeekBucket, error) {
	begin := WeekStart(at, uc.loc)
	end := begin.AddDate(0, 0, 6)
	// обе компоненты ключа берутся из ISOWeek: календарный год понедельника
	// вместе с ISO-номером недели коллидирует на границе годов (неделя
	// 1–7 января 2024 и неделя 30 декабря 2024 дали бы один ключ (2024, 1))
	year, week := begin.ISOWeek()

	// 1. Быстрый путь: бакет уже существует
	bucket, err := uc.buckets.GetByPeriod(ctx, repoID, year, week)
	if err == nil {
		return bucket, nil
	}
	if !errors.Is(err, domain.ErrBucketNotFound) {
		return nil, err
	}

	// 2. Пересечение диапазонов с чужим периодом — порча данных, не создаем
	overlapping, err := uc.buckets.FindOverlapping(ctx, repoID, begin, end, year, week)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, fmt.Errorf("%w: repo %d, period (%d, %d) overlaps bucket %d",
			domain.ErrBucketOverlap, repoID, year, week, overlapping[0].ID)
	}

	// 3. Атомарная вставка с игнорированием конфликта
	err = uc.buckets.InsertIgnoreConflict(ctx, &domain.WeekBucket{
		RepoID:    repoID,
		Year:      year,
		Week:      week,
		BeginDate: begin,
		EndDate:   end,
	})
	if err != nil {
		return nil, err
	}

	// 4. Перечитываем строку: свою либо победителя гонки
	return uc.buckets.GetByPeriod(ctx, repoID, year, week)
}

// GenerateRange создает бакеты всех недель, пересекающих [from, to].
// Идемпотентен: существующие бакеты просто возвращаются.
func (uc *BucketUseCase) GenerateRange(ctx context.Context, repoID int64, from, to time.Time) ([]*domain.WeekBucket, error) {
	first := WeekStart(from, uc.loc)
	last := WeekStart(to, uc.loc)
	if last.Before(first) {
		first, last = last, first
	}

	buckets := make([]*domain.WeekBucket, 0)
	for week := first; !week.After(last); week = week.AddDate(0, 0, 7) {
		bucket, err := uc.FindOrCreate(ctx, repoID, week)
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

// WeekStart возвращает понедельник 00:00 недели момента t в поясе loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)
	// понедельник — начало недели
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
