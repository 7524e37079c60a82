package domain

import (
	"context"
	"time"
)

// WeekBucket представляет одну календарную неделю одного репозитория.
// Ключ периода составной: (ISO-год, ISO-номер недели) понедельника.
// Склейка вида year*100+week намеренно не используется — она неоднозначна
// на границе годов.
type WeekBucket struct {
	ID     int64
	RepoID int64
	Year   int
	Week   int

	// BeginDate — понедельник недели, EndDate — её воскресенье (включительно).
	BeginDate time.Time
	EndDate   time.Time

	// Кэшированные метрики. Пишутся только агрегатором статистики и в любой
	// момент могут быть пересчитаны из исходных данных.
	Started       int
	Merged        int
	FirstReviewed int
	Cancelled     int
	Open          int
	Late          int
	Stale         int

	AvgHoursToFirstReview *float64
	AvgHoursToMerge       *float64
}

// EndInstant возвращает последний момент недели бакета в каноническом поясе.
func (b *WeekBucket) EndInstant(loc *time.Location) time.Time {
	y, m, d := b.EndDate.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, loc)
}

// ContainsDate сообщает, попадает ли календарная дата в диапазон бакета.
func (b *WeekBucket) ContainsDate(day time.Time) bool {
	y, m, d := day.Date()
	day = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = b.BeginDate.Date()
	begin := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = b.EndDate.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return !day.Before(begin) && !day.After(end)
}

// BucketRepository определяет контракт для работы с хранилищем недельных бакетов.
type BucketRepository interface {
	// InsertIgnoreConflict атомарно создаёт бакет; при гонке за один и тот же
	// период вставка проигравшего молча игнорируется за счёт уникального
	// ограничения (repository_id, year, week).
	InsertIgnoreConflict(ctx context.Context, bucket *WeekBucket) error
	GetByPeriod(ctx context.Context, repoID int64, year, week int) (*WeekBucket, error)
	GetByID(ctx context.Context, id int64) (*WeekBucket, error)
	// GetByDate возвращает бакет, в чей диапазон дат попадает day.
	GetByDate(ctx context.Context, repoID int64, day time.Time) (*WeekBucket, error)
	ListByRepo(ctx context.Context, repoID int64) ([]*WeekBucket, error)
	// ListSince возвращает бакеты всех репозиториев, начавшиеся не раньше from.
	ListSince(ctx context.Context, from time.Time) ([]*WeekBucket, error)
	// FindOverlapping ищет бакеты репозитория, чей диапазон пересекается с
	// [begin, end], кроме бакета с указанным ключом периода.
	FindOverlapping(ctx context.Context, repoID int64, begin, end time.Time, year, week int) ([]*WeekBucket, error)
	UpdateStats(ctx context.Context, bucket *WeekBucket) error
}
