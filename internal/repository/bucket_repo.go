package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pr-velocity-service/internal/domain"
)

const bucketColumns = `id, repository_id, year, week, begin_date, end_date,
	started_count, merged_count, first_reviewed_count, cancelled_count,
	open_count, late_count, stale_count,
	avg_hours_to_first_review, avg_hours_to_merge`

// BucketRepository реализует работу с недельными бакетами в PostgreSQL.
type BucketRepository struct {
	db *sql.DB
}

// NewBucketRepository создает новый экземпляр BucketRepository.
func NewBucketRepository(db *sql.DB) domain.BucketRepository {
	return &BucketRepository{db: db}
}

// InsertIgnoreConflict атомарно вставляет бакет. Конкурирующая вставка того же
// периода разрешается уникальным ограничением (repository_id, year, week):
// проигравший ничего не вставляет и перечитывает строку победителя.
func (r *BucketRepository) InsertIgnoreConflict(ctx context.Context, b *domain.WeekBucket) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO week_buckets (repository_id, year, week, begin_date, end_date)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (repository_id, year, week) DO NOTHING`,
		b.RepoID, b.Year, b.Week, dateArg(b.BeginDate), dateArg(b.EndDate),
	)
	if err != nil {
		return fmt.Errorf("failed to insert week bucket: %w", err)
	}
	return nil
}

// GetByPeriod возвращает бакет по составному ключу периода.
func (r *BucketRepository) GetByPeriod(ctx context.Context, repoID int64, year, week int) (*domain.WeekBucket, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bucketColumns+` FROM week_buckets
		 WHERE repository_id = $1 AND year = $2 AND week = $3`,
		repoID, year, week,
	)
	return scanBucket(row)
}

// GetByID возвращает бакет по идентификатору.
func (r *BucketRepository) GetByID(ctx context.Context, id int64) (*domain.WeekBucket, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bucketColumns+` FROM week_buckets WHERE id = $1`, id)
	return scanBucket(row)
}

// GetByDate возвращает бакет, в чей диапазон дат попадает день.
func (r *BucketRepository) GetByDate(ctx context.Context, repoID int64, day time.Time) (*domain.WeekBucket, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bucketColumns+` FROM week_buckets
		 WHERE repository_id = $1 AND begin_date <= $2 AND end_date >= $2`,
		repoID, dateArg(day),
	)
	return scanBucket(row)
}

// ListByRepo возвращает все бакеты репозитория в хронологическом порядке.
func (r *BucketRepository) ListByRepo(ctx context.Context, repoID int64) ([]*domain.WeekBucket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bucketColumns+` FROM week_buckets
		 WHERE repository_id = $1 ORDER BY begin_date`,
		repoID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list week buckets: %w", err)
	}
	return scanBuckets(rows)
}

// ListSince возвращает бакеты всех репозиториев, начавшиеся не раньше from.
func (r *BucketRepository) ListSince(ctx context.Context, from time.Time) ([]*domain.WeekBucket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bucketColumns+` FROM week_buckets
		 WHERE begin_date >= $1 ORDER BY repository_id, begin_date`,
		dateArg(from),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list week buckets since: %w", err)
	}
	return scanBuckets(rows)
}

// FindOverlapping ищет бакеты с пересекающимся диапазоном дат, исключая
// бакет с указанным ключом периода.
func (r *BucketRepository) FindOverlapping(ctx context.Context, repoID int64, begin, end time.Time, year, week int) ([]*domain.WeekBucket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bucketColumns+` FROM week_buckets
		 WHERE repository_id = $1
		   AND begin_date <= $3 AND end_date >= $2
		   AND NOT (year = $4 AND week = $5)`,
		repoID, dateArg(begin), dateArg(end), year, week,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping buckets: %w", err)
	}
	return scanBuckets(rows)
}

// UpdateStats записывает пересчитанные кэшированные метрики бакета.
func (r *BucketRepository) UpdateStats(ctx context.Context, b *domain.WeekBucket) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE week_buckets SET
			started_count = $2,
			merged_count = $3,
			first_reviewed_count = $4,
			cancelled_count = $5,
			open_count = $6,
			late_count = $7,
			stale_count = $8,
			avg_hours_to_first_review = $9,
			avg_hours_to_merge = $10
		 WHERE id = $1`,
		b.ID, b.Started, b.Merged, b.FirstReviewed, b.Cancelled,
		b.Open, b.Late, b.Stale,
		nullFloat(b.AvgHoursToFirstReview), nullFloat(b.AvgHoursToMerge),
	)
	if err != nil {
		return fmt.Errorf("failed to update bucket stats: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update bucket stats: %w", err)
	}
	if affected == 0 {
		return domain.ErrBucketNotFound
	}
	return nil
}

func scanBucket(row *sql.Row) (*domain.WeekBucket, error) {
	b := &domain.WeekBucket{}
	var avgReview, avgMerge sql.NullFloat64

	err := row.Scan(
		&b.ID, &b.RepoID, &b.Year, &b.Week, &b.BeginDate, &b.EndDate,
		&b.Started, &b.Merged, &b.FirstReviewed, &b.Cancelled,
		&b.Open, &b.Late, &b.Stale,
		&avgReview, &avgMerge,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBucketNotFound
		}
		return nil, fmt.Errorf("failed to scan week bucket: %w", err)
	}

	b.AvgHoursToFirstReview = floatPtr(avgReview)
	b.AvgHoursToMerge = floatPtr(avgMerge)
	return b, nil
}

func scanBuckets(rows *sql.Rows) ([]*domain.WeekBucket, error) {
	defer rows.Close()

	buckets := make([]*domain.WeekBucket, 0)
	for rows.Next() {
		b := &domain.WeekBucket{}
		var avgReview, avgMerge sql.NullFloat64

		err := rows.Scan(
			&b.ID, &b.RepoID, &b.Year, &b.Week, &b.BeginDate, &b.EndDate,
			&b.Started, &b.Merged, &b.FirstReviewed, &b.Cancelled,
			&b.Open, &b.Late, &b.Stale,
			&avgReview, &avgMerge,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan week bucket: %w", err)
		}

		b.AvgHoursToFirstReview = floatPtr(avgReview)
		b.AvgHoursToMerge = floatPtr(avgMerge)
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// dateArg приводит момент к календарной дате для сравнения с DATE-колонками.
func dateArg(t time.Time) string {
	return t.Format("2006-01-02")
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
