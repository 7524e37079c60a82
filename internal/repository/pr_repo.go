package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pr-velocity-service/internal/domain"
)

const prColumns = `id, repository_id, number, title, state, is_draft,
	created_at, ready_for_review_at, merged_at, closed_at,
	ready_bucket_id, first_review_bucket_id, merged_bucket_id, closed_bucket_id`

// PRRepository реализует работу с pull request'ами в PostgreSQL.
type PRRepository struct {
	db *sql.DB
}

// NewPRRepository создает новый экземпляр PRRepository.
func NewPRRepository(db *sql.DB) domain.PRRepository {
	return &PRRepository{db: db}
}

// Upsert создает PR либо обновляет его атрибуты и веховые метки.
// Ссылки на бакеты намеренно не трогаются: их пишет только классификатор.
func (r *PRRepository) Upsert(ctx context.Context, pr *domain.PullRequest) (*domain.PullRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO pull_requests
			(repository_id, number, title, state, is_draft,
			 created_at, ready_for_review_at, merged_at, closed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (repository_id, number) DO UPDATE SET
			title = EXCLUDED.title,
			state = EXCLUDED.state,
			is_draft = EXCLUDED.is_draft,
			created_at = EXCLUDED.created_at,
			ready_for_review_at = EXCLUDED.ready_for_review_at,
			merged_at = EXCLUDED.merged_at,
			closed_at = EXCLUDED.closed_at
		 RETURNING `+prColumns,
		pr.RepoID, pr.Number, pr.Title, pr.State, pr.IsDraft,
		pr.CreatedAt, nullTime(pr.ReadyForReviewAt), nullTime(pr.MergedAt), nullTime(pr.ClosedAt),
	)

	upserted, err := scanPR(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert pull request: %w", err)
	}
	return upserted, nil
}

// GetByID возвращает PR по идентификатору.
func (r *PRRepository) GetByID(ctx context.Context, id int64) (*domain.PullRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+prColumns+` FROM pull_requests WHERE id = $1`, id)

	pr, err := scanPR(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPRNotFound
		}
		return nil, fmt.Errorf("failed to get pull request: %w", err)
	}
	return pr, nil
}

// GetByNumber возвращает PR по номеру внутри репозитория.
func (r *PRRepository) GetByNumber(ctx context.Context, repoID, number int64) (*domain.PullRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+prColumns+` FROM pull_requests
		 WHERE repository_id = $1 AND number = $2`,
		repoID, number,
	)

	pr, err := scanPR(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPRNotFound
		}
		return nil, fmt.Errorf("failed to get pull request: %w", err)
	}
	return pr, nil
}

// ListByRepo возвращает все PR репозитория.
func (r *PRRepository) ListByRepo(ctx context.Context, repoID int64) ([]*domain.PullRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+prColumns+` FROM pull_requests
		 WHERE repository_id = $1 ORDER BY number`,
		repoID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}
	defer rows.Close()

	prs := make([]*domain.PullRequest, 0)
	for rows.Next() {
		pr, err := scanPR(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pull request: %w", err)
		}
		prs = append(prs, pr)
	}
	return prs, rows.Err()
}

// UpdateBucketRefs записывает все четыре ссылки на бакеты одним запросом,
// чтобы читатели не видели частично классифицированный PR.
func (r *PRRepository) UpdateBucketRefs(ctx context.Context, prID int64, refs domain.BucketRefs) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE pull_requests SET
			ready_bucket_id = $2,
			first_review_bucket_id = $3,
			merged_bucket_id = $4,
			closed_bucket_id = $5
		 WHERE id = $1`,
		prID, nullInt(refs.Ready), nullInt(refs.FirstReview), nullInt(refs.Merged), nullInt(refs.Closed),
	)
	if err != nil {
		return fmt.Errorf("failed to update bucket refs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update bucket refs: %w", err)
	}
	if affected == 0 {
		return domain.ErrPRNotFound
	}
	return nil
}

// EarliestMilestone возвращает самую раннюю веховую метку по всем PR репозитория.
func (r *PRRepository) EarliestMilestone(ctx context.Context, repoID int64) (*time.Time, error) {
	var earliest sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT MIN(LEAST(
			created_at,
			COALESCE(ready_for_review_at, created_at),
			COALESCE(merged_at, created_at),
			COALESCE(closed_at, created_at)
		 )) FROM pull_requests WHERE repository_id = $1`,
		repoID,
	).Scan(&earliest)
	if err != nil {
		return nil, fmt.Errorf("failed to get earliest milestone: %w", err)
	}
	if !earliest.Valid {
		return nil, nil
	}
	t := earliest.Time
	return &t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPR(row rowScanner) (*domain.PullRequest, error) {
	pr := &domain.PullRequest{}
	var ready, merged, closed sql.NullTime
	var readyBucket, reviewBucket, mergedBucket, closedBucket sql.NullInt64

	err := row.Scan(
		&pr.ID, &pr.RepoID, &pr.Number, &pr.Title, &pr.State, &pr.IsDraft,
		&pr.CreatedAt, &ready, &merged, &closed,
		&readyBucket, &reviewBucket, &mergedBucket, &closedBucket,
	)
	if err != nil {
		return nil, err
	}

	// Конвертируем NullTime → *time.Time
	pr.ReadyForReviewAt = timePtr(ready)
	pr.MergedAt = timePtr(merged)
	pr.ClosedAt = timePtr(closed)
	pr.ReadyBucketID = intPtr(readyBucket)
	pr.FirstReviewBucketID = intPtr(reviewBucket)
	pr.MergedBucketID = intPtr(mergedBucket)
	pr.ClosedBucketID = intPtr(closedBucket)
	return pr, nil
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
