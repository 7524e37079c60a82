package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pr-velocity-service/internal/domain"
)

// ReviewRepository реализует работу с ревью в PostgreSQL.
type ReviewRepository struct {
	db *sql.DB
}

// NewReviewRepository создает новый экземпляр ReviewRepository.
func NewReviewRepository(db *sql.DB) domain.ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert вставляет ревью; повторная загрузка того же события игнорируется
// за счет уникального ограничения (pull_request_id, author, submitted_at, state).
func (r *ReviewRepository) Upsert(ctx context.Context, review *domain.Review) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (pull_request_id, author, state, submitted_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (pull_request_id, author, submitted_at, state) DO NOTHING`,
		review.PullRequestID, review.Author, review.State, review.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert review: %w", err)
	}
	return nil
}

// ListByPR возвращает ревью PR в порядке отправки.
func (r *ReviewRepository) ListByPR(ctx context.Context, prID int64) ([]*domain.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, pull_request_id, author, state, submitted_at
		 FROM reviews WHERE pull_request_id = $1
		 ORDER BY submitted_at`,
		prID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]*domain.Review, 0)
	for rows.Next() {
		rv := &domain.Review{}
		if err := rows.Scan(&rv.ID, &rv.PullRequestID, &rv.Author, &rv.State, &rv.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

// ListByRepo возвращает все ревью репозитория, сгруппированные по PR.
func (r *ReviewRepository) ListByRepo(ctx context.Context, repoID int64) (map[int64][]*domain.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.pull_request_id, r.author, r.state, r.submitted_at
		 FROM reviews r
		 JOIN pull_requests p ON p.id = r.pull_request_id
		 WHERE p.repository_id = $1
		 ORDER BY r.submitted_at`,
		repoID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list repository reviews: %w", err)
	}
	defer rows.Close()

	byPR := make(map[int64][]*domain.Review)
	for rows.Next() {
		rv := &domain.Review{}
		if err := rows.Scan(&rv.ID, &rv.PullRequestID, &rv.Author, &rv.State, &rv.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		byPR[rv.PullRequestID] = append(byPR[rv.PullRequestID], rv)
	}
	return byPR, rows.Err()
}
