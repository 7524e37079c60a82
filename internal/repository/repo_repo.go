package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"pr-velocity-service/internal/domain"
)

// RepoRepository реализует работу с репозиториями в PostgreSQL.
type RepoRepository struct {
	db *sql.DB
}

// NewRepoRepository создает новый экземпляр RepoRepository.
func NewRepoRepository(db *sql.DB) domain.RepoRepository {
	return &RepoRepository{db: db}
}

// Create создает репозиторий с уникальным именем.
func (r *RepoRepository) Create(ctx context.Context, name string) (*domain.Repo, error) {
	repo := &domain.Repo{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO repositories (name) VALUES ($1)
		 RETURNING id, name, created_at`,
		name,
	).Scan(&repo.ID, &repo.Name, &repo.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrRepoAlreadyExists
		}
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}
	return repo, nil
}

// GetByName возвращает репозиторий по имени.
func (r *RepoRepository) GetByName(ctx context.Context, name string) (*domain.Repo, error) {
	repo := &domain.Repo{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM repositories WHERE name = $1`,
		name,
	).Scan(&repo.ID, &repo.Name, &repo.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRepoNotFound
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	return repo, nil
}

// GetByID возвращает репозиторий по идентификатору.
func (r *RepoRepository) GetByID(ctx context.Context, id int64) (*domain.Repo, error) {
	repo := &domain.Repo{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM repositories WHERE id = $1`,
		id,
	).Scan(&repo.ID, &repo.Name, &repo.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRepoNotFound
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	return repo, nil
}

// GetAll возвращает все репозитории.
func (r *RepoRepository) GetAll(ctx context.Context) ([]*domain.Repo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM repositories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	defer rows.Close()

	repos := make([]*domain.Repo, 0)
	for rows.Next() {
		repo := &domain.Repo{}
		if err := rows.Scan(&repo.ID, &repo.Name, &repo.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan repository: %w", err)
		}
		repos = append(repos, repo)
	}
	return repos, rows.Err()
}

// isUniqueViolation распознает нарушение уникального ограничения (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
