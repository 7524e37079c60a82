package domain

import (
	"context"
	"time"
)

// Repo представляет отслеживаемый репозиторий системы контроля версий.
// Все бакеты и pull request'ы принадлежат ровно одному репозиторию.
type Repo struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// RepoRepository определяет контракт для работы с хранилищем репозиториев.
type RepoRepository interface {
	Create(ctx context.Context, name string) (*Repo, error)
	GetByName(ctx context.Context, name string) (*Repo, error)
	GetByID(ctx context.Context, id int64) (*Repo, error)
	GetAll(ctx context.Context) ([]*Repo, error)
}
