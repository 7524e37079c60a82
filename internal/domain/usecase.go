package domain

import (
	"context"
	"time"
)

// BucketUseCase — каталог недельных бакетов: создание и поиск идемпотентны
// и безопасны при конкурентных вызовах.
type BucketUseCase interface {
	FindOrCreate(ctx context.Context, repoID int64, at time.Time) (*WeekBucket, error)
	// GenerateRange создаёт бакеты всех недель, пересекающих [from, to].
	GenerateRange(ctx context.Context, repoID int64, from, to time.Time) ([]*WeekBucket, error)
}

// ClassifierUseCase раскладывает веховые метки PR по недельным бакетам.
type ClassifierUseCase interface {
	// Classify — чистый поиск: возвращает ссылки только на уже существующие
	// бакеты (nil там, где бакета ещё нет), ничего не создаёт и не пишет.
	Classify(ctx context.Context, pr *PullRequest) (BucketRefs, error)
	// ClassifyAndEnsure создаёт недостающие бакеты и сохраняет ссылки.
	ClassifyAndEnsure(ctx context.Context, pr *PullRequest) (*PullRequest, error)
	// IngestPullRequest принимает запись PR и его ревью от коллектора,
	// апсертит их и переклассифицирует PR.
	IngestPullRequest(ctx context.Context, repoID int64, pr *PullRequest, reviews []*Review) (*PullRequest, error)
}

// StatsUseCase пересчитывает кэшированные метрики бакетов.
type StatsUseCase interface {
	UpdateBucket(ctx context.Context, bucketID int64) (*WeekBucket, error)
	// GenerateForRepo достраивает бакеты от самой ранней веховой метки
	// репозитория до текущей недели и пересчитывает их статистику.
	GenerateForRepo(ctx context.Context, repoID int64) ([]*WeekBucket, error)
	// Overview агрегирует бакеты всех репозиториев за последние weeks недель.
	Overview(ctx context.Context, weeks int) (*AggregatedBucketStats, error)
}

// AuditUseCase находит и чинит дрейф классификации.
type AuditUseCase interface {
	Audit(ctx context.Context, repoID int64) ([]*Discrepancy, error)
	Repair(ctx context.Context, repoID int64, dryRun bool) (*RepairReport, error)
}
