// velocityctl — операционная утилита движка метрик: достройка бакетов,
// аудит дрейфа классификации и его починка.
package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"pr-velocity-service/internal/config"
	"pr-velocity-service/internal/database"
	"pr-velocity-service/internal/domain"
	"pr-velocity-service/internal/repository"
	"pr-velocity-service/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logger = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "velocityctl",
	Short: "Operational tooling for the PR velocity engine",
	Long: `velocityctl runs maintenance operations of the velocity metrics engine
directly against the database: bucket backfill, drift audit and repair.`,
	SilenceUsage: true,
}

// engine — собранные поверх одного подключения use case'ы.
type engine struct {
	db    *sql.DB
	repos domain.RepoRepository
	stats domain.StatsUseCase
	audit domain.AuditUseCase
}

// openEngine подключается к базе и собирает зависимости команд.
func openEngine() (*engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Warnf(".env not found: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}

	repoRepo := repository.NewRepoRepository(db)
	bucketRepo := repository.NewBucketRepository(db)
	prRepo := repository.NewPRRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	catalog := usecase.NewBucketUseCase(bucketRepo, loc)
	classifier := usecase.NewClassifierUseCase(prRepo, reviewRepo, bucketRepo, catalog, loc)
	stats := usecase.NewStatsUseCase(prRepo, reviewRepo, bucketRepo, catalog, loc, time.Now)
	audit := usecase.NewAuditUseCase(prRepo, reviewRepo, classifier, stats)

	return &engine{
		db:    db,
		repos: repoRepo,
		stats: stats,
		audit: audit,
	}, nil
}

func (e *engine) close() {
	_ = e.db.Close()
}

// resolveRepo переводит имя репозитория из аргумента команды в сущность.
func (e *engine) resolveRepo(ctx context.Context, name string) (*domain.Repo, error) {
	return e.repos.GetByName(ctx, name)
}

func main() {
	logger.SetFormatter(&logrus.TextFormatter{})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
