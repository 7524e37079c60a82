// Package database открывает подключение к PostgreSQL и накатывает
// встроенные goose-миграции схемы движка метрик.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"pr-velocity-service/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Лимиты пула: нагрузка — короткие запросы пересчёта и чтения статистики.
const (
	maxOpenConns    = 16
	connMaxIdleTime = 5 * time.Minute
)

// NewPostgresDB подключается к базе по конфигу и приводит схему к актуальной.
func NewPostgresDB(cfg config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err = MigrateDB(db); err != nil {
		return nil, err
	}

	return db, nil
}

// MigrateDB накатывает встроенные миграции до последней версии.
func MigrateDB(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.Up(db, "migrations")
}
