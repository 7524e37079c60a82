package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pr-velocity-service/internal/config"
	"pr-velocity-service/internal/database"
	"pr-velocity-service/internal/handler"
	"pr-velocity-service/internal/repository"
	"pr-velocity-service/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	// Логгер
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Конфиг
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Warnf(".env not found: %v", err)
	}

	// Канонический пояс для границ недель
	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("Invalid TIMEZONE %q: %v", cfg.Timezone, err)
	}

	// База данных (database/sql)
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		logger.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	logger.Info("Database connected")

	// Репозитории
	repoRepo := repository.NewRepoRepository(db)
	bucketRepo := repository.NewBucketRepository(db)
	prRepo := repository.NewPRRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Use Cases
	catalog := usecase.NewBucketUseCase(bucketRepo, loc)
	classifier := usecase.NewClassifierUseCase(prRepo, reviewRepo, bucketRepo, catalog, loc)
	stats := usecase.NewStatsUseCase(prRepo, reviewRepo, bucketRepo, catalog, loc, time.Now)
	audit := usecase.NewAuditUseCase(prRepo, reviewRepo, classifier, stats)

	// Echo + Handlers
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(handler.LoggingMiddleware(logger))

	apiHandler := handler.NewAPIHandler(repoRepo, bucketRepo, classifier, stats, audit, logger)
	apiHandler.RegisterRoutes(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// Запуск сервера
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil {
			logger.Infof("Server stopped: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatalf("Shutdown failed: %v", err)
	}

	logger.Info("Server exited")
}
