package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/sladash/sladash/internal/adapter/cache"
	httpadapter "github.com/sladash/sladash/internal/adapter/http"
	"github.com/sladash/sladash/internal/adapter/persistence"
	"github.com/sladash/sladash/internal/config"
	"github.com/sladash/sladash/internal/ports"
	"github.com/sladash/sladash/internal/usecase"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize logger
	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger.WithFields(logrus.Fields{
		"environment": cfg.Server.Environment,
		"sla_table":   cfg.SLA.BuiltinTable,
	}).Info("application starting")

	// Connect to database
	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		logger.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.WithError(err).Fatal("failed to ping database")
	}
	logger.WithField("host", cfg.Database.Host).Info("database connection established")

	// Initialize report cache
	var reportCache ports.ReportCache
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unavailable, falling back to in-memory report cache")
			reportCache = cache.NewMemoryReportCache()
		} else {
			reportCache = cache.NewRedisReportCache(client)
			logger.WithField("addr", cfg.GetRedisAddr()).Info("redis report cache initialized")
		}
	} else {
		reportCache = cache.NewMemoryReportCache()
	}

	// Initialize repository and use cases
	datasetRepo := persistence.NewPostgresDatasetRepository(db)
	datasetUseCase := usecase.NewDatasetUseCase(datasetRepo, reportCache)
	reportUseCase := usecase.NewReportUseCase(datasetRepo, reportCache, usecase.ReportSettings{
		FallbackTable: cfg.BuiltinSLATable(),
		MappingUnit:   cfg.MappingUnit(),
		WindowHours:   cfg.SLA.WindowHours,
		TopN:          cfg.SLA.TopN,
		Region:        cfg.RegionSet(),
		CacheTTL:      cfg.Redis.TTL,
	}, logger)

	// Create HTTP server
	server := httpadapter.NewServer(cfg.Server, cfg.Auth, datasetUseCase, reportUseCase, logger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server exited")
}
