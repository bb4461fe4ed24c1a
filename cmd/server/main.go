package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fahimtalukderraj-lang/salesapp/internal/backup"
	"github.com/fahimtalukderraj-lang/salesapp/internal/config"
	"github.com/fahimtalukderraj-lang/salesapp/internal/database"
	"github.com/fahimtalukderraj-lang/salesapp/internal/events"
	"github.com/fahimtalukderraj-lang/salesapp/internal/modules/entries"
	"github.com/fahimtalukderraj-lang/salesapp/internal/scheduler"
	"github.com/fahimtalukderraj-lang/salesapp/internal/server"
	"github.com/fahimtalukderraj-lang/salesapp/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger with config level
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	log.Info().Msg("Starting sales tracker")

	// Make sure the data directory exists before opening the database
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("Failed to create data directory")
	}

	// Initialize database
	db, err := database.New(database.Config{Path: cfg.DatabasePath()})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Create schema
	if err := entries.InitSchema(db.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize schema")
	}

	// Event bus
	bus := events.NewBus(log)

	// Repositories
	entriesRepo := entries.NewRepository(db.Conn(), log)

	// Backup service, with optional S3 upload target
	var store backup.ObjectStore
	if cfg.S3Configured() {
		s3Client, err := backup.NewS3Client(context.Background(), backup.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 client")
		}
		store = s3Client
		log.Info().Str("bucket", cfg.S3Bucket).Msg("Backup uploads enabled")
	} else {
		log.Info().Msg("Backup uploads disabled (no S3 target configured)")
	}

	backupSvc := backup.NewService(db, store, bus, backup.Config{
		StagingDir:    cfg.StagingDir(),
		BackupDir:     cfg.BackupDir(),
		RetentionDays: cfg.BackupRetentionDays,
	}, log)

	// Scheduler and background jobs
	sched := scheduler.New(log)

	if cfg.BackupEnabled {
		if err := sched.AddJob(cfg.BackupSchedule, backup.NewBackupJob(backupSvc)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	}
	if err := sched.AddJob(cfg.MaintenanceSchedule, backup.NewMaintenanceJob(db, entriesRepo, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance job")
	}

	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:        cfg.Port,
		Log:         log,
		DB:          db,
		Config:      cfg,
		Bus:         bus,
		EntriesRepo: entriesRepo,
		Backups:     backupSvc,
		DevMode:     cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().
		Int("port", cfg.Port).
		Str("database", filepath.Base(cfg.DatabasePath())).
		Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
