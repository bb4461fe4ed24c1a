package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fahimtalukderraj-lang/salesapp/internal/database"
	"github.com/fahimtalukderraj-lang/salesapp/internal/modules/entries"
)

// BackupJob wraps Service.Run for the scheduler
type BackupJob struct {
	service *Service
}

// NewBackupJob creates a new backup job
func NewBackupJob(service *Service) *BackupJob {
	return &BackupJob{service: service}
}

// Run executes one backup cycle
func (j *BackupJob) Run() error {
	_, err := j.service.Run(context.Background())
	return err
}

// Name returns the job name for scheduler
func (j *BackupJob) Name() string {
	return "backup"
}

// MaintenanceJob keeps the live database compact and verified
type MaintenanceJob struct {
	db   *database.DB
	repo *entries.Repository
	log  zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(db *database.DB, repo *entries.Repository, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:   db,
		repo: repo,
		log:  log.With().Str("job", "maintenance").Logger(),
	}
}

// Run executes the maintenance pass
func (j *MaintenanceJob) Run() error {
	j.log.Info().Msg("Starting maintenance")
	startTime := time.Now()

	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		j.log.Warn().Err(err).Msg("WAL checkpoint failed")
		// Not critical on its own
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := j.db.HealthCheck(ctx); err != nil {
		j.log.Error().Err(err).Msg("CRITICAL: Database failed integrity check")
		return fmt.Errorf("integrity check failed: %w", err)
	}

	before, err := j.db.GetStats()
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to read database stats")
	}

	if err := j.db.Vacuum(); err != nil {
		return fmt.Errorf("vacuum failed: %w", err)
	}

	after, err := j.db.GetStats()
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to read database stats after vacuum")
	}

	if before != nil && after != nil {
		j.log.Info().
			Int64("size_before_bytes", before.SizeBytes).
			Int64("size_after_bytes", after.SizeBytes).
			Int64("freelist_before", before.FreelistCount).
			Int64("freelist_after", after.FreelistCount).
			Msg("Vacuum completed")
	}

	if count, err := j.repo.Count(); err == nil {
		j.log.Info().Int("entry_count", count).Msg("Store size")
	}

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Msg("Maintenance completed successfully")

	return nil
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}
