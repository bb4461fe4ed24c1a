package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fahimtalukderraj-lang/salesapp/internal/database"
	"github.com/fahimtalukderraj-lang/salesapp/internal/events"
)

const (
	archivePrefix     = "salesapp-backup-"
	archiveTimeLayout = "2006-01-02-150405"
	metadataFilename  = "backup-metadata.json"
	appVersion        = "1.0.0"

	// Rotation never deletes the newest few archives, whatever their age.
	minBackupsToKeep = 3
)

// ErrNotConfigured is returned by remote operations when no object store
// was wired in (local-only installs).
var ErrNotConfigured = errors.New("backup object store not configured")

// StoredObject describes one remote object
type StoredObject struct {
	Key       string
	SizeBytes int64
}

// ObjectStore is the remote half of the backup pipeline. A nil store keeps
// archives local only.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64) error
	List(ctx context.Context, prefix string) ([]StoredObject, error)
	Delete(ctx context.Context, key string) error
}

// BackupMetadata rides inside every archive as backup-metadata.json
type BackupMetadata struct {
	BackupID   string             `json:"backup_id"`
	Timestamp  time.Time          `json:"timestamp"`
	AppVersion string             `json:"app_version"`
	Databases  []DatabaseMetadata `json:"databases"`
}

// DatabaseMetadata describes a single database file in the backup
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo represents one archive, local or remote
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

// Config holds backup service settings
type Config struct {
	StagingDir    string
	BackupDir     string
	RetentionDays int // 0 keeps everything beyond the minimum
}

// Service creates, uploads and rotates database backup archives
type Service struct {
	db    *database.DB
	store ObjectStore
	bus   *events.Bus
	cfg   Config
	log   zerolog.Logger
}

// NewService creates a new backup service. store may be nil for local-only
// operation.
func NewService(db *database.DB, store ObjectStore, bus *events.Bus, cfg Config, log zerolog.Logger) *Service {
	return &Service{
		db:    db,
		store: store,
		bus:   bus,
		cfg:   cfg,
		log:   log.With().Str("service", "backup").Logger(),
	}
}

// Configured reports whether a remote object store is wired in
func (s *Service) Configured() bool {
	return s.store != nil
}

// Run performs one full backup cycle: snapshot, verify, archive, keep a
// local copy, upload when a store is configured, then rotate both sides.
func (s *Service) Run(ctx context.Context) (*BackupInfo, error) {
	s.log.Info().Msg("Starting backup")
	startTime := time.Now()

	if err := os.MkdirAll(s.cfg.StagingDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(s.cfg.StagingDir)

	// Atomic snapshot without WAL baggage
	snapshotName := s.db.Name() + ".db"
	snapshotPath := filepath.Join(s.cfg.StagingDir, snapshotName)
	if err := s.snapshotDatabase(snapshotPath); err != nil {
		return nil, fmt.Errorf("failed to snapshot database: %w", err)
	}

	if err := s.verifySnapshot(snapshotPath); err != nil {
		os.Remove(snapshotPath)
		return nil, fmt.Errorf("snapshot verification failed: %w", err)
	}

	snapshotInfo, err := os.Stat(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	checksum, err := calculateChecksum(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksum: %w", err)
	}

	metadata := BackupMetadata{
		BackupID:   uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		AppVersion: appVersion,
		Databases: []DatabaseMetadata{{
			Name:      s.db.Name(),
			Filename:  snapshotName,
			SizeBytes: snapshotInfo.Size(),
			Checksum:  checksum,
		}},
	}

	metadataPath := filepath.Join(s.cfg.StagingDir, metadataFilename)
	if err := writeMetadata(metadataPath, metadata); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}

	archiveName := fmt.Sprintf("%s%s.tar.gz", archivePrefix, time.Now().Format(archiveTimeLayout))
	archivePath := filepath.Join(s.cfg.StagingDir, archiveName)
	if err := createArchive(archivePath, map[string]string{
		snapshotName:     snapshotPath,
		metadataFilename: metadataPath,
	}); err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	// Keep the local copy before anything can go wrong remotely
	if err := os.MkdirAll(s.cfg.BackupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	finalPath := filepath.Join(s.cfg.BackupDir, archiveName)
	if err := os.Rename(archivePath, finalPath); err != nil {
		return nil, fmt.Errorf("failed to store archive: %w", err)
	}

	archiveInfo, err := os.Stat(finalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	uploaded := false
	if s.store != nil {
		archiveFile, err := os.Open(finalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open archive: %w", err)
		}

		err = s.store.Upload(ctx, archiveName, archiveFile, archiveInfo.Size())
		archiveFile.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to upload archive: %w", err)
		}
		uploaded = true

		if err := s.RotateRemote(ctx); err != nil {
			s.log.Error().Err(err).Msg("Failed to rotate remote backups")
			// Don't fail - backup succeeded
		}
	}

	if err := s.rotateLocal(); err != nil {
		s.log.Error().Err(err).Msg("Failed to rotate local backups")
		// Don't fail - backup succeeded
	}

	if s.bus != nil {
		s.bus.Emit(events.BackupCompleted, "backup", map[string]interface{}{
			"archive":    archiveName,
			"size_bytes": archiveInfo.Size(),
			"uploaded":   uploaded,
		})
	}

	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("archive", archiveName).
		Int64("size_bytes", archiveInfo.Size()).
		Bool("uploaded", uploaded).
		Msg("Backup completed successfully")

	return &BackupInfo{
		Filename:  archiveName,
		Timestamp: metadata.Timestamp,
		SizeBytes: archiveInfo.Size(),
	}, nil
}

// ListBackups lists archives in the object store, newest first
func (s *Service) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	if s.store == nil {
		return nil, ErrNotConfigured
	}

	objects, err := s.store.List(ctx, archivePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote backups: %w", err)
	}

	backups := make([]BackupInfo, 0, len(objects))
	now := time.Now()

	for _, obj := range objects {
		timestamp, ok := parseArchiveName(obj.Key)
		if !ok {
			continue
		}

		backups = append(backups, BackupInfo{
			Filename:  obj.Key,
			Timestamp: timestamp,
			SizeBytes: obj.SizeBytes,
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// RotateRemote deletes remote archives beyond the retention window
func (s *Service) RotateRemote(ctx context.Context) error {
	backups, err := s.ListBackups(ctx)
	if err != nil {
		return err
	}

	expired := selectExpired(backups, s.cfg.RetentionDays, time.Now())
	for _, filename := range expired {
		if err := s.store.Delete(ctx, filename); err != nil {
			s.log.Error().Err(err).Str("filename", filename).Msg("Failed to delete old backup")
			continue
		}
		s.log.Info().Str("filename", filename).Msg("Deleted old remote backup")
	}

	if len(expired) > 0 {
		s.log.Info().
			Int("deleted", len(expired)).
			Int("remaining", len(backups)-len(expired)).
			Msg("Remote backup rotation completed")
	}

	return nil
}

// rotateLocal deletes local archives beyond the retention window
func (s *Service) rotateLocal() error {
	backups, err := s.listLocal()
	if err != nil {
		return err
	}

	for _, filename := range selectExpired(backups, s.cfg.RetentionDays, time.Now()) {
		path := filepath.Join(s.cfg.BackupDir, filename)
		if err := os.Remove(path); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("Failed to delete old local backup")
			continue
		}
		s.log.Debug().Str("path", path).Msg("Deleted old local backup")
	}

	return nil
}

// listLocal lists archives in the backup directory, newest first
func (s *Service) listLocal() ([]BackupInfo, error) {
	dirEntries, err := os.ReadDir(s.cfg.BackupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	now := time.Now()

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		timestamp, ok := parseArchiveName(entry.Name())
		if !ok {
			continue
		}

		var size int64
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}

		backups = append(backups, BackupInfo{
			Filename:  entry.Name(),
			Timestamp: timestamp,
			SizeBytes: size,
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// snapshotDatabase copies the live database into a standalone file using
// SQLite's VACUUM INTO, which is atomic and leaves no WAL behind.
func (s *Service) snapshotDatabase(path string) error {
	if _, err := s.db.Conn().Exec(fmt.Sprintf("VACUUM INTO '%s'", path)); err != nil {
		return fmt.Errorf("VACUUM INTO failed: %w", err)
	}
	return nil
}

// verifySnapshot opens the snapshot and checks its integrity
func (s *Service) verifySnapshot(path string) error {
	snapshotDB, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer snapshotDB.Close()

	var result string
	if err := snapshotDB.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	return nil
}

// selectExpired picks the archive filenames rotation should delete:
// everything beyond the newest minBackupsToKeep that is older than the
// retention window. backups must be sorted newest first. retentionDays == 0
// keeps everything beyond the minimum.
func selectExpired(backups []BackupInfo, retentionDays int, now time.Time) []string {
	if len(backups) <= minBackupsToKeep || retentionDays <= 0 {
		return nil
	}

	cutoff := now.AddDate(0, 0, -retentionDays)

	var expired []string
	for i, backup := range backups {
		if i < minBackupsToKeep {
			continue
		}
		if backup.Timestamp.Before(cutoff) {
			expired = append(expired, backup.Filename)
		}
	}
	return expired
}

// parseArchiveName extracts the timestamp from an archive filename
func parseArchiveName(filename string) (time.Time, bool) {
	if !strings.HasPrefix(filename, archivePrefix) || !strings.HasSuffix(filename, ".tar.gz") {
		return time.Time{}, false
	}

	timestampStr := strings.TrimPrefix(filename, archivePrefix)
	timestampStr = strings.TrimSuffix(timestampStr, ".tar.gz")

	timestamp, err := time.Parse(archiveTimeLayout, timestampStr)
	if err != nil {
		return time.Time{}, false
	}
	return timestamp, true
}

// calculateChecksum calculates the SHA256 checksum of a file
func calculateChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

// writeMetadata writes backup metadata to a JSON file
func writeMetadata(path string, metadata BackupMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}

// createArchive writes a tar.gz containing the given files, keyed by their
// name inside the archive
func createArchive(archivePath string, files map[string]string) error {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer archiveFile.Close()

	gzipWriter := gzip.NewWriter(archiveFile)
	defer gzipWriter.Close()

	tarWriter := tar.NewWriter(gzipWriter)
	defer tarWriter.Close()

	// Stable member order
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := addFileToArchive(tarWriter, files[name], name); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
	}

	return nil
}

// addFileToArchive adds a single file to a tar archive
func addFileToArchive(tarWriter *tar.Writer, filePath, nameInArchive string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode()),
		ModTime: info.ModTime(),
	}

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	if _, err := io.Copy(tarWriter, file); err != nil {
		return err
	}

	return nil
}
