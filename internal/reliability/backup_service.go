// Package reliability provides database backup and off-site replication.
package reliability

import (
	"compress/gzip"
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdantlabs/esgboard/internal/database"
)

const backupRetention = 30 * 24 * time.Hour

// Uploader pushes a finished backup archive to off-site storage.
type Uploader interface {
	Upload(ctx context.Context, key, path string) error
}

// BackupService creates verified snapshots of the analysis database.
type BackupService struct {
	db        *database.DB
	backupDir string
	uploader  Uploader
	log       zerolog.Logger
}

// NewBackupService creates a new backup service. The uploader is optional;
// without one, backups stay local.
func NewBackupService(db *database.DB, backupDir string, uploader Uploader, log zerolog.Logger) *BackupService {
	return &BackupService{
		db:        db,
		backupDir: backupDir,
		uploader:  uploader,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// Backup snapshots the database, verifies the copy, compresses it, and
// uploads it when an uploader is configured. Old local backups are rotated
// after a successful run.
func (s *BackupService) Backup(ctx context.Context) error {
	startTime := time.Now()

	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := time.Now().UTC().Format("2006-01-02_150405")
	snapshotPath := filepath.Join(s.backupDir, fmt.Sprintf("esg_analysis_%s.db", timestamp))

	if err := s.snapshot(snapshotPath); err != nil {
		return err
	}

	if err := s.verify(snapshotPath); err != nil {
		os.Remove(snapshotPath)
		return fmt.Errorf("backup verification failed: %w", err)
	}

	archivePath := snapshotPath + ".gz"
	if err := s.compress(snapshotPath, archivePath); err != nil {
		os.Remove(archivePath)
		return fmt.Errorf("backup compression failed: %w", err)
	}
	os.Remove(snapshotPath)

	if err := s.writeChecksum(archivePath); err != nil {
		s.log.Warn().Err(err).Msg("Failed to write backup checksum")
	}

	if s.uploader != nil {
		key := filepath.Base(archivePath)
		if err := s.uploader.Upload(ctx, key, archivePath); err != nil {
			// Local copy still exists, so log and keep going
			s.log.Error().Err(err).Str("key", key).Msg("Off-site backup upload failed")
		} else {
			s.log.Info().Str("key", key).Msg("Backup uploaded")
		}
	}

	if err := s.rotate(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to rotate old backups")
	}

	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("archive", archivePath).
		Msg("Backup completed")

	return nil
}

// snapshot copies the live database with VACUUM INTO, which produces a
// consistent copy without WAL files.
func (s *BackupService) snapshot(path string) error {
	if _, err := s.db.Conn().Exec(fmt.Sprintf("VACUUM INTO '%s'", path)); err != nil {
		return fmt.Errorf("VACUUM INTO failed: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat backup: %w", err)
	}

	s.log.Debug().
		Float64("size_mb", float64(info.Size())/1024/1024).
		Str("path", path).
		Msg("Snapshot created")

	return nil
}

// verify opens the snapshot and runs an integrity check.
func (s *BackupService) verify(path string) error {
	backupDB, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer backupDB.Close()

	var result string
	if err := backupDB.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

func (s *BackupService) compress(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// writeChecksum stores the archive's SHA-256 next to it, in the format
// sha256sum understands.
func (s *BackupService) writeChecksum(archivePath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}

	line := fmt.Sprintf("%x  %s\n", h.Sum(nil), filepath.Base(archivePath))
	return os.WriteFile(archivePath+".sha256", []byte(line), 0644)
}

// rotate deletes local archives past the retention window.
func (s *BackupService) rotate() error {
	cutoff := time.Now().Add(-backupRetention)

	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return fmt.Errorf("failed to read backup directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.backupDir, entry.Name())
			if err := os.Remove(path); err != nil {
				s.log.Warn().Err(err).Str("path", path).Msg("Failed to delete old backup")
			} else {
				s.log.Debug().Str("path", path).Msg("Deleted old backup")
			}
		}
	}
	return nil
}
