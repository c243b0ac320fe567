package reliability

import (
	"compress/gzip"
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/esgboard/internal/database"
)

func newBackupFixture(t *testing.T) (*database.DB, string) {
	t.Helper()

	tempDir := t.TempDir()
	db, err := database.New(filepath.Join(tempDir, "esg_analysis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	_, err = db.Conn().Exec(`INSERT INTO companies (symbol, name, sector) VALUES ('AAPL', 'Apple Inc', 'Technology')`)
	require.NoError(t, err)

	return db, filepath.Join(tempDir, "backups")
}

type recordingUploader struct {
	keys []string
	err  error
}

func (u *recordingUploader) Upload(ctx context.Context, key, path string) error {
	if u.err != nil {
		return u.err
	}
	u.keys = append(u.keys, key)
	return nil
}

func TestBackupCreatesVerifiedArchive(t *testing.T) {
	db, backupDir := newBackupFixture(t)

	svc := NewBackupService(db, backupDir, nil, zerolog.Nop())
	require.NoError(t, svc.Backup(context.Background()))

	archives, err := filepath.Glob(filepath.Join(backupDir, "esg_analysis_*.db.gz"))
	require.NoError(t, err)
	require.Len(t, archives, 1)

	// A checksum sidecar accompanies the archive
	sum, err := os.ReadFile(archives[0] + ".sha256")
	require.NoError(t, err)
	assert.Contains(t, string(sum), filepath.Base(archives[0]))

	// Decompress and check the copy carries the data
	archive, err := os.Open(archives[0])
	require.NoError(t, err)
	defer archive.Close()

	gz, err := gzip.NewReader(archive)
	require.NoError(t, err)
	restored := filepath.Join(t.TempDir(), "restored.db")
	out, err := os.Create(restored)
	require.NoError(t, err)
	_, err = io.Copy(out, gz)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	restoredDB, err := sql.Open("sqlite", restored)
	require.NoError(t, err)
	defer restoredDB.Close()

	var count int
	require.NoError(t, restoredDB.QueryRow("SELECT COUNT(*) FROM companies").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestBackupUploadsArchive(t *testing.T) {
	db, backupDir := newBackupFixture(t)

	uploader := &recordingUploader{}
	svc := NewBackupService(db, backupDir, uploader, zerolog.Nop())
	require.NoError(t, svc.Backup(context.Background()))

	require.Len(t, uploader.keys, 1)
	assert.Contains(t, uploader.keys[0], "esg_analysis_")
}

func TestBackupSurvivesUploadFailure(t *testing.T) {
	db, backupDir := newBackupFixture(t)

	uploader := &recordingUploader{err: errors.New("bucket unreachable")}
	svc := NewBackupService(db, backupDir, uploader, zerolog.Nop())

	// A failed upload must not fail the backup; the local archive remains
	require.NoError(t, svc.Backup(context.Background()))

	archives, err := filepath.Glob(filepath.Join(backupDir, "*.db.gz"))
	require.NoError(t, err)
	assert.Len(t, archives, 1)
}

func TestBackupJobName(t *testing.T) {
	job := NewBackupJob(nil)
	assert.Equal(t, "database_backup", job.Name())
}
