package reliability

import (
	"context"
	"time"
)

const backupTimeout = 10 * time.Minute

// BackupJob adapts the backup service to the scheduler.
type BackupJob struct {
	service *BackupService
}

// NewBackupJob creates a scheduled backup job.
func NewBackupJob(service *BackupService) *BackupJob {
	return &BackupJob{service: service}
}

// Run performs one backup cycle.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()
	return j.service.Backup(ctx)
}

// Name returns the job name for scheduling and logging.
func (j *BackupJob) Name() string {
	return "database_backup"
}
