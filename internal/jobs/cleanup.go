package jobs

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"sitepulse/internal/config"
	"sitepulse/internal/events"
)

const cleanupBatchSize = 1000

// CleanupJob removes events older than the configured retention period.
type CleanupJob struct {
	db     *gorm.DB
	logger *slog.Logger
	cfg    *config.Config
}

func NewCleanupJob(db *gorm.DB, logger *slog.Logger, cfg *config.Config) *CleanupJob {
	return &CleanupJob{db: db, logger: logger, cfg: cfg}
}

// Run deletes events past retention in batches, so the database is never
// locked for long stretches.
func (j *CleanupJob) Run() error {
	retentionDays := j.cfg.EventRetentionDays
	if retentionDays <= 0 {
		return nil
	}

	cutoffDate := time.Now().UTC().AddDate(0, 0, -retentionDays)

	var countToDelete int64
	if err := j.db.Model(&events.Event{}).
		Where("created_at < ?", cutoffDate).
		Count(&countToDelete).Error; err != nil {
		j.logger.Error("Failed to count expired events", slog.Any("error", err))
		return err
	}

	if countToDelete == 0 {
		j.logger.Debug("No expired events to clean up")
		return nil
	}

	totalDeleted := int64(0)
	for {
		result := j.db.Exec(
			"DELETE FROM events WHERE id IN (SELECT id FROM events WHERE created_at < ? LIMIT ?)",
			cutoffDate, cleanupBatchSize)
		if result.Error != nil {
			j.logger.Error("Failed to delete expired events",
				slog.Any("error", result.Error),
				slog.Int64("deleted_so_far", totalDeleted))
			return result.Error
		}

		totalDeleted += result.RowsAffected
		if result.RowsAffected < int64(cleanupBatchSize) {
			break
		}

		// Give readers a chance between batches.
		time.Sleep(100 * time.Millisecond)
	}

	j.logger.Info("Cleaned up expired events",
		slog.Int64("deleted_count", totalDeleted),
		slog.Int("retention_days", retentionDays))

	return nil
}
