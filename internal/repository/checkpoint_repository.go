package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rentloop/crm-sync-worker/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCheckpointNotFound = errors.New("checkpoint not found")

type CheckpointRepository struct {
	db *gorm.DB
}

func NewCheckpointRepository(db *gorm.DB) *CheckpointRepository {
	return &CheckpointRepository{db: db}
}

// Get retrieves the watermark for a sync job
func (r *CheckpointRepository) Get(ctx context.Context, jobID string) (time.Time, error) {
	var checkpoint models.SyncCheckpoint
	result := r.db.WithContext(ctx).First(&checkpoint, "job_id = ?", jobID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return time.Time{}, ErrCheckpointNotFound
		}
		return time.Time{}, fmt.Errorf("failed to get checkpoint: %w", result.Error)
	}
	return checkpoint.LastRunAt, nil
}

// Upsert writes the watermark and run stats for a sync job
func (r *CheckpointRepository) Upsert(ctx context.Context, jobID string, lastRunAt time.Time, stats datatypes.JSON) error {
	checkpoint := models.SyncCheckpoint{
		JobID:     jobID,
		LastRunAt: lastRunAt,
		Stats:     stats,
		UpdatedAt: time.Now(),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_run_at", "stats", "updated_at"}),
	}).Create(&checkpoint)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert checkpoint: %w", result.Error)
	}
	return nil
}
