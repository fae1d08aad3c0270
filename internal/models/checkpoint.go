package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncCheckpoint is the single-row watermark for one sync job. Every
// tenant changed at or after LastRunAt is a candidate on the next run.
type SyncCheckpoint struct {
	JobID     string         `gorm:"column:job_id;primaryKey"`
	LastRunAt time.Time      `gorm:"column:last_run_at"`
	Stats     datatypes.JSON `gorm:"column:stats;type:jsonb"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (SyncCheckpoint) TableName() string {
	return "sync_checkpoint"
}
