package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rentloop/crm-sync-worker/internal/models"
	"gorm.io/gorm"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// GetChangedSince retrieves tenants created or re-scraped at or after the
// given watermark, oldest first.
func (r *TenantRepository) GetChangedSince(ctx context.Context, since time.Time) ([]models.Tenant, error) {
	var tenants []models.Tenant
	result := r.db.WithContext(ctx).
		Where("created_at >= ? OR last_scraped_at >= ?", since, since).
		Order("created_at ASC").
		Find(&tenants)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query changed tenants: %w", result.Error)
	}
	return tenants, nil
}
