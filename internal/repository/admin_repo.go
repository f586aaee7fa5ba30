package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shhmatch/backend/internal/db"
)

// AdminRepository appends entries to the admin action audit trail.
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(database *gorm.DB) *AdminRepository {
	return &AdminRepository{db: database}
}

// RecordAction appends one audit entry.
func (r *AdminRepository) RecordAction(
	ctx context.Context,
	adminID uuid.UUID,
	action, targetID string,
	detail map[string]any,
) error {
	entry := db.AdminAction{
		AdminID:  adminID,
		Action:   action,
		TargetID: targetID,
		Detail:   detail,
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}
