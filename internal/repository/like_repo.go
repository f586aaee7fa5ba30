package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shhmatch/backend/internal/db"
)

// LikeRepository provides data access for likes between users.
type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// Create inserts a like for the given batch week. The unique index on
// (from_user, to_user, batch_week) makes re-likes surface as
// gorm.ErrDuplicatedKey; callers treat that as success.
func (r *LikeRepository) Create(ctx context.Context, fromUser, toUser uuid.UUID, batchWeek string) error {
	like := db.Like{
		FromUser:  fromUser,
		ToUser:    toUser,
		BatchWeek: batchWeek,
	}
	return r.db.WithContext(ctx).Create(&like).Error
}

// Exists reports whether fromUser already liked toUser in batchWeek.
func (r *LikeRepository) Exists(ctx context.Context, fromUser, toUser uuid.UUID, batchWeek string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Like{}).
		Where("from_user = ? AND to_user = ? AND batch_week = ?", fromUser, toUser, batchWeek).
		Count(&count).Error
	return count > 0, err
}

// IsMutual reports whether both directions exist for batchWeek.
func (r *LikeRepository) IsMutual(ctx context.Context, userA, userB uuid.UUID, batchWeek string) (bool, error) {
	aToB, err := r.Exists(ctx, userA, userB, batchWeek)
	if err != nil || !aToB {
		return false, err
	}
	return r.Exists(ctx, userB, userA, batchWeek)
}

// SentBy returns likes sent by a user, newest first.
func (r *LikeRepository) SentBy(ctx context.Context, userID uuid.UUID) ([]db.Like, error) {
	var likes []db.Like
	err := r.db.WithContext(ctx).
		Where("from_user = ?", userID).
		Order("created_at DESC").
		Find(&likes).Error
	return likes, err
}

// ReceivedBy returns likes received by a user, newest first.
func (r *LikeRepository) ReceivedBy(ctx context.Context, userID uuid.UUID) ([]db.Like, error) {
	var likes []db.Like
	err := r.db.WithContext(ctx).
		Where("to_user = ?", userID).
		Order("created_at DESC").
		Find(&likes).Error
	return likes, err
}
