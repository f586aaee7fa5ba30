package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shhmatch/backend/internal/db"
)

// RecommendationRepository persists weekly recommendations and the
// exposure ledger backing the non-repetition policy.
type RecommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository(database *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{db: database}
}

// Create inserts one recommendation. The composite unique index on
// (user_id, target_user_id, batch_week) rejects duplicates; callers
// detect that via errors.IsDuplicateKey and treat it as "already
// recommended this week".
func (r *RecommendationRepository) Create(
	ctx context.Context,
	userID, targetID uuid.UUID,
	batchWeek string,
	score float64,
	sentAt time.Time,
) error {
	rec := db.Recommendation{
		UserID:       userID,
		TargetUserID: targetID,
		BatchWeek:    batchWeek,
		Score:        score,
		SentAt:       sentAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

// ListForWeek returns a user's recommendations for one batch week,
// highest score first.
func (r *RecommendationRepository) ListForWeek(
	ctx context.Context,
	userID uuid.UUID,
	batchWeek string,
) ([]db.Recommendation, error) {
	var recs []db.Recommendation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND batch_week = ?", userID, batchWeek).
		Order("score DESC, target_user_id ASC").
		Find(&recs).Error
	return recs, err
}

// MarkResponded flips the responded flag on the recommendation of
// targetID to userID for the given week, if one exists.
func (r *RecommendationRepository) MarkResponded(
	ctx context.Context,
	userID, targetID uuid.UUID,
	batchWeek string,
) error {
	return r.db.WithContext(ctx).Model(&db.Recommendation{}).
		Where("user_id = ? AND target_user_id = ? AND batch_week = ?", userID, targetID, batchWeek).
		Update("responded", true).Error
}

// RecordExposure appends one exposure fact. The ledger has no
// uniqueness constraint; duplicate rows are fine.
func (r *RecommendationRepository) RecordExposure(
	ctx context.Context,
	userID, targetID uuid.UUID,
	reason string,
) error {
	entry := db.ExposureLog{
		UserID:       userID,
		TargetUserID: targetID,
		Reason:       reason,
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}

// RecentTargets returns the distinct users shown to userID within the
// trailing windowWeeks from now.
func (r *RecommendationRepository) RecentTargets(
	ctx context.Context,
	userID uuid.UUID,
	windowWeeks int,
	now time.Time,
) (map[uuid.UUID]struct{}, error) {
	cutoff := now.Add(-time.Duration(windowWeeks) * 7 * 24 * time.Hour)

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&db.ExposureLog{}).
		Distinct("target_user_id").
		Where("user_id = ? AND seen_at >= ?", userID, cutoff).
		Pluck("target_user_id", &ids).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen, nil
}
