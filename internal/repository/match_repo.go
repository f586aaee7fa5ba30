package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shhmatch/backend/internal/db"
)

// MatchRepository provides data access for mutual matches.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// orderPair returns the two ids in lexicographic order so a pair always
// maps to the same (user_a, user_b) row.
func orderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(a.String(), b.String()) > 0 {
		return b, a
	}
	return a, b
}

// Create inserts a match for the pair in pending status.
func (r *MatchRepository) Create(ctx context.Context, userA, userB uuid.UUID) (*db.Match, error) {
	a, b := orderPair(userA, userB)
	match := db.Match{UserA: a, UserB: b, Status: db.MatchPending}
	if err := r.db.WithContext(ctx).Create(&match).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// GetByUsers looks up the match for a pair regardless of order.
func (r *MatchRepository) GetByUsers(ctx context.Context, userA, userB uuid.UUID) (*db.Match, error) {
	a, b := orderPair(userA, userB)
	var match db.Match
	err := r.db.WithContext(ctx).
		First(&match, "user_a = ? AND user_b = ?", a, b).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).
		Preload("Payment").
		First(&match, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ListForUser returns all matches the user participates in, newest
// first.
func (r *MatchRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_a = ? OR user_b = ?", userID, userID).
		Order("created_at DESC").
		Find(&matches).Error
	return matches, err
}

// UpdateStatus moves a match to the given lifecycle status.
func (r *MatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*db.Match, error) {
	var match db.Match
	if err := r.db.WithContext(ctx).First(&match, "id = ?", id).Error; err != nil {
		return nil, err
	}
	match.Status = status
	if err := r.db.WithContext(ctx).Save(&match).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// ListForAdmin returns matches for the admin panel with an optional
// status filter, newest first, offset-paginated.
func (r *MatchRepository) ListForAdmin(ctx context.Context, status string, page, limit int) ([]db.Match, error) {
	q := r.db.WithContext(ctx).
		Preload("Payment").
		Order("created_at DESC").
		Offset(page * limit).
		Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var matches []db.Match
	err := q.Find(&matches).Error
	return matches, err
}

// Involves reports whether the user is one of the match participants.
func Involves(m *db.Match, userID uuid.UUID) bool {
	return m.UserA == userID || m.UserB == userID
}

// OtherUser returns the counterpart of userID in the match.
func OtherUser(m *db.Match, userID uuid.UUID) uuid.UUID {
	if m.UserA == userID {
		return m.UserB
	}
	return m.UserA
}
