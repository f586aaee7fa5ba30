package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shhmatch/backend/internal/db"
	"github.com/shhmatch/backend/internal/utils/pagination"
)

// UserRepository provides data access for users, profiles and
// preferences, including the candidate selection query used by the
// weekly recommendation engine.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).
		Preload("Profile").Preload("Preferences").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByKakaoID(ctx context.Context, kakaoUserID string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).
		Preload("Profile").Preload("Preferences").
		First(&user, "kakao_user_id = ?", kakaoUserID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// UpsertProfile creates or fully replaces the user's profile row.
func (r *UserRepository) UpsertProfile(ctx context.Context, profile *db.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// UpsertPreferences creates or fully replaces the user's preferences row.
func (r *UserRepository) UpsertPreferences(ctx context.Context, prefs *db.Preferences) error {
	return r.db.WithContext(ctx).Save(prefs).Error
}

// GetProfiles loads profiles for a set of user ids, keyed by user id.
func (r *UserRepository) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*db.Profile, error) {
	out := make(map[uuid.UUID]*db.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var profiles []db.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for i := range profiles {
		out[profiles[i].UserID] = &profiles[i]
	}
	return out, nil
}

// EligibleUsers returns the weekly batch population: not banned, not
// admin, and holding both a profile and preferences.
func (r *UserRepository) EligibleUsers(ctx context.Context) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Joins("JOIN profiles ON profiles.user_id = users.id").
		Joins("JOIN preferences ON preferences.user_id = users.id").
		Where("users.banned = ?", false).
		Where("users.role <> ?", db.RoleAdmin).
		Preload("Profile").Preload("Preferences").
		Find(&users).Error
	return users, err
}

// FindCandidates returns every user compatible with the given user
// under the mutual gender/age/region/block predicate. A user without a
// profile or preferences gets an empty list, not an error. No ordering
// is imposed; the scorer ranks later. Ages derive from birth years
// against the injected now.
func (r *UserRepository) FindCandidates(ctx context.Context, user *db.User, now time.Time) ([]db.User, error) {
	if user.Profile == nil || user.Preferences == nil {
		return nil, nil
	}

	profile := user.Profile
	prefs := user.Preferences
	currentYear := now.Year()
	userAge := currentYear - profile.BirthYear

	q := r.db.WithContext(ctx).Model(&db.User{}).
		Joins("JOIN profiles ON profiles.user_id = users.id").
		Joins("JOIN preferences ON preferences.user_id = users.id").
		Where("users.id <> ?", user.ID).
		Where("users.banned = ?", false).
		// candidate matches what the user wants
		Where("profiles.gender = ?", prefs.TargetGender).
		Where("profiles.birth_year BETWEEN ? AND ?", currentYear-prefs.AgeMax, currentYear-prefs.AgeMin).
		// and the user matches what the candidate wants
		Where("preferences.target_gender = ?", profile.Gender).
		Where("preferences.age_min <= ? AND preferences.age_max >= ?", userAge, userAge).
		Preload("Profile").Preload("Preferences")

	if len(prefs.Regions) > 0 {
		q = q.Where("profiles.region IN ?", prefs.Regions)
	}

	var candidates []db.User
	if err := q.Find(&candidates).Error; err != nil {
		return nil, err
	}

	// Blocks live in a JSON column, so the exclusion is applied here
	// rather than in SQL.
	if len(prefs.Blocks) == 0 {
		return candidates, nil
	}
	blocked := make(map[uuid.UUID]struct{}, len(prefs.Blocks))
	for _, id := range prefs.Blocks {
		blocked[id] = struct{}{}
	}
	out := candidates[:0]
	for _, c := range candidates {
		if _, ok := blocked[c.ID]; !ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListForAdmin returns a page of users for the admin panel, newest
// first, optionally filtered by nickname substring. Cursor-based
// pagination over (created_at DESC, id DESC).
func (r *UserRepository) ListForAdmin(
	ctx context.Context,
	query string,
	paginationToken *string,
	limit int,
) ([]db.User, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	q := r.db.WithContext(ctx).Model(&db.User{}).
		Preload("Profile").
		Order("users.created_at DESC, users.id DESC").
		Limit(limit + 1)

	if query != "" {
		q = q.Joins("LEFT JOIN profiles ON profiles.user_id = users.id").
			Where("profiles.nickname LIKE ?", "%"+query+"%")
	}

	if cursor.UserID != "" && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		q = q.Where(
			"(users.created_at < ? OR (users.created_at = ? AND users.id < ?))",
			ts, ts, cursor.UserID,
		)
	}

	var users []db.User
	if err := q.Find(&users).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(users) > limit {
		last := users[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			UserID:      last.ID.String(),
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		users = users[:limit]
	}

	return users, nextToken, nil
}

// SetBanned flips the ban flag.
func (r *UserRepository) SetBanned(ctx context.Context, id uuid.UUID, banned bool) error {
	res := r.db.WithContext(ctx).Model(&db.User{}).
		Where("id = ?", id).
		Update("banned", banned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
