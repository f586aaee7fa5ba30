package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shhmatch/backend/internal/db"
	"github.com/shhmatch/backend/internal/repository"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFindCandidates_MutualPredicate(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	// Seeker: male, 1990, wants F aged 25-40.
	seekerID := seedUser(t, gdb,
		db.User{},
		db.Profile{Nickname: "seeker", Gender: "M", BirthYear: 1990, Region: "Seoul"},
		db.Preferences{TargetGender: "F", AgeMin: 25, AgeMax: 40},
	)

	// Compatible: female, 1992 (age 33), wants M aged 30-40.
	okID := seedUser(t, gdb,
		db.User{},
		db.Profile{Nickname: "ok", Gender: "F", BirthYear: 1992, Region: "Seoul"},
		db.Preferences{TargetGender: "M", AgeMin: 30, AgeMax: 40},
	)

	// Wrong gender.
	seedUser(t, gdb,
		db.User{},
		db.Profile{Nickname: "male", Gender: "M", BirthYear: 1992},
		db.Preferences{TargetGender: "F", AgeMin: 25, AgeMax: 40},
	)

	// Candidate's own range excludes the seeker (age 35 > 30).
	seedUser(t, gdb,
		db.User{},
		db.Profile{Nickname: "narrow", Gender: "F", BirthYear: 1995},
		db.Preferences{TargetGender: "M", AgeMin: 20, AgeMax: 30},
	)

	// Out of the seeker's range (age 50).
	seedUser(t, gdb,
		db.User{},
		db.Profile{Nickname: "older", Gender: "F", BirthYear: 1975},
		db.Preferences{TargetGender: "M", AgeMin: 30, AgeMax: 60},
	)

	// Banned.
	seedUser(t, gdb,
		db.User{Banned: true},
		db.Profile{Nickname: "banned", Gender: "F", BirthYear: 1992},
		db.Preferences{TargetGender: "M", AgeMin: 30, AgeMax: 40},
	)

	// Wants women, not the seeker.
	seedUser(t, gdb,
		db.User{},
		db.Profile{Nickname: "notmutual", Gender: "F", BirthYear: 1992},
		db.Preferences{TargetGender: "F", AgeMin: 25, AgeMax: 40},
	)

	seeker, err := repo.GetByID(ctx, seekerID)
	require.NoError(t, err)

	candidates, err := repo.FindCandidates(ctx, seeker, testNow)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, okID, candidates[0].ID)

	// Every returned candidate satisfies the predicate both ways.
	for _, c := range candidates {
		require.NotNil(t, c.Profile)
		require.NotNil(t, c.Preferences)
		assert.Equal(t, seeker.Preferences.TargetGender, c.Profile.Gender)
		assert.Equal(t, c.Preferences.TargetGender, seeker.Profile.Gender)

		cAge := testNow.Year() - c.Profile.BirthYear
		assert.GreaterOrEqual(t, cAge, seeker.Preferences.AgeMin)
		assert.LessOrEqual(t, cAge, seeker.Preferences.AgeMax)

		uAge := testNow.Year() - seeker.Profile.BirthYear
		assert.GreaterOrEqual(t, uAge, c.Preferences.AgeMin)
		assert.LessOrEqual(t, uAge, c.Preferences.AgeMax)
	}
}

func TestFindCandidates_BlockExclusion(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	blockedID := uuid.New()
	seekerID := seedUser(t, gdb,
		db.User{},
		db.Profile{Nickname: "seeker", Gender: "M", BirthYear: 1990},
		db.Preferences{TargetGender: "F", AgeMin: 20, AgeMax: 50, Blocks: []uuid.UUID{blockedID}},
	)

	seedUser(t, gdb,
		db.User{ID: blockedID},
		db.Profile{Nickname: "blocked", Gender: "F", BirthYear: 1991},
		db.Preferences{TargetGender: "M", AgeMin: 20, AgeMax: 50},
	)
	freeID := seedUser(t, gdb,
		db.User{},
		db.Profile{Nickname: "free", Gender: "F", BirthYear: 1991},
		db.Preferences{TargetGender: "M", AgeMin: 20, AgeMax: 50},
	)

	seeker, err := repo.GetByID(ctx, seekerID)
	require.NoError(t, err)

	candidates, err := repo.FindCandidates(ctx, seeker, testNow)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, freeID, candidates[0].ID)
}

func TestFindCandidates_RegionFilter(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	seekerID := seedUser(t, gdb,
		db.User{},
		db.Profile{Nickname: "seeker", Gender: "M", BirthYear: 1990, Region: "Seoul"},
		db.Preferences{TargetGender: "F", AgeMin: 20, AgeMax: 50, Regions: []string{"Seoul", "Incheon"}},
	)

	seoulID := seedUser(t, gdb,
		db.User{},
		db.Profile{Nickname: "seoul", Gender: "F", BirthYear: 1991, Region: "Seoul"},
		db.Preferences{TargetGender: "M", AgeMin: 20, AgeMax: 50},
	)
	seedUser(t, gdb,
		db.User{},
		db.Profile{Nickname: "busan", Gender: "F", BirthYear: 1991, Region: "Busan"},
		db.Preferences{TargetGender: "M", AgeMin: 20, AgeMax: 50},
	)

	seeker, err := repo.GetByID(ctx, seekerID)
	require.NoError(t, err)

	candidates, err := repo.FindCandidates(ctx, seeker, testNow)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, seoulID, candidates[0].ID)
}

func TestFindCandidates_MissingProfileOrPrefs(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	bare := db.User{ID: uuid.New(), KakaoUserID: "kakao-bare"}
	require.NoError(t, gdb.Create(&bare).Error)

	candidates, err := repo.FindCandidates(ctx, &bare, testNow)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestEligibleUsers(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	okID := seedUser(t, gdb,
		db.User{},
		db.Profile{Nickname: "ok", Gender: "M", BirthYear: 1990},
		db.Preferences{TargetGender: "F", AgeMin: 20, AgeMax: 50},
	)
	seedUser(t, gdb,
		db.User{Banned: true},
		db.Profile{Nickname: "banned", Gender: "M", BirthYear: 1990},
		db.Preferences{TargetGender: "F", AgeMin: 20, AgeMax: 50},
	)
	seedUser(t, gdb,
		db.User{Role: db.RoleAdmin},
		db.Profile{Nickname: "admin", Gender: "M", BirthYear: 1990},
		db.Preferences{TargetGender: "F", AgeMin: 20, AgeMax: 50},
	)
	// No profile → not eligible.
	bare := db.User{ID: uuid.New(), KakaoUserID: "kakao-bare"}
	require.NoError(t, gdb.Create(&bare).Error)

	users, err := repo.EligibleUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, okID, users[0].ID)
	require.NotNil(t, users[0].Profile)
	require.NotNil(t, users[0].Preferences)
}

func TestListForAdmin_Pagination(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	for i := 0; i < 5; i++ {
		seedUser(t, gdb,
			db.User{},
			db.Profile{Nickname: "nick", Gender: "M", BirthYear: 1990},
			db.Preferences{TargetGender: "F", AgeMin: 20, AgeMax: 50},
		)
	}

	page1, next, err := repo.ListForAdmin(ctx, "", nil, 3)
	require.NoError(t, err)
	assert.Len(t, page1, 3)
	require.NotNil(t, next)

	page2, next2, err := repo.ListForAdmin(ctx, "", next, 3)
	require.NoError(t, err)
	assert.Len(t, page2, 2)
	assert.Nil(t, next2)

	seen := map[uuid.UUID]bool{}
	for _, u := range append(page1, page2...) {
		assert.False(t, seen[u.ID], "user repeated across pages")
		seen[u.ID] = true
	}
}

func TestSetBanned(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	id := seedUser(t, gdb,
		db.User{},
		db.Profile{Nickname: "target", Gender: "M", BirthYear: 1990},
		db.Preferences{TargetGender: "F", AgeMin: 20, AgeMax: 50},
	)

	require.NoError(t, repo.SetBanned(ctx, id, true))
	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.Banned)

	err = repo.SetBanned(ctx, uuid.New(), true)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
