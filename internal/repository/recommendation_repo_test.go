package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shhmatch/backend/internal/db"
	svcErr "github.com/shhmatch/backend/internal/errors"
	"github.com/shhmatch/backend/internal/repository"
)

func TestCreateRecommendation_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewRecommendationRepository(gdb)

	userID, targetID := uuid.New(), uuid.New()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, userID, targetID, "2025-W10", 4.5, now))

	err := repo.Create(ctx, userID, targetID, "2025-W10", 4.5, now)
	require.Error(t, err)
	assert.True(t, svcErr.IsDuplicateKey(err))

	// Different week is a fresh fact.
	require.NoError(t, repo.Create(ctx, userID, targetID, "2025-W11", 4.5, now))
}

func TestListForWeek_OrderedByScore(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewRecommendationRepository(gdb)

	userID := uuid.New()
	now := time.Now()
	require.NoError(t, repo.Create(ctx, userID, uuid.New(), "2025-W10", 2.0, now))
	require.NoError(t, repo.Create(ctx, userID, uuid.New(), "2025-W10", 8.0, now))
	require.NoError(t, repo.Create(ctx, userID, uuid.New(), "2025-W10", 5.0, now))
	require.NoError(t, repo.Create(ctx, userID, uuid.New(), "2025-W11", 9.0, now))

	recs, err := repo.ListForWeek(ctx, userID, "2025-W10")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 8.0, recs[0].Score)
	assert.Equal(t, 5.0, recs[1].Score)
	assert.Equal(t, 2.0, recs[2].Score)
}

func TestRecentTargets_Window(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewRecommendationRepository(gdb)

	userID := uuid.New()
	recentID, staleID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	// Inside the window.
	require.NoError(t, gdb.Create(&db.ExposureLog{
		UserID: userID, TargetUserID: recentID,
		Reason: "weekly_rec", SeenAt: now.Add(-2 * 7 * 24 * time.Hour),
	}).Error)
	// Outside the 12-week window.
	require.NoError(t, gdb.Create(&db.ExposureLog{
		UserID: userID, TargetUserID: staleID,
		Reason: "weekly_rec", SeenAt: now.Add(-13 * 7 * 24 * time.Hour),
	}).Error)
	// Someone else's exposure.
	require.NoError(t, gdb.Create(&db.ExposureLog{
		UserID: uuid.New(), TargetUserID: recentID,
		Reason: "weekly_rec", SeenAt: now,
	}).Error)

	seen, err := repo.RecentTargets(ctx, userID, 12, now)
	require.NoError(t, err)
	assert.Len(t, seen, 1)
	_, ok := seen[recentID]
	assert.True(t, ok)
}

func TestRecordExposure_DuplicatesTolerated(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewRecommendationRepository(gdb)

	userID, targetID := uuid.New(), uuid.New()
	require.NoError(t, repo.RecordExposure(ctx, userID, targetID, "weekly_rec"))
	require.NoError(t, repo.RecordExposure(ctx, userID, targetID, "weekly_rec"))

	var count int64
	require.NoError(t, gdb.Model(&db.ExposureLog{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestMarkResponded(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewRecommendationRepository(gdb)

	userID, targetID := uuid.New(), uuid.New()
	require.NoError(t, repo.Create(ctx, userID, targetID, "2025-W10", 3.0, time.Now()))

	require.NoError(t, repo.MarkResponded(ctx, userID, targetID, "2025-W10"))

	recs, err := repo.ListForWeek(ctx, userID, "2025-W10")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Responded)

	// No matching row is a no-op, not an error.
	require.NoError(t, repo.MarkResponded(ctx, userID, uuid.New(), "2025-W10"))
}
