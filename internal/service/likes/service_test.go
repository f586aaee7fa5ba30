package likes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shhmatch/backend/internal/app"
	"github.com/shhmatch/backend/internal/auth"
	"github.com/shhmatch/backend/internal/cache"
	"github.com/shhmatch/backend/internal/config"
	"github.com/shhmatch/backend/internal/db"
	"github.com/shhmatch/backend/internal/logger"
	"github.com/shhmatch/backend/internal/service/likes"
)

const testWeek = "2025-W10"

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB, *auth.TokenIssuer, *cache.RedisCache) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(db.AllModels()...))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.App.Secret = "test-secret"
	cfg.JWT.Issuer = "shhmatch-api"
	cfg.JWT.Audience = "shhmatch-web"
	cfg.JWT.ExpireMinutes = 60
	cfg.Batch.Timezone = "UTC"
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	appCtx := app.New(cfg, gdb, redisCache, logger.L())
	tokens := auth.NewTokenIssuer(cfg)

	router := gin.New()
	api := router.Group("/api/v1")
	likes.NewRegistrar(appCtx, tokens).Register(api)
	return router, gdb, tokens, redisCache
}

func seedUser(t *testing.T, gdb *gorm.DB, gender string) *db.User {
	t.Helper()
	user := &db.User{
		KakaoUserID: uuid.NewString(),
		Role:        db.RoleUser,
		Profile: &db.Profile{
			Nickname:  "tester",
			Gender:    gender,
			BirthYear: 1990,
			Visible:   db.DefaultVisibility(),
		},
	}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func postLike(t *testing.T, router *gin.Engine, token string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func issueFor(t *testing.T, tokens *auth.TokenIssuer, user *db.User) string {
	t.Helper()
	token, err := tokens.Issue(user.ID.String(), user.Role)
	require.NoError(t, err)
	return token
}

func TestCreateLike_NoMatchUntilMutual(t *testing.T) {
	router, gdb, tokens, _ := setupRouter(t)
	alice := seedUser(t, gdb, "F")
	bob := seedUser(t, gdb, "M")

	w := postLike(t, router, issueFor(t, tokens, alice), map[string]any{
		"toUserId": bob.ID.String(), "batchWeek": testWeek,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK      bool `json:"ok"`
		Matched bool `json:"matched"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.False(t, resp.Matched)

	var matchCount int64
	require.NoError(t, gdb.Model(&db.Match{}).Count(&matchCount).Error)
	assert.EqualValues(t, 0, matchCount)
}

func TestCreateLike_MutualCreatesMatch(t *testing.T) {
	router, gdb, tokens, _ := setupRouter(t)
	alice := seedUser(t, gdb, "F")
	bob := seedUser(t, gdb, "M")

	w := postLike(t, router, issueFor(t, tokens, alice), map[string]any{
		"toUserId": bob.ID.String(), "batchWeek": testWeek,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = postLike(t, router, issueFor(t, tokens, bob), map[string]any{
		"toUserId": alice.ID.String(), "batchWeek": testWeek,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK      bool `json:"ok"`
		Matched bool `json:"matched"`
		Match   *struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"match"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Matched)
	require.NotNil(t, resp.Match)
	assert.Equal(t, db.MatchPending, resp.Match.Status)

	var match db.Match
	require.NoError(t, gdb.First(&match).Error)
	assert.Equal(t, match.ID.String(), resp.Match.ID)
}

func TestCreateLike_RepeatIsNoOp(t *testing.T) {
	router, gdb, tokens, _ := setupRouter(t)
	alice := seedUser(t, gdb, "F")
	bob := seedUser(t, gdb, "M")

	token := issueFor(t, tokens, alice)
	body := map[string]any{"toUserId": bob.ID.String(), "batchWeek": testWeek}
	require.Equal(t, http.StatusOK, postLike(t, router, token, body).Code)
	require.Equal(t, http.StatusOK, postLike(t, router, token, body).Code)

	var likeCount int64
	require.NoError(t, gdb.Model(&db.Like{}).Count(&likeCount).Error)
	assert.EqualValues(t, 1, likeCount)
}

func TestCreateLike_MarksRecommendationResponded(t *testing.T) {
	router, gdb, tokens, redisCache := setupRouter(t)
	alice := seedUser(t, gdb, "F")
	bob := seedUser(t, gdb, "M")

	require.NoError(t, gdb.Create(&db.Recommendation{
		UserID:       alice.ID,
		TargetUserID: bob.ID,
		BatchWeek:    testWeek,
		Score:        5,
		SentAt:       time.Now(),
	}).Error)
	require.NoError(t, redisCache.SetWeeklyRecs(
		t.Context(), alice.ID.String(), testWeek, `{"week":"2025-W10"}`))

	w := postLike(t, router, issueFor(t, tokens, alice), map[string]any{
		"toUserId": bob.ID.String(), "batchWeek": testWeek,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var rec db.Recommendation
	require.NoError(t, gdb.First(&rec, "user_id = ?", alice.ID).Error)
	assert.True(t, rec.Responded)

	cached, err := redisCache.GetWeeklyRecs(t.Context(), alice.ID.String(), testWeek)
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestCreateLike_Validation(t *testing.T) {
	router, gdb, tokens, _ := setupRouter(t)
	alice := seedUser(t, gdb, "F")
	banned := seedUser(t, gdb, "M")
	require.NoError(t, gdb.Model(banned).Update("banned", true).Error)
	token := issueFor(t, tokens, alice)

	w := postLike(t, router, token, map[string]any{"toUserId": alice.ID.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postLike(t, router, token, map[string]any{"toUserId": uuid.NewString(), "batchWeek": testWeek})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postLike(t, router, token, map[string]any{"toUserId": banned.ID.String(), "batchWeek": testWeek})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postLike(t, router, token, map[string]any{"toUserId": banned.ID.String(), "batchWeek": "week-7"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes", bytes.NewReader([]byte(`{}`)))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
