package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shhmatch/backend/internal/db"
)

// setupTestDB opens an isolated in-memory SQLite DB with the full
// schema. TranslateError mirrors production so duplicate inserts
// surface as gorm.ErrDuplicatedKey.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db.AllModels()...))
	return database
}

// seedUser inserts a user with profile and preferences in one call.
func seedUser(t *testing.T, gdb *gorm.DB, u db.User, p db.Profile, prefs db.Preferences) uuid.UUID {
	t.Helper()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.KakaoUserID == "" {
		u.KakaoUserID = "kakao-" + u.ID.String()
	}
	require.NoError(t, gdb.Create(&u).Error)

	p.UserID = u.ID
	if p.Visible == nil {
		p.Visible = db.DefaultVisibility()
	}
	require.NoError(t, gdb.Create(&p).Error)

	prefs.UserID = u.ID
	require.NoError(t, gdb.Create(&prefs).Error)

	return u.ID
}
