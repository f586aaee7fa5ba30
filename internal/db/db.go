package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shhmatch/backend/internal/config"
)

// AllModels is the migration set, in FK dependency order.
func AllModels() []any {
	return []any{
		&User{}, &Profile{}, &Preferences{},
		&ExposureLog{}, &Recommendation{},
		&Like{}, &Match{}, &Payment{},
		&AdminAction{},
	}
}

// NewDB initializes the database connection using DSN from config.
// TranslateError is on so duplicate-key inserts surface as
// gorm.ErrDuplicatedKey on every dialect.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DB.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	// AutoMigrate ensures schema is in sync with models.
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}
