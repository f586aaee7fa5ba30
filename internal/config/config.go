package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		ENV    string
		Secret string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host        string
		Port        string
		CORSOrigins []string
	}

	JWT struct {
		Issuer        string
		Audience      string
		ExpireMinutes int
	}

	Batch struct {
		Timezone string
		// Cron expression for the weekly recommendation job.
		Schedule string
	}
}

func New() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}

	// App
	cfg.App.ENV = getEnvDefault("APP_ENV", "development")
	cfg.App.Secret = getEnvDefault("APP_SECRET", "dev-secret-change-me")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "api_server")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "shhmatch")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")
	for _, o := range strings.Split(getEnvDefault("CORS_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.HTTP.CORSOrigins = append(cfg.HTTP.CORSOrigins, o)
		}
	}

	// JWT
	cfg.JWT.Issuer = getEnvDefault("JWT_ISSUER", "shhmatch-api")
	cfg.JWT.Audience = getEnvDefault("JWT_AUDIENCE", "shhmatch-web")
	cfg.JWT.ExpireMinutes = 10080 // 7 days
	if s := os.Getenv("JWT_EXPIRE_MINUTES"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.JWT.ExpireMinutes = n
		}
	}

	// Batch
	cfg.Batch.Timezone = getEnvDefault("BATCH_TZ", "Asia/Seoul")
	// Monday 10:00 in Batch.Timezone.
	cfg.Batch.Schedule = getEnvDefault("BATCH_SCHEDULE", "0 10 * * 1")

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
