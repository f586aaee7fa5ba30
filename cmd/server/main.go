package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/shhmatch/backend/internal/app"
	"github.com/shhmatch/backend/internal/auth"
	"github.com/shhmatch/backend/internal/cache"
	"github.com/shhmatch/backend/internal/config"
	"github.com/shhmatch/backend/internal/db"
	"github.com/shhmatch/backend/internal/logger"
	"github.com/shhmatch/backend/internal/scheduler"
	"github.com/shhmatch/backend/internal/server"
	"github.com/shhmatch/backend/internal/service/account"
	"github.com/shhmatch/backend/internal/service/admin"
	"github.com/shhmatch/backend/internal/service/likes"
	"github.com/shhmatch/backend/internal/service/matches"
	"github.com/shhmatch/backend/internal/service/payments"
	"github.com/shhmatch/backend/internal/service/profile"
	"github.com/shhmatch/backend/internal/service/recommend"
	"github.com/shhmatch/backend/internal/service/recs"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(cfg, database, redisCache, log)
	tokens := auth.NewTokenIssuer(cfg)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	// Weekly batch on the configured cron schedule
	sched, err := scheduler.New(cfg, recommend.NewService(appCtx), log)
	if err != nil {
		log.Error("failed to init scheduler", "err", err)
		return
	}
	sched.Start()
	defer sched.Stop()

	router := server.NewRouter(appCtx,
		account.NewRegistrar(appCtx, tokens),
		profile.NewRegistrar(appCtx, tokens),
		recs.NewRegistrar(appCtx, tokens),
		likes.NewRegistrar(appCtx, tokens),
		matches.NewRegistrar(appCtx, tokens),
		payments.NewRegistrar(appCtx, tokens),
		admin.NewRegistrar(appCtx, tokens),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx, appCtx, router); err != nil {
		log.Error("http server failed", "err", err)
	}
}
