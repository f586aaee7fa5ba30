package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shhmatch/backend/internal/app"
	"github.com/shhmatch/backend/internal/logger"
)

// NewRouter builds the gin engine: recovery, request logging, CORS,
// a health endpoint, and every registrar mounted under /api/v1.
func NewRouter(appCtx *app.AppContext, registrars ...Registrar) *gin.Engine {
	if appCtx.Cfg.App.ENV != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     appCtx.Cfg.HTTP.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if sqlDB, err := appCtx.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "time": time.Now().UTC()})
	})

	api := r.Group("/api/v1")
	for _, reg := range registrars {
		reg.Register(api)
	}
	return r
}

// Start serves the engine until ctx is cancelled, then drains open
// connections before returning.
func Start(ctx context.Context, appCtx *app.AppContext, engine *gin.Engine) error {
	addr := net.JoinHostPort(appCtx.Cfg.HTTP.Host, appCtx.Cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appCtx.Logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	appCtx.Logger.Info("http server stopped")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.L().Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
