package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Almer24/it-ticketing-system/internal/cache"
	"github.com/Almer24/it-ticketing-system/internal/config"
	"github.com/Almer24/it-ticketing-system/internal/database"
	"github.com/Almer24/it-ticketing-system/internal/router"
	"github.com/Almer24/it-ticketing-system/internal/storage"
	"github.com/Almer24/it-ticketing-system/pkg/logger"
)

func main() {
	// config + logger
	cfg := config.Load()
	l := logger.New(cfg.Env)

	// db
	ctx := context.Background()
	pool, err := database.Open(ctx, cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("db connect failed")
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		l.Fatal().Err(err).Msg("db migrate failed")
	}

	// photo object store
	photos, err := storage.NewMinioStore(ctx, cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("object store connect failed")
	}

	// optional dashboard cache
	var rc *cache.Redis
	if cfg.RedisURL != "" {
		rc, err = cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			l.Fatal().Err(err).Msg("redis connect failed")
		}
		defer rc.Close()
	}

	// http
	r := router.New(l, pool, photos, rc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	l.Info().Msg("shutdown complete")
}
