package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/ratingquiz/internal/config"
	"github.com/playperu/ratingquiz/internal/database"
	"github.com/playperu/ratingquiz/internal/dataset"
	"github.com/playperu/ratingquiz/internal/handler/health"
	"github.com/playperu/ratingquiz/internal/migrations"
	"github.com/playperu/ratingquiz/internal/ratingquiz"
	"github.com/playperu/ratingquiz/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Dataset ---
	catalog, err := dataset.Open(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	logger.Info("loaded dataset", "path", cfg.DatasetPath, "entities", catalog.Len())

	checks := map[string]health.Checker{"dataset": catalog}

	// --- Session store ---
	var store server.Store
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()

		rs := server.NewRedisStore(rdb, cfg.SessionTTL)
		store, checks["redis"] = rs, rs
		logger.Info("connected to redis", "session_ttl", cfg.SessionTTL)
	} else {
		db, err := database.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("connecting to sqlite: %w", err)
		}
		defer db.Close()

		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}

		ss := server.NewSQLiteStore(db)
		store, checks["sqlite"] = ss, ss
		logger.Info("connected to sqlite", "path", cfg.DBPath)
	}

	sessions := server.NewSessions(store, catalog, ratingquiz.NewSampler(cfg.MaxDrawAttempts))

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Sessions:       sessions,
		Catalog:        catalog,
		Checks:         checks,
		SPADir:         cfg.SPADir,
		CORSOrigins:    cfg.CORSOrigins,
		AdminTokenHash: cfg.AdminTokenHash,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
