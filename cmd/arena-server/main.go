package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/archive"
	"github.com/park285/chess-arena/internal/config"
	"github.com/park285/chess-arena/internal/match"
	"github.com/park285/chess-arena/internal/msgcat"
	"github.com/park285/chess-arena/internal/obslog"
	"github.com/park285/chess-arena/internal/server"
	"github.com/park285/chess-arena/internal/status"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	cat, err := msgcat.New(cfg.MsgOverrideDir)
	if err != nil {
		logger.Fatal("msgcat init error", zap.Error(err))
	}

	reg := match.NewRegistry(logger)
	handler := server.NewHandler(reg, cat, cfg.ReadTimeout, logger)

	// Game archive (Redis), optional Postgres result log behind it.
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis url error", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("redis ping error", zap.Error(err))
		}
		store := archive.NewStore(rdb, logger)

		if cfg.DatabaseURL != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			db, err := archive.Open(ctx, cfg.DatabaseURL)
			cancel()
			if err != nil {
				logger.Fatal("postgres init error", zap.Error(err))
			}
			defer func() { _ = db.Close() }()
			store.AttachRepository(archive.NewRepository(db))
		}
		handler.AttachArchiver(store)
	}

	srv := server.New(cfg, handler, logger)
	errCh := make(chan error, 3)
	go func() { errCh <- srv.ListenAndServe() }()

	var ws *server.WSServer
	if cfg.WSAddr != "" {
		ws = server.NewWS(cfg, handler, logger)
		go func() { errCh <- ws.ListenAndServe() }()
	}

	var st *status.Server
	if cfg.StatusAddr != "" {
		st = status.New(cfg.StatusAddr, reg, logger)
		go func() { errCh <- st.ListenAndServe() }()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutdown_signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("listener_failed", zap.Error(err))
		}
	}

	if st != nil {
		_ = st.Shutdown()
	}
	if ws != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = ws.Shutdown(ctx)
		cancel()
	}
	srv.Stop()
	logger.Info("shutdown_complete")
}
