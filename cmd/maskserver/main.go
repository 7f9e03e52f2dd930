// Maskserver serves mask rasterisation over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"seehuhn.de/go/labelmask/internal/cache"
	"seehuhn.de/go/labelmask/internal/config"
	"seehuhn.de/go/labelmask/internal/logging"
	"seehuhn.de/go/labelmask/internal/server"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	BuildID   = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	fs := pflag.NewFlagSet("maskserver", pflag.ExitOnError)
	configFile := fs.String("config", "", "YAML configuration file")
	fs.String("port", "", "listen address, e.g. :8080")
	fs.String("log-mode", "", `"release" for JSON logs`)
	_ = fs.Parse(os.Args[1:])

	v := config.NewViper()
	if err := config.ReadFile(v, *configFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := config.BindFlags(v, fs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Mode)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync(logger)

	logger.Info("starting mask server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("git_branch", GitBranch))

	var store cache.Store
	if cfg.Redis.Enabled {
		redisStore := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password,
			cfg.Redis.DB, cfg.Redis.TTL, logger)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisStore.Ping(ctx)
		cancel()
		if err != nil {
			logger.Warn("redis connection failed, cache disabled", zap.Error(err))
			redisStore.Close()
		} else {
			logger.Info("redis connected successfully", zap.String("addr", cfg.Redis.Addr))
			store = redisStore
			defer redisStore.Close()
		}
	}

	gin.SetMode(cfg.Server.Mode)
	srv := server.New(cfg, store, logger, server.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		BuildID:   BuildID,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("failed to start server", zap.Error(err))
	}
	logger.Info("server stopped")
}
