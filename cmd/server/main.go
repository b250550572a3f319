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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/campaign-shop/config"
	"github.com/d60-Lab/campaign-shop/internal/app"
	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/pkg/cache"
	"github.com/d60-Lab/campaign-shop/pkg/database"
	"github.com/d60-Lab/campaign-shop/pkg/logger"
	"github.com/d60-Lab/campaign-shop/pkg/sentry"
	"github.com/d60-Lab/campaign-shop/pkg/tracing"
)

// @title Campaign Shop API
// @version 1.0
// @description Kampanya vitrini: sipariş, iade ve yönetim uç noktaları.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if err := sentry.Init(cfg.Sentry); err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	defer sentry.Flush()

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	if err := repository.InitSchema(db); err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = cache.NewRedisClient(ctx, cfg.Redis.Addr,
			cache.WithPassword(cfg.Redis.Password),
			cache.WithDB(cfg.Redis.DB),
		)
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	a, err := app.New(cfg, db, rdb)
	if err != nil {
		return err
	}
	stopWorkers := a.StartWorkers()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Server.Port), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	// 先停 HTTP 再停 worker，保证已入队的访客与通知被处理完
	if err := stopWorkers(shutdownCtx); err != nil {
		logger.Error("stop workers", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", zap.Error(err))
	}
	logger.Info("server exited")
	return nil
}
