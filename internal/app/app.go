// Package app wires repositories, services, background workers and the HTTP router.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/config"
	"github.com/d60-Lab/campaign-shop/internal/api/handler"
	"github.com/d60-Lab/campaign-shop/internal/api/router"
	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/internal/service"
	"github.com/d60-Lab/campaign-shop/pkg/auth"
	"github.com/d60-Lab/campaign-shop/pkg/logger"
)

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Repos  *repository.Repositories

	Settings   service.SettingsService
	Orders     service.OrderService
	Catalog    service.CatalogService
	BackOffice service.BackOfficeService
	Admin      service.AdminService
	Social     *service.SocialProof
	Visitors   *service.VisitorTracker
	Notifier   *service.NotificationWorker // 未配置 Redis 时为 nil
	Tokens     *auth.TokenManager

	Engine *gin.Engine
}

// New 组装应用；rdb 为 nil 时限流与访客统计退化为进程内实现
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	repos := repository.NewRepositories(db)
	settings := service.NewSettingsService(repos.Settings)

	var (
		limiter  service.Limiter
		visitors service.VisitorStore
		feed     redis.Cmdable
		notifier *service.NotificationWorker
		catalog  = service.NewCatalogService(repos.Campaigns, repos.Addresses)
	)
	if rdb != nil {
		limiter = service.NewRedisLimiter(rdb, settings)
		visitors = service.NewRedisVisitorStore(rdb)
		feed = rdb
		catalog = service.NewCachedCatalog(catalog, repos.Campaigns, rdb, cfg.Cache.CampaignTTL, cfg.Cache.AddressTTL)
		notifier = service.NewNotificationWorker(repos.Outbox, rdb, 1, cfg.Notifier.BatchSize, cfg.Notifier.PollInterval, cfg.Notifier.ClaimLease)
	} else {
		logger.Warn("redis not configured: using in-process rate limiter, order notifications disabled")
		limiter = service.NewMemoryLimiter(settings)
		visitors = service.NewMemoryVisitorStore()
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireHours)*time.Hour)
	a := &App{
		Config:     cfg,
		DB:         db,
		Repos:      repos,
		Settings:   settings,
		Orders:     service.NewOrderService(db, repos, limiter),
		Catalog:    catalog,
		BackOffice: service.NewBackOfficeService(db, repos),
		Admin:      service.NewAdminService(repos.Admins, tokens),
		Social:     service.NewSocialProof(repos.Orders, cfg.SocialProof.RecentWindow),
		Visitors:   service.NewVisitorTracker(visitors, 10000),
		Notifier:   notifier,
		Tokens:     tokens,
	}

	h := handler.NewHandler(handler.Options{
		Orders:        a.Orders,
		SocialProof:   a.Social,
		Catalog:       a.Catalog,
		BackOffice:    a.BackOffice,
		Settings:      a.Settings,
		Admin:         a.Admin,
		Visitors:      a.Visitors,
		Feed:          feed,
		SecureCookies: cfg.Server.SecureCookies,
	})
	engine, err := router.Setup(cfg, h, tokens, a.Visitors)
	if err != nil {
		return nil, err
	}
	a.Engine = engine
	return a, nil
}

// StartWorkers 启动后台 worker，返回统一的停止函数
func (a *App) StartWorkers() func(context.Context) error {
	stops := []func(context.Context) error{a.Visitors.Start(2)}
	if a.Notifier != nil {
		stops = append(stops, a.Notifier.Start())
		logger.Info("order notifier started", zap.Duration("poll_interval", a.Config.Notifier.PollInterval))
	}
	return func(ctx context.Context) error {
		var errs []error
		for _, stop := range stops {
			if err := stop(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
