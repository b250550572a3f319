package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/d60-Lab/campaign-shop/docs"

	"github.com/d60-Lab/campaign-shop/config"
	"github.com/d60-Lab/campaign-shop/internal/api/handler"
	"github.com/d60-Lab/campaign-shop/internal/api/middleware"
	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/pkg/auth"
)

// Setup 组装中间件与全部路由
func Setup(cfg *config.Config, h *handler.Handler, tokens *auth.TokenManager, visitors middleware.VisitorRecorder) (*gin.Engine, error) {
	gin.SetMode(cfg.Server.Mode)
	if err := middleware.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	// 下单限流按 ClientIP 计数，只有可信代理的 X-Forwarded-For 才生效
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.Logger())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1", middleware.Throttle(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	shop := api.Group("", middleware.TrackVisitors(visitors, cfg.Server.SecureCookies))
	{
		shop.GET("/", h.Home)
		shop.GET("/campaigns/:slug", h.GetCampaign)
		shop.GET("/social-proof", h.SocialProof)

		shop.POST("/orders", h.PlaceOrder)
		shop.GET("/orders/success", h.OrderSuccess)
		shop.GET("/orders/track", h.TrackOrder)
		shop.POST("/returns", h.CreateReturn)

		shop.GET("/addresses/cities", h.ListCities)
		shop.GET("/addresses/districts", h.ListDistricts)
		shop.GET("/addresses/neighborhoods", h.ListNeighborhoods)
	}

	api.POST("/admin/login", h.AdminLogin)
	admin := api.Group("/admin", middleware.Authenticate(tokens))
	{
		orders := admin.Group("/orders", middleware.RequirePermission(model.PermManageOrders))
		orders.PATCH("/:id/status", h.UpdateOrderStatus)
		orders.PATCH("/:id/cargo", h.UpdateOrderCargo)

		returns := admin.Group("/returns", middleware.RequirePermission(model.PermManageReturns))
		returns.POST("/:id/approve", h.ApproveReturn)
		returns.POST("/:id/reject", h.RejectReturn)
		returns.POST("/:id/complete", h.CompleteReturn)

		settings := admin.Group("/settings", middleware.RequirePermission(model.PermManageSettings))
		settings.GET("", h.GetSettings)
		settings.PUT("", h.UpdateSettings)

		admin.PATCH("/campaigns/:id/slug", middleware.RequirePermission(model.PermManageCampaigns), h.ChangeCampaignSlug)
		admin.GET("/dashboard/live", middleware.RequirePermission(model.PermViewDashboard), h.LiveDashboard)
	}

	return r, nil
}
