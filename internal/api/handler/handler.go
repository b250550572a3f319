package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/internal/service"
	"github.com/d60-Lab/campaign-shop/pkg/response"
)

// Handler 所有 HTTP 处理函数共享的依赖
type Handler struct {
	orders     service.OrderService
	social     *service.SocialProof
	catalog    service.CatalogService
	backOffice service.BackOfficeService
	settings   service.SettingsService
	admin      service.AdminService
	visitors   *service.VisitorTracker
	feed       redis.Cmdable // 为 nil 时实时面板不返回通知

	secureCookies bool
}

type Options struct {
	Orders        service.OrderService
	SocialProof   *service.SocialProof
	Catalog       service.CatalogService
	BackOffice    service.BackOfficeService
	Settings      service.SettingsService
	Admin         service.AdminService
	Visitors      *service.VisitorTracker
	Feed          redis.Cmdable
	SecureCookies bool
}

func NewHandler(o Options) *Handler {
	return &Handler{
		orders:        o.Orders,
		social:        o.SocialProof,
		catalog:       o.Catalog,
		backOffice:    o.BackOffice,
		settings:      o.Settings,
		admin:         o.Admin,
		visitors:      o.Visitors,
		feed:          o.Feed,
		secureCookies: o.SecureCookies,
	}
}

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

// orderErrorStatus 下单错误种类到 HTTP 状态码
func orderErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrCampaignInactive),
		errors.Is(err, service.ErrInsufficientQuantity),
		errors.Is(err, service.ErrEmptySelection),
		errors.Is(err, service.ErrSecurityViolation),
		errors.Is(err, service.ErrOutOfStock):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeOrderError(c *gin.Context, err error) {
	var oe *service.OrderError
	if !errors.As(err, &oe) {
		response.InternalError(c, err)
		return
	}
	// 内部错误已在服务层记录并上报
	response.Error(c, orderErrorStatus(oe), oe.Message)
}

// writeLookupError 仓储层未找到映射为 404，其余按内部错误处理
func writeLookupError(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, repository.ErrNotFound) {
		response.NotFound(c, notFoundMsg)
		return
	}
	response.InternalError(c, err)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Geçersiz kayıt numarası.")
		return 0, false
	}
	return uint(id), true
}

func queryID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Geçersiz kayıt numarası.")
		return 0, false
	}
	return uint(id), true
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
