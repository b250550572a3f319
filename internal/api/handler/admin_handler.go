package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/internal/service"
	"github.com/d60-Lab/campaign-shop/pkg/response"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin 后台登录
// @Summary 后台登录，返回 JWT
// @Tags 后台
// @Accept json
// @Produce json
// @Param request body loginRequest true "账号密码"
// @Success 200 {object} response.Response{data=map[string]string}
// @Failure 401 {object} response.Response
// @Router /api/v1/admin/login [post]
func (h *Handler) AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Kullanıcı adı ve şifre zorunludur.")
		return
	}
	token, err := h.admin.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		response.Unauthorized(c, "Kullanıcı adı veya şifre hatalı.")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token})
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// UpdateOrderStatus 修改订单状态
// @Summary 修改订单状态
// @Tags 后台
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "订单 ID"
// @Param request body updateStatusRequest true "新状态"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/admin/orders/{id}/status [patch]
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Durum alanı zorunludur.")
		return
	}
	err := h.backOffice.UpdateStatus(c.Request.Context(), id, req.Status)
	if errors.Is(err, service.ErrInvalidStatus) {
		response.BadRequest(c, "Geçersiz sipariş durumu.")
		return
	}
	if err != nil {
		writeLookupError(c, err, "Sipariş bulunamadı.")
		return
	}
	response.Success(c, gin.H{"id": id, "status": req.Status})
}

type updateCargoRequest struct {
	CargoFirm    string `json:"cargo_firm" binding:"max=100"`
	TrackingCode string `json:"tracking_code" binding:"max=100"`
	CargoBarcode string `json:"cargo_barcode" binding:"max=100"`
}

// UpdateOrderCargo 更新物流信息
// @Summary 更新物流信息
// @Tags 后台
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "订单 ID"
// @Param request body updateCargoRequest true "物流信息"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/admin/orders/{id}/cargo [patch]
func (h *Handler) UpdateOrderCargo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateCargoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Kargo bilgileri geçersiz.")
		return
	}
	if err := h.backOffice.UpdateCargo(c.Request.Context(), id, req.CargoFirm, req.TrackingCode, req.CargoBarcode); err != nil {
		writeLookupError(c, err, "Sipariş bulunamadı.")
		return
	}
	response.Success(c, nil)
}

type returnDecisionRequest struct {
	Note string `json:"note" binding:"max=1000"`
}

func (h *Handler) decideReturn(c *gin.Context, decide func(id uint, note string) error) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req returnDecisionRequest
	// 备注可选，允许空请求体
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Not alanı geçersiz.")
			return
		}
	}
	err := decide(id, req.Note)
	if errors.Is(err, service.ErrInvalidTransition) {
		response.Error(c, http.StatusConflict, "Bu iade talebi bu duruma geçirilemez.")
		return
	}
	if err != nil {
		writeLookupError(c, err, "İade talebi bulunamadı.")
		return
	}
	response.Success(c, nil)
}

// ApproveReturn 通过退货申请（订单状态同时置为 return）
// @Summary 通过退货申请
// @Tags 后台
// @Security BearerAuth
// @Param id path int true "退货申请 ID"
// @Param request body returnDecisionRequest false "备注"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/admin/returns/{id}/approve [post]
func (h *Handler) ApproveReturn(c *gin.Context) {
	h.decideReturn(c, func(id uint, note string) error {
		return h.backOffice.ApproveReturn(c.Request.Context(), id, note)
	})
}

// RejectReturn 拒绝退货申请
// @Summary 拒绝退货申请
// @Tags 后台
// @Security BearerAuth
// @Param id path int true "退货申请 ID"
// @Param request body returnDecisionRequest false "备注"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/admin/returns/{id}/reject [post]
func (h *Handler) RejectReturn(c *gin.Context) {
	h.decideReturn(c, func(id uint, note string) error {
		return h.backOffice.RejectReturn(c.Request.Context(), id, note)
	})
}

// CompleteReturn 完成退货
// @Summary 完成退货
// @Tags 后台
// @Security BearerAuth
// @Param id path int true "退货申请 ID"
// @Param request body returnDecisionRequest false "备注"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/admin/returns/{id}/complete [post]
func (h *Handler) CompleteReturn(c *gin.Context) {
	h.decideReturn(c, func(id uint, note string) error {
		return h.backOffice.CompleteReturn(c.Request.Context(), id, note)
	})
}

// GetSettings 站点设置
// @Summary 读取站点设置
// @Tags 后台
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response{data=model.SiteSettings}
// @Router /api/v1/admin/settings [get]
func (h *Handler) GetSettings(c *gin.Context) {
	st, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, st)
}

// UpdateSettings 修改站点设置（限流参数即时生效）
// @Summary 修改站点设置
// @Tags 后台
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.SettingsUpdate true "需要修改的字段"
// @Success 200 {object} response.Response{data=model.SiteSettings}
// @Failure 400 {object} response.Response
// @Router /api/v1/admin/settings [put]
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req service.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Ayarlar geçersiz.")
		return
	}
	st, err := h.settings.Update(c.Request.Context(), req)
	if errors.Is(err, service.ErrInvalidSettings) {
		response.BadRequest(c, "Ayarlar geçersiz.")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, st)
}

type changeSlugRequest struct {
	Slug string `json:"slug" binding:"required,max=255"`
}

// ChangeCampaignSlug 修改活动 slug，旧 slug 自动跳转
// @Summary 修改活动 slug
// @Tags 后台
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "活动 ID"
// @Param request body changeSlugRequest true "新 slug"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/admin/campaigns/{id}/slug [patch]
func (h *Handler) ChangeCampaignSlug(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req changeSlugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Slug alanı zorunludur.")
		return
	}
	err := h.catalog.ChangeSlug(c.Request.Context(), id, req.Slug)
	switch {
	case errors.Is(err, service.ErrInvalidSlug):
		response.BadRequest(c, "Slug yalnızca küçük harf, rakam ve tire içerebilir.")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		response.Error(c, http.StatusConflict, "Bu slug başka bir kampanya tarafından kullanılıyor.")
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c, "Kampanya bulunamadı.")
	case err != nil:
		response.InternalError(c, err)
	default:
		response.Success(c, nil)
	}
}

type liveDashboard struct {
	ActiveVisitors int64                  `json:"active_visitors"`
	Notifications  []service.Notification `json:"notifications"`
}

// LiveDashboard 实时面板：活跃访客 + 最新订单通知
// @Summary 实时面板
// @Tags 后台
// @Security BearerAuth
// @Produce json
// @Param limit query int false "通知条数" default(20)
// @Success 200 {object} response.Response{data=liveDashboard}
// @Router /api/v1/admin/dashboard/live [get]
func (h *Handler) LiveDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	active, err := h.visitors.ActiveCount(ctx)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := liveDashboard{ActiveVisitors: active, Notifications: []service.Notification{}}
	if h.feed != nil {
		limit := 20
		if v, ok := c.GetQuery("limit"); ok {
			if n, err := parsePositive(v); err == nil {
				limit = n
			}
		}
		list, err := service.RecentNotifications(ctx, h.feed, limit)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		out.Notifications = list
	}
	response.Success(c, out)
}
