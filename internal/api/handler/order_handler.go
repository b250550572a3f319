package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/campaign-shop/internal/api/middleware"
	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/internal/service"
	"github.com/d60-Lab/campaign-shop/pkg/response"
)

const (
	orderCompletedCookie = "order_completed"
	lastOrderIDCookie    = "last_order_id"
	successCookieMaxAge  = 30 * 60
	orderSuccessPath     = "/orders/success/"
)

type placeOrderRequest struct {
	CampaignID     uint     `json:"campaign_id" binding:"required"`
	FirstName      string   `json:"first_name" binding:"required,max=100"`
	LastName       string   `json:"last_name" binding:"required,max=100"`
	Phone          string   `json:"phone" binding:"required,tr_phone"`
	CityID         uint     `json:"city_id"`
	DistrictID     uint     `json:"district_id"`
	NeighborhoodID uint     `json:"neighborhood_id"`
	AddressDetail  string   `json:"address_detail" binding:"required,max=500"`
	ProductIDs     []uint   `json:"product_ids"`
	Sizes          []string `json:"sizes"`
}

type placeOrderResponse struct {
	Redirect       string `json:"redirect"`
	OrderID        uint   `json:"order_id"`
	TrackingNumber string `json:"tracking_number"`
}

// PlaceOrder 下单
// @Summary 提交活动订单（货到付款）
// @Description 限流、白名单校验、库存扣减与订单写入在同一流程内完成，任一步失败均不落库
// @Tags 订单
// @Accept json
// @Produce json
// @Param request body placeOrderRequest true "订单信息"
// @Success 200 {object} response.Response{data=placeOrderResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 429 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/orders [post]
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, middleware.ValidationMessage(err))
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		CampaignID:     req.CampaignID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		CityID:         req.CityID,
		DistrictID:     req.DistrictID,
		NeighborhoodID: req.NeighborhoodID,
		AddressDetail:  req.AddressDetail,
		ProductIDs:     req.ProductIDs,
		Sizes:          req.Sizes,
		ClientIP:       c.ClientIP(),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(orderCompletedCookie, "1", successCookieMaxAge, "/", "", h.secureCookies, true)
	c.SetCookie(lastOrderIDCookie, strconv.FormatUint(uint64(order.ID), 10), successCookieMaxAge, "/", "", h.secureCookies, true)

	response.Success(c, placeOrderResponse{
		Redirect:       orderSuccessPath,
		OrderID:        order.ID,
		TrackingNumber: order.TrackingNumber,
	})
}

// OrderSuccess 下单成功页数据，只能读取一次
// @Summary 下单成功信息
// @Tags 订单
// @Produce json
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 404 {object} response.Response
// @Router /api/v1/orders/success [get]
func (h *Handler) OrderSuccess(c *gin.Context) {
	completed, _ := c.Cookie(orderCompletedCookie)
	rawID, _ := c.Cookie(lastOrderIDCookie)
	id, err := strconv.ParseUint(rawID, 10, 64)
	if completed != "1" || err != nil {
		response.NotFound(c, "Görüntülenecek sipariş bulunamadı.")
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), uint(id))
	c.SetCookie(orderCompletedCookie, "", -1, "/", "", h.secureCookies, true)
	c.SetCookie(lastOrderIDCookie, "", -1, "/", "", h.secureCookies, true)
	if err != nil {
		writeLookupError(c, err, "Görüntülenecek sipariş bulunamadı.")
		return
	}
	response.Success(c, order)
}

// TrackOrder 订单查询
// @Summary 按追踪号 + 手机号查询订单
// @Tags 订单
// @Produce json
// @Param tracking_number query string true "追踪号"
// @Param phone query string true "手机号"
// @Success 200 {object} response.Response{data=model.Order}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/orders/track [get]
func (h *Handler) TrackOrder(c *gin.Context) {
	tn, phone := c.Query("tracking_number"), c.Query("phone")
	if tn == "" || phone == "" {
		response.BadRequest(c, "Takip numarası ve telefon zorunludur.")
		return
	}
	order, err := h.orders.TrackOrder(c.Request.Context(), tn, phone)
	if err != nil {
		writeLookupError(c, err, "Bu bilgilerle eşleşen bir sipariş bulunamadı.")
		return
	}
	response.Success(c, order)
}

type createReturnRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
	Phone          string `json:"phone" binding:"required,tr_phone"`
	Reason         string `json:"reason" binding:"required,max=1000"`
}

// CreateReturn 顾客提交退货申请
// @Summary 提交退货申请
// @Tags 退货
// @Accept json
// @Produce json
// @Param request body createReturnRequest true "退货信息"
// @Success 200 {object} response.Response{data=model.ReturnRequest}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/returns [post]
func (h *Handler) CreateReturn(c *gin.Context) {
	var req createReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, middleware.ValidationMessage(err))
		return
	}
	ctx := c.Request.Context()
	order, err := h.orders.TrackOrder(ctx, req.TrackingNumber, req.Phone)
	if err != nil {
		writeLookupError(c, err, "Bu bilgilerle eşleşen bir sipariş bulunamadı.")
		return
	}
	if order.Status == model.OrderStatusCancelled || order.Status == model.OrderStatusReturn {
		response.BadRequest(c, "Bu sipariş için iade talebi oluşturulamaz.")
		return
	}
	rr, err := h.backOffice.CreateReturn(ctx, order.ID, req.Reason)
	switch {
	case errors.Is(err, service.ErrReturnExists):
		response.Error(c, http.StatusConflict, "Bu sipariş için açık bir iade talebiniz zaten var.")
		return
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c, "Sipariş bulunamadı.")
		return
	case err != nil:
		response.InternalError(c, err)
		return
	}
	response.Success(c, rr)
}
