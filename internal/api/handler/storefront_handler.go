package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/campaign-shop/internal/service"
	"github.com/d60-Lab/campaign-shop/pkg/response"
)

const campaignsPath = "/api/v1/campaigns/"

// SocialProof 最近购买弹窗
// @Summary 随机返回一条最近订单（脱敏）
// @Tags 前台
// @Produce json
// @Success 200 {object} response.Response{data=service.DisplayRecord}
// @Failure 404 {object} response.Response
// @Router /api/v1/social-proof [get]
func (h *Handler) SocialProof(c *gin.Context) {
	rec, err := h.social.Sample(c.Request.Context())
	if errors.Is(err, service.ErrNoRecentOrders) {
		response.NotFound(c, "Henüz sipariş yok.")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, rec)
}

// GetCampaign 活动详情
// @Summary 按 slug 获取活动；旧 slug 301 跳转
// @Tags 前台
// @Produce json
// @Param slug path string true "活动 slug"
// @Success 200 {object} response.Response{data=model.Campaign}
// @Success 301
// @Failure 404 {object} response.Response
// @Router /api/v1/campaigns/{slug} [get]
func (h *Handler) GetCampaign(c *gin.Context) {
	campaign, err := h.catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	var moved *service.MovedError
	if errors.As(err, &moved) {
		c.Redirect(http.StatusMovedPermanently, campaignsPath+moved.Slug)
		return
	}
	if err != nil {
		writeLookupError(c, err, "Kampanya bulunamadı.")
		return
	}
	response.Success(c, campaign)
}

// Home 首页跳转到第一个进行中的活动
// @Summary 首页
// @Tags 前台
// @Success 302
// @Failure 404 {object} response.Response
// @Router /api/v1/ [get]
func (h *Handler) Home(c *gin.Context) {
	campaign, err := h.catalog.FirstActive(c.Request.Context())
	if err != nil {
		writeLookupError(c, err, "Şu anda aktif kampanya bulunmuyor.")
		return
	}
	c.Redirect(http.StatusFound, campaignsPath+campaign.Slug)
}

// ListCities 省列表
// @Summary 省列表
// @Tags 地址
// @Produce json
// @Success 200 {object} response.Response{data=[]model.City}
// @Router /api/v1/addresses/cities [get]
func (h *Handler) ListCities(c *gin.Context) {
	list, err := h.catalog.Cities(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, list)
}

// ListDistricts 区列表
// @Summary 区列表
// @Tags 地址
// @Produce json
// @Param city query int true "省 ID"
// @Success 200 {object} response.Response{data=[]model.District}
// @Router /api/v1/addresses/districts [get]
func (h *Handler) ListDistricts(c *gin.Context) {
	cityID, ok := queryID(c, "city")
	if !ok {
		return
	}
	list, err := h.catalog.Districts(c.Request.Context(), cityID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, list)
}

// ListNeighborhoods 街区列表
// @Summary 街区列表
// @Tags 地址
// @Produce json
// @Param district query int true "区 ID"
// @Success 200 {object} response.Response{data=[]model.Neighborhood}
// @Router /api/v1/addresses/neighborhoods [get]
func (h *Handler) ListNeighborhoods(c *gin.Context) {
	districtID, ok := queryID(c, "district")
	if !ok {
		return
	}
	list, err := h.catalog.Neighborhoods(c.Request.Context(), districtID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, list)
}
