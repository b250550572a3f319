package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/config"
	"github.com/d60-Lab/campaign-shop/internal/api/middleware"
	"github.com/d60-Lab/campaign-shop/internal/app"
	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/testutil"
)

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testConfig() *config.Config {
	return &config.Config{
		Server:      config.ServerConfig{Port: 8080, Mode: "test"},
		JWT:         config.JWTConfig{Secret: "router-test-secret-0123456789", ExpireHours: 1},
		RateLimit:   config.RateLimitConfig{RPS: 10000, Burst: 10000},
		Notifier:    config.NotifierConfig{PollInterval: 10 * time.Millisecond, BatchSize: 10},
		SocialProof: config.SocialProofConfig{RecentWindow: 20},
	}
}

type APISuite struct {
	suite.Suite
	app  *app.App
	shop *testutil.Shop
	mr   *miniredis.Miniredis
	db   *gorm.DB
	rdb  *redis.Client
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	db := testutil.NewDB(s.T())
	s.shop = testutil.SeedShop(s.T(), db)
	s.mr = miniredis.RunT(s.T())
	rdb := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.T().Cleanup(func() { _ = rdb.Close() })
	s.db, s.rdb = db, rdb

	a, err := app.New(testConfig(), db, rdb)
	s.Require().NoError(err)
	s.app = a
}

func (s *APISuite) do(method, path string, body interface{}, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	s.app.Engine.ServeHTTP(w, req)
	return w
}

// fromIP 模拟直接连接的客户端
func fromIP(ip string) func(*http.Request) {
	return func(r *http.Request) { r.RemoteAddr = ip + ":40000" }
}

func forwardedFor(ip string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("X-Forwarded-For", ip) }
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookies(cookies []*http.Cookie) func(*http.Request) {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func decode(t require.TestingT, w *httptest.ResponseRecorder, data interface{}) apiResponse {
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

func (s *APISuite) orderBody(productIDs ...uint) map[string]interface{} {
	sizes := make([]string, len(productIDs))
	for i := range sizes {
		sizes[i] = "m"
	}
	return map[string]interface{}{
		"campaign_id":     s.shop.Campaign.ID,
		"first_name":      "Ayşe",
		"last_name":       "Kaya",
		"phone":           "0555 123 45 67",
		"city_id":         s.shop.City.ID,
		"district_id":     s.shop.District.ID,
		"neighborhood_id": s.shop.Neighborhood.ID,
		"address_detail":  "Moda Cd. No:5",
		"product_ids":     productIDs,
		"sizes":           sizes,
	}
}

func (s *APISuite) login(permissions ...string) string {
	username := fmt.Sprintf("admin%d", len(permissions))
	_, err := s.app.Admin.CreateUser(context.Background(), username, "gizli-sifre-123", permissions)
	s.Require().NoError(err)

	w := s.do(http.MethodPost, "/api/v1/admin/login", map[string]string{"username": username, "password": "gizli-sifre-123"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	decode(s.T(), w, &out)
	s.Require().NotEmpty(out.Token)
	return out.Token
}

func (s *APISuite) placeOrder(ip string) (uint, string, []*http.Cookie) {
	w := s.do(http.MethodPost, "/api/v1/orders", s.orderBody(s.shop.Products[0].ID), fromIP(ip))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Redirect       string `json:"redirect"`
		OrderID        uint   `json:"order_id"`
		TrackingNumber string `json:"tracking_number"`
	}
	decode(s.T(), w, &out)
	s.Equal("/orders/success/", out.Redirect)
	return out.OrderID, out.TrackingNumber, w.Result().Cookies()
}

func (s *APISuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *APISuite) TestRequestIDPassthrough() {
	w := s.do(http.MethodGet, "/health", nil, func(r *http.Request) { r.Header.Set("X-Request-ID", "abc-123") })
	s.Equal("abc-123", w.Header().Get("X-Request-ID"))
}

func (s *APISuite) TestPlaceOrderAndSuccessPage() {
	id, tn, cookies := s.placeOrder("198.51.100.1")
	s.NotZero(id)
	s.Len(tn, 10)
	s.Equal(9, testutil.StockOf(s.T(), s.app.DB, s.shop.Products[0].ID))

	names := map[string]bool{}
	for _, c := range cookies {
		names[c.Name] = true
	}
	s.True(names["order_completed"])
	s.True(names["last_order_id"])
	s.True(names["vid"])

	w := s.do(http.MethodGet, "/api/v1/orders/success", nil, withCookies(cookies))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var order model.Order
	decode(s.T(), w, &order)
	s.Equal(id, order.ID)
	s.Equal("584.9", order.TotalAmount.String())

	// 成功页只能查看一次
	w = s.do(http.MethodGet, "/api/v1/orders/success", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestPlaceOrder_InvalidPhone() {
	body := s.orderBody(s.shop.Products[0].ID)
	body["phone"] = "12345"
	w := s.do(http.MethodPost, "/api/v1/orders", body)
	s.Equal(http.StatusBadRequest, w.Code)
	resp := decode(s.T(), w, nil)
	s.Contains(resp.Message, "5XX XXX XX XX")
	s.Zero(testutil.CountRows(s.T(), s.app.DB, &model.Order{}))
}

func (s *APISuite) TestPlaceOrder_ForeignProduct() {
	w := s.do(http.MethodPost, "/api/v1/orders", s.orderBody(s.shop.Products[0].ID, s.shop.Foreign.ID))
	s.Equal(http.StatusBadRequest, w.Code)
	s.Zero(testutil.CountRows(s.T(), s.app.DB, &model.Order{}))
	s.Equal(10, testutil.StockOf(s.T(), s.app.DB, s.shop.Products[0].ID))
}

func (s *APISuite) TestPlaceOrder_ForwardedForFromUntrustedPeer() {
	// 对端不是可信代理，伪造的 X-Forwarded-For 不能绕过限流
	for i := 0; i < 5; i++ {
		w := s.do(http.MethodPost, "/api/v1/orders", s.orderBody(s.shop.Products[0].ID),
			fromIP("192.0.2.1"), forwardedFor(fmt.Sprintf("203.0.113.%d", i+1)))
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	}
	w := s.do(http.MethodPost, "/api/v1/orders", s.orderBody(s.shop.Products[0].ID),
		fromIP("192.0.2.1"), forwardedFor("203.0.113.99"))
	s.Equal(http.StatusTooManyRequests, w.Code)
}

func (s *APISuite) TestPlaceOrder_ForwardedForFromTrustedProxy() {
	cfg := testConfig()
	cfg.Server.TrustedProxies = []string{"192.0.2.0/24"}
	a, err := app.New(cfg, s.db, s.rdb)
	s.Require().NoError(err)
	s.app = a

	for i := 0; i < 5; i++ {
		s.placeOrder("203.0.113.10")
	}
	// 同一代理后面的另一个客户端单独计数
	w := s.do(http.MethodPost, "/api/v1/orders", s.orderBody(s.shop.Products[0].ID),
		fromIP("192.0.2.1"), forwardedFor("203.0.113.11"))
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/orders", s.orderBody(s.shop.Products[0].ID),
		fromIP("192.0.2.1"), forwardedFor("203.0.113.10"))
	s.Equal(http.StatusTooManyRequests, w.Code)
}

func (s *APISuite) TestPlaceOrder_RateLimited() {
	// 默认设置：每 IP 10 分钟 5 次
	for i := 0; i < 5; i++ {
		s.placeOrder("198.51.100.2")
	}
	w := s.do(http.MethodPost, "/api/v1/orders", s.orderBody(s.shop.Products[0].ID), fromIP("198.51.100.2"))
	s.Equal(http.StatusTooManyRequests, w.Code)
	resp := decode(s.T(), w, nil)
	s.Contains(resp.Message, "10 dakika")

	// 其他 IP 不受影响
	s.placeOrder("198.51.100.3")
}

func (s *APISuite) TestTrackOrderAndReturn() {
	_, tn, _ := s.placeOrder("198.51.100.4")

	w := s.do(http.MethodGet, "/api/v1/orders/track?tracking_number="+tn+"&phone=05551234567", nil)
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/orders/track?tracking_number="+tn+"&phone=05559999999", nil)
	s.Equal(http.StatusNotFound, w.Code)

	ret := map[string]string{"tracking_number": tn, "phone": "+90 555 123 45 67", "reason": "Beden olmadı"}
	w = s.do(http.MethodPost, "/api/v1/returns", ret)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var rr model.ReturnRequest
	decode(s.T(), w, &rr)
	s.NotZero(rr.ID)

	w = s.do(http.MethodPost, "/api/v1/returns", ret)
	s.Equal(http.StatusConflict, w.Code)

	token := s.login(model.PermManageReturns)
	w = s.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/returns/%d/approve", rr.ID), nil, bearer(token))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	order, err := s.app.Orders.TrackOrder(context.Background(), tn, "5551234567")
	s.Require().NoError(err)
	s.Equal(model.OrderStatusReturn, order.Status)

	// 已通过的申请不能再拒绝
	w = s.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/returns/%d/reject", rr.ID), map[string]string{"note": "geç"}, bearer(token))
	s.Equal(http.StatusConflict, w.Code)
}

func (s *APISuite) TestCampaignRedirects() {
	w := s.do(http.MethodGet, "/api/v1/", nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/api/v1/campaigns/uc-al-bir-ode", w.Header().Get("Location"))

	token := s.login(model.PermManageCampaigns)
	path := fmt.Sprintf("/api/v1/admin/campaigns/%d/slug", s.shop.Campaign.ID)

	w = s.do(http.MethodPatch, path, map[string]string{"slug": "Bad Slug"}, bearer(token))
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, path, map[string]string{"slug": "premium-ceket"}, bearer(token))
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPatch, path, map[string]string{"slug": "yaz-kampanyasi"}, bearer(token))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/campaigns/uc-al-bir-ode", nil)
	s.Equal(http.StatusMovedPermanently, w.Code)
	s.Equal("/api/v1/campaigns/yaz-kampanyasi", w.Header().Get("Location"))

	w = s.do(http.MethodGet, "/api/v1/campaigns/yaz-kampanyasi", nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/campaigns/yok-boyle-bir-sey", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestSocialProof() {
	w := s.do(http.MethodGet, "/api/v1/social-proof", nil)
	s.Equal(http.StatusNotFound, w.Code)

	s.placeOrder("198.51.100.5")
	w = s.do(http.MethodGet, "/api/v1/social-proof", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var rec struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	}
	decode(s.T(), w, &rec)
	s.Equal("Ayşe Ka***", rec.Name)
	s.Equal("İstanbul", rec.Location)
}

func (s *APISuite) TestAddresses() {
	w := s.do(http.MethodGet, "/api/v1/addresses/cities", nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/addresses/districts?city=%d", s.shop.City.ID), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var districts []model.District
	decode(s.T(), w, &districts)
	s.Require().Len(districts, 1)
	s.Equal("Kadıköy", districts[0].Name)

	w = s.do(http.MethodGet, "/api/v1/addresses/neighborhoods?district=abc", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestAdminAuth() {
	w := s.do(http.MethodGet, "/api/v1/admin/settings", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/admin/settings", nil, bearer("not-a-token"))
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/admin/login", map[string]string{"username": "nobody", "password": "x"})
	s.Equal(http.StatusUnauthorized, w.Code)

	token := s.login(model.PermManageOrders)
	w = s.do(http.MethodGet, "/api/v1/admin/settings", nil, bearer(token))
	s.Equal(http.StatusForbidden, w.Code)

	// 后台路由不参与访客统计
	for _, c := range w.Result().Cookies() {
		s.NotEqual(middleware.VisitorCookie, c.Name)
	}
}

func (s *APISuite) TestAdminOrderStatus() {
	id, tn, _ := s.placeOrder("198.51.100.6")
	token := s.login(model.PermManageOrders)
	path := fmt.Sprintf("/api/v1/admin/orders/%d", id)

	w := s.do(http.MethodPatch, path+"/status", map[string]string{"status": "lost"}, bearer(token))
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, path+"/status", map[string]string{"status": "shipped"}, bearer(token))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPatch, path+"/cargo", map[string]string{"cargo_firm": " Yurtiçi ", "tracking_code": "YK123"}, bearer(token))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	order, err := s.app.Orders.TrackOrder(context.Background(), tn, "5551234567")
	s.Require().NoError(err)
	s.Equal(model.OrderStatusShipped, order.Status)
	s.Equal("Yurtiçi", order.CargoFirm)

	w = s.do(http.MethodPatch, "/api/v1/admin/orders/999999/status", map[string]string{"status": "shipped"}, bearer(token))
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestSettingsDriveOrderLimit() {
	token := s.login(model.PermManageSettings)
	w := s.do(http.MethodPut, "/api/v1/admin/settings", map[string]int{"rate_limit_count": 1, "rate_limit_period": 60}, bearer(token))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var st model.SiteSettings
	decode(s.T(), w, &st)
	s.Equal(1, st.RateLimitCount)

	s.placeOrder("198.51.100.7")
	w = s.do(http.MethodPost, "/api/v1/orders", s.orderBody(s.shop.Products[0].ID), fromIP("198.51.100.7"))
	s.Equal(http.StatusTooManyRequests, w.Code)
	s.Contains(decode(s.T(), w, nil).Message, "1 dakika")
}

func (s *APISuite) TestLiveDashboard() {
	stop := s.app.StartWorkers()
	s.placeOrder("198.51.100.8")
	token := s.login(model.PermViewDashboard)

	var out struct {
		ActiveVisitors int64 `json:"active_visitors"`
		Notifications  []struct {
			TrackingNumber string `json:"tracking_number"`
		} `json:"notifications"`
	}
	s.Eventually(func() bool {
		w := s.do(http.MethodGet, "/api/v1/admin/dashboard/live?limit=5", nil, bearer(token))
		var resp apiResponse
		if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &resp) != nil {
			return false
		}
		if json.Unmarshal(resp.Data, &out) != nil {
			return false
		}
		return out.ActiveVisitors == 1 && len(out.Notifications) == 1
	}, 3*time.Second, 20*time.Millisecond)

	s.NoError(stop(context.Background()))
}

func TestNew_WithoutRedis(t *testing.T) {
	db := testutil.NewDB(t)
	shop := testutil.SeedShop(t, db)
	a, err := app.New(testConfig(), db, nil)
	require.NoError(t, err)
	assert.Nil(t, a.Notifier)

	stop := a.StartWorkers()
	defer func() { assert.NoError(t, stop(context.Background())) }()

	body, err := json.Marshal(map[string]interface{}{
		"campaign_id": shop.Campaign.ID, "first_name": "Ali", "last_name": "Veli", "phone": "5551112233",
		"city_id": shop.City.ID, "district_id": shop.District.ID, "neighborhood_id": shop.Neighborhood.ID,
		"address_detail": "Bağdat Cd. 1", "product_ids": []uint{shop.Products[1].ID}, "sizes": []string{"m"},
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 9, testutil.StockOf(t, db, shop.Products[1].ID))
}
