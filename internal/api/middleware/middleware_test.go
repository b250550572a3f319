package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/campaign-shop/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NoError(t, uuid.Validate(w.Body.String()))
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 65))
	w = serve(r, req)
	assert.NoError(t, uuid.Validate(w.Body.String()))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestThrottle(t *testing.T) {
	r := gin.New()
	r.Use(Throttle(0.001, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestAuthenticateAndPermissions(t *testing.T) {
	tokens := auth.NewTokenManager("middleware-test-secret-123", time.Hour)
	r := gin.New()
	r.GET("/orders", Authenticate(tokens), RequirePermission("manage_orders"), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentClaims(c).Username)
	})

	withToken := func(token string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req
	}

	assert.Equal(t, http.StatusUnauthorized, serve(r, withToken("")).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, withToken("garbage")).Code)

	viewer, err := tokens.Generate(1, "izleyici", []string{"view_dashboard"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(r, withToken(viewer)).Code)

	manager, err := tokens.Generate(2, "yonetici", []string{"view_dashboard", "manage_orders"})
	require.NoError(t, err)
	w := serve(r, withToken(manager))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "yonetici", w.Body.String())

	other := auth.NewTokenManager("another-secret-entirely-456", time.Hour)
	forged, err := other.Generate(3, "sahte", []string{"manage_orders"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(r, withToken(forged)).Code)
}

type recorder struct {
	mu  sync.Mutex
	ids []string
}

func (r *recorder) Enqueue(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func TestTrackVisitors(t *testing.T) {
	rec := &recorder{}
	r := gin.New()
	r.Use(TrackVisitors(rec, true))
	r.GET("/api/v1/campaigns/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/x", nil))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	vid := cookies[0]
	assert.Equal(t, VisitorCookie, vid.Name)
	assert.True(t, vid.HttpOnly)
	assert.True(t, vid.Secure)
	assert.NoError(t, uuid.Validate(vid.Value))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/x", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: vid.Value})
	w = serve(r, req)
	assert.Empty(t, w.Result().Cookies())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/x", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "not-a-uuid"})
	w = serve(r, req)
	require.Len(t, w.Result().Cookies(), 1)

	require.Len(t, rec.ids, 3)
	assert.Equal(t, vid.Value, rec.ids[0])
	assert.Equal(t, vid.Value, rec.ids[1])
	assert.NotEqual(t, "not-a-uuid", rec.ids[2])
}

func TestTRPhoneValidation(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type form struct {
		Phone string `json:"phone" binding:"required,tr_phone"`
	}
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var f form
		if err := c.ShouldBindJSON(&f); err != nil {
			c.String(http.StatusBadRequest, ValidationMessage(err))
			return
		}
		c.Status(http.StatusOK)
	})

	cases := map[string]int{
		"5551234567":         http.StatusOK,
		"0555 123 45 67":     http.StatusOK,
		"+90 (555) 123-4567": http.StatusOK,
		"905551234567":       http.StatusOK,
		"4551234567":         http.StatusBadRequest,
		"555123456":          http.StatusBadRequest,
		"abc":                http.StatusBadRequest,
	}
	for phone, want := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"phone":"`+phone+`"}`))
		req.Header.Set("Content-Type", "application/json")
		w := serve(r, req)
		assert.Equal(t, want, w.Code, phone)
		if want == http.StatusBadRequest {
			assert.Contains(t, w.Body.String(), "5XX XXX XX XX", phone)
		}
	}
}
