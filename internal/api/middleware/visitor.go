package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	VisitorCookie = "vid"
	visitorMaxAge = 365 * 24 * 60 * 60
)

// VisitorRecorder 接收访客 ID，实现方需保证不阻塞
type VisitorRecorder interface {
	Enqueue(visitorID string)
}

// TrackVisitors 为每个请求记录访客，首次访问时下发 vid cookie；只挂在前台路由组上
func TrackVisitors(rec VisitorRecorder, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		vid, err := c.Cookie(VisitorCookie)
		if err != nil || uuid.Validate(vid) != nil {
			vid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(VisitorCookie, vid, visitorMaxAge, "/", "", secure, true)
		}
		rec.Enqueue(vid)
		c.Next()
	}
}
