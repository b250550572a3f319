package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/campaign-shop/pkg/auth"
	"github.com/d60-Lab/campaign-shop/pkg/response"
)

const ClaimsKey = "admin_claims"

// Authenticate 校验 Bearer 令牌并把 claims 放入上下文
func Authenticate(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := strings.Fields(c.GetHeader("Authorization"))
		if len(fields) != 2 || !strings.EqualFold(fields[0], "bearer") {
			response.Unauthorized(c, "Oturum açmanız gerekiyor.")
			return
		}
		claims, err := tokens.Parse(fields[1])
		if err != nil {
			response.Unauthorized(c, "Oturumunuzun süresi doldu. Lütfen tekrar giriş yapın.")
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequirePermission 必须在 Authenticate 之后使用
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			response.Unauthorized(c, "Oturum açmanız gerekiyor.")
			return
		}
		if !claims.HasPermission(permission) {
			response.Forbidden(c, "Bu işlem için yetkiniz yok.")
			return
		}
		c.Next()
	}
}

func CurrentClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
