package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/flare/internal/service"
	"github.com/d60-Lab/flare/pkg/response"
)

// CtxUserID gin 上下文中的用户ID键
const CtxUserID = "user_id"

// JWTAuth Bearer token 鉴权
func JWTAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		userID, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set(CtxUserID, userID)
		c.Next()
	}
}

// UserID 取当前登录用户ID
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}
