package middleware

import (
	"net/http"
	"quiz_icc_backend/internal/config"
	"quiz_icc_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(util.SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	// 非浏览器客户端可用 Bearer 头
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// SessionMiddleware 登录保护：会话缺失或无效时重定向到首页，而不是报错页
func SessionMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		claims, err := util.ParseSessionToken(token, cfg.JWT.Secret)
		if err != nil {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// TrySessionMiddleware 可选登录：会话有效则注入身份，无效则作为游客继续
func TrySessionMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token != "" {
			if claims, err := util.ParseSessionToken(token, cfg.JWT.Secret); err == nil {
				c.Set("user", claims)
			}
		}
		c.Next()
	}
}
