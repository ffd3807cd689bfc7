package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard/internal/auth"
	"jobboard/internal/errcode"
)

const sessionKey = "session"

// SessionMiddleware 解析会话 Cookie 并从 Redis 载入会话。
// Cookie 缺失、签名无效、已过期或服务端记录不存在时按匿名请求处理，不中断请求。
func SessionMiddleware(tokens *auth.SessionTokens, sessions *auth.SessionStore, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(cookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		id, err := tokens.Parse(raw)
		if err != nil {
			LoggerFromContext(c).Debug("session cookie rejected", slog.Any("error", err))
			c.Next()
			return
		}

		sess, err := sessions.Get(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, errcode.ErrNotFound) {
				LoggerFromContext(c).Warn("load session failed", slog.Any("error", err))
			}
			c.Next()
			return
		}

		SetSession(c, sess)
		c.Next()
	}
}

// SetSession 把会话同时挂到 gin.Context 与请求的 context.Context 上。
func SetSession(c *gin.Context, sess *auth.Session) {
	c.Set(sessionKey, sess)
	c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), sess))
}

// ClearSession 移除当前请求上的会话（例如退出登录之后）。
func ClearSession(c *gin.Context) {
	c.Set(sessionKey, (*auth.Session)(nil))
	c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), nil))
}

// CurrentSession 返回当前请求的会话，可能为 nil。
// gin.Context 上没有时回退到请求 context（例如由上游包装器注入）。
func CurrentSession(c *gin.Context) *auth.Session {
	if value, ok := c.Get(sessionKey); ok {
		sess, _ := value.(*auth.Session)
		return sess
	}
	return auth.SessionFromContext(c.Request.Context())
}

// RequireSession 用于 JSON 接口：没有已登录会话时返回 401。
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": errcode.Unauthorized})
			return
		}
		c.Next()
	}
}

// RequireSessionOrRedirect 用于页面：没有已登录会话时跳转到 loginPath。
func RequireSessionOrRedirect(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).Authenticated() {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
