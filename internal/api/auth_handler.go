package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"jobboard/internal/api/middleware"
	"jobboard/internal/auth"
	"jobboard/internal/errcode"
	"jobboard/internal/store"
	"jobboard/internal/views"
)

// AuthHandler 处理注册、登录、退出以及当前用户资料。
type AuthHandler struct {
	users       *store.UserStore
	authService *auth.Service
	sessions    *sessionManager
	limiter     *loginLimiter
}

func NewAuthHandler(users *store.UserStore, authService *auth.Service, sessions *sessionManager, redisClient redis.UniversalClient, loginRateLimitPerHour int) *AuthHandler {
	return &AuthHandler{
		users:       users,
		authService: authService,
		sessions:    sessions,
		limiter:     newLoginLimiter(redisClient, loginRateLimitPerHour),
	}
}

// Register 创建新用户账号，响应中不包含密码哈希。
func (h *AuthHandler) Register(c *gin.Context) {
	var req store.UserInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.LoggerFromContext(c).Info("user registered", slog.Uint64("user_id", uint64(user.ID)))
	c.JSON(http.StatusOK, user)
}

// Me 返回当前用户及其技能标签。
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := h.users.FindByID(c.Request.Context(), userID, true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe 部分更新当前用户资料；新密码会重新哈希。
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var patch store.UserPatch
	if !bindJSON(c, &patch) {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.users.Update(ctx, userID, patch); err != nil {
		respondError(c, err)
		return
	}
	user, err := h.users.FindByID(ctx, userID, true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// LoginPage 渲染登录页；已登录用户直接跳转到 /findjobs。
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if middleware.CurrentSession(c).Authenticated() {
		c.Redirect(http.StatusFound, "/findjobs")
		return
	}
	flashes, err := h.sessions.takeFlashes(c)
	if err != nil {
		middleware.LoggerFromContext(c).Warn("read flash messages failed", slog.Any("error", err))
	}
	c.HTML(http.StatusOK, views.Login, gin.H{
		"Title":   "Log in",
		"Flashes": flashes,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验凭据，成功后轮换会话 ID 并写入会话 Cookie。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errcode.ErrInvalidCredentials)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	email := strings.ToLower(strings.TrimSpace(req.Email))
	allowed, err := h.limiter.allow(ctx, c.ClientIP(), email)
	if err != nil {
		logger.Warn("login rate counter unavailable", slog.Any("error", err))
	}
	if !allowed {
		Error(c, http.StatusTooManyRequests, errcode.RateLimited, "rate limit exceeded")
		return
	}

	user, sess, err := h.authService.Login(ctx, middleware.CurrentSession(c), email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.sessions.setCookie(c, sess); err != nil {
		respondError(c, err)
		return
	}
	middleware.SetSession(c, sess)

	c.JSON(http.StatusOK, gin.H{"user": user, "message": "You are now logged in!"})
}

// Logout 销毁已登录会话并清除 Cookie；没有已登录会话时返回 404。
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.authService.Logout(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		if errors.Is(err, errcode.ErrNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		respondError(c, err)
		return
	}

	h.sessions.clearCookie(c)
	middleware.ClearSession(c)
	c.Status(http.StatusNoContent)
}
