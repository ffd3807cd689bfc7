package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard/internal/api/middleware"
	"jobboard/internal/auth"
	"jobboard/internal/errcode"
)

// sessionManager 负责会话 Cookie 的写入/清除，以及为匿名访客按需创建会话（用于 flash 消息）。
type sessionManager struct {
	store  *auth.SessionStore
	tokens *auth.SessionTokens
	name   string
	domain string
	secure bool
}

func (m *sessionManager) setCookie(c *gin.Context, sess *auth.Session) error {
	token, err := m.tokens.Sign(sess.ID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.name, token, int(m.tokens.TTL().Seconds()), "/", m.domain, m.secure, true)
	return nil
}

func (m *sessionManager) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.name, "", -1, "/", m.domain, m.secure, true)
}

// ensure 返回当前请求的会话；没有时创建匿名会话并下发 Cookie。
func (m *sessionManager) ensure(c *gin.Context) (*auth.Session, error) {
	if sess := middleware.CurrentSession(c); sess != nil {
		return sess, nil
	}
	sess, err := m.store.Create(c.Request.Context())
	if err != nil {
		return nil, err
	}
	if err := m.setCookie(c, sess); err != nil {
		return nil, err
	}
	middleware.SetSession(c, sess)
	return sess, nil
}

// flash 在下一次页面渲染时展示一条消息。
func (m *sessionManager) flash(c *gin.Context, kind, message string) error {
	sess, err := m.ensure(c)
	if err != nil {
		return err
	}
	sess.AddFlash(kind, message)
	return m.store.Save(c.Request.Context(), sess)
}

// takeFlashes 取出并清空当前会话里的 flash 消息。
func (m *sessionManager) takeFlashes(c *gin.Context) (map[string][]string, error) {
	sess := middleware.CurrentSession(c)
	if sess == nil || len(sess.Flash) == 0 {
		return nil, nil
	}
	flashes := sess.TakeFlashes()
	if err := m.store.Save(c.Request.Context(), sess); err != nil {
		return nil, err
	}
	return flashes, nil
}

// currentUserID 返回已登录用户的 id。
func currentUserID(c *gin.Context) (uint, error) {
	sess := middleware.CurrentSession(c)
	if !sess.Authenticated() {
		return 0, errcode.ErrUnauthorized
	}
	return sess.UserID, nil
}
