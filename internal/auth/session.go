package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"jobboard/internal/errcode"
)

const sessionKeyPrefix = "session:"

// Session 是服务端会话记录，客户端只持有签名后的会话 ID。
type Session struct {
	ID       string              `json:"-"`
	UserID   uint                `json:"user_id"`
	LoggedIn bool                `json:"logged_in"`
	Flash    map[string][]string `json:"flash,omitempty"`
}

// Authenticated 判断会话是否已登录。nil 会话视为未登录。
func (s *Session) Authenticated() bool {
	return s != nil && s.LoggedIn && s.UserID != 0
}

// AddFlash 追加一条一次性提示消息。
func (s *Session) AddFlash(kind, message string) {
	if s.Flash == nil {
		s.Flash = map[string][]string{}
	}
	s.Flash[kind] = append(s.Flash[kind], message)
}

// TakeFlashes 取出并清空全部提示消息。
func (s *Session) TakeFlashes() map[string][]string {
	if s == nil || len(s.Flash) == 0 {
		return map[string][]string{}
	}
	out := s.Flash
	s.Flash = nil
	return out
}

// SessionStore 将会话保存在 Redis 中，每次保存都会刷新 TTL。
type SessionStore struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

func NewSessionStore(client redis.UniversalClient, ttl time.Duration) *SessionStore {
	return &SessionStore{redis: client, ttl: ttl}
}

// TTL 暴露会话有效期。
func (s *SessionStore) TTL() time.Duration { return s.ttl }

// Create 生成新的匿名会话并立即保存。
func (s *SessionStore) Create(ctx context.Context) (*Session, error) {
	sess := &Session{ID: uuid.NewString()}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get 读取会话；不存在或已过期时返回 errcode.ErrNotFound。
func (s *SessionStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session: %w", errcode.ErrNotFound)
	}
	raw, err := s.redis.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %s: %w", id, errcode.ErrNotFound)
	}
	if err != nil {
		return nil, errcode.Storage("get session", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, errcode.Storage("decode session", err)
	}
	sess.ID = id
	return &sess, nil
}

// Save 写入会话并刷新 TTL。
func (s *SessionStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return errors.New("session id is required")
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKeyPrefix+sess.ID, raw, s.ttl).Err(); err != nil {
		return errcode.Storage("save session", err)
	}
	return nil
}

// Destroy 删除会话；会话不存在时视为成功。
func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.redis.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return errcode.Storage("destroy session", err)
	}
	return nil
}

type sessionContextKey struct{}

// WithSession 将会话放入 context，供服务层显式读取。
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext 返回 context 中的会话，可能为 nil。
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
