package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jobboard/internal/database"
	"jobboard/internal/errcode"
)

// UserLookup 是登录所需的最小用户查询接口。
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*database.User, error)
}

// Service 负责凭据校验与会话的建立/销毁。
type Service struct {
	users     UserLookup
	sessions  *SessionStore
	logger    *slog.Logger
	dummyHash string
}

func NewService(users UserLookup, sessions *SessionStore, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	// 用户不存在时也做一次 bcrypt 比较，使两种失败耗时接近。
	dummy, err := HashPassword("jobboard-dummy-password")
	if err != nil {
		return nil, err
	}
	return &Service{users: users, sessions: sessions, logger: logger, dummyHash: dummy}, nil
}

// Login 校验凭据并建立已登录会话。current 为请求已有的会话（可为 nil），
// 登录成功后会被销毁并替换为新 ID，防止会话固定。
func (s *Service) Login(ctx context.Context, current *Session, email, password string) (*database.User, *Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errcode.ErrNotFound) {
			CheckPasswordHash(password, s.dummyHash)
			s.logger.InfoContext(ctx, "login failed: user not found")
			return nil, nil, errcode.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}

	if !CheckPasswordHash(password, user.PasswordHash) {
		s.logger.InfoContext(ctx, "login failed: password mismatch", slog.Uint64("user_id", uint64(user.ID)))
		return nil, nil, errcode.ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx)
	if err != nil {
		return nil, nil, err
	}
	if current != nil {
		sess.Flash = current.Flash
		if err := s.sessions.Destroy(ctx, current.ID); err != nil {
			s.logger.WarnContext(ctx, "destroy previous session failed", slog.Any("error", err))
		}
	}
	sess.UserID = user.ID
	sess.LoggedIn = true
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.Uint64("user_id", uint64(user.ID)))
	return user, sess, nil
}

// Logout 销毁已登录会话；没有已登录会话时返回 errcode.ErrNotFound。
func (s *Service) Logout(ctx context.Context, sess *Session) error {
	if !sess.Authenticated() {
		return fmt.Errorf("logout: %w", errcode.ErrNotFound)
	}
	if err := s.sessions.Destroy(ctx, sess.ID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user logged out", slog.Uint64("user_id", uint64(sess.UserID)))
	return nil
}

// Sessions 暴露底层会话存储，供中间件使用。
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}
