package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTokenType = "session"

// SessionTokens 负责签发与校验会话 Cookie。Cookie 中只有会话 ID（jti），
// 其余状态保存在服务端。
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// SessionClaims 表示会话 Cookie 中的 JWT 字段。
type SessionClaims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// NewSessionTokens 使用 HMAC 密钥构造签发器。
func NewSessionTokens(secret string, ttl time.Duration) (*SessionTokens, error) {
	if len(secret) < 16 {
		return nil, errors.New("session secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &SessionTokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Sign 为会话 ID 生成签名令牌。
func (t *SessionTokens) Sign(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("session id is empty")
	}
	now := t.now()
	claims := SessionClaims{
		TokenType: sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse 校验令牌并返回会话 ID。
func (t *SessionTokens) Parse(tokenString string) (string, error) {
	if tokenString == "" {
		return "", errors.New("token string is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	if claims.TokenType != sessionTokenType || claims.ID == "" {
		return "", errors.New("not a session token")
	}
	return claims.ID, nil
}

// TTL 暴露会话 Cookie 有效期。
func (t *SessionTokens) TTL() time.Duration {
	return t.ttl
}
