package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

const issuer = "library"

// Manager 签发与校验访问令牌（HS512）
type Manager struct {
	secret       []byte
	accessExpire time.Duration
}

func NewManager(secret string, accessExpire time.Duration) *Manager {
	return &Manager{
		secret:       []byte(secret),
		accessExpire: accessExpire,
	}
}

// Claims 令牌载荷
// Scope 为空格分隔的角色，如 "USER ADMIN"；ID(jti) 用于注销时加入黑名单
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

// Authorities scope 中每个角色映射为 SCOPE_<ROLE>
func (c *Claims) Authorities() []string {
	fields := strings.Fields(c.Scope)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, "SCOPE_"+strings.ToUpper(f))
	}
	return out
}

// HasAuthority 如 HasAuthority("SCOPE_ADMIN")
func (c *Claims) HasAuthority(authority string) bool {
	for _, a := range c.Authorities() {
		if a == authority {
			return true
		}
	}
	return false
}

// Token 登录返回的令牌
type Token struct {
	AccessToken string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Issue 签发访问令牌
func (m *Manager) Issue(userID uint, username, scope string) (*Token, error) {
	now := time.Now()
	expiresAt := now.Add(m.accessExpire)

	claims := Claims{
		UserID:   userID,
		Username: username,
		Scope:    scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(m.secret)
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Token失败")
	}
	return &Token{AccessToken: signed, ExpiresAt: expiresAt}, nil
}

// ParseToken 校验签名、签发方与有效期
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
