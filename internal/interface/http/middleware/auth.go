package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/response"
)

const (
	ctxUserID = "user_id"
	ctxClaims = "claims"
	ctxToken  = "token"
)

// AuthorityAdmin 管理员权限
const AuthorityAdmin = "SCOPE_ADMIN"

// RevocationChecker 令牌黑名单查询，redis.TokenStore 实现
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthMiddleware JWT认证与授权
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	revocation RevocationChecker
}

func NewAuthMiddleware(jwtManager *jwt.Manager, revocation RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		revocation: revocation,
	}
}

// RequireAuth 要求携带有效令牌
//
//	Authorization: Bearer <token>
//
// 校验签名与有效期后再查黑名单，已注销的令牌返回 40101
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.Abort(c, apperrors.ErrUnauthorized)
			return
		}

		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.Abort(c, err)
			return
		}

		revoked, err := m.revocation.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			response.Abort(c, err)
			return
		}
		if revoked {
			response.Abort(c, apperrors.ErrInvalidToken.WithMessage("Token已注销，请重新登录"))
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxClaims, claims)
		c.Set(ctxToken, tokenString)
		c.Next()
	}
}

// RequireAuthority 要求具备某项权限，须放在 RequireAuth 之后
//
//	admin := r.Group("", auth.RequireAuth(), auth.RequireAuthority(middleware.AuthorityAdmin))
func (m *AuthMiddleware) RequireAuthority(authority string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.Abort(c, apperrors.ErrUnauthorized)
			return
		}
		if !claims.HasAuthority(authority) {
			response.Abort(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID 当前登录用户ID，未登录为0
func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func GetClaims(c *gin.Context) *jwt.Claims {
	if v, ok := c.Get(ctxClaims); ok {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetToken 原始令牌字符串，注销时使用
func GetToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}

// IsSelfOrAdmin 操作的是自己的账号，或者当前用户是管理员
func IsSelfOrAdmin(c *gin.Context, userID uint) bool {
	claims := GetClaims(c)
	if claims == nil {
		return false
	}
	return claims.UserID == userID || claims.HasAuthority(AuthorityAdmin)
}
