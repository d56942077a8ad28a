package user

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/logger"
)

// TokenBlacklist 已注销令牌，redis.TokenStore 实现
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// LoginUseCase 用户名密码换取访问令牌
type LoginUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
}

func NewLoginUseCase(userService user.Service, jwtManager *jwt.Manager) *LoginUseCase {
	return &LoginUseCase{
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string
	Password string
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token         string    `json:"token"`
	ExpiresAt     time.Time `json:"expiresAt"`
	Authenticated bool      `json:"authenticated"`
}

// Execute scope 声明为用户角色，以空格分隔
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := uc.jwtManager.Issue(u.ID, u.Username, u.Scope())
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Uint("user_id", u.ID).
		Str("scope", u.Scope()).
		Msg("用户登录")

	return &LoginResponse{
		Token:         token.AccessToken,
		ExpiresAt:     token.ExpiresAt,
		Authenticated: true,
	}, nil
}

// IntrospectUseCase 检查令牌是否仍然有效
type IntrospectUseCase struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

func NewIntrospectUseCase(jwtManager *jwt.Manager, blacklist TokenBlacklist) *IntrospectUseCase {
	return &IntrospectUseCase{jwtManager: jwtManager, blacklist: blacklist}
}

// IntrospectResponse 令牌校验结果
type IntrospectResponse struct {
	Valid bool `json:"valid"`
}

// Execute 签名错误、过期、已注销都只返回 valid=false，不返回错误
// 黑名单查询失败时返回错误，不能把已注销的令牌判为有效
func (uc *IntrospectUseCase) Execute(ctx context.Context, token string) (*IntrospectResponse, error) {
	claims, err := uc.jwtManager.ParseToken(token)
	if err != nil {
		return &IntrospectResponse{Valid: false}, nil
	}

	revoked, err := uc.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	return &IntrospectResponse{Valid: !revoked}, nil
}

// LogoutUseCase 注销令牌
type LogoutUseCase struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
	now        func() time.Time
}

func NewLogoutUseCase(jwtManager *jwt.Manager, blacklist TokenBlacklist) *LogoutUseCase {
	return &LogoutUseCase{jwtManager: jwtManager, blacklist: blacklist, now: time.Now}
}

// Execute jti 进入黑名单，保留到令牌原本的过期时间
func (uc *LogoutUseCase) Execute(ctx context.Context, token string) error {
	claims, err := uc.jwtManager.ParseToken(token)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(uc.now())
	}
	if err := uc.blacklist.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}

	logger.FromContext(ctx).Info().
		Uint("user_id", claims.UserID).
		Str("jti", claims.ID).
		Msg("用户注销")
	return nil
}
