package user

import (
	"context"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/pkg/logger"
)

// RegisterUseCase 创建用户（读者自助注册）
type RegisterUseCase struct {
	userService user.Service
}

func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string
	Password string
	Email    string
	Phone    string
}

func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	u, err := uc.userService.Register(ctx, req.Username, req.Password, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Uint("user_id", u.ID).
		Str("username", u.Username).
		Msg("用户已注册")

	return toUserResponse(u), nil
}
