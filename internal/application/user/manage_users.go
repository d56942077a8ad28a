package user

import (
	"context"

	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/pkg/logger"
)

// ManageUsersUseCase 用户查询、资料修改与管理员授权
type ManageUsersUseCase struct {
	userService user.Service
}

func NewManageUsersUseCase(userService user.Service) *ManageUsersUseCase {
	return &ManageUsersUseCase{userService: userService}
}

func (uc *ManageUsersUseCase) Get(ctx context.Context, id uint) (*UserResponse, error) {
	u, err := uc.userService.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(u), nil
}

func (uc *ManageUsersUseCase) List(ctx context.Context) ([]*UserResponse, error) {
	users, err := uc.userService.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

// UpdateUserRequest 空字段不修改
type UpdateUserRequest struct {
	ID       uint
	Password string
	Email    string
	Phone    string
}

func (uc *ManageUsersUseCase) Update(ctx context.Context, req UpdateUserRequest) (*UserResponse, error) {
	u, err := uc.userService.UpdateProfile(ctx, req.ID, req.Password, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	return toUserResponse(u), nil
}

func (uc *ManageUsersUseCase) GrantAdmin(ctx context.Context, id uint) (*UserResponse, error) {
	u, err := uc.userService.GrantAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info().Uint("user_id", id).Msg("授予管理员")
	return toUserResponse(u), nil
}

func (uc *ManageUsersUseCase) RevokeAdmin(ctx context.Context, id uint) (*UserResponse, error) {
	u, err := uc.userService.RevokeAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info().Uint("user_id", id).Msg("撤销管理员")
	return toUserResponse(u), nil
}

// TxManager 事务边界，mysql.TxManager 实现
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DeleteUserUseCase 删除用户
//   - 管理员不能删除，返回 Forbidden
//   - 仍有借阅单的用户不能删除，需先删除其借阅单
type DeleteUserUseCase struct {
	users user.Repository
	slips borrow.Repository
	tx    TxManager
}

func NewDeleteUserUseCase(users user.Repository, slips borrow.Repository, tx TxManager) *DeleteUserUseCase {
	return &DeleteUserUseCase{users: users, slips: slips, tx: tx}
}

func (uc *DeleteUserUseCase) Execute(ctx context.Context, id uint) error {
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		u, err := uc.users.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if u.IsAdmin() {
			return user.ErrDeleteAdmin
		}

		count, err := uc.slips.CountByReader(txCtx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return user.ErrHasBorrowSlips
		}

		return uc.users.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info().Uint("user_id", id).Msg("用户已删除")
	return nil
}
