package user

import (
	"context"
)

// Repository 用户仓储接口
type Repository interface {
	// Create 用户名重复返回 ErrUsernameDuplicate
	Create(ctx context.Context, user *User) error

	FindByID(ctx context.Context, id uint) (*User, error)

	FindByUsername(ctx context.Context, username string) (*User, error)

	List(ctx context.Context) ([]*User, error)

	Update(ctx context.Context, user *User) error

	Delete(ctx context.Context, id uint) error
}
