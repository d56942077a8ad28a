package user

import (
	"time"

	"github.com/xiebiao/library/internal/domain/user"
)

// UserResponse 用户信息，不含密码
type UserResponse struct {
	ID        uint     `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Roles     []string `json:"roles"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"createdAt"`
}

func toUserResponse(u *user.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		Roles:     u.Roles,
		Status:    u.Status,
		CreatedAt: u.CreatedAt.Format(time.DateTime),
	}
}
