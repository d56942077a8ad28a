package user

import (
	"strings"
	"time"
)

// 角色
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// 账号状态
const (
	StatusActive = "ACTIVE"
)

// User 用户（读者或管理员）
// Password 为 bcrypt 哈希值，任何响应都不应带出
type User struct {
	ID        uint
	Username  string
	Password  string
	Email     string
	Phone     string
	Roles     []string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 新用户默认只有 USER 角色
func NewUser(username, hashedPassword, email, phone string) *User {
	now := time.Now()
	return &User{
		Username:  username,
		Password:  hashedPassword,
		Email:     email,
		Phone:     phone,
		Roles:     []string{RoleUser},
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// GrantRole 重复授予是幂等的
func (u *User) GrantRole(role string) {
	if u.HasRole(role) {
		return
	}
	u.Roles = append(u.Roles, role)
	u.UpdatedAt = time.Now()
}

func (u *User) RevokeRole(role string) {
	kept := u.Roles[:0]
	for _, r := range u.Roles {
		if !strings.EqualFold(r, role) {
			kept = append(kept, r)
		}
	}
	u.Roles = kept
	u.UpdatedAt = time.Now()
}

// Scope 写入JWT的scope声明，角色以空格分隔
func (u *User) Scope() string {
	return strings.Join(u.Roles, " ")
}
