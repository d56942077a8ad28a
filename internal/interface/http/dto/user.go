package dto

// CreateUserRequest 注册
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64" example:"reader01"`
	Password string `json:"password" binding:"required,min=8,max=64" example:"password123"`
	Email    string `json:"email" binding:"omitempty,email" example:"reader01@example.com"`
	Phone    string `json:"phone" binding:"max=20" example:"13800000000"`
}

// UpdateUserRequest 修改资料，空字段不修改
type UpdateUserRequest struct {
	Password string `json:"password" binding:"omitempty,min=8,max=64"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone" binding:"max=20"`
}

// LoginRequest 登录
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"reader01"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// IntrospectRequest 校验令牌
type IntrospectRequest struct {
	Token string `json:"token" binding:"required"`
}
