package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// UserHandler 用户HTTP处理器
// 查看与修改资料只允许本人或管理员
type UserHandler struct {
	register   *appuser.RegisterUseCase
	manage     *appuser.ManageUsersUseCase
	deleteUser *appuser.DeleteUserUseCase
}

func NewUserHandler(
	register *appuser.RegisterUseCase,
	manage *appuser.ManageUsersUseCase,
	deleteUser *appuser.DeleteUserUseCase,
) *UserHandler {
	return &UserHandler{
		register:   register,
		manage:     manage,
		deleteUser: deleteUser,
	}
}

// Create 注册
// @Summary      用户注册
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateUserRequest true "注册信息"
// @Success      200 {object} response.Response{result=appuser.UserResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "用户名已存在"
// @Router       /api/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.register.Execute(c.Request.Context(), appuser.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 用户列表
// @Summary      用户列表
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{result=[]appuser.UserResponse}
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/users [get]
func (h *UserHandler) List(c *gin.Context) {
	result, err := h.manage.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get 用户详情
// @Summary      用户详情
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{result=appuser.UserResponse}
// @Failure      403 {object} response.Response "只能查看本人"
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !middleware.IsSelfOrAdmin(c, id) {
		response.Error(c, apperrors.ErrForbidden)
		return
	}

	result, err := h.manage.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Update 修改资料
// @Summary      修改资料
// @Tags         用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Param        request body dto.UpdateUserRequest true "修改内容"
// @Success      200 {object} response.Response{result=appuser.UserResponse}
// @Failure      403 {object} response.Response "只能修改本人"
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !middleware.IsSelfOrAdmin(c, id) {
		response.Error(c, apperrors.ErrForbidden)
		return
	}

	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.manage.Update(c.Request.Context(), appuser.UpdateUserRequest{
		ID:       id,
		Password: req.Password,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Delete 删除用户
// @Summary      删除用户
// @Description  管理员账号与仍有借阅单的用户不能删除
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "不能删除管理员"
// @Failure      409 {object} response.Response "用户仍有借阅单"
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.deleteUser.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "用户已删除")
}

// GrantAdmin 授予管理员
// @Summary      授予管理员
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{result=appuser.UserResponse}
// @Router       /api/users/{id}/admin [post]
func (h *UserHandler) GrantAdmin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.manage.GrantAdmin(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RevokeAdmin 撤销管理员
// @Summary      撤销管理员
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{result=appuser.UserResponse}
// @Router       /api/users/{id}/admin [delete]
func (h *UserHandler) RevokeAdmin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.manage.RevokeAdmin(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
