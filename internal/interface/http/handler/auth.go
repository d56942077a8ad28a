package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// AuthHandler 登录、令牌校验与注销
type AuthHandler struct {
	login      *appuser.LoginUseCase
	introspect *appuser.IntrospectUseCase
	logout     *appuser.LogoutUseCase
}

func NewAuthHandler(
	login *appuser.LoginUseCase,
	introspect *appuser.IntrospectUseCase,
	logout *appuser.LogoutUseCase,
) *AuthHandler {
	return &AuthHandler{
		login:      login,
		introspect: introspect,
		logout:     logout,
	}
}

// Token 登录
// @Summary      登录
// @Description  返回的 token 放在 Authorization: Bearer <token>
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "用户名密码"
// @Success      200 {object} response.Response{result=appuser.LoginResponse}
// @Failure      401 {object} response.Response "用户名或密码错误"
// @Router       /authentication/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.login.Execute(c.Request.Context(), appuser.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Introspect 校验令牌
// @Summary      校验令牌
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.IntrospectRequest true "令牌"
// @Success      200 {object} response.Response{result=appuser.IntrospectResponse}
// @Router       /authentication/introspect [post]
func (h *AuthHandler) Introspect(c *gin.Context) {
	var req dto.IntrospectRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.introspect.Execute(c.Request.Context(), req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Logout 注销当前令牌
// @Summary      注销
// @Tags         认证
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Router       /authentication/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.logout.Execute(c.Request.Context(), middleware.GetToken(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "已注销")
}
