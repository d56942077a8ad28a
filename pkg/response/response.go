package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/pkg/logger"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Response 统一响应结构
//
//	成功: {"code":0,"result":{...}}
//	失败: {"code":40402,"message":"图书不存在"}
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, result interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:   0,
		Result: result,
	})
}

// SuccessWithMessage 成功响应并附带提示（删除类接口没有结果体）
func SuccessWithMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
	})
}

// SuccessWithResult 成功响应，同时带提示与结果
func SuccessWithResult(c *gin.Context, message string, result interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Result:  result,
	})
}

// Error 错误响应，HTTP状态码由错误码区间决定
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	if appErr.Err != nil {
		logger.FromContext(c.Request.Context()).Error().
			Err(appErr.Err).
			Int("code", appErr.Code).
			Str("path", c.FullPath()).
			Msg(appErr.Message)
	}

	c.JSON(apperrors.HTTPStatus(appErr.Code), Response{
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

// ErrorWithCode 直接指定错误码的错误响应（常用于参数绑定失败）
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(apperrors.HTTPStatus(code), Response{
		Code:    code,
		Message: message,
	})
}

// Abort 中间件中使用：写出错误并终止后续处理
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
