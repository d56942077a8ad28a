package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 应用统一错误类型
//
// Code 为业务错误码，按区间划分错误类别（见下方常量）；
// Message 直接返回给调用方；Err 为内部原因，只进日志不进响应。
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，使 errors.Is 能识别 WithMessage 派生出的错误
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage 复制错误并替换提示信息，错误码不变
//
//	book.ErrOutOfStock.WithMessage("《三体》已无可借副本")
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{Code: e.Code, Message: message, Err: e.Err}
}

// New 创建业务错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装底层错误为内部错误
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化版本的 Wrap
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// 错误码区间：
//
//	5xxxx 系统错误
//	401xx 认证，4010x 授权
//	404xx 资源不存在
//	400xx 业务规则
//	409xx 参数/格式
const (
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeInventory     = 50003 // 库存账目不一致

	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 用户名或密码错误
	ErrCodeForbidden       = 40104 // 无权限

	ErrCodeNotFound       = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound   = 40401 // 用户不存在
	ErrCodeBookNotFound   = 40402 // 图书不存在
	ErrCodeSlipNotFound   = 40403 // 借阅单不存在
	ErrCodeDetailNotFound = 40404 // 借阅明细不存在

	ErrCodeBusinessError   = 40000 // 业务错误(通用)
	ErrCodeOutOfStock      = 40001 // 无可借副本
	ErrCodeAlreadyReturned = 40006 // 已归还
	ErrCodeQuantityInvalid = 40007 // 馆藏数量非法
	ErrCodeDuplicateEntry  = 40009 // 重复记录(通用)
	ErrCodeUserHasSlips    = 40010 // 用户仍有借阅单
	ErrCodeNoSlips         = 40011 // 用户没有借阅单

	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
	ErrCodeInvalidDate   = 40902 // 日期格式错误
)

var (
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "用户名或密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	ErrNotFound = New(ErrCodeNotFound, "资源不存在")

	ErrDuplicateEntry = New(ErrCodeDuplicateEntry, "记录已存在")

	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// HTTPStatus 错误码映射到HTTP状态码
func HTTPStatus(code int) int {
	switch {
	case code == 0:
		return http.StatusOK
	case code == ErrCodeDuplicateEntry:
		return http.StatusConflict
	case code == ErrCodeForbidden:
		return http.StatusForbidden
	case code >= 40100 && code < 40200:
		return http.StatusUnauthorized
	case code >= 40400 && code < 40500:
		return http.StatusNotFound
	case code == ErrCodeUserHasSlips:
		return http.StatusConflict
	case code >= 40000 && code < 41000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取 AppError，非 AppError 一律视为内部错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}
