package user

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	ErrUserNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "用户不存在")

	ErrUsernameDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "用户名已存在")

	ErrWeakPassword = apperrors.New(apperrors.ErrCodeInvalidParams, "密码长度至少8位")

	ErrInvalidEmail = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")

	// ErrDeleteAdmin 管理员账号不能被删除，需先撤销管理员角色
	ErrDeleteAdmin = apperrors.New(apperrors.ErrCodeForbidden, "不能删除管理员账号")

	// ErrHasBorrowSlips 用户仍有借阅单
	ErrHasBorrowSlips = apperrors.New(apperrors.ErrCodeUserHasSlips, "用户仍有借阅单，请先删除其借阅单")
)
