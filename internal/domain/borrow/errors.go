package borrow

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	ErrSlipNotFound = apperrors.New(apperrors.ErrCodeSlipNotFound, "借阅单不存在")

	ErrDetailNotFound = apperrors.New(apperrors.ErrCodeDetailNotFound, "借阅明细不存在")

	// ErrAlreadyReturned 明细已归还，不能重复归还
	ErrAlreadyReturned = apperrors.New(apperrors.ErrCodeAlreadyReturned, "该书已归还")

	// ErrNoSlipsToDelete 批量删除时读者名下没有借阅单
	ErrNoSlipsToDelete = apperrors.New(apperrors.ErrCodeNoSlips, "该读者没有可删除的借阅单")

	ErrEmptyBookList = apperrors.New(apperrors.ErrCodeInvalidParams, "借阅图书列表不能为空")

	ErrInvalidCreatedAt = apperrors.New(apperrors.ErrCodeInvalidDate, "日期格式错误，应为 yyyy-MM-dd 或 yyyy-MM-ddTHH:mm:ss")

	ErrSlipCodeDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "借阅单号冲突，请重试")
)
