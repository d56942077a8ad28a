package book

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 图书领域错误定义
var (
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrBookCodeDuplicate 馆内编号已存在
	ErrBookCodeDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "图书编号已存在")

	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为负数")

	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "馆藏数量不能为负数")

	// ErrQuantityBelowLoaned 新馆藏数少于已借出册数
	ErrQuantityBelowLoaned = apperrors.New(apperrors.ErrCodeQuantityInvalid, "馆藏数量不能少于已借出数量")

	// ErrOutOfStock 无在架副本，调用方用 WithMessage 带上书名
	ErrOutOfStock = apperrors.New(apperrors.ErrCodeOutOfStock, "图书已无可借副本")

	// ErrInventoryOverflow 归还时在架数已等于馆藏数，说明账目已不一致
	ErrInventoryOverflow = apperrors.New(apperrors.ErrCodeInventory, "在架数量超出馆藏数量")
)
