package mysql

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager 事务管理器
//
// 事务通过 ctx 传递：Transaction 把 *gorm.DB(tx) 放进 ctx，
// 仓储方法用 dbFrom 取出，调用方无需感知事务对象。
//
//	err := txManager.Transaction(ctx, func(txCtx context.Context) error {
//	    if err := bookRepo.DecrementAvailable(txCtx, bookID); err != nil {
//	        return err // 回滚
//	    }
//	    return slipRepo.Create(txCtx, slip)
//	})
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction fn 返回错误或 panic 时回滚；已在事务中时复用外层事务
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom 优先使用 ctx 中的事务
func dbFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
