package borrow

import (
	"context"
	"time"
)

// Repository 借阅单仓储接口
// 查询借阅单时总是带出明细
type Repository interface {
	// Create 保存借阅单头及其全部明细，回填ID
	Create(ctx context.Context, slip *Slip) error

	// Update 保存借阅单头（读者、备注），不处理明细
	Update(ctx context.Context, slip *Slip) error

	// FindByID 不存在返回 ErrSlipNotFound
	FindByID(ctx context.Context, id uint) (*Slip, error)

	// Delete 先删明细再删单头
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context) ([]*Slip, error)

	ListByReader(ctx context.Context, readerID uint) ([]*Slip, error)

	// ListByBook 含有该书明细的借阅单
	ListByBook(ctx context.Context, bookID uint) ([]*Slip, error)

	// ListByCreatedBetween 闭区间 [from, to]
	ListByCreatedBetween(ctx context.Context, from, to time.Time) ([]*Slip, error)

	ListByCreatedAt(ctx context.Context, at time.Time) ([]*Slip, error)

	CountByReader(ctx context.Context, readerID uint) (int64, error)

	// FindDetailByID 不存在返回 ErrDetailNotFound
	FindDetailByID(ctx context.Context, id uint) (*Detail, error)

	CreateDetail(ctx context.Context, detail *Detail) error

	UpdateDetail(ctx context.Context, detail *Detail) error

	// MarkReturned 条件更新：仅当明细尚未归还时写入归还日期与 RETURNED，
	// 并发重复归还时只有一个成功，其余返回 ErrAlreadyReturned
	MarkReturned(ctx context.Context, detailID uint, returnDate time.Time) error

	DeleteDetail(ctx context.Context, id uint) error

	// ExistsDetailForBook 是否有任何明细（无论状态）引用该书
	ExistsDetailForBook(ctx context.Context, bookID uint) (bool, error)
}
