package book

import (
	"context"
)

// Repository 图书仓储接口
// 实现位于 infrastructure/persistence/mysql；传入的 ctx 若携带事务则在事务内执行
type Repository interface {
	// Create 新增图书，编号重复返回 ErrBookCodeDuplicate
	Create(ctx context.Context, book *Book) error

	// FindByID 不存在返回 ErrBookNotFound（包含已下架的书）
	FindByID(ctx context.Context, id uint) (*Book, error)

	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Update 保存基本信息与上下架状态，不写库存计数
	Update(ctx context.Context, book *Book) error

	// SetTotalQuantity 修改馆藏册数，在架册数同步增减相同差值
	// 新册数少于已借出册数时返回 ErrQuantityBelowLoaned
	SetTotalQuantity(ctx context.Context, id uint, total int) error

	// Delete 物理删除
	Delete(ctx context.Context, id uint) error

	// ListActive 在馆（未下架）图书
	ListActive(ctx context.Context) ([]*Book, error)

	// DecrementAvailable 借出一册
	// 条件更新 available_quantity > 0，并发借同一本书时只有有库存的请求能成功，
	// 失败返回 ErrOutOfStock 或 ErrBookNotFound
	DecrementAvailable(ctx context.Context, id uint) error

	// IncrementAvailable 归还一册
	// 条件更新 available_quantity < total_quantity，失败返回 ErrInventoryOverflow 或 ErrBookNotFound
	IncrementAvailable(ctx context.Context, id uint) error
}
