package borrow

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/user"
)

const tracerName = "library/borrow"

// TxManager 事务边界，mysql.TxManager 实现
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Deps 借阅用例的公共依赖
type Deps struct {
	Slips     borrow.Repository
	Books     book.Repository
	Users     user.Repository
	Tx        TxManager
	Events    borrow.EventPublisher
	LoanDays  int
	Now       func() time.Time // 为空时使用 time.Now
	Location  *time.Location   // 日期查询的时区，为空时使用 time.Local
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.Local
}

func (d Deps) publish(ctx context.Context, event borrow.Event) {
	if d.Events == nil {
		return
	}
	event.OccurredAt = d.now()
	d.Events.Publish(ctx, event)
}

// lend 借出一册：确认图书存在且有在架副本，再条件扣减
// 预检查给出带书名的提示，条件扣减兜住并发
func (d Deps) lend(ctx context.Context, bookID uint, borrowDate, dueDate time.Time) (*borrow.Detail, error) {
	b, err := d.Books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !b.CanLend() {
		return nil, book.ErrOutOfStock.WithMessage("《" + b.Title + "》已无可借副本")
	}
	if err := d.Books.DecrementAvailable(ctx, bookID); err != nil {
		return nil, err
	}
	return borrow.NewDetailBetween(bookID, borrowDate, dueDate), nil
}
