package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/logger"
)

// TxManager 事务边界，mysql.TxManager 实现
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UpdateBookUseCase 修改图书信息与馆藏册数
type UpdateBookUseCase struct {
	bookService book.Service
	tx          TxManager
}

func NewUpdateBookUseCase(bookService book.Service, tx TxManager) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService, tx: tx}
}

// UpdateBookRequest 空字段不修改；Quantity 为 nil 表示不改册数
type UpdateBookRequest struct {
	ID          uint
	Title       string
	ISBN        string
	PublishYear int
	Price       int64
	Quantity    *int
	Description string
}

// Execute 信息与册数在同一事务内修改，提交后重新读取以返回数据库中的计数
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookResponse, error) {
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		_, err := uc.bookService.UpdateBook(
			txCtx,
			req.ID,
			req.Title,
			req.ISBN,
			req.PublishYear,
			req.Price,
			req.Quantity,
			req.Description,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	b, err := uc.bookService.GetBook(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Uint("book_id", b.ID).
		Int("total", b.TotalQuantity).
		Int("available", b.AvailableQuantity).
		Msg("图书已更新")

	return toBookResponse(b), nil
}
