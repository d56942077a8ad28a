package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/pkg/logger"
)

// DeleteBookUseCase 删除图书
//
// 有借阅明细引用的书只下架（is_active=false），保留借阅历史；
// 从未被借过的书物理删除。
type DeleteBookUseCase struct {
	books book.Repository
	slips borrow.Repository
	tx    TxManager
}

func NewDeleteBookUseCase(books book.Repository, slips borrow.Repository, tx TxManager) *DeleteBookUseCase {
	return &DeleteBookUseCase{books: books, slips: slips, tx: tx}
}

// Execute 返回 true 表示软删除
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) (soft bool, err error) {
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		b, err := uc.books.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		referenced, err := uc.slips.ExistsDetailForBook(txCtx, id)
		if err != nil {
			return err
		}

		if referenced {
			soft = true
			b.Deactivate()
			return uc.books.Update(txCtx, b)
		}
		return uc.books.Delete(txCtx, id)
	})
	if err != nil {
		return false, err
	}

	logger.FromContext(ctx).Info().
		Uint("book_id", id).
		Bool("soft", soft).
		Msg("图书已删除")
	return soft, nil
}
