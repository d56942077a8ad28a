package borrow

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// ReturnBookUseCase 按明细归还一册
// 只改明细与在架数量，借阅单头状态不重新计算
type ReturnBookUseCase struct {
	deps Deps
}

func NewReturnBookUseCase(deps Deps) *ReturnBookUseCase {
	return &ReturnBookUseCase{deps: deps}
}

func (uc *ReturnBookUseCase) Execute(ctx context.Context, detailID uint) (resp *DetailResponse, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "ReturnBook")
	defer func() {
		metrics.ObserveBorrowOperation("return_book", start, err)
		tracing.EndSpan(span, err)
	}()

	today := borrow.Today(uc.deps.now())

	var detail *borrow.Detail
	err = uc.deps.Tx.Transaction(ctx, func(txCtx context.Context) error {
		d, err := uc.deps.Slips.FindDetailByID(txCtx, detailID)
		if err != nil {
			return err
		}

		if err := d.Return(today); err != nil {
			return err
		}
		if err := uc.deps.Slips.MarkReturned(txCtx, d.ID, today); err != nil {
			return err
		}
		if err := uc.deps.Books.IncrementAvailable(txCtx, d.BookID); err != nil {
			return err
		}

		detail = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AddCopiesRestored("return", 1)
	logger.FromContext(ctx).Info().
		Uint("detail_id", detail.ID).
		Uint("book_id", detail.BookID).
		Msg("图书已归还")

	uc.deps.publish(ctx, borrow.Event{
		Type:     borrow.EventDetailReturned,
		SlipID:   detail.SlipID,
		DetailID: detail.ID,
		BookIDs:  []uint{detail.BookID},
	})

	return toDetailResponse(detail), nil
}
