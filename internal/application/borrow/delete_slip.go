package borrow

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// DeleteSlipUseCase 删除借阅单，未归还的书回到在架
type DeleteSlipUseCase struct {
	deps Deps
}

func NewDeleteSlipUseCase(deps Deps) *DeleteSlipUseCase {
	return &DeleteSlipUseCase{deps: deps}
}

func (uc *DeleteSlipUseCase) Execute(ctx context.Context, slipID uint) (err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "DeleteSlip")
	defer func() {
		metrics.ObserveBorrowOperation("delete_slip", start, err)
		tracing.EndSpan(span, err)
	}()

	var (
		slip     *borrow.Slip
		restored int
	)
	err = uc.deps.Tx.Transaction(ctx, func(txCtx context.Context) error {
		s, err := uc.deps.Slips.FindByID(txCtx, slipID)
		if err != nil {
			return err
		}

		// 状态比较不区分大小写
		for _, d := range s.Details {
			if d.IsReturned() {
				continue
			}
			if err := uc.deps.Books.IncrementAvailable(txCtx, d.BookID); err != nil {
				return err
			}
			restored++
		}

		slip = s
		return uc.deps.Slips.Delete(txCtx, s.ID)
	})
	if err != nil {
		return err
	}

	metrics.AddCopiesRestored("delete", restored)
	logger.FromContext(ctx).Info().
		Str("slip_code", slip.SlipCode).
		Int("restored", restored).
		Msg("借阅单已删除")

	uc.deps.publish(ctx, borrow.Event{
		Type:     borrow.EventSlipDeleted,
		SlipID:   slip.ID,
		SlipCode: slip.SlipCode,
		ReaderID: slip.ReaderID,
		BookIDs:  slip.BookIDs(),
	})
	return nil
}

// DeleteUserSlipsUseCase 删除某读者的全部借阅单
// 整个级联在一个事务内，中途失败不会留下删了一半的状态
type DeleteUserSlipsUseCase struct {
	deps Deps
}

func NewDeleteUserSlipsUseCase(deps Deps) *DeleteUserSlipsUseCase {
	return &DeleteUserSlipsUseCase{deps: deps}
}

// Execute 返回删除的借阅单数量
func (uc *DeleteUserSlipsUseCase) Execute(ctx context.Context, userID uint) (deleted int, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "DeleteUserSlips")
	defer func() {
		metrics.ObserveBorrowOperation("delete_user_slips", start, err)
		tracing.EndSpan(span, err)
	}()

	var (
		slips    []*borrow.Slip
		restored int
	)
	err = uc.deps.Tx.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.deps.Users.FindByID(txCtx, userID); err != nil {
			return err
		}

		list, err := uc.deps.Slips.ListByReader(txCtx, userID)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return borrow.ErrNoSlipsToDelete
		}

		for _, s := range list {
			// 与单张删除不同，这里只认严格等于 BORROWED 的明细
			for _, d := range s.Details {
				if !d.HoldsCopy() {
					continue
				}
				if err := uc.deps.Books.IncrementAvailable(txCtx, d.BookID); err != nil {
					return err
				}
				restored++
			}
			if err := uc.deps.Slips.Delete(txCtx, s.ID); err != nil {
				return err
			}
		}

		slips = list
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.AddCopiesRestored("delete_user", restored)
	logger.FromContext(ctx).Info().
		Uint("user_id", userID).
		Int("slips", len(slips)).
		Int("restored", restored).
		Msg("读者借阅单已全部删除")

	for _, s := range slips {
		uc.deps.publish(ctx, borrow.Event{
			Type:     borrow.EventSlipDeleted,
			SlipID:   s.ID,
			SlipCode: s.SlipCode,
			ReaderID: s.ReaderID,
			BookIDs:  s.BookIDs(),
		})
	}
	return len(slips), nil
}
