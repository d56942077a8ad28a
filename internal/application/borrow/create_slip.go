package borrow

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// CreateSlipUseCase 开借阅单
type CreateSlipUseCase struct {
	deps Deps
}

func NewCreateSlipUseCase(deps Deps) *CreateSlipUseCase {
	return &CreateSlipUseCase{deps: deps}
}

// CreateSlipRequest bookIDs 允许重复，每个ID借一册
type CreateSlipRequest struct {
	ReaderID uint
	BookIDs  []uint
	Note     string
}

// Execute 一个事务内完成：
//  1. 校验读者存在
//  2. 逐本校验并扣减在架数量（任一本失败整单回滚）
//  3. 保存单头与明细
func (uc *CreateSlipUseCase) Execute(ctx context.Context, req CreateSlipRequest) (resp *SlipResponse, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateSlip")
	defer func() {
		metrics.ObserveBorrowOperation("create_slip", start, err)
		tracing.EndSpan(span, err)
	}()

	if len(req.BookIDs) == 0 {
		return nil, borrow.ErrEmptyBookList
	}

	now := uc.deps.now()
	today := borrow.Today(now)
	dueDate := borrow.DueDate(today, uc.deps.LoanDays)

	var slip *borrow.Slip
	err = uc.deps.Tx.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.deps.Users.FindByID(txCtx, req.ReaderID); err != nil {
			return err
		}

		slip = borrow.NewSlip(borrow.GenerateSlipCode(), req.ReaderID, req.Note, now.Truncate(time.Microsecond))
		for _, bookID := range req.BookIDs {
			detail, err := uc.deps.lend(txCtx, bookID, today, dueDate)
			if err != nil {
				return err
			}
			slip.Details = append(slip.Details, detail)
		}

		return uc.deps.Slips.Create(txCtx, slip)
	})
	if err != nil {
		return nil, err
	}

	metrics.AddCopiesLent(len(slip.Details))
	logger.FromContext(ctx).Info().
		Str("slip_code", slip.SlipCode).
		Uint("reader_id", slip.ReaderID).
		Int("books", len(slip.Details)).
		Msg("借阅单已创建")

	uc.deps.publish(ctx, borrow.Event{
		Type:     borrow.EventSlipCreated,
		SlipID:   slip.ID,
		SlipCode: slip.SlipCode,
		ReaderID: slip.ReaderID,
		BookIDs:  slip.BookIDs(),
	})

	return toSlipResponse(slip), nil
}
