package borrow

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// UpdateSlipUseCase 修改借阅单：换读者、改备注、按新图书集合增删明细
type UpdateSlipUseCase struct {
	deps Deps
}

func NewUpdateSlipUseCase(deps Deps) *UpdateSlipUseCase {
	return &UpdateSlipUseCase{deps: deps}
}

// UpdateSlipRequest 指针字段为 nil 表示未提供
//   - ReaderID、Note 未提供时保持原值
//   - BorrowDate 默认今天，DueDate 默认借出日 + 借期
//   - 两个日期同时用于保留的明细和新增的明细
type UpdateSlipRequest struct {
	SlipID     uint
	ReaderID   *uint
	BookIDs    []uint
	Note       *string
	BorrowDate *time.Time
	DueDate    *time.Time
}

// Execute 新旧图书集合求差：
//   - 移除的明细删除；仍在借的归还一册在架数量
//   - 新增的图书检查在架后借出，借出日与到期日取本次的日期
//   - 保留的明细改写借出日与到期日
func (uc *UpdateSlipUseCase) Execute(ctx context.Context, req UpdateSlipRequest) (resp *SlipResponse, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdateSlip")
	defer func() {
		metrics.ObserveBorrowOperation("update_slip", start, err)
		tracing.EndSpan(span, err)
	}()

	if len(req.BookIDs) == 0 {
		return nil, borrow.ErrEmptyBookList
	}

	now := uc.deps.now()
	borrowDate := borrow.Today(now)
	if req.BorrowDate != nil {
		borrowDate = *req.BorrowDate
	}
	dueDate := borrow.DueDate(borrowDate, uc.deps.LoanDays)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	var (
		slip     *borrow.Slip
		restored int
		lent     int
	)
	err = uc.deps.Tx.Transaction(ctx, func(txCtx context.Context) error {
		s, err := uc.deps.Slips.FindByID(txCtx, req.SlipID)
		if err != nil {
			return err
		}
		if req.ReaderID != nil {
			if _, err := uc.deps.Users.FindByID(txCtx, *req.ReaderID); err != nil {
				return err
			}
		}

		s.Reassign(req.ReaderID, req.Note, now)
		if err := uc.deps.Slips.Update(txCtx, s); err != nil {
			return err
		}

		diff := borrow.Reconcile(s.Details, req.BookIDs)
		details := make([]*borrow.Detail, 0, len(diff.Retained)+len(diff.Added))

		for _, d := range diff.Removed {
			if err := uc.deps.Slips.DeleteDetail(txCtx, d.ID); err != nil {
				return err
			}
			// 已归还的明细当时已加回在架数量
			if d.IsReturned() {
				continue
			}
			if err := uc.deps.Books.IncrementAvailable(txCtx, d.BookID); err != nil {
				return err
			}
			restored++
		}

		for _, d := range diff.Retained {
			d.Reschedule(borrowDate, dueDate)
			if err := uc.deps.Slips.UpdateDetail(txCtx, d); err != nil {
				return err
			}
			details = append(details, d)
		}

		for _, bookID := range diff.Added {
			d, err := uc.deps.lend(txCtx, bookID, borrowDate, dueDate)
			if err != nil {
				return err
			}
			d.SlipID = s.ID
			if err := uc.deps.Slips.CreateDetail(txCtx, d); err != nil {
				return err
			}
			details = append(details, d)
			lent++
		}

		s.Details = details
		slip = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AddCopiesLent(lent)
	metrics.AddCopiesRestored("update", restored)
	logger.FromContext(ctx).Info().
		Str("slip_code", slip.SlipCode).
		Int("lent", lent).
		Int("restored", restored).
		Msg("借阅单已修改")

	uc.deps.publish(ctx, borrow.Event{
		Type:     borrow.EventSlipUpdated,
		SlipID:   slip.ID,
		SlipCode: slip.SlipCode,
		ReaderID: slip.ReaderID,
		BookIDs:  slip.BookIDs(),
	})

	return toSlipResponse(slip), nil
}
