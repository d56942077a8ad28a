package borrow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/xiebiao/library/internal/application/borrow"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/user"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func ptr[T any](v T) *T {
	return &v
}

// TestUpdateSlip_Reconcile 保留A、移除已归还的B与在借的C、新增D
func TestUpdateSlip_Reconcile(t *testing.T) {
	f := newFixture(t)
	a := f.addBook("A", 1)
	b := f.addBook("B", 1)
	c := f.addBook("C", 1)
	d := f.addBook("D", 1)
	other := f.addUser("other")

	slip := f.create(f.reader.ID, a.ID, b.ID, c.ID)
	_, err := app.NewReturnBookUseCase(f.deps).Execute(context.Background(), slip.Details[1].ID)
	require.NoError(t, err)

	resp, err := app.NewUpdateSlipUseCase(f.deps).Execute(context.Background(), app.UpdateSlipRequest{
		SlipID:     slip.ID,
		ReaderID:   &other.ID,
		BookIDs:    []uint{a.ID, d.ID, d.ID},
		Note:       ptr("换书"),
		BorrowDate: date("2025-03-01"),
		DueDate:    date("2025-04-01"),
	})
	require.NoError(t, err)

	assert.Equal(t, other.ID, resp.ReaderID)
	assert.Equal(t, "换书", resp.Note)
	require.Len(t, resp.Details, 2)

	retained := resp.Details[0]
	assert.Equal(t, a.ID, retained.BookID)
	assert.Equal(t, slip.Details[0].ID, retained.ID)
	assert.Equal(t, "2025-03-01", retained.BorrowDate)
	assert.Equal(t, "2025-04-01", retained.DueDate)

	added := resp.Details[1]
	assert.Equal(t, d.ID, added.BookID)
	assert.Equal(t, "2025-03-01", added.BorrowDate)
	assert.Equal(t, "2025-04-01", added.DueDate)

	assert.Equal(t, 0, f.available(a.ID))
	assert.Equal(t, 1, f.available(b.ID))
	assert.Equal(t, 1, f.available(c.ID))
	assert.Equal(t, 0, f.available(d.ID))
	f.requireInvariant(a, b, c, d)

	stored, err := f.slips.FindByID(context.Background(), slip.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, d.ID}, stored.BookIDs())
	assert.Equal(t, other.ID, stored.ReaderID)
}

func TestUpdateSlip_AddedBookOutOfStockRollsBack(t *testing.T) {
	f := newFixture(t)
	a := f.addBook("A", 1)
	b := f.addBook("B", 1)
	empty := f.addBook("EMPTY", 0)
	other := f.addUser("other")

	slip := f.create(f.reader.ID, a.ID, b.ID)

	_, err := app.NewUpdateSlipUseCase(f.deps).Execute(context.Background(), app.UpdateSlipRequest{
		SlipID:     slip.ID,
		ReaderID:   &other.ID,
		BookIDs:    []uint{a.ID, empty.ID},
		BorrowDate: date("2025-03-01"),
		DueDate:    date("2025-04-01"),
	})
	assert.ErrorIs(t, err, book.ErrOutOfStock)

	stored, err := f.slips.FindByID(context.Background(), slip.ID)
	require.NoError(t, err)
	assert.Equal(t, f.reader.ID, stored.ReaderID)
	assert.Equal(t, []uint{a.ID, b.ID}, stored.BookIDs())
	assert.Equal(t, "2025-03-10", stored.Details[0].BorrowDate.Format("2006-01-02"))
	assert.Equal(t, 0, f.available(b.ID))
	f.requireInvariant(a, b, empty)
}

func TestUpdateSlip_Validation(t *testing.T) {
	f := newFixture(t)
	a := f.addBook("A", 1)
	slip := f.create(f.reader.ID, a.ID)
	uc := app.NewUpdateSlipUseCase(f.deps)

	tests := []struct {
		name    string
		req     app.UpdateSlipRequest
		wantErr error
	}{
		{
			name:    "图书列表为空",
			req:     app.UpdateSlipRequest{SlipID: slip.ID, ReaderID: &f.reader.ID},
			wantErr: borrow.ErrEmptyBookList,
		},
		{
			name:    "借阅单不存在",
			req:     app.UpdateSlipRequest{SlipID: 999, BookIDs: []uint{a.ID}},
			wantErr: borrow.ErrSlipNotFound,
		},
		{
			name:    "读者不存在",
			req:     app.UpdateSlipRequest{SlipID: slip.ID, ReaderID: ptr(uint(999)), BookIDs: []uint{a.ID}},
			wantErr: user.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	f.requireInvariant(a)
}

// TestUpdateSlip_OmittedFieldsKeepOrDefault 未提供的字段：读者、备注保持原值，日期取今天与今天 + 借期
func TestUpdateSlip_OmittedFieldsKeepOrDefault(t *testing.T) {
	f := newFixture(t)
	a := f.addBook("A", 1)
	b := f.addBook("B", 1)

	slip := f.create(f.reader.ID, a.ID)
	uc := app.NewUpdateSlipUseCase(f.deps)

	_, err := uc.Execute(context.Background(), app.UpdateSlipRequest{
		SlipID:     slip.ID,
		BookIDs:    []uint{a.ID},
		Note:       ptr("keep me"),
		BorrowDate: date("2025-02-01"),
		DueDate:    date("2025-02-20"),
	})
	require.NoError(t, err)

	resp, err := uc.Execute(context.Background(), app.UpdateSlipRequest{
		SlipID:  slip.ID,
		BookIDs: []uint{a.ID, b.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, f.reader.ID, resp.ReaderID)
	assert.Equal(t, "keep me", resp.Note)
	require.Len(t, resp.Details, 2)
	for _, d := range resp.Details {
		assert.Equal(t, "2025-03-10", d.BorrowDate, "book %d", d.BookID)
		assert.Equal(t, "2025-03-24", d.DueDate, "book %d", d.BookID)
	}

	stored, err := f.slips.FindByID(context.Background(), slip.ID)
	require.NoError(t, err)
	assert.Equal(t, f.reader.ID, stored.ReaderID)
	assert.Equal(t, "keep me", stored.Note)
	assert.Equal(t, 0, f.available(b.ID))
	f.requireInvariant(a, b)
}

func TestUpdateSlip_DueDateDefaultsFromBorrowDate(t *testing.T) {
	f := newFixture(t)
	a := f.addBook("A", 1)
	b := f.addBook("B", 1)
	slip := f.create(f.reader.ID, a.ID)

	resp, err := app.NewUpdateSlipUseCase(f.deps).Execute(context.Background(), app.UpdateSlipRequest{
		SlipID:     slip.ID,
		BookIDs:    []uint{a.ID, b.ID},
		BorrowDate: date("2025-03-05"),
	})
	require.NoError(t, err)

	require.Len(t, resp.Details, 2)
	for _, d := range resp.Details {
		assert.Equal(t, "2025-03-05", d.BorrowDate)
		assert.Equal(t, "2025-03-19", d.DueDate)
	}
}

func TestUpdateSlip_ReplacesReaderOnlyWhenSupplied(t *testing.T) {
	f := newFixture(t)
	a := f.addBook("A", 1)
	other := f.addUser("other")
	slip := f.create(f.reader.ID, a.ID)
	uc := app.NewUpdateSlipUseCase(f.deps)

	resp, err := uc.Execute(context.Background(), app.UpdateSlipRequest{
		SlipID:   slip.ID,
		ReaderID: &other.ID,
		BookIDs:  []uint{a.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, other.ID, resp.ReaderID)

	resp, err = uc.Execute(context.Background(), app.UpdateSlipRequest{
		SlipID:  slip.ID,
		BookIDs: []uint{a.ID},
		Note:    ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, other.ID, resp.ReaderID)
	assert.Empty(t, resp.Note)
}
