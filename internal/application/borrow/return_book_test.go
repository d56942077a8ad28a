package borrow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/xiebiao/library/internal/application/borrow"
	"github.com/xiebiao/library/internal/domain/borrow"
)

func TestReturnBook(t *testing.T) {
	f := newFixture(t)
	a := f.addBook("A", 1)
	slip := f.create(f.reader.ID, a.ID)
	detailID := slip.Details[0].ID
	uc := app.NewReturnBookUseCase(f.deps)

	resp, err := uc.Execute(context.Background(), detailID)
	require.NoError(t, err)
	assert.Equal(t, borrow.StatusReturned, resp.Status)
	require.NotNil(t, resp.ReturnDate)
	assert.Equal(t, "2025-03-10", *resp.ReturnDate)
	assert.Equal(t, 1, f.available(a.ID))
	f.requireInvariant(a)

	t.Run("重复归还", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), detailID)
		assert.ErrorIs(t, err, borrow.ErrAlreadyReturned)
		assert.Equal(t, 1, f.available(a.ID))
		f.requireInvariant(a)
	})

	t.Run("明细不存在", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), 999)
		assert.ErrorIs(t, err, borrow.ErrDetailNotFound)
	})

	t.Run("单头状态不变", func(t *testing.T) {
		got, err := f.slips.FindByID(context.Background(), slip.ID)
		require.NoError(t, err)
		assert.Equal(t, borrow.StatusBorrowed, got.Status)
	})

	assert.Equal(t, []string{borrow.EventSlipCreated, borrow.EventDetailReturned}, f.events.types())
}

func TestReturnBook_LowercaseStatusCountsAsReturned(t *testing.T) {
	f := newFixture(t)
	a := f.addBook("A", 1)
	slip := f.create(f.reader.ID, a.ID)
	detailID := slip.Details[0].ID

	require.NoError(t, f.db.Exec("UPDATE borrow_slip_details SET status = 'returned' WHERE id = ?", detailID).Error)

	_, err := app.NewReturnBookUseCase(f.deps).Execute(context.Background(), detailID)
	assert.ErrorIs(t, err, borrow.ErrAlreadyReturned)
	assert.Equal(t, 0, f.available(a.ID))
}
