package mysql_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/testutil"
)

var today = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func newSlip(t *testing.T, repo borrow.Repository, readerID uint, bookIDs ...uint) *borrow.Slip {
	t.Helper()
	slip := borrow.NewSlip(borrow.GenerateSlipCode(), readerID, "", time.Now().UTC().Truncate(time.Microsecond))
	for _, id := range bookIDs {
		slip.Details = append(slip.Details, borrow.NewDetail(id, today, 14))
	}
	require.NoError(t, repo.Create(context.Background(), slip))
	return slip
}

func TestBorrowSlipRepository_CreateAndFind(t *testing.T) {
	repo := mysql.NewBorrowSlipRepository(testutil.NewDB(t))
	ctx := context.Background()

	slip := newSlip(t, repo, 1, 10, 11, 10)
	require.NotZero(t, slip.ID)
	for _, d := range slip.Details {
		assert.NotZero(t, d.ID)
		assert.Equal(t, slip.ID, d.SlipID)
	}

	got, err := repo.FindByID(ctx, slip.ID)
	require.NoError(t, err)
	assert.Equal(t, slip.SlipCode, got.SlipCode)
	assert.Equal(t, borrow.StatusBorrowed, got.Status)
	require.Len(t, got.Details, 3)
	assert.Equal(t, []uint{10, 11, 10}, got.BookIDs())
	assert.Equal(t, "2025-03-24", got.Details[0].DueDate.Format("2006-01-02"))
	assert.Nil(t, got.Details[0].ReturnDate)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, borrow.ErrSlipNotFound)
}

func TestBorrowSlipRepository_DuplicateSlipCode(t *testing.T) {
	repo := mysql.NewBorrowSlipRepository(testutil.NewDB(t))
	slip := newSlip(t, repo, 1, 10)

	dup := borrow.NewSlip(slip.SlipCode, 2, "", time.Now().UTC())
	dup.Details = []*borrow.Detail{borrow.NewDetail(10, today, 14)}
	assert.ErrorIs(t, repo.Create(context.Background(), dup), borrow.ErrSlipCodeDuplicate)
}

func TestBorrowSlipRepository_Queries(t *testing.T) {
	repo := mysql.NewBorrowSlipRepository(testutil.NewDB(t))
	ctx := context.Background()

	s1 := newSlip(t, repo, 1, 10)
	s2 := newSlip(t, repo, 1, 11, 12)
	s3 := newSlip(t, repo, 2, 12)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byReader, err := repo.ListByReader(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byReader, 2)
	assert.Equal(t, s1.ID, byReader[0].ID)
	assert.Equal(t, s2.ID, byReader[1].ID)

	byBook, err := repo.ListByBook(ctx, 12)
	require.NoError(t, err)
	require.Len(t, byBook, 2)
	assert.Equal(t, s2.ID, byBook[0].ID)
	assert.Equal(t, s3.ID, byBook[1].ID)
	// 带出的是整张单的明细，不只是匹配的那一条
	assert.Len(t, byBook[0].Details, 2)

	none, err := repo.ListByBook(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)

	count, err := repo.CountByReader(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	exists, err := repo.ExistsDetailForBook(ctx, 11)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsDetailForBook(ctx, 99)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBorrowSlipRepository_MarkReturned(t *testing.T) {
	repo := mysql.NewBorrowSlipRepository(testutil.NewDB(t))
	ctx := context.Background()
	slip := newSlip(t, repo, 1, 10)
	detailID := slip.Details[0].ID

	returnDate := today.AddDate(0, 0, 3)
	require.NoError(t, repo.MarkReturned(ctx, detailID, returnDate))

	d, err := repo.FindDetailByID(ctx, detailID)
	require.NoError(t, err)
	assert.Equal(t, borrow.StatusReturned, d.Status)
	require.NotNil(t, d.ReturnDate)
	assert.Equal(t, "2025-03-13", d.ReturnDate.Format("2006-01-02"))

	assert.ErrorIs(t, repo.MarkReturned(ctx, detailID, returnDate), borrow.ErrAlreadyReturned)
	assert.ErrorIs(t, repo.MarkReturned(ctx, 999, returnDate), borrow.ErrDetailNotFound)
}

func TestBorrowSlipRepository_DetailLifecycle(t *testing.T) {
	repo := mysql.NewBorrowSlipRepository(testutil.NewDB(t))
	ctx := context.Background()
	slip := newSlip(t, repo, 1, 10)

	added := borrow.NewDetail(11, today, 14)
	added.SlipID = slip.ID
	require.NoError(t, repo.CreateDetail(ctx, added))
	require.NotZero(t, added.ID)

	first := slip.Details[0]
	first.Reschedule(today.AddDate(0, 0, 1), today.AddDate(0, 1, 0))
	require.NoError(t, repo.UpdateDetail(ctx, first))

	got, err := repo.FindByID(ctx, slip.ID)
	require.NoError(t, err)
	require.Len(t, got.Details, 2)
	assert.Equal(t, "2025-03-11", got.Details[0].BorrowDate.Format("2006-01-02"))
	assert.Equal(t, "2025-04-10", got.Details[0].DueDate.Format("2006-01-02"))

	require.NoError(t, repo.DeleteDetail(ctx, first.ID))
	assert.ErrorIs(t, repo.DeleteDetail(ctx, first.ID), borrow.ErrDetailNotFound)

	got, err = repo.FindByID(ctx, slip.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{11}, got.BookIDs())
}

func TestBorrowSlipRepository_UpdateAndDelete(t *testing.T) {
	repo := mysql.NewBorrowSlipRepository(testutil.NewDB(t))
	ctx := context.Background()
	slip := newSlip(t, repo, 1, 10, 11)

	reader, note := uint(2), "换人"
	slip.Reassign(&reader, &note, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Update(ctx, slip))

	got, err := repo.FindByID(ctx, slip.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.ReaderID)
	assert.Equal(t, "换人", got.Note)

	require.NoError(t, repo.Delete(ctx, slip.ID))
	_, err = repo.FindByID(ctx, slip.ID)
	assert.ErrorIs(t, err, borrow.ErrSlipNotFound)
	_, err = repo.FindDetailByID(ctx, slip.Details[0].ID)
	assert.ErrorIs(t, err, borrow.ErrDetailNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, slip.ID), borrow.ErrSlipNotFound)
}
