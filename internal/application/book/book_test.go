package book_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/testutil"
)

type fixture struct {
	books   book.Repository
	slips   borrow.Repository
	tx      *mysql.TxManager
	service book.Service
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	books := mysql.NewBookRepository(db)
	return &fixture{
		books:   books,
		slips:   mysql.NewBorrowSlipRepository(db),
		tx:      mysql.NewTxManager(db),
		service: book.NewService(books),
	}
}

func (f *fixture) createBook(t *testing.T, code string, qty int) *app.BookResponse {
	t.Helper()
	resp, err := app.NewCreateBookUseCase(f.service).Execute(context.Background(), app.CreateBookRequest{
		BookCode: code,
		Title:    "书-" + code,
		ISBN:     "978-7-5366-9293-0",
		Price:    2350,
		Quantity: qty,
	})
	require.NoError(t, err)
	return resp
}

// lendOne 直接写一条在借明细，模拟借出
func (f *fixture) lendOne(t *testing.T, bookID uint) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.books.DecrementAvailable(ctx, bookID))
	slip := borrow.NewSlip(borrow.GenerateSlipCode(), 1, "", time.Now().UTC())
	slip.Details = []*borrow.Detail{borrow.NewDetail(bookID, borrow.Today(time.Now()), 14)}
	require.NoError(t, f.slips.Create(ctx, slip))
}

func TestCreateBook(t *testing.T) {
	f := newFixture(t)
	resp := f.createBook(t, "B001", 3)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, 3, resp.TotalQuantity)
	assert.Equal(t, 3, resp.AvailableQuantity)
	assert.True(t, resp.IsActive)

	_, err := app.NewCreateBookUseCase(f.service).Execute(context.Background(), app.CreateBookRequest{
		BookCode: "B001",
		Title:    "重复",
		Quantity: 1,
	})
	assert.ErrorIs(t, err, book.ErrBookCodeDuplicate)

	_, err = app.NewCreateBookUseCase(f.service).Execute(context.Background(), app.CreateBookRequest{
		BookCode: "B002",
		Title:    "负数",
		Quantity: -1,
	})
	assert.ErrorIs(t, err, book.ErrInvalidQuantity)
}

func TestUpdateBook_QuantityMovesAvailable(t *testing.T) {
	f := newFixture(t)
	created := f.createBook(t, "B001", 3)
	f.lendOne(t, created.ID)
	f.lendOne(t, created.ID)
	uc := app.NewUpdateBookUseCase(f.service, f.tx)

	qty := 5
	resp, err := uc.Execute(context.Background(), app.UpdateBookRequest{
		ID:       created.ID,
		Title:    "新书名",
		Quantity: &qty,
	})
	require.NoError(t, err)
	assert.Equal(t, "新书名", resp.Title)
	assert.Equal(t, 5, resp.TotalQuantity)
	assert.Equal(t, 3, resp.AvailableQuantity)

	t.Run("少于借出数", func(t *testing.T) {
		qty := 1
		_, err := uc.Execute(context.Background(), app.UpdateBookRequest{
			ID:       created.ID,
			Title:    "不应生效",
			Quantity: &qty,
		})
		assert.ErrorIs(t, err, book.ErrQuantityBelowLoaned)

		got, err := app.NewQueryBooksUseCase(f.service).Get(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, "新书名", got.Title)
		assert.Equal(t, 5, got.TotalQuantity)
	})

	t.Run("不改册数", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), app.UpdateBookRequest{ID: created.ID, Price: 9900})
		require.NoError(t, err)
		assert.EqualValues(t, 9900, resp.Price)
		assert.Equal(t, 5, resp.TotalQuantity)
		assert.Equal(t, 3, resp.AvailableQuantity)
	})

	t.Run("图书不存在", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), app.UpdateBookRequest{ID: 999})
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})
}

func TestDeleteBook(t *testing.T) {
	f := newFixture(t)
	borrowed := f.createBook(t, "B001", 1)
	unused := f.createBook(t, "B002", 1)
	f.lendOne(t, borrowed.ID)

	uc := app.NewDeleteBookUseCase(f.books, f.slips, f.tx)
	query := app.NewQueryBooksUseCase(f.service)
	ctx := context.Background()

	soft, err := uc.Execute(ctx, borrowed.ID)
	require.NoError(t, err)
	assert.True(t, soft)

	got, err := query.Get(ctx, borrowed.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	soft, err = uc.Execute(ctx, unused.ID)
	require.NoError(t, err)
	assert.False(t, soft)

	_, err = query.Get(ctx, unused.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	list, err := query.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = uc.Execute(ctx, 999)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}
