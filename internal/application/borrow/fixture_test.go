package borrow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	app "github.com/xiebiao/library/internal/application/borrow"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/testutil"
)

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []borrow.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e borrow.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	t      *testing.T
	db     *gorm.DB
	books  book.Repository
	users  user.Repository
	slips  borrow.Repository
	events *recordingPublisher
	deps   app.Deps
	reader *user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	f := &fixture{
		t:      t,
		db:     db,
		books:  mysql.NewBookRepository(db),
		users:  mysql.NewUserRepository(db),
		slips:  mysql.NewBorrowSlipRepository(db),
		events: &recordingPublisher{},
	}
	f.deps = app.Deps{
		Slips:    f.slips,
		Books:    f.books,
		Users:    f.users,
		Tx:       mysql.NewTxManager(db),
		Events:   f.events,
		LoanDays: 14,
		Now:      func() time.Time { return fixedNow },
		Location: time.UTC,
	}
	f.reader = f.addUser("reader")
	return f
}

func (f *fixture) addUser(name string) *user.User {
	f.t.Helper()
	u := user.NewUser(name, "hash", "", "")
	require.NoError(f.t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) addBook(code string, qty int) *book.Book {
	f.t.Helper()
	b, err := book.NewBook(code, "书-"+code, "", 2020, 3000, qty, "")
	require.NoError(f.t, err)
	require.NoError(f.t, f.books.Create(context.Background(), b))
	return b
}

func (f *fixture) available(id uint) int {
	f.t.Helper()
	b, err := f.books.FindByID(context.Background(), id)
	require.NoError(f.t, err)
	return b.AvailableQuantity
}

func (f *fixture) create(readerID uint, bookIDs ...uint) *app.SlipResponse {
	f.t.Helper()
	resp, err := app.NewCreateSlipUseCase(f.deps).Execute(context.Background(), app.CreateSlipRequest{
		ReaderID: readerID,
		BookIDs:  bookIDs,
	})
	require.NoError(f.t, err)
	return resp
}

// requireInvariant 每本书：馆藏数 - 在架数 = 借出中的明细数
func (f *fixture) requireInvariant(books ...*book.Book) {
	f.t.Helper()
	ctx := context.Background()
	for _, b := range books {
		current, err := f.books.FindByID(ctx, b.ID)
		require.NoError(f.t, err)

		slips, err := f.slips.ListByBook(ctx, b.ID)
		require.NoError(f.t, err)

		borrowed := 0
		for _, s := range slips {
			for _, d := range s.Details {
				if d.BookID == b.ID && d.HoldsCopy() {
					borrowed++
				}
			}
		}
		require.Equalf(f.t, borrowed, current.OnLoan(), "book %s", current.BookCode)
	}
}
