package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

// QueryBooksUseCase 图书查询
type QueryBooksUseCase struct {
	bookService book.Service
}

func NewQueryBooksUseCase(bookService book.Service) *QueryBooksUseCase {
	return &QueryBooksUseCase{bookService: bookService}
}

// List 只列出未下架的书
func (uc *QueryBooksUseCase) List(ctx context.Context) ([]*BookResponse, error) {
	books, err := uc.bookService.ListActiveBooks(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toBookResponse(b))
	}
	return out, nil
}

// Get 已下架的书按ID仍可查到，借阅单引用它时需要展示
func (uc *QueryBooksUseCase) Get(ctx context.Context, id uint) (*BookResponse, error) {
	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}
