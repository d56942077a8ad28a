package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/logger"
)

// CreateBookUseCase 新书入库
// 编号唯一、价格与册数非负等规则由领域服务负责，这里只做编排
type CreateBookUseCase struct {
	bookService book.Service
}

func NewCreateBookUseCase(bookService book.Service) *CreateBookUseCase {
	return &CreateBookUseCase{bookService: bookService}
}

// CreateBookRequest 入库请求
type CreateBookRequest struct {
	BookCode    string
	Title       string
	ISBN        string
	PublishYear int
	Price       int64 // 分
	Quantity    int   // 馆藏册数，全部在架
	Description string
}

func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	b, err := uc.bookService.CreateBook(
		ctx,
		req.BookCode,
		req.Title,
		req.ISBN,
		req.PublishYear,
		req.Price,
		req.Quantity,
		req.Description,
	)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Uint("book_id", b.ID).
		Str("book_code", b.BookCode).
		Int("quantity", b.TotalQuantity).
		Msg("图书已入库")

	return toBookResponse(b), nil
}
