package book

import (
	"github.com/xiebiao/library/internal/domain/book"
)

// BookResponse 图书
// price 单位为分
type BookResponse struct {
	ID                uint   `json:"id"`
	BookCode          string `json:"bookCode"`
	Title             string `json:"title"`
	ISBN              string `json:"isbn"`
	PublishYear       int    `json:"publishYear"`
	Price             int64  `json:"price"`
	Description       string `json:"description,omitempty"`
	TotalQuantity     int    `json:"totalQuantity"`
	AvailableQuantity int    `json:"availableQuantity"`
	IsActive          bool   `json:"isActive"`
}

func toBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:                b.ID,
		BookCode:          b.BookCode,
		Title:             b.Title,
		ISBN:              b.ISBN,
		PublishYear:       b.PublishYear,
		Price:             b.Price,
		Description:       b.Description,
		TotalQuantity:     b.TotalQuantity,
		AvailableQuantity: b.AvailableQuantity,
		IsActive:          b.IsActive,
	}
}
