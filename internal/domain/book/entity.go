package book

import (
	"time"
)

// Book 馆藏图书（聚合根）
//
// 库存用两个计数表示：
//   - TotalQuantity     馆藏册数
//   - AvailableQuantity 在架可借册数
//
// 两者之差恒等于该书处于借出状态(BORROWED)的借阅明细条数，
// 只能通过借还流程或 AdjustTotal 同步修改。
type Book struct {
	ID                uint
	BookCode          string // 馆内编号，唯一
	Title             string
	ISBN              string
	PublishYear       int
	Price             int64 // 单位:分
	Description       string
	TotalQuantity     int
	AvailableQuantity int
	IsActive          bool // false 表示已下架（有借阅历史的书只做软删除）
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewBook 新书入库，全部副本在架
func NewBook(code, title, isbn string, publishYear int, price int64, quantity int, description string) (*Book, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	now := time.Now()
	return &Book{
		BookCode:          code,
		Title:             title,
		ISBN:              isbn,
		PublishYear:       publishYear,
		Price:             price,
		Description:       description,
		TotalQuantity:     quantity,
		AvailableQuantity: quantity,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// OnLoan 当前借出册数
func (b *Book) OnLoan() int {
	return b.TotalQuantity - b.AvailableQuantity
}

// CanLend 是否还有在架副本
func (b *Book) CanLend() bool {
	return b.AvailableQuantity > 0
}

// AdjustTotal 修改馆藏册数，在架册数同步增减相同差值
//
// 新册数不能少于已借出册数，否则在架数会变成负数。
func (b *Book) AdjustTotal(total int) error {
	if total < 0 {
		return ErrInvalidQuantity
	}
	if total < b.OnLoan() {
		return ErrQuantityBelowLoaned
	}
	b.AvailableQuantity += total - b.TotalQuantity
	b.TotalQuantity = total
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateInfo 更新基本信息，空值字段保持不变
func (b *Book) UpdateInfo(title, isbn string, publishYear int, price int64, description string) error {
	if price < 0 {
		return ErrInvalidPrice
	}
	if title != "" {
		b.Title = title
	}
	if isbn != "" {
		b.ISBN = isbn
	}
	if publishYear > 0 {
		b.PublishYear = publishYear
	}
	if price > 0 {
		b.Price = price
	}
	if description != "" {
		b.Description = description
	}
	b.UpdatedAt = time.Now()
	return nil
}

// Deactivate 下架
func (b *Book) Deactivate() {
	b.IsActive = false
	b.UpdatedAt = time.Now()
}
