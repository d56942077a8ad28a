package book

import (
	"context"
	"strings"
)

// Service 图书领域服务
type Service interface {
	// CreateBook 入库，编号不可重复
	CreateBook(ctx context.Context, code, title, isbn string, publishYear int, price int64, quantity int, description string) (*Book, error)

	GetBook(ctx context.Context, id uint) (*Book, error)

	ListActiveBooks(ctx context.Context) ([]*Book, error)

	// UpdateBook 修改信息与馆藏数；quantity 为 nil 表示不改册数
	UpdateBook(ctx context.Context, id uint, title, isbn string, publishYear int, price int64, quantity *int, description string) (*Book, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateBook(ctx context.Context, code, title, isbn string, publishYear int, price int64, quantity int, description string) (*Book, error) {
	code = strings.TrimSpace(code)

	exists, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrBookCodeDuplicate
	}

	b, err := NewBook(code, strings.TrimSpace(title), isbn, publishYear, price, quantity, description)
	if err != nil {
		return nil, err
	}

	// 唯一索引兜底：并发入库同一编号时 Create 仍会返回 ErrBookCodeDuplicate
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListActiveBooks(ctx context.Context) ([]*Book, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) UpdateBook(ctx context.Context, id uint, title, isbn string, publishYear int, price int64, quantity *int, description string) (*Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := b.UpdateInfo(title, isbn, publishYear, price, description); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	if quantity != nil && *quantity != b.TotalQuantity {
		if err := b.AdjustTotal(*quantity); err != nil {
			return nil, err
		}
		// 以数据库中的借出数为准再校验一次，读取之后可能又有借还
		if err := s.repo.SetTotalQuantity(ctx, id, *quantity); err != nil {
			return nil, err
		}
	}
	return b, nil
}
