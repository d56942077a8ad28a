package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/book"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// bookRepository 图书仓储的GORM实现
type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrBookCodeDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).Model(&BookModel{}).Where("book_code = ?", code).Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询图书编号失败")
	}
	return count > 0, nil
}

func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	result := dbFrom(ctx, r.db).Model(&BookModel{ID: b.ID}).
		Select("title", "isbn", "publish_year", "price", "description", "is_active", "updated_at").
		Updates(&BookModel{
			Title:       b.Title,
			ISBN:        b.ISBN,
			PublishYear: b.PublishYear,
			Price:       b.Price,
			Description: b.Description,
			IsActive:    b.IsActive,
			UpdatedAt:   b.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新图书失败")
	}
	return nil
}

// SetTotalQuantity 两个计数在一条UPDATE里同时修改
//
//	UPDATE books
//	SET available_quantity = available_quantity + (? - total_quantity), total_quantity = ?
//	WHERE id = ? AND total_quantity - available_quantity <= ?
//
// MySQL 的 SET 从左到右求值，available 必须先于 total 赋值；
// GORM 按 map 键名字典序生成 SET 子句，正好满足
func (r *bookRepository) SetTotalQuantity(ctx context.Context, id uint, total int) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("total_quantity - available_quantity <= ?", total).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity + (? - total_quantity)", total),
			"total_quantity":     total,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新馆藏数量失败")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return book.ErrQuantityBelowLoaned
	}
	return nil
}

// Delete 物理删除
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

func (r *bookRepository) ListActive(ctx context.Context) ([]*book.Book, error) {
	var models []BookModel
	err := dbFrom(ctx, r.db).Where("is_active = ?", true).Order("id ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// DecrementAvailable 借出一册
//
// 不先加锁再判断，直接用条件更新：
//
//	UPDATE books SET available_quantity = available_quantity - 1
//	WHERE id = ? AND available_quantity > 0
//
// 两个请求同时借最后一册时，行锁使第二条UPDATE看到0，影响行数为0
func (r *bookRepository) DecrementAvailable(ctx context.Context, id uint) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&BookModel{}).
		Where("id = ? AND available_quantity > 0", id).
		Update("available_quantity", gorm.Expr("available_quantity - 1"))
	if result.Error != nil {
		return apperrors.Wrapf(result.Error, "扣减图书%d在架数量失败", id)
	}

	if result.RowsAffected == 0 {
		b, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return outOfStock(b.Title)
	}
	return nil
}

// IncrementAvailable 归还一册，在架数不能超过馆藏数
func (r *bookRepository) IncrementAvailable(ctx context.Context, id uint) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&BookModel{}).
		Where("id = ? AND available_quantity < total_quantity", id).
		Update("available_quantity", gorm.Expr("available_quantity + 1"))
	if result.Error != nil {
		return apperrors.Wrapf(result.Error, "增加图书%d在架数量失败", id)
	}

	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return book.ErrInventoryOverflow
	}
	return nil
}

func outOfStock(title string) error {
	return book.ErrOutOfStock.WithMessage("《" + title + "》已无可借副本")
}

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
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
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func toBookEntity(m *BookModel) *book.Book {
	return &book.Book{
		ID:                m.ID,
		BookCode:          m.BookCode,
		Title:             m.Title,
		ISBN:              m.ISBN,
		PublishYear:       m.PublishYear,
		Price:             m.Price,
		Description:       m.Description,
		TotalQuantity:     m.TotalQuantity,
		AvailableQuantity: m.AvailableQuantity,
		IsActive:          m.IsActive,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
