package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/borrow"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type borrowSlipRepository struct {
	db *gorm.DB
}

func NewBorrowSlipRepository(db *gorm.DB) borrow.Repository {
	return &borrowSlipRepository{db: db}
}

// Create 单头与明细一并插入（GORM 自动保存 has-many 关联）
func (r *borrowSlipRepository) Create(ctx context.Context, slip *borrow.Slip) error {
	model := toSlipModel(slip)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return borrow.ErrSlipCodeDuplicate
		}
		return apperrors.Wrap(err, "创建借阅单失败")
	}

	slip.ID = model.ID
	slip.CreatedAt = model.CreatedAt
	slip.UpdatedAt = model.UpdatedAt
	for i := range model.Details {
		slip.Details[i].ID = model.Details[i].ID
		slip.Details[i].SlipID = model.ID
	}
	return nil
}

func (r *borrowSlipRepository) Update(ctx context.Context, slip *borrow.Slip) error {
	err := dbFrom(ctx, r.db).Model(&BorrowSlipModel{ID: slip.ID}).
		Select("reader_id", "note", "updated_at").
		Updates(&BorrowSlipModel{
			ReaderID:  slip.ReaderID,
			Note:      slip.Note,
			UpdatedAt: slip.UpdatedAt,
		}).Error
	if err != nil {
		return apperrors.Wrap(err, "更新借阅单失败")
	}
	return nil
}

func (r *borrowSlipRepository) FindByID(ctx context.Context, id uint) (*borrow.Slip, error) {
	var model BorrowSlipModel
	if err := r.withDetails(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, borrow.ErrSlipNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅单失败")
	}
	return toSlipEntity(&model), nil
}

// Delete 明细不依赖外键级联，先显式删除明细再删单头
func (r *borrowSlipRepository) Delete(ctx context.Context, id uint) error {
	db := dbFrom(ctx, r.db)
	if err := db.Where("borrow_slip_id = ?", id).Delete(&BorrowSlipDetailModel{}).Error; err != nil {
		return apperrors.Wrap(err, "删除借阅明细失败")
	}

	result := db.Delete(&BorrowSlipModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除借阅单失败")
	}
	if result.RowsAffected == 0 {
		return borrow.ErrSlipNotFound
	}
	return nil
}

func (r *borrowSlipRepository) List(ctx context.Context) ([]*borrow.Slip, error) {
	return r.find(r.withDetails(ctx))
}

func (r *borrowSlipRepository) ListByReader(ctx context.Context, readerID uint) ([]*borrow.Slip, error) {
	return r.find(r.withDetails(ctx).Where("reader_id = ?", readerID))
}

// ListByBook 子查询：
// SELECT * FROM borrow_slips WHERE id IN (SELECT borrow_slip_id FROM borrow_slip_details WHERE book_id = ?)
func (r *borrowSlipRepository) ListByBook(ctx context.Context, bookID uint) ([]*borrow.Slip, error) {
	sub := dbFrom(ctx, r.db).Model(&BorrowSlipDetailModel{}).
		Select("borrow_slip_id").
		Where("book_id = ?", bookID)
	return r.find(r.withDetails(ctx).Where("id IN (?)", sub))
}

func (r *borrowSlipRepository) ListByCreatedBetween(ctx context.Context, from, to time.Time) ([]*borrow.Slip, error) {
	return r.find(r.withDetails(ctx).Where("created_at BETWEEN ? AND ?", from, to))
}

func (r *borrowSlipRepository) ListByCreatedAt(ctx context.Context, at time.Time) ([]*borrow.Slip, error) {
	return r.find(r.withDetails(ctx).Where("created_at = ?", at))
}

func (r *borrowSlipRepository) CountByReader(ctx context.Context, readerID uint) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).Model(&BorrowSlipModel{}).Where("reader_id = ?", readerID).Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计借阅单失败")
	}
	return count, nil
}

func (r *borrowSlipRepository) FindDetailByID(ctx context.Context, id uint) (*borrow.Detail, error) {
	var model BorrowSlipDetailModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, borrow.ErrDetailNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅明细失败")
	}
	return toDetailEntity(&model), nil
}

func (r *borrowSlipRepository) CreateDetail(ctx context.Context, d *borrow.Detail) error {
	model := toDetailModel(d)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建借阅明细失败")
	}
	d.ID = model.ID
	return nil
}

func (r *borrowSlipRepository) UpdateDetail(ctx context.Context, d *borrow.Detail) error {
	err := dbFrom(ctx, r.db).Model(&BorrowSlipDetailModel{ID: d.ID}).
		Select("borrow_date", "due_date", "return_date", "status", "note").
		Updates(toDetailModel(d)).Error
	if err != nil {
		return apperrors.Wrap(err, "更新借阅明细失败")
	}
	return nil
}

func (r *borrowSlipRepository) MarkReturned(ctx context.Context, detailID uint, returnDate time.Time) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&BorrowSlipDetailModel{}).
		Where("id = ? AND UPPER(status) <> ?", detailID, borrow.StatusReturned).
		Updates(map[string]interface{}{
			"return_date": returnDate,
			"status":      borrow.StatusReturned,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "归还借阅明细失败")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindDetailByID(ctx, detailID); err != nil {
			return err
		}
		return borrow.ErrAlreadyReturned
	}
	return nil
}

func (r *borrowSlipRepository) DeleteDetail(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&BorrowSlipDetailModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除借阅明细失败")
	}
	if result.RowsAffected == 0 {
		return borrow.ErrDetailNotFound
	}
	return nil
}

func (r *borrowSlipRepository) ExistsDetailForBook(ctx context.Context, bookID uint) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).Model(&BorrowSlipDetailModel{}).Where("book_id = ?", bookID).Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询借阅记录失败")
	}
	return count > 0, nil
}

func (r *borrowSlipRepository) withDetails(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db).Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

func (r *borrowSlipRepository) find(query *gorm.DB) ([]*borrow.Slip, error) {
	var models []BorrowSlipModel
	if err := query.Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询借阅单失败")
	}

	slips := make([]*borrow.Slip, len(models))
	for i := range models {
		slips[i] = toSlipEntity(&models[i])
	}
	return slips, nil
}

func toSlipModel(s *borrow.Slip) *BorrowSlipModel {
	m := &BorrowSlipModel{
		ID:        s.ID,
		SlipCode:  s.SlipCode,
		ReaderID:  s.ReaderID,
		Status:    s.Status,
		Note:      s.Note,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	for _, d := range s.Details {
		m.Details = append(m.Details, *toDetailModel(d))
	}
	return m
}

func toSlipEntity(m *BorrowSlipModel) *borrow.Slip {
	s := &borrow.Slip{
		ID:        m.ID,
		SlipCode:  m.SlipCode,
		ReaderID:  m.ReaderID,
		Status:    m.Status,
		Note:      m.Note,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Details:   make([]*borrow.Detail, 0, len(m.Details)),
	}
	for i := range m.Details {
		s.Details = append(s.Details, toDetailEntity(&m.Details[i]))
	}
	return s
}

func toDetailModel(d *borrow.Detail) *BorrowSlipDetailModel {
	return &BorrowSlipDetailModel{
		ID:           d.ID,
		BorrowSlipID: d.SlipID,
		BookID:       d.BookID,
		BorrowDate:   d.BorrowDate,
		DueDate:      d.DueDate,
		ReturnDate:   d.ReturnDate,
		Status:       d.Status,
		Note:         d.Note,
	}
}

func toDetailEntity(m *BorrowSlipDetailModel) *borrow.Detail {
	return &borrow.Detail{
		ID:         m.ID,
		SlipID:     m.BorrowSlipID,
		BookID:     m.BookID,
		BorrowDate: m.BorrowDate,
		DueDate:    m.DueDate,
		ReturnDate: m.ReturnDate,
		Status:     m.Status,
		Note:       m.Note,
	}
}
