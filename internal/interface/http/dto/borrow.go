package dto

import (
	"time"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

const dateLayout = "2006-01-02"

// CreateSlipRequest 开借阅单
// bookIds 可以重复，每个ID借一册
type CreateSlipRequest struct {
	ReaderID uint   `json:"readerId" binding:"required" example:"1"`
	BookIDs  []uint `json:"bookIds" binding:"required,min=1,dive,required" example:"1,2"`
	Note     string `json:"note" binding:"max=500" example:"期末复习"`
}

// UpdateSlipRequest 修改借阅单
// 只有 bookIds 必填；readerId、note 不传则保持原值
// borrowDate 默认今天，dueDate 默认借出日 + 借期，格式 yyyy-MM-dd
type UpdateSlipRequest struct {
	ReaderID   *uint   `json:"readerId" binding:"omitempty,min=1" example:"1"`
	BookIDs    []uint  `json:"bookIds" binding:"required,min=1,dive,required" example:"1,3"`
	Note       *string `json:"note" binding:"omitempty,max=500"`
	BorrowDate *string `json:"borrowDate" example:"2025-03-01"`
	DueDate    *string `json:"dueDate" example:"2025-03-15"`
}

// Dates 按本地时区解析借出日与到期日，未提供的返回 nil
func (r UpdateSlipRequest) Dates() (borrowDate, dueDate *time.Time, err error) {
	if borrowDate, err = parseDate(r.BorrowDate, "borrowDate"); err != nil {
		return nil, nil, err
	}
	if dueDate, err = parseDate(r.DueDate, "dueDate"); err != nil {
		return nil, nil, err
	}
	return borrowDate, dueDate, nil
}

func parseDate(value *string, field string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, *value, time.Local)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidDate, field+" 格式应为 yyyy-MM-dd")
	}
	return &t, nil
}

// DeleteUserSlipsResponse 批量删除结果
type DeleteUserSlipsResponse struct {
	Deleted int `json:"deleted" example:"2"`
}
