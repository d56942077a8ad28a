package borrow

import (
	"strings"
	"time"
)

// 借阅状态
//
// 明细状态决定库存：BORROWED 占用一册，RETURNED 不占用。
// 借阅单头上的 Status 只在创建时写入 BORROWED，之后不随明细变化，仅供展示。
const (
	StatusBorrowed = "BORROWED"
	StatusReturned = "RETURNED"
)

// Slip 借阅单（聚合根），独占其明细
type Slip struct {
	ID        uint
	SlipCode  string // SLIP-XXXXXXXX
	ReaderID  uint
	Status    string
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Details   []*Detail
}

// Detail 借阅明细，一条对应借出的一册书
type Detail struct {
	ID         uint
	SlipID     uint
	BookID     uint
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	Status     string
	Note       string
}

// NewSlip 创建借阅单头，createdAt 由服务端指定
func NewSlip(code string, readerID uint, note string, now time.Time) *Slip {
	return &Slip{
		SlipCode:  code,
		ReaderID:  readerID,
		Status:    StatusBorrowed,
		Note:      note,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewDetail 今天借出，loanDays 天后到期
func NewDetail(bookID uint, today time.Time, loanDays int) *Detail {
	return NewDetailBetween(bookID, today, DueDate(today, loanDays))
}

// NewDetailBetween 指定借出日与到期日，修改借阅单时新增的明细使用
func NewDetailBetween(bookID uint, borrowDate, dueDate time.Time) *Detail {
	return &Detail{
		BookID:     bookID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
		Status:     StatusBorrowed,
	}
}

// DueDate 借出日 + loanDays
func DueDate(borrowDate time.Time, loanDays int) time.Time {
	return borrowDate.AddDate(0, 0, loanDays)
}

// IsReturned 不区分大小写
func (d *Detail) IsReturned() bool {
	return strings.EqualFold(d.Status, StatusReturned)
}

// HoldsCopy 明细是否仍占用一册库存（严格匹配 BORROWED）
func (d *Detail) HoldsCopy() bool {
	return d.Status == StatusBorrowed
}

// Return 归还，重复归还返回 ErrAlreadyReturned
func (d *Detail) Return(today time.Time) error {
	if d.IsReturned() {
		return ErrAlreadyReturned
	}
	d.ReturnDate = &today
	d.Status = StatusReturned
	return nil
}

// Reschedule 覆盖借出日与到期日，不论是否已归还
func (d *Detail) Reschedule(borrowDate, dueDate time.Time) {
	d.BorrowDate = borrowDate
	d.DueDate = dueDate
}

// BookIDs 明细引用的图书ID，按明细顺序，可能重复
func (s *Slip) BookIDs() []uint {
	ids := make([]uint, 0, len(s.Details))
	for _, d := range s.Details {
		ids = append(ids, d.BookID)
	}
	return ids
}

// Reassign 更换读者与备注，nil 表示保持原值
func (s *Slip) Reassign(readerID *uint, note *string, now time.Time) {
	if readerID != nil {
		s.ReaderID = *readerID
	}
	if note != nil {
		s.Note = *note
	}
	s.UpdatedAt = now
}

// Today 取 now 所在时区的零点
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// Reconciliation 借阅单换书时新旧图书集合的差异
type Reconciliation struct {
	Removed  []*Detail // 图书不在新集合中，明细需删除
	Added    []uint    // 新集合中原来没有的图书，去重后按请求顺序
	Retained []*Detail // 图书仍在新集合中
}

// Reconcile 按集合语义比较现有明细与请求的图书ID
func Reconcile(current []*Detail, requested []uint) Reconciliation {
	wanted := make(map[uint]struct{}, len(requested))
	for _, id := range requested {
		wanted[id] = struct{}{}
	}

	var r Reconciliation
	have := make(map[uint]struct{}, len(current))
	for _, d := range current {
		have[d.BookID] = struct{}{}
		if _, ok := wanted[d.BookID]; ok {
			r.Retained = append(r.Retained, d)
		} else {
			r.Removed = append(r.Removed, d)
		}
	}

	for _, id := range requested {
		if _, ok := have[id]; ok {
			continue
		}
		have[id] = struct{}{}
		r.Added = append(r.Added, id)
	}
	return r
}
