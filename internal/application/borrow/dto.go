package borrow

import (
	"github.com/xiebiao/library/internal/domain/borrow"
)

const dateLayout = "2006-01-02"

// CreatedAtLayout 响应中 createdAt 的格式，可直接用于按时刻查询
const CreatedAtLayout = "2006-01-02T15:04:05.999999"

// SlipResponse 借阅单
type SlipResponse struct {
	ID        uint             `json:"id"`
	SlipCode  string           `json:"slipCode"`
	ReaderID  uint             `json:"readerId"`
	Status    string           `json:"status"`
	Note      string           `json:"note,omitempty"`
	CreatedAt string           `json:"createdAt"`
	Details   []DetailResponse `json:"details"`
}

// DetailResponse 借阅明细
type DetailResponse struct {
	ID           uint    `json:"id"`
	BorrowSlipID uint    `json:"borrowSlipId"`
	BookID       uint    `json:"bookId"`
	BorrowDate   string  `json:"borrowDate"`
	DueDate      string  `json:"dueDate"`
	ReturnDate   *string `json:"returnDate"`
	Status       string  `json:"status"`
	Note         string  `json:"note,omitempty"`
}

func toSlipResponse(s *borrow.Slip) *SlipResponse {
	resp := &SlipResponse{
		ID:        s.ID,
		SlipCode:  s.SlipCode,
		ReaderID:  s.ReaderID,
		Status:    s.Status,
		Note:      s.Note,
		CreatedAt: s.CreatedAt.Format(CreatedAtLayout),
		Details:   make([]DetailResponse, 0, len(s.Details)),
	}
	for _, d := range s.Details {
		resp.Details = append(resp.Details, *toDetailResponse(d))
	}
	return resp
}

func toSlipResponses(slips []*borrow.Slip) []*SlipResponse {
	out := make([]*SlipResponse, 0, len(slips))
	for _, s := range slips {
		out = append(out, toSlipResponse(s))
	}
	return out
}

func toDetailResponse(d *borrow.Detail) *DetailResponse {
	resp := &DetailResponse{
		ID:           d.ID,
		BorrowSlipID: d.SlipID,
		BookID:       d.BookID,
		BorrowDate:   d.BorrowDate.Format(dateLayout),
		DueDate:      d.DueDate.Format(dateLayout),
		Status:       d.Status,
		Note:         d.Note,
	}
	if d.ReturnDate != nil {
		s := d.ReturnDate.Format(dateLayout)
		resp.ReturnDate = &s
	}
	return resp
}
