package borrow

import (
	"context"
	"time"
)

// 借阅事件类型，同时作为 MQ 路由键
const (
	EventSlipCreated    = "borrow.slip.created"
	EventSlipUpdated    = "borrow.slip.updated"
	EventDetailReturned = "borrow.detail.returned"
	EventSlipDeleted    = "borrow.slip.deleted"
)

// Event 借阅领域事件，在事务提交后发布
type Event struct {
	Type       string    `json:"type"`
	SlipID     uint      `json:"slip_id"`
	SlipCode   string    `json:"slip_code,omitempty"`
	ReaderID   uint      `json:"reader_id,omitempty"`
	DetailID   uint      `json:"detail_id,omitempty"`
	BookIDs    []uint    `json:"book_ids,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher 事件发布
// 发布失败不影响已提交的借还操作，实现方自行记录日志，不返回错误
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}
