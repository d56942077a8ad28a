package borrow

import (
	"time"
)

// CreatedAtFilter 按创建时间查询的条件
// Exact 非空时精确匹配；否则查询 [From, To] 整天
type CreatedAtFilter struct {
	Exact *time.Time
	From  time.Time
	To    time.Time
}

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

const dateLayout = "2006-01-02"

// ParseCreatedAt 解析创建时间查询参数
//
//	"2025-12-02T14:03:21.123456" → 精确匹配该时刻
//	"2025-12-02"                 → 当天 00:00:00 ~ 23:59:59.999999
//	"2025-12-02 14:00"           → 取前10位按日期处理
//
// 无法解析返回 ErrInvalidCreatedAt
func ParseCreatedAt(input string, loc *time.Location) (CreatedAtFilter, error) {
	if loc == nil {
		loc = time.Local
	}

	if len(input) > len(dateLayout) {
		for _, layout := range dateTimeLayouts {
			if t, err := time.ParseInLocation(layout, input, loc); err == nil {
				t = t.In(loc)
				return CreatedAtFilter{Exact: &t}, nil
			}
		}
	}

	if len(input) < len(dateLayout) {
		return CreatedAtFilter{}, ErrInvalidCreatedAt
	}
	day, err := time.ParseInLocation(dateLayout, input[:len(dateLayout)], loc)
	if err != nil {
		return CreatedAtFilter{}, ErrInvalidCreatedAt
	}

	return CreatedAtFilter{
		From: day,
		To:   day.AddDate(0, 0, 1).Add(-time.Microsecond),
	}, nil
}
