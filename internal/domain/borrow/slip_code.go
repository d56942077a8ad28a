package borrow

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateSlipCode 生成借阅单号
// 格式: SLIP- + UUID前8位(大写十六进制)，如 SLIP-3F2A9C1B
// 生成时不查重，唯一性由 slip_code 唯一索引保证
func GenerateSlipCode() string {
	return "SLIP-" + strings.ToUpper(uuid.NewString()[:8])
}
