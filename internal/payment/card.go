package payment

import (
	"regexp"
	"time"

	"parts_store/internal/apperr"
)

// Card 支付卡数据，仅做格式校验（模拟支付）。
// 不落库、不外发，校验完即丢弃。
type Card struct {
	CardNumber  string `json:"card_number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
}

var nonDigits = regexp.MustCompile(`\D`)

// Validate 校验卡号与有效期格式：
//   - 去掉分隔符后须为 13-19 位纯数字
//   - 有效期月 01-12，两位年份按 2000 年代解释
//   - 有效期不得早于当前月
func (c Card) Validate() error {
	return c.validateAt(time.Now())
}

func (c Card) validateAt(now time.Time) error {
	if c.CardNumber == "" {
		return apperr.InvalidArgumentf("卡号必填")
	}
	digits := nonDigits.ReplaceAllString(c.CardNumber, "")
	if len(digits) < 13 || len(digits) > 19 {
		return apperr.InvalidArgumentf("卡号须为 13-19 位数字")
	}

	if c.ExpiryMonth == 0 || c.ExpiryYear == 0 {
		return apperr.InvalidArgumentf("有效期（月和年）必填")
	}
	if c.ExpiryMonth < 1 || c.ExpiryMonth > 12 {
		return apperr.InvalidArgumentf("有效期月份须为 01-12")
	}
	year := c.ExpiryYear
	if year < 100 {
		year += 2000 // 25 -> 2025
	}

	// 按月粒度比较：当月到期仍然有效。
	if year < now.Year() || (year == now.Year() && c.ExpiryMonth < int(now.Month())) {
		return apperr.InvalidArgumentf("卡已过期")
	}
	return nil
}
