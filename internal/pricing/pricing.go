package pricing

import "math"

// Line 一条已解析的订单行：下单时刻的单价快照与数量。
type Line struct {
	PartID         uint
	Qty            int
	UnitPriceCents int64
}

// Quote 定价结果。金额单位为分。
type Quote struct {
	SubtotalCents   int64
	ShippingCents   int64 // 目前恒为 0
	TotalCents      int64
	DiscountPercent float64
	Enterprise      bool // 是否实际应用了企业折扣
}

// LineTotalCents 单行小计。
func LineTotalCents(l Line) int64 {
	return l.UnitPriceCents * int64(l.Qty)
}

// Calculate 汇总各行小计并按企业折扣计算应付总额。
// 折扣金额 = round(subtotal * percent / 100)，四舍五入到分；
// percent <= 0 视为无折扣，total = subtotal。
func Calculate(lines []Line, discountPercent float64) Quote {
	q := Quote{DiscountPercent: discountPercent}
	for _, l := range lines {
		q.SubtotalCents += LineTotalCents(l)
	}

	q.TotalCents = q.SubtotalCents
	if discountPercent > 0 {
		discount := int64(math.Round(float64(q.SubtotalCents) * discountPercent / 100))
		q.TotalCents = q.SubtotalCents - discount
		q.Enterprise = true
	}
	return q
}
