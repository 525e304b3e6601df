package model

import (
	"time"
)

// 订单类型：应用了企业折扣的订单标记为 ENTERPRISE_API，否则为 WEB。
const (
	OrderTypeWeb           = "WEB"
	OrderTypeEnterpriseAPI = "ENTERPRISE_API"
)

// OrderHeader 订单头。创建后不可变，当前状态以 order_status_history 最新一条为准。
type OrderHeader struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OrderNo       string `gorm:"size:64;uniqueIndex;not null" json:"order_no"`
	UserID        int64  `gorm:"not null;index" json:"user_id"`
	OrderType     string `gorm:"size:20;not null;default:WEB" json:"order_type"`
	SubtotalCents int64  `gorm:"not null" json:"subtotal_cents"` // 单位：分
	ShippingCents int64  `gorm:"not null;default:0" json:"shipping_cents"`
	TotalCents    int64  `gorm:"not null" json:"total_cents"`
	Currency      string `gorm:"size:3;not null;default:USD" json:"currency"`
}

func (OrderHeader) TableName() string { return "orders" }

// OrderItem 订单行。单价为下单时刻零件价格快照，之后不随目录变动。
type OrderItem struct {
	ID uint `gorm:"primarykey" json:"id"`

	OrderID        uint  `gorm:"not null;index" json:"order_id"`
	PartID         uint  `gorm:"not null;index" json:"part_id"`
	Qty            int   `gorm:"not null" json:"qty"`
	UnitPriceCents int64 `gorm:"not null" json:"unit_price_cents"`
	LineTotalCents int64 `gorm:"not null" json:"line_total_cents"`
}

func (OrderItem) TableName() string { return "order_items" }

// OrderStatusHistory 订单状态流水，只追加不修改。
// 仅 SHIPPED 状态携带 TrackingNumber / EtaDays。
type OrderStatusHistory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OrderID         uint   `gorm:"not null;index" json:"order_id"`
	Status          string `gorm:"size:30;not null" json:"status"`
	Comment         string `gorm:"size:500" json:"comment"`
	TrackingNumber  string `gorm:"size:100" json:"tracking_number"`
	EtaDays         *int   `json:"eta_days,omitempty"`
	ChangedByUserID int64  `json:"changed_by_user_id"`
}

func (OrderStatusHistory) TableName() string { return "order_status_history" }
