package model

import (
	"time"
)

// Part 汽车零部件：目录信息 + 库存计数。
// StockQuantity / ReservedQuantity 只允许经由 inventory.Ledger 修改。
type Part struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PartNumber  string `gorm:"size:100;uniqueIndex;not null" json:"part_number"`
	Title       string `gorm:"size:500;not null" json:"title"`
	Description string `gorm:"size:2000" json:"description"`
	PriceCents  int64  `gorm:"not null" json:"price_cents"` // 单位：分
	Active      int    `gorm:"not null;default:1" json:"active"`

	// 不变式：0 <= ReservedQuantity <= StockQuantity
	StockQuantity     int `gorm:"not null;default:0" json:"stock_quantity"`
	ReservedQuantity  int `gorm:"not null;default:0" json:"reserved_quantity"`
	LowStockThreshold int `gorm:"not null;default:5" json:"low_stock_threshold"`
}

func (Part) TableName() string { return "parts" }

// AvailableQuantity 可售数量 = 库存 - 已预留。
func (p *Part) AvailableQuantity() int {
	return p.StockQuantity - p.ReservedQuantity
}

// LowStock 低库存：0 < 可售数量 <= 阈值。
func (p *Part) LowStock() bool {
	a := p.AvailableQuantity()
	return a > 0 && a <= p.LowStockThreshold
}

// InventoryLog 入库流水，记录每次补货的前后数量与操作人。
type InventoryLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	PartID           uint  `gorm:"not null;index" json:"part_id"`
	UserID           int64 `gorm:"not null" json:"user_id"`
	QuantityAdded    int   `gorm:"not null" json:"quantity_added"`
	PreviousQuantity int   `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int   `gorm:"not null" json:"new_quantity"`
}

func (InventoryLog) TableName() string { return "inventory_logs" }
