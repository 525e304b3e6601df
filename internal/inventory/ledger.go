package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"

	"parts_store/internal/apperr"
	"parts_store/internal/model"
	"parts_store/internal/notify"
	"parts_store/pkg/keylock"

	"gorm.io/gorm"
)

// Cache 是可售数量的读缓存。账本写穿缓存，失败仅记日志。
type Cache interface {
	SetAvailable(ctx context.Context, partID uint, available int) error
}

// Ledger 是零件库存账本，持有 stock / reserved 两个计数的唯一修改入口。
// 每个零件的修改都在按零件 ID 的互斥锁内执行，保证
// reserve 的"检查-递增"相对同零件的其他操作原子。
// 全程维持不变式 0 <= reserved <= stock。
type Ledger struct {
	db       *gorm.DB
	locks    *keylock.KeyedMutex
	notifier notify.Notifier
	cache    Cache // 可为 nil（测试 / 无 Redis 场景）
}

func NewLedger(db *gorm.DB, notifier notify.Notifier, cache Cache) *Ledger {
	return &Ledger{
		db:       db,
		locks:    keylock.New(),
		notifier: notifier,
		cache:    cache,
	}
}

func partKey(partID uint) string { return fmt.Sprintf("part:%d", partID) }

// CheckAvailability 检查可售数量是否满足 qty。
// 只读预检：不加锁不占位，真正的准入控制在 ReserveStock。
func (l *Ledger) CheckAvailability(ctx context.Context, partID uint, qty int) (bool, error) {
	part, err := l.loadPart(ctx, l.db, partID)
	if err != nil {
		return false, err
	}
	return qty > 0 && part.AvailableQuantity() >= qty, nil
}

// ReserveStock 预留库存：可售数量足够时 reserved += qty 并返回 true，
// 不足时不做任何修改返回 false。这是防超卖的唯一准入闸门。
func (l *Ledger) ReserveStock(ctx context.Context, partID uint, qty int) (bool, error) {
	if qty <= 0 {
		return false, apperr.InvalidArgumentf("预留数量必须大于 0: %d", qty)
	}

	unlock := l.locks.Lock(partKey(partID))
	defer unlock()

	var reserved bool
	var snapshot model.Part
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		part, err := l.loadPart(ctx, tx, partID)
		if err != nil {
			return err
		}
		if part.AvailableQuantity() < qty {
			return nil // reserved 保持 false，无修改
		}
		part.ReservedQuantity += qty
		if err := tx.Model(&model.Part{}).Where("id = ?", partID).
			Update("reserved_quantity", part.ReservedQuantity).Error; err != nil {
			return err
		}
		reserved = true
		snapshot = *part
		return nil
	})
	if err != nil {
		return false, err
	}
	if reserved {
		l.refreshCache(ctx, &snapshot)
	}
	return reserved, nil
}

// ConfirmSale 把预留转为实际扣减：stock 和 reserved 各减 qty。
// 正确使用下不会击穿 0，仍然保底钳位。
// 扣减后若可售数量落到阈值内，向通知方发低库存告警（尽力而为）。
func (l *Ledger) ConfirmSale(ctx context.Context, partID uint, qty int) error {
	if qty <= 0 {
		return apperr.InvalidArgumentf("确认数量必须大于 0: %d", qty)
	}

	unlock := l.locks.Lock(partKey(partID))
	defer unlock()

	var snapshot model.Part
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		part, err := l.loadPart(ctx, tx, partID)
		if err != nil {
			return err
		}
		part.StockQuantity = clampZero(part.StockQuantity - qty)
		part.ReservedQuantity = clampZero(part.ReservedQuantity - qty)
		if err := tx.Model(&model.Part{}).Where("id = ?", partID).Updates(map[string]any{
			"stock_quantity":    part.StockQuantity,
			"reserved_quantity": part.ReservedQuantity,
		}).Error; err != nil {
			return err
		}
		snapshot = *part
		return nil
	})
	if err != nil {
		return err
	}

	l.refreshCache(ctx, &snapshot)
	l.notifyIfLowStock(ctx, &snapshot)
	return nil
}

// ReleaseStock 释放未兑现的预留（回滚路径），reserved -= qty，钳位到 0。
func (l *Ledger) ReleaseStock(ctx context.Context, partID uint, qty int) error {
	if qty <= 0 {
		return apperr.InvalidArgumentf("释放数量必须大于 0: %d", qty)
	}

	unlock := l.locks.Lock(partKey(partID))
	defer unlock()

	var snapshot model.Part
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		part, err := l.loadPart(ctx, tx, partID)
		if err != nil {
			return err
		}
		part.ReservedQuantity = clampZero(part.ReservedQuantity - qty)
		if err := tx.Model(&model.Part{}).Where("id = ?", partID).
			Update("reserved_quantity", part.ReservedQuantity).Error; err != nil {
			return err
		}
		snapshot = *part
		return nil
	})
	if err != nil {
		return err
	}
	l.refreshCache(ctx, &snapshot)
	return nil
}

// AddStock 入库补货：stock += qty，并写一条 inventory_logs 流水。
func (l *Ledger) AddStock(ctx context.Context, partID uint, userID int64, qty int) (*model.Part, error) {
	if qty <= 0 {
		return nil, apperr.InvalidArgumentf("入库数量必须大于 0: %d", qty)
	}

	unlock := l.locks.Lock(partKey(partID))
	defer unlock()

	var snapshot model.Part
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		part, err := l.loadPart(ctx, tx, partID)
		if err != nil {
			return err
		}
		previous := part.StockQuantity
		part.StockQuantity = previous + qty
		if err := tx.Model(&model.Part{}).Where("id = ?", partID).
			Update("stock_quantity", part.StockQuantity).Error; err != nil {
			return err
		}
		entry := model.InventoryLog{
			PartID:           partID,
			UserID:           userID,
			QuantityAdded:    qty,
			PreviousQuantity: previous,
			NewQuantity:      part.StockQuantity,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		snapshot = *part
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.refreshCache(ctx, &snapshot)
	l.notifyIfLowStock(ctx, &snapshot)
	return &snapshot, nil
}

// SetInventory 管理员直接改写库存数量 / 低库存阈值。
// nil 或负值的字段保持原值不变；库存不得改到低于当前预留量。
func (l *Ledger) SetInventory(ctx context.Context, partID uint, stockQty, threshold *int) (*model.Part, error) {
	unlock := l.locks.Lock(partKey(partID))
	defer unlock()

	var snapshot model.Part
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		part, err := l.loadPart(ctx, tx, partID)
		if err != nil {
			return err
		}
		updates := map[string]any{}
		if stockQty != nil && *stockQty >= 0 {
			if *stockQty < part.ReservedQuantity {
				return apperr.InvalidArgumentf("库存不能低于已预留数量: 预留 %d, 目标 %d",
					part.ReservedQuantity, *stockQty)
			}
			part.StockQuantity = *stockQty
			updates["stock_quantity"] = *stockQty
		}
		if threshold != nil && *threshold >= 0 {
			part.LowStockThreshold = *threshold
			updates["low_stock_threshold"] = *threshold
		}
		if len(updates) > 0 {
			if err := tx.Model(&model.Part{}).Where("id = ?", partID).Updates(updates).Error; err != nil {
				return err
			}
		}
		snapshot = *part
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.refreshCache(ctx, &snapshot)
	l.notifyIfLowStock(ctx, &snapshot)
	return &snapshot, nil
}

// Availability 读取某零件当前可售数量（权威来源 DB），并顺带刷新缓存。
func (l *Ledger) Availability(ctx context.Context, partID uint) (int, error) {
	part, err := l.loadPart(ctx, l.db, partID)
	if err != nil {
		return 0, err
	}
	l.refreshCache(ctx, part)
	return part.AvailableQuantity(), nil
}

func (l *Ledger) loadPart(ctx context.Context, db *gorm.DB, partID uint) (*model.Part, error) {
	var part model.Part
	if err := db.WithContext(ctx).First(&part, partID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("零件不存在: %d", partID)
		}
		return nil, err
	}
	return &part, nil
}

func (l *Ledger) refreshCache(ctx context.Context, part *model.Part) {
	if l.cache == nil {
		return
	}
	if err := l.cache.SetAvailable(ctx, part.ID, part.AvailableQuantity()); err != nil {
		log.Printf("ledger cache refresh part=%d: %v", part.ID, err)
	}
}

func (l *Ledger) notifyIfLowStock(ctx context.Context, part *model.Part) {
	if part.LowStock() {
		l.notifier.LowStock(ctx, part)
	}
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
