package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"parts_store/internal/apperr"
	"parts_store/internal/inventory"
	"parts_store/internal/model"
	"parts_store/internal/notify"
	"parts_store/internal/pricing"
	"parts_store/pkg/keylock"

	"gorm.io/gorm"
)

// LineInput 下单请求中的一行：零件 + 数量。
type LineInput struct {
	PartID uint `json:"part_id" binding:"required,min=1"`
	Qty    int  `json:"qty" binding:"required,min=1"`
}

// StatusChange 状态推进请求。TrackingNumber / EtaDays 仅对 SHIPPED 有意义。
type StatusChange struct {
	Status          string
	Comment         string
	ChangedByUserID int64
	TrackingNumber  string
	EtaDays         *int
}

// Filter 订单列表的可选过滤条件。Status 按最新一条状态流水匹配。
type Filter struct {
	Status string
	UserID int64
	From   *time.Time
	To     *time.Time
}

// OrderWithStatus 列表行：订单头 + 最新状态（便于后台管理展示）。
type OrderWithStatus struct {
	Order        model.OrderHeader         `json:"order"`
	LatestStatus *model.OrderStatusHistory `json:"latest_status"`
}

// Service 订单编排：下单（预留→定价→落单→扣减→初始状态）与状态推进。
type Service struct {
	db             *gorm.DB
	ledger         *inventory.Ledger
	notifier       notify.Notifier
	locks          *keylock.KeyedMutex // 同一订单的状态推进串行化
	defaultEtaDays int
}

func NewService(db *gorm.DB, ledger *inventory.Ledger, notifier notify.Notifier, defaultEtaDays int) *Service {
	if defaultEtaDays <= 0 {
		defaultEtaDays = 5
	}
	return &Service{
		db:             db,
		ledger:         ledger,
		notifier:       notifier,
		locks:          keylock.New(),
		defaultEtaDays: defaultEtaDays,
	}
}

// PlaceOrder 下单主流程：
//  1. 预检所有行的库存（只读，不占位）
//  2. 逐行预留；任何一行失败则释放本次已预留的行并拒绝
//  3. 按零件实时价与企业折扣计算金额
//  4. 持久化订单头 → 订单行 → 逐行确认扣减 → 写入 INITIATED 状态
//
// 订单头落库之后不再有补偿（见 DESIGN.md）。
func (s *Service) PlaceOrder(ctx context.Context, userID int64, lines []LineInput) (*model.OrderHeader, error) {
	if len(lines) == 0 {
		return nil, apperr.InvalidArgumentf("订单至少包含一个商品")
	}

	// 1. 预检。并发下单仍可能在预留时落败，这里只为尽早给出明确报错。
	for _, line := range lines {
		part, err := s.getPart(ctx, line.PartID)
		if err != nil {
			return nil, err
		}
		ok, err := s.ledger.CheckAvailability(ctx, line.PartID, line.Qty)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.InvalidArgumentf("库存不足: %s (可售: %d, 需要: %d)",
				part.Title, part.AvailableQuantity(), line.Qty)
		}
	}

	// 2. 按序预留；失败则释放已预留的行（尽力而为，释放错误吞掉）。
	reserved := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		ok, err := s.ledger.ReserveStock(ctx, line.PartID, line.Qty)
		if err != nil || !ok {
			s.rollbackReservations(ctx, reserved)
			if err != nil {
				return nil, err
			}
			return nil, apperr.InvalidArgumentf("无法预留库存: 零件 %d", line.PartID)
		}
		reserved = append(reserved, line)
	}

	// 3. 定价：零件实时价快照 + 企业折扣（档案缺失视为 0）。
	priceLines := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		part, err := s.getPart(ctx, line.PartID)
		if err != nil {
			s.rollbackReservations(ctx, reserved)
			return nil, err
		}
		priceLines = append(priceLines, pricing.Line{
			PartID:         line.PartID,
			Qty:            line.Qty,
			UnitPriceCents: part.PriceCents,
		})
	}
	quote := pricing.Calculate(priceLines, s.enterpriseDiscount(ctx, userID))

	orderType := model.OrderTypeWeb
	if quote.Enterprise {
		orderType = model.OrderTypeEnterpriseAPI
	}

	// 4. 落单。头落库后不再回滚，行写入与扣减视为正常不失败路径。
	header := model.OrderHeader{
		OrderNo:       GenerateOrderNumber(),
		UserID:        userID,
		OrderType:     orderType,
		SubtotalCents: quote.SubtotalCents,
		ShippingCents: quote.ShippingCents,
		TotalCents:    quote.TotalCents,
		Currency:      "USD",
	}
	if err := s.db.WithContext(ctx).Create(&header).Error; err != nil {
		s.rollbackReservations(ctx, reserved)
		return nil, fmt.Errorf("create order header: %w", err)
	}

	for _, pl := range priceLines {
		item := model.OrderItem{
			OrderID:        header.ID,
			PartID:         pl.PartID,
			Qty:            pl.Qty,
			UnitPriceCents: pl.UnitPriceCents,
			LineTotalCents: pricing.LineTotalCents(pl),
		}
		if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, fmt.Errorf("create order item part=%d: %w", pl.PartID, err)
		}
		if err := s.ledger.ConfirmSale(ctx, pl.PartID, pl.Qty); err != nil {
			return nil, fmt.Errorf("confirm sale part=%d: %w", pl.PartID, err)
		}
	}

	initial := model.OrderStatusHistory{
		OrderID:         header.ID,
		Status:          StatusInitiated,
		Comment:         "订单创建",
		ChangedByUserID: userID,
	}
	if err := s.db.WithContext(ctx).Create(&initial).Error; err != nil {
		return nil, fmt.Errorf("create initial status: %w", err)
	}

	return &header, nil
}

// rollbackReservations 释放本次调用已成功预留的行。只用于回滚路径，
// 释放失败打日志吞掉——调用方要上报的是导致回滚的原始错误。
func (s *Service) rollbackReservations(ctx context.Context, reserved []LineInput) {
	for _, line := range reserved {
		if err := s.ledger.ReleaseStock(ctx, line.PartID, line.Qty); err != nil {
			log.Printf("rollback release part=%d qty=%d: %v", line.PartID, line.Qty, err)
		}
	}
}

// UpdateStatus 推进订单状态。同一订单的并发推进按订单 ID 串行，
// 避免两个请求读到同一"当前状态"后双双通过校验。
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, change StatusChange) (*model.OrderStatusHistory, error) {
	unlock := s.locks.Lock(fmt.Sprintf("order:%d", orderID))
	defer unlock()

	current, err := s.LatestStatus(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(current.Status, change.Status); err != nil {
		return nil, err
	}

	entry := model.OrderStatusHistory{
		OrderID:         orderID,
		Status:          Canonical(change.Status),
		Comment:         change.Comment,
		ChangedByUserID: change.ChangedByUserID,
	}
	if entry.Status == StatusShipped {
		entry.TrackingNumber = change.TrackingNumber
		// 未指定或非正的 ETA 一律落默认值。
		eta := s.defaultEtaDays
		if change.EtaDays != nil && *change.EtaDays > 0 {
			eta = *change.EtaDays
		}
		entry.EtaDays = &eta
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("append status history: %w", err)
	}

	// 通知买家（尽力而为，不影响本次状态变更）。
	if header, err := s.GetOrder(ctx, orderID); err == nil {
		if rcpt, ok := s.resolveRecipient(ctx, header.UserID); ok {
			s.notifier.StatusChanged(ctx, header, &entry, rcpt)
		}
	}

	return &entry, nil
}

// GetOrder 按内部 ID 查订单头。
func (s *Service) GetOrder(ctx context.Context, orderID uint) (*model.OrderHeader, error) {
	var header model.OrderHeader
	if err := s.db.WithContext(ctx).First(&header, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("订单不存在: %d", orderID)
		}
		return nil, err
	}
	return &header, nil
}

// GetOrderItems 查订单行。
func (s *Service) GetOrderItems(ctx context.Context, orderID uint) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&items).Error
	return items, err
}

// History 查订单状态流水（按写入顺序）。
func (s *Service) History(ctx context.Context, orderID uint) ([]model.OrderStatusHistory, error) {
	var history []model.OrderStatusHistory
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&history).Error
	return history, err
}

// LatestStatus 订单当前状态 = 最新一条状态流水。无流水视为订单不存在。
func (s *Service) LatestStatus(ctx context.Context, orderID uint) (*model.OrderStatusHistory, error) {
	var entry model.OrderStatusHistory
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("订单不存在: %d", orderID)
		}
		return nil, err
	}
	return &entry, nil
}

// ListByUser 某用户的全部订单，新单在前。
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]model.OrderHeader, error) {
	var orders []model.OrderHeader
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&orders).Error
	return orders, err
}

// ListFiltered 按条件列表订单并附带最新状态。
// 状态过滤匹配的是每个订单"最新一条"流水，而非任意历史状态。
func (s *Service) ListFiltered(ctx context.Context, f Filter) ([]OrderWithStatus, error) {
	q := s.db.WithContext(ctx).Model(&model.OrderHeader{})
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	if f.Status != "" {
		latest := s.db.Model(&model.OrderStatusHistory{}).Select("MAX(id)").Group("order_id")
		matching := s.db.Model(&model.OrderStatusHistory{}).Select("order_id").
			Where("status = ?", Canonical(f.Status)).
			Where("id IN (?)", latest)
		q = q.Where("id IN (?)", matching)
	}

	var orders []model.OrderHeader
	if err := q.Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}

	out := make([]OrderWithStatus, 0, len(orders))
	for _, o := range orders {
		row := OrderWithStatus{Order: o}
		if latest, err := s.LatestStatus(ctx, o.ID); err == nil {
			row.LatestStatus = latest
		}
		out = append(out, row)
	}
	return out, nil
}

// NotifyOrderPlaced 下单确认通知，作为下单之外的可选独立步骤由请求层触发。
func (s *Service) NotifyOrderPlaced(ctx context.Context, header *model.OrderHeader) {
	rcpt, ok := s.resolveRecipient(ctx, header.UserID)
	if !ok {
		return
	}
	items, err := s.GetOrderItems(ctx, header.ID)
	if err != nil {
		log.Printf("notify order placed load items order=%d: %v", header.ID, err)
		return
	}
	s.notifier.OrderPlaced(ctx, header, items, rcpt)
}

func (s *Service) getPart(ctx context.Context, partID uint) (*model.Part, error) {
	var part model.Part
	if err := s.db.WithContext(ctx).First(&part, partID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("零件不存在: %d", partID)
		}
		return nil, err
	}
	return &part, nil
}

// enterpriseDiscount 查询用户企业折扣；无档案或折扣非法时按 0 处理。
func (s *Service) enterpriseDiscount(ctx context.Context, userID int64) float64 {
	var profile model.EnterpriseProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("enterprise profile lookup user=%d: %v", userID, err)
		}
		return 0
	}
	if profile.DiscountPercent <= 0 || profile.DiscountPercent >= 100 {
		return 0
	}
	return profile.DiscountPercent
}

// resolveRecipient 解析收件人；用户缺失或无邮箱时跳过通知。
func (s *Service) resolveRecipient(ctx context.Context, userID int64) (notify.Recipient, bool) {
	var user model.AppUser
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("recipient lookup user=%d: %v", userID, err)
		}
		return notify.Recipient{}, false
	}
	if user.Email == "" {
		return notify.Recipient{}, false
	}
	return notify.Recipient{Email: user.Email, Name: user.FullName}, true
}
