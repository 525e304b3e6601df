package notify

import (
	"context"
	"log"

	"parts_store/internal/model"
)

// Recipient 通知收件人，由调用方在下单 / 改状态时解析好。
type Recipient struct {
	Email string
	Name  string
}

// Notifier 是核心消费的通知能力。
// 约定：实现永远不向调用方返回错误——发送失败自行记录日志，
// 绝不允许通知故障影响下单或状态变更事务。
type Notifier interface {
	OrderPlaced(ctx context.Context, order *model.OrderHeader, items []model.OrderItem, rcpt Recipient)
	StatusChanged(ctx context.Context, order *model.OrderHeader, entry *model.OrderStatusHistory, rcpt Recipient)
	LowStock(ctx context.Context, part *model.Part)
}

// LogNotifier 降级实现：Redis / Kafka 不可用时仅打日志。
type LogNotifier struct{}

func (LogNotifier) OrderPlaced(_ context.Context, order *model.OrderHeader, items []model.OrderItem, rcpt Recipient) {
	log.Printf("notify(log) order placed: order_no=%s items=%d to=%s", order.OrderNo, len(items), rcpt.Email)
}

func (LogNotifier) StatusChanged(_ context.Context, order *model.OrderHeader, entry *model.OrderStatusHistory, rcpt Recipient) {
	log.Printf("notify(log) status changed: order_no=%s status=%s to=%s", order.OrderNo, entry.Status, rcpt.Email)
}

func (LogNotifier) LowStock(_ context.Context, part *model.Part) {
	log.Printf("notify(log) low stock: part=%s available=%d threshold=%d",
		part.PartNumber, part.AvailableQuantity(), part.LowStockThreshold)
}
