package notify

import (
	"context"
	"log"
	"time"

	"parts_store/internal/model"
	rediskey "parts_store/pkg/redis"

	"github.com/google/uuid"
	rd "github.com/redis/go-redis/v9"
)

// lowStockMarkTTL 低库存告警的静默窗口：窗口内同一零件只发一封。
const lowStockMarkTTL = 6 * time.Hour

// StreamNotifier 把通知事件写入 Redis Stream outbox，由 Relay 异步转 Kafka。
// 所有方法吞掉自身错误：XAdd 失败只打日志。
type StreamNotifier struct {
	rdb    *rd.Client
	stream string
}

func NewStreamNotifier(rdb *rd.Client, stream string) *StreamNotifier {
	return &StreamNotifier{rdb: rdb, stream: stream}
}

func (n *StreamNotifier) OrderPlaced(ctx context.Context, order *model.OrderHeader, items []model.OrderItem, rcpt Recipient) {
	n.emit(ctx, Event{
		EventID:        uuid.NewString(),
		Kind:           KindOrderPlaced,
		RecipientEmail: rcpt.Email,
		RecipientName:  rcpt.Name,
		OrderNo:        order.OrderNo,
		TotalCents:     order.TotalCents,
		ItemCount:      len(items),
	})
}

func (n *StreamNotifier) StatusChanged(ctx context.Context, order *model.OrderHeader, entry *model.OrderStatusHistory, rcpt Recipient) {
	ev := Event{
		EventID:        uuid.NewString(),
		Kind:           KindStatusChanged,
		RecipientEmail: rcpt.Email,
		RecipientName:  rcpt.Name,
		OrderNo:        order.OrderNo,
		Status:         entry.Status,
		Comment:        entry.Comment,
		TrackingNumber: entry.TrackingNumber,
	}
	if entry.EtaDays != nil {
		ev.EtaDays = *entry.EtaDays
	}
	n.emit(ctx, ev)
}

func (n *StreamNotifier) LowStock(ctx context.Context, part *model.Part) {
	// TTL 去重：避免连续扣减对同一零件反复告警。
	first, err := rediskey.MarkLowStockOnce(ctx, n.rdb, part.ID, lowStockMarkTTL)
	if err != nil {
		log.Printf("notify low stock mark part=%d: %v", part.ID, err)
		return
	}
	if !first {
		return
	}
	n.emit(ctx, Event{
		EventID:    uuid.NewString(),
		Kind:       KindLowStock,
		PartNumber: part.PartNumber,
		PartTitle:  part.Title,
		Available:  part.AvailableQuantity(),
	})
}

func (n *StreamNotifier) emit(ctx context.Context, ev Event) {
	values, err := ev.StreamValues()
	if err != nil {
		log.Printf("notify marshal kind=%s: %v", ev.Kind, err)
		return
	}
	if err := n.rdb.XAdd(ctx, &rd.XAddArgs{Stream: n.stream, Values: values}).Err(); err != nil {
		log.Printf("notify enqueue kind=%s: %v", ev.Kind, err)
	}
}
