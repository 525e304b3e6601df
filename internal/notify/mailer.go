package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

// Mailer 消费 Kafka 通知事件并投递邮件。
// 真实 SMTP 在本服务范围之外，这里格式化后记录投递日志。
type Mailer struct {
	r *kafka.Reader
}

func NewMailer(brokers []string, topic, groupID string) *Mailer {
	return &Mailer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
	}
}

func (m *Mailer) Close() error { return m.r.Close() }

func (m *Mailer) Run(ctx context.Context) {
	for {
		msg, err := m.r.ReadMessage(ctx)
		if err != nil {
			return // ctx cancel / 连接断开等
		}

		var ev Event
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			log.Printf("mailer unmarshal: %v", err)
			continue
		}
		if err := ev.Validate(); err != nil {
			log.Printf("mailer drop event: %v", err)
			continue
		}

		log.Printf("mailer send: %s", renderMail(ev))
	}
}

// renderMail 将事件渲染成一行可读的投递摘要。
func renderMail(ev Event) string {
	switch ev.Kind {
	case KindOrderPlaced:
		return fmt.Sprintf("to=%s subject=订单确认 %s order_no=%s items=%d total_cents=%d",
			ev.RecipientEmail, ev.RecipientName, ev.OrderNo, ev.ItemCount, ev.TotalCents)
	case KindStatusChanged:
		s := fmt.Sprintf("to=%s subject=订单状态更新 order_no=%s status=%s",
			ev.RecipientEmail, ev.OrderNo, ev.Status)
		if ev.TrackingNumber != "" {
			s += fmt.Sprintf(" tracking=%s eta_days=%d", ev.TrackingNumber, ev.EtaDays)
		}
		if ev.Comment != "" {
			s += fmt.Sprintf(" comment=%q", ev.Comment)
		}
		return s
	case KindLowStock:
		return fmt.Sprintf("to=仓储组 subject=低库存告警 part=%s title=%q available=%d",
			ev.PartNumber, ev.PartTitle, ev.Available)
	default:
		return fmt.Sprintf("unknown kind=%s event_id=%s", ev.Kind, ev.EventID)
	}
}
