package notify

import (
	"encoding/json"
	"fmt"
)

// 事件类型。
const (
	KindOrderPlaced   = "order_placed"
	KindStatusChanged = "status_changed"
	KindLowStock      = "low_stock"
)

// Event 是通知管道内流转的统一事件：
// API 侧 XAdd 入 Redis Stream，Relay 转 Kafka，Mailer 消费后出信。
type Event struct {
	EventID string `json:"event_id"`
	Kind    string `json:"kind"`

	RecipientEmail string `json:"recipient_email,omitempty"`
	RecipientName  string `json:"recipient_name,omitempty"`

	OrderNo        string `json:"order_no,omitempty"`
	TotalCents     int64  `json:"total_cents,omitempty"`
	ItemCount      int    `json:"item_count,omitempty"`
	Status         string `json:"status,omitempty"`
	Comment        string `json:"comment,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	EtaDays        int    `json:"eta_days,omitempty"`

	PartNumber string `json:"part_number,omitempty"`
	PartTitle  string `json:"part_title,omitempty"`
	Available  int    `json:"available,omitempty"`
}

// Validate 做最小字段校验，防止消费者处理脏消息。
func (e Event) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	switch e.Kind {
	case KindOrderPlaced, KindStatusChanged:
		if e.RecipientEmail == "" {
			return fmt.Errorf("recipient_email is required for %s", e.Kind)
		}
		if e.OrderNo == "" {
			return fmt.Errorf("order_no is required for %s", e.Kind)
		}
		if e.Kind == KindStatusChanged && e.Status == "" {
			return fmt.Errorf("status is required for %s", e.Kind)
		}
	case KindLowStock:
		if e.PartNumber == "" {
			return fmt.Errorf("part_number is required for %s", e.Kind)
		}
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return nil
}

// StreamValues 序列化为 Redis Stream 的扁平字段。
func (e Event) StreamValues() (map[string]interface{}, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"event_id": e.EventID,
		"kind":     e.Kind,
		"payload":  string(b),
	}, nil
}

// EventFromStream 从 Stream 字段还原事件并校验。
func EventFromStream(values map[string]interface{}) (Event, error) {
	raw, err := getStreamString(values, "payload")
	if err != nil {
		return Event{}, err
	}
	var e Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return Event{}, fmt.Errorf("invalid payload: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

func getStreamString(values map[string]interface{}, key string) (string, error) {
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("missing field %s", key)
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	default:
		return "", fmt.Errorf("unsupported field type %s: %T", key, v)
	}
}
