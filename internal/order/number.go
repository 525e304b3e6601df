package order

import (
	"fmt"
	"time"
)

// GenerateOrderNumber 生成对外可见的订单号：ORD-毫秒时间戳。
// 预期吞吐下时间戳不撞号；极端碰撞由 orders.order_no 唯一索引兜底，
// 表现为订单持久化失败。
func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%d", time.Now().UnixMilli())
}
