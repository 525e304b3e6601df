package redis

import "fmt"

// AvailabilityKey 统一约定零件可售库存缓存键名。
func AvailabilityKey(partID uint) string {
	return fmt.Sprintf("parts_store:availability:%d", partID)
}

// LowStockMarkKey 标记某零件是否已发送过低库存告警（带 TTL 的去重位）。
func LowStockMarkKey(partID uint) string {
	return fmt.Sprintf("parts_store:lowstock:notified:%d", partID)
}

// RateLimitUserKey 下单接口按用户限流的窗口键。
func RateLimitUserKey(userID int64) string {
	return fmt.Sprintf("parts_store:rate_limit:order:user:%d", userID)
}

// RateLimitIPKey 下单接口按 IP 限流的窗口键（user_id 解析失败时的降级）。
func RateLimitIPKey(ip string) string {
	return fmt.Sprintf("parts_store:rate_limit:order:ip:%s", ip)
}
