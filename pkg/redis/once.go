package redis

import (
	"context"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// luaMarkOnce 通过 SETNX 锁保证某个动作在 TTL 内只触发一次。
const luaMarkOnce = `
local lockKey = KEYS[1]
local ttlSec = tonumber(ARGV[1])

if redis.call('SETNX', lockKey, '1') == 1 then
  redis.call('EXPIRE', lockKey, ttlSec)
  return 1
end
return 0
`

// MarkLowStockOnce 低库存告警去重：
// - 首次标记返回 true，应当发送告警
// - TTL 内重复标记返回 false（不重复打扰）
func MarkLowStockOnce(ctx context.Context, rdb *rd.Client, partID uint, ttl time.Duration) (bool, error) {
	ttlSec := int64(ttl / time.Second)
	if ttlSec <= 0 {
		ttlSec = 1
	}
	n, err := rdb.Eval(ctx, luaMarkOnce, []string{LowStockMarkKey(partID)}, ttlSec).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
