package redis

import (
	"context"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// StockCache 缓存每个零件的可售数量，供库存查询接口走 Redis 而非 DB。
// 缓存只做读加速：账本（DB）永远是权威，写失败仅记录由调用方处理。
type StockCache struct {
	rdb *rd.Client
	ttl time.Duration
}

func NewStockCache(rdb *rd.Client, ttl time.Duration) *StockCache {
	return &StockCache{rdb: rdb, ttl: ttl}
}

// SetAvailable 刷新某零件的可售数量缓存。
func (c *StockCache) SetAvailable(ctx context.Context, partID uint, available int) error {
	return c.rdb.Set(ctx, AvailabilityKey(partID), available, c.ttl).Err()
}

// GetAvailable 查询缓存中的可售数量。found=false 表示缓存未命中。
func (c *StockCache) GetAvailable(ctx context.Context, partID uint) (int, bool, error) {
	v, err := c.rdb.Get(ctx, AvailabilityKey(partID)).Int()
	if err != nil {
		if err == rd.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	return v, true, nil
}
