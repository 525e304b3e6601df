package keylock

import "sync"

// KeyedMutex 提供按 key 的互斥锁，用于零件级 / 订单级串行化。
// 锁对象惰性创建且不回收；key 空间为零件与订单 ID，规模可控。
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock 锁定指定 key，返回对应的解锁函数。
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
