package utils

import (
	"sync"
	"time"
)

// cacheItem 内部结构，包含值和过期时间
type cacheItem[V any] struct {
	value      V
	expiration time.Time
}

// Cache 有容量上限、带过期时间的内存缓存
// 容量满时先清理过期项，仍不足则淘汰最早过期的一项
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	items    map[K]cacheItem[V]
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewCache 创建缓存
func NewCache[K comparable, V any](capacity int, ttl time.Duration) *Cache[K, V] {
	if capacity <= 0 {
		capacity = 1024
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache[K, V]{
		items:    make(map[K]cacheItem[V], capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Set 设置缓存
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.capacity {
		c.evictLocked()
	}
	c.items[key] = cacheItem[V]{
		value:      value,
		expiration: c.now().Add(c.ttl),
	}
}

// Get 获取缓存并验证是否过期
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	item, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if c.now().After(item.expiration) {
		delete(c.items, key) // 懒删除
		return zero, false
	}
	return item.value, true
}

// GetOrLoad 命中直接返回，否则调用 load 并写入缓存
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Delete 删除缓存
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Purge 清空
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]cacheItem[V], c.capacity)
}

// Len 当前条目数（含未清理的过期项）
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache[K, V]) evictLocked() {
	now := c.now()
	for k, item := range c.items {
		if now.After(item.expiration) {
			delete(c.items, k)
		}
	}
	if len(c.items) < c.capacity {
		return
	}

	var (
		oldestKey K
		oldestExp time.Time
		found     bool
	)
	for k, item := range c.items {
		if !found || item.expiration.Before(oldestExp) {
			oldestKey, oldestExp, found = k, item.expiration, true
		}
	}
	if found {
		delete(c.items, oldestKey)
	}
}
