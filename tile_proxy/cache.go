package tile_proxy

import (
	"sync"
	"time"
)

// CacheItem 缓存项
type CacheItem struct {
	Data        []byte
	ContentType string
	ExpiresAt   time.Time
}

// TileCache 在线底图瓦片的内存缓存
type TileCache struct {
	mu      sync.RWMutex
	items   map[string]*CacheItem
	maxSize int
	ttl     time.Duration
}

func NewTileCache(maxSize int, ttl time.Duration) *TileCache {
	cache := &TileCache{
		items:   make(map[string]*CacheItem),
		maxSize: maxSize,
		ttl:     ttl,
	}
	go cache.cleanupLoop()
	return cache
}

// Get 取缓存，过期视为未命中
func (c *TileCache) Get(key string) (*CacheItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok || time.Now().After(item.ExpiresAt) {
		return nil, false
	}
	return item, true
}

// Set 写缓存，超出容量时淘汰最旧的项
func (c *TileCache) Set(key string, data []byte, contentType string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) >= c.maxSize {
		c.evictOldest()
	}
	c.items[key] = &CacheItem{
		Data:        data,
		ContentType: contentType,
		ExpiresAt:   time.Now().Add(c.ttl),
	}
}

func (c *TileCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	for key, item := range c.items {
		if oldestKey == "" || item.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.ExpiresAt
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// cleanupLoop 定期清理过期项
func (c *TileCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, item := range c.items {
			if now.After(item.ExpiresAt) {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}

// Len 当前缓存数量
func (c *TileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
