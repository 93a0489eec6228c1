// Package lru 带过期时间的并发安全 LRU 缓存
package lru

import (
	"container/list"
	"sync"
	"time"
)

// Config LRU 配置
type Config struct {
	// MaxSize 最大容量, <= 0 表示不限
	MaxSize int `mapstructure:"max_size" json:"max_size"`
	// DefaultTTL 默认过期时间, <= 0 表示不过期
	DefaultTTL time.Duration `mapstructure:"default_ttl" json:"default_ttl"`
	// CleanupInterval 后台清理间隔, <= 0 时不启动清理协程
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" json:"cleanup_interval"`
}

// LRU 基于内存的 LRU 缓存
type LRU[K comparable, V any] struct {
	config Config
	ll     *list.List
	items  map[K]*list.Element
	mu     sync.Mutex
	now    func() time.Time

	stopCh chan struct{}
	once   sync.Once

	onEvict func(key K, value V)
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

func (e *entry[K, V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Option LRU 选项
type Option[K comparable, V any] func(*LRU[K, V])

// WithOnEvict 设置淘汰回调, 在持有锁时调用
func WithOnEvict[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(c *LRU[K, V]) { c.onEvict = fn }
}

// New 创建 LRU 缓存
func New[K comparable, V any](cfg *Config, opts ...Option[K, V]) *LRU[K, V] {
	c := &LRU[K, V]{
		ll:     list.New(),
		items:  make(map[K]*list.Element),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	if cfg != nil {
		c.config = *cfg
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.config.CleanupInterval > 0 {
		go c.cleanupLoop()
	}
	return c
}

func (c *LRU[K, V]) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.RemoveExpired()
		case <-c.stopCh:
			return
		}
	}
}

// RemoveExpired 移除所有过期条目, 返回移除数量
func (c *LRU[K, V]) RemoveExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for e := c.ll.Back(); e != nil; {
		prev := e.Prev()
		if e.Value.(*entry[K, V]).expired(now) {
			c.removeElement(e)
			n++
		}
		e = prev
	}
	return n
}

// Get 获取值, 命中时移到队首
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry[K, V])
		if !ent.expired(c.now()) {
			c.ll.MoveToFront(elem)
			return ent.value, true
		}
		c.removeElement(elem)
	}
	var zero V
	return zero, false
}

// Set 使用默认 TTL 设置值
func (c *LRU[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.config.DefaultTTL)
}

// SetWithTTL 设置值, ttl <= 0 表示不过期
func (c *LRU[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value, ttl)
}

// GetOrCreate 原子地获取或创建
func (c *LRU[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry[K, V])
		if !ent.expired(c.now()) {
			c.ll.MoveToFront(elem)
			return ent.value
		}
	}
	value := create()
	c.set(key, value, c.config.DefaultTTL)
	return value
}

func (c *LRU[K, V]) set(key K, value V, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	if elem, ok := c.items[key]; ok {
		c.ll.MoveToFront(elem)
		ent := elem.Value.(*entry[K, V])
		ent.value = value
		ent.expiresAt = expiresAt
		return
	}

	c.items[key] = c.ll.PushFront(&entry[K, V]{key: key, value: value, expiresAt: expiresAt})
	for c.config.MaxSize > 0 && c.ll.Len() > c.config.MaxSize {
		c.removeElement(c.ll.Back())
	}
}

// Delete 删除
func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Len 返回当前条目数 (含未清理的过期条目)
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Clear 清空缓存, 不触发淘汰回调
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.items = make(map[K]*list.Element)
}

// Close 停止后台清理
func (c *LRU[K, V]) Close() error {
	c.once.Do(func() { close(c.stopCh) })
	return nil
}

func (c *LRU[K, V]) removeElement(elem *list.Element) {
	c.ll.Remove(elem)
	ent := elem.Value.(*entry[K, V])
	delete(c.items, ent.key)
	if c.onEvict != nil {
		c.onEvict(ent.key, ent.value)
	}
}
