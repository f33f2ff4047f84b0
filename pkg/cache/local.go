package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type localItem struct {
	value     interface{}
	expiresAt time.Time
}

// localCache is a size-bounded LRU. The LRU's own TTL is the default
// expiration; shorter per-key expirations are checked on read.
type localCache struct {
	config LocalConfig
	lru    *expirable.LRU[string, localItem]
	// serialises SetNX's check-then-set
	mu sync.Mutex
}

// NewLocalCache 创建本地缓存
func NewLocalCache(config LocalConfig) Cache {
	def := DefaultLocalConfig()
	if config.MaxSize <= 0 {
		config.MaxSize = def.MaxSize
	}
	if config.DefaultExpiration <= 0 {
		config.DefaultExpiration = def.DefaultExpiration
	}
	return &localCache{
		config: config,
		lru:    expirable.NewLRU[string, localItem](config.MaxSize, nil, config.DefaultExpiration),
	}
}

func (lc *localCache) expiry(expiration time.Duration) time.Time {
	if expiration <= 0 || expiration > lc.config.DefaultExpiration {
		expiration = lc.config.DefaultExpiration
	}
	return time.Now().Add(expiration)
}

func (lc *localCache) load(key string) (interface{}, bool) {
	item, ok := lc.lru.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		lc.lru.Remove(key)
		return nil, false
	}
	return item.value, true
}

func (lc *localCache) Get(ctx context.Context, key string) (interface{}, bool) {
	return lc.load(key)
}

func (lc *localCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	lc.lru.Add(key, localItem{value: value, expiresAt: lc.expiry(expiration)})
	return nil
}

func (lc *localCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if _, ok := lc.load(key); ok {
		return false, nil
	}
	lc.lru.Add(key, localItem{value: value, expiresAt: lc.expiry(expiration)})
	return true, nil
}

func (lc *localCache) Delete(ctx context.Context, key string) error {
	lc.lru.Remove(key)
	return nil
}

func (lc *localCache) Exists(ctx context.Context, key string) bool {
	_, ok := lc.load(key)
	return ok
}

func (lc *localCache) Close() error {
	lc.lru.Purge()
	return nil
}
