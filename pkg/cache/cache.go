package cache

import (
	"context"
	"time"
)

// Cache 缓存接口
type Cache interface {
	// Get 获取缓存值
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set 设置缓存值，expiration <= 0 时使用默认过期时间
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)

	Delete(ctx context.Context, key string) error

	// Exists 检查键是否存在
	Exists(ctx context.Context, key string) bool

	Close() error
}

// Config 缓存配置
type Config struct {
	// 缓存类型: "local", "gocache" 或 "redis"
	Type  string
	Redis RedisConfig
	Local LocalConfig
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// KeyPrefix is prepended to every key.
	KeyPrefix string
}

// LocalConfig 本地缓存配置
type LocalConfig struct {
	// 最大缓存项数
	MaxSize int
	// 默认过期时间
	DefaultExpiration time.Duration
	// 清理间隔，仅 gocache 使用
	CleanupInterval time.Duration
}

// DefaultLocalConfig 默认本地缓存配置
func DefaultLocalConfig() LocalConfig {
	return LocalConfig{
		MaxSize:           1000,
		DefaultExpiration: 10 * time.Minute,
		CleanupInterval:   10 * time.Minute,
	}
}
