package config

import (
	"NeighborGuard/pkg/logger"
	"NeighborGuard/pkg/util"
	"log"
	"os"
	"time"
)

// PushConfig APNs 推送配置
type PushConfig struct {
	KeyID       string        `env:"APNS_KEY_ID"`
	TeamID      string        `env:"APNS_TEAM_ID"`
	BundleID    string        `env:"APNS_BUNDLE_ID"`
	KeyFile     string        `env:"APNS_KEY_FILE"`
	KeyBase64   string        `env:"APNS_KEY_BASE64"`
	Production  bool          `env:"APNS_PRODUCTION"`
	SendTimeout time.Duration `env:"PUSH_SEND_TIMEOUT"`
	Fanout      int           `env:"PUSH_FANOUT"`
}

// DispatchConfig 通知分发队列配置
type DispatchConfig struct {
	Workers   int `env:"DISPATCH_WORKERS"`
	QueueSize int `env:"DISPATCH_QUEUE_SIZE"`
}

// config/config.go
type Config struct {
	DBDriver           string `env:"DB_DRIVER"`
	DSN                string `env:"DSN"`
	Log                logger.LogConfig
	Push               PushConfig
	Dispatch           DispatchConfig
	Addr               string `env:"ADDR"`
	Mode               string `env:"MODE"`
	APIPrefix          string `env:"API_PREFIX"`
	CacheType          string `env:"CACHE_TYPE"`
	RedisAddr          string `env:"REDIS_ADDR"`
	RedisPassword      string `env:"REDIS_PASSWORD"`
	RedisDB            int    `env:"REDIS_DB"`
	RateLimit          string `env:"RATE_LIMIT"`
	DefaultLang        string `env:"DEFAULT_LANG"`
	TokenPurgeSchedule string `env:"TOKEN_PURGE_SCHEDULE"`
	TokenPurgeAfter    time.Duration
}

var GlobalConfig *Config

func Load() error {
	// 1. 根据环境加载 .env 文件
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}

	// 2. 加载全局配置
	GlobalConfig = &Config{
		DBDriver:  util.GetEnv("DB_DRIVER"),
		DSN:       util.GetEnv("DSN"),
		Addr:      util.GetEnvOr("ADDR", ":8080"),
		Mode:      util.GetEnvOr("MODE", "release"),
		APIPrefix: util.GetEnvOr("API_PREFIX", "/api"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnvOr("LOG_MAX_SIZE", 100)),
			MaxAge:     int(util.GetIntEnvOr("LOG_MAX_AGE", 30)),
			MaxBackups: int(util.GetIntEnvOr("LOG_MAX_BACKUPS", 7)),
		},
		Push: PushConfig{
			KeyID:       util.GetEnv("APNS_KEY_ID"),
			TeamID:      util.GetEnv("APNS_TEAM_ID"),
			BundleID:    util.GetEnvOr("APNS_BUNDLE_ID", "com.neighborguard.app"),
			KeyFile:     util.GetEnv("APNS_KEY_FILE"),
			KeyBase64:   util.GetEnv("APNS_KEY_BASE64"),
			Production:  util.GetBoolEnv("APNS_PRODUCTION"),
			SendTimeout: util.GetDurationEnvOr("PUSH_SEND_TIMEOUT", 10*time.Second),
			Fanout:      int(util.GetIntEnvOr("PUSH_FANOUT", 8)),
		},
		Dispatch: DispatchConfig{
			Workers:   int(util.GetIntEnvOr("DISPATCH_WORKERS", 4)),
			QueueSize: int(util.GetIntEnvOr("DISPATCH_QUEUE_SIZE", 256)),
		},
		CacheType:          util.GetEnvOr("CACHE_TYPE", "local"),
		RedisAddr:          util.GetEnvOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      util.GetEnv("REDIS_PASSWORD"),
		RedisDB:            int(util.GetIntEnv("REDIS_DB")),
		RateLimit:          util.GetEnvOr("RATE_LIMIT", "300-M"),
		DefaultLang:        util.GetEnvOr("DEFAULT_LANG", "zh"),
		TokenPurgeSchedule: util.GetEnvOr("TOKEN_PURGE_SCHEDULE", "0 4 * * *"),
		TokenPurgeAfter:    time.Duration(util.GetIntEnvOr("TOKEN_PURGE_AFTER_DAYS", 90)) * 24 * time.Hour,
	}
	return nil
}
