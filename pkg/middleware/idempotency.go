package middleware

import (
	"net/http"
	"strings"
	"time"

	"NeighborGuard/pkg/cache"
	"NeighborGuard/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type IdempotencyConfig struct {
	HeaderName string        // Idempotency-Key 的请求头名
	TTL        time.Duration // 决定一段时间内重复请求的拒绝窗口
	Store      cache.Cache
	Logger     *zap.Logger
}

// IdempotencyMiddleware rejects a repeated Idempotency-Key from the same
// actor on the same route with 409. Requests without the header pass
// through untouched. The key is released again when the handler fails so
// the client can retry.
func IdempotencyMiddleware(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "Idempotency-Key"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.Store == nil {
		cfg.Store = cache.NewLocalCache(cache.LocalConfig{MaxSize: 10000, DefaultExpiration: cfg.TTL})
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(cfg.HeaderName))
		if key == "" {
			c.Next()
			return
		}
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		storeKey := "idem:" + CurrentUserID(c) + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		ok, err := cfg.Store.SetNX(c.Request.Context(), storeKey, route, cfg.TTL)
		if err != nil {
			// store unavailable: serve the request rather than fail it
			cfg.Logger.Warn("idempotency store error", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, response.Response{Code: http.StatusConflict, Message: "duplicate request"})
			return
		}
		c.Next()
		if c.Writer.Status() >= http.StatusBadRequest {
			_ = cfg.Store.Delete(c.Request.Context(), storeKey)
		}
	}
}
