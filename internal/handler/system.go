package handlers

import (
	"net/http"

	"NeighborGuard/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// HealthCheck 健康检查接口
func (h *Handlers) HealthCheck(c *gin.Context) {
	sqlDB, err := h.store.DB().DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database connection failed"})
		return
	}
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database ping failed"})
		return
	}
	body := gin.H{"status": "healthy", "push": h.gateway.Enabled()}
	if h.queue != nil {
		body["queued"] = h.queue.Len()
	}
	if c.Query("verbose") != "" {
		body["system"] = metrics.CollectSystemStats(c.Request.Context())
	}
	c.JSON(http.StatusOK, body)
}
