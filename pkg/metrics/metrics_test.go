package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveTransition("OPEN", "ACKED", "reaction")
	m.ObservePush("delivered", time.Millisecond)
	m.TokenPruned()
	m.QueueDepth(3)
	m.DispatchDropped()
}

func TestCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveTransition("OPEN", "WATCHING", "reaction")
	m.ObserveTransition("OPEN", "WATCHING", "reaction")
	m.ObservePush("fatal", time.Millisecond)
	m.TokenPruned()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitionsTotal.WithLabelValues("OPEN", "WATCHING", "reaction")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pushSendsTotal.WithLabelValues("fatal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pushTokensPruned))
}

func TestMonitorMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(MonitorMiddleware(m))
	r.GET("/events/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(Handler(reg)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/abc", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/events/:id", "204")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestCollectSystemStats(t *testing.T) {
	s := CollectSystemStats(context.Background())
	assert.False(t, s.Timestamp.IsZero())
	assert.Positive(t, s.Goroutines)
	assert.Positive(t, s.HeapAlloc)
}
