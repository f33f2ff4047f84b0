package metrics

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// SystemStats 健康检查附带的主机/进程信息
type SystemStats struct {
	Timestamp      time.Time `json:"timestamp"`
	Goroutines     int       `json:"goroutines"`
	HeapAlloc      uint64    `json:"heap_alloc"`
	MemUsedPercent float64   `json:"mem_used_percent,omitempty"`
	ProcessRSS     uint64    `json:"process_rss,omitempty"`
	HostUptime     uint64    `json:"host_uptime,omitempty"`
}

// CollectSystemStats takes one snapshot. Readings that fail are left zero;
// the Go runtime fields are always filled.
func CollectSystemStats(ctx context.Context) SystemStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	stats := SystemStats{
		Timestamp:  time.Now().UTC(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.MemUsedPercent = vm.UsedPercent
	}
	if p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfoWithContext(ctx); err == nil {
			stats.ProcessRSS = info.RSS
		}
	}
	if up, err := host.UptimeWithContext(ctx); err == nil {
		stats.HostUptime = up
	}
	return stats
}
