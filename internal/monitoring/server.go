// Package monitoring runs a side HTTP server with process and host
// statistics, kept off the public API port.
package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"returns-backend/internal/timeutil"
)

type MonitoringServer struct {
	db      *pgxpool.Pool
	port    int
	started time.Time
}

type SystemStats struct {
	DatabaseStatus    string  `json:"database_status"`
	ActiveConnections int     `json:"active_connections"`
	IdleConnections   int     `json:"idle_connections"`
	ResponseTime      int64   `json:"response_time_ms"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	MemoryUsed        string  `json:"memory_used"`
	MemoryTotal       string  `json:"memory_total"`
	DiskPercent       float64 `json:"disk_percent"`
	DiskUsed          string  `json:"disk_used"`
	DiskTotal         string  `json:"disk_total"`
	Uptime            string  `json:"uptime"`
}

func NewMonitoringServer(db *pgxpool.Pool, port int) *MonitoringServer {
	return &MonitoringServer{
		db:      db,
		port:    port,
		started: timeutil.Now(),
	}
}

// Start blocks serving the monitoring endpoints; run it in a goroutine.
func (s *MonitoringServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.handleStats)
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("[Monitoring] Listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *MonitoringServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.collect()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (s *MonitoringServer) collect() SystemStats {
	stats := SystemStats{
		Uptime: time.Since(s.started).Round(time.Second).String(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := s.db.Ping(ctx); err != nil {
		stats.DatabaseStatus = "unhealthy"
	} else {
		stats.DatabaseStatus = "healthy"
	}
	stats.ResponseTime = time.Since(start).Milliseconds()

	pool := s.db.Stat()
	stats.ActiveConnections = int(pool.AcquiredConns())
	stats.IdleConnections = int(pool.IdleConns())

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
		stats.MemoryUsed = formatBytes(vm.Used)
		stats.MemoryTotal = formatBytes(vm.Total)
	}
	if du, err := disk.Usage("/"); err == nil {
		stats.DiskPercent = du.UsedPercent
		stats.DiskUsed = formatBytes(du.Used)
		stats.DiskTotal = formatBytes(du.Total)
	}

	return stats
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
