package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/amankumarsingh77/vidhost/pkg/utils"
	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/load"
	"github.com/shirou/gopsutil/mem"
)

const (
	healthTimeout = 2 * time.Second

	statusOK       = "OK"
	statusDegraded = "DEGRADED"

	countUsersQuery = `SELECT COUNT(*) FROM users`
)

type serviceHealth struct {
	Status  string                 `json:"status"`
	Error   string                 `json:"error,omitempty"`
	Latency string                 `json:"latency,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type systemHealth struct {
	GoVersion     string  `json:"go_version"`
	OS            string  `json:"os"`
	Arch          string  `json:"arch"`
	NumCPU        int     `json:"num_cpu"`
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
	SysMB         float64 `json:"sys_mb"`
	NumGC         uint32  `json:"num_gc"`
	Load1         float64 `json:"load_1,omitempty"`
	MemUsedPct    float64 `json:"mem_used_percent,omitempty"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

type detailedHealth struct {
	Status    string                   `json:"status"`
	Version   string                   `json:"version"`
	Mode      string                   `json:"mode"`
	Timestamp time.Time                `json:"timestamp"`
	Services  map[string]serviceHealth `json:"services"`
	System    systemHealth             `json:"system"`
}

func (s *Server) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	status := map[string]string{"status": statusOK, "postgres": statusOK, "redis": statusOK}
	code := http.StatusOK
	if err := s.db.PingContext(ctx); err != nil {
		status["postgres"], status["status"], code = err.Error(), statusDegraded, http.StatusServiceUnavailable
	}
	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		status["redis"], status["status"], code = err.Error(), statusDegraded, http.StatusServiceUnavailable
	}
	if code != http.StatusOK {
		s.logger.Warnw("health check failed", "request_id", utils.GetRequestID(c), "status", status)
	}
	return c.JSON(code, status)
}

func (s *Server) healthDetailed(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	report := detailedHealth{
		Status:    statusOK,
		Version:   s.cfg.Server.AppVersion,
		Mode:      s.cfg.Server.Mode,
		Timestamp: time.Now().UTC(),
		Services: map[string]serviceHealth{
			"postgres": s.postgresHealth(ctx),
			"redis":    s.redisHealth(ctx),
		},
		System: s.systemHealth(ctx),
	}

	code := http.StatusOK
	for _, svc := range report.Services {
		if svc.Status != statusOK {
			report.Status, code = statusDegraded, http.StatusServiceUnavailable
		}
	}
	if code != http.StatusOK {
		s.logger.Warnw("detailed health check failed", "request_id", utils.GetRequestID(c), "services", report.Services)
	}
	return c.JSON(code, report)
}

func (s *Server) postgresHealth(ctx context.Context) serviceHealth {
	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		return serviceHealth{Status: statusDegraded, Error: err.Error()}
	}
	h := serviceHealth{Status: statusOK, Latency: time.Since(start).String()}

	stats := s.db.Stats()
	h.Details = map[string]interface{}{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
	}
	var users int64
	if err := s.db.GetContext(ctx, &users, countUsersQuery); err != nil {
		return serviceHealth{Status: statusDegraded, Error: err.Error(), Details: h.Details}
	}
	h.Details["users"] = users
	return h
}

func (s *Server) redisHealth(ctx context.Context) serviceHealth {
	start := time.Now()
	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		return serviceHealth{Status: statusDegraded, Error: err.Error()}
	}
	h := serviceHealth{Status: statusOK, Latency: time.Since(start).String()}

	pool := s.redisClient.PoolStats()
	h.Details = map[string]interface{}{
		"total_conns": pool.TotalConns,
		"idle_conns":  pool.IdleConns,
		"hits":        pool.Hits,
		"misses":      pool.Misses,
		"timeouts":    pool.Timeouts,
	}
	if keys, err := s.redisClient.DBSize(ctx).Result(); err == nil {
		h.Details["keys"] = keys
	}
	return h
}

// systemHealth never degrades the report; host stats are filled in when the platform has them.
func (s *Server) systemHealth(ctx context.Context) systemHealth {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	sys := systemHealth{
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		NumCPU:        runtime.NumCPU(),
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(ms.HeapAlloc) / (1 << 20),
		SysMB:         float64(ms.Sys) / (1 << 20),
		NumGC:         ms.NumGC,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		sys.Load1 = avg.Load1
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		sys.MemUsedPct = vm.UsedPercent
	}
	return sys
}
