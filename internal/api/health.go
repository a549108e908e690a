package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResponse represents a comprehensive health check response
type HealthCheckResponse struct {
	Status        HealthStatus           `json:"status"`
	Timestamp     string                 `json:"timestamp"`
	EngineVersion string                 `json:"engine_version"`
	GitCommit     string                 `json:"git_commit,omitempty"`
	BuildTime     string                 `json:"build_time,omitempty"`
	Uptime        string                 `json:"uptime"`
	Checks        map[string]HealthCheck `json:"checks"`
	System        SystemInfo             `json:"system"`
	RequestID     string                 `json:"request_id,omitempty"`
}

// HealthCheck represents an individual health check
type HealthCheck struct {
	Status      HealthStatus `json:"status"`
	Message     string       `json:"message,omitempty"`
	LastChecked string       `json:"last_checked"`
	Duration    string       `json:"duration,omitempty"`
}

// SystemInfo contains system information
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	MemoryAlloc   uint64 `json:"memory_alloc_bytes"`
	MemorySys     uint64 `json:"memory_sys_bytes"`
	GCCycles      uint32 `json:"gc_cycles"`
}

// handleHealthCheck reports engine, storage and analyzer health
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]HealthCheck{
		"engine":   s.checkEngineHealth(),
		"storage":  s.checkStorageHealth(),
		"analysis": s.checkAnalysisHealth(),
	}

	overall := HealthStatusHealthy
	for _, c := range checks {
		switch c.Status {
		case HealthStatusUnhealthy:
			overall = HealthStatusUnhealthy
		case HealthStatusDegraded:
			if overall == HealthStatusHealthy {
				overall = HealthStatusDegraded
			}
		}
	}

	resp := HealthCheckResponse{
		Status:        overall,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		EngineVersion: EngineVersion,
		GitCommit:     GitCommit,
		BuildTime:     BuildTime,
		Uptime:        time.Since(s.startTime).String(),
		Checks:        checks,
		System:        systemInfo(),
		RequestID:     middleware.GetReqID(r.Context()),
	}

	// Degraded still serves traffic.
	status := http.StatusOK
	if overall == HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// checkEngineHealth reports degraded when the last generation ran without the
// system CSPRNG.
func (s *Server) checkEngineHealth() HealthCheck {
	start := time.Now()
	st := s.engine.Status()

	check := HealthCheck{Status: HealthStatusHealthy, Message: "engine ready"}
	if st.Generations > 0 && st.LastQuality.Degraded {
		check.Status = HealthStatusDegraded
		check.Message = "last generation used fallback entropy"
	}
	check.LastChecked = time.Now().UTC().Format(time.RFC3339)
	check.Duration = time.Since(start).String()
	return check
}

func (s *Server) checkStorageHealth() HealthCheck {
	start := time.Now()
	check := HealthCheck{Status: HealthStatusHealthy, Message: "storage reachable"}
	if s.db == nil {
		check.Status = HealthStatusDegraded
		check.Message = "storage not configured"
	} else if _, err := s.db.Count(); err != nil {
		check.Status = HealthStatusUnhealthy
		check.Message = "storage error: " + err.Error()
	}
	check.LastChecked = time.Now().UTC().Format(time.RFC3339)
	check.Duration = time.Since(start).String()
	return check
}

func (s *Server) checkAnalysisHealth() HealthCheck {
	check := HealthCheck{Status: HealthStatusHealthy, Message: "historical draws loaded"}
	if s.analyzer == nil || s.analyzer.Stats().DrawsLoaded == 0 {
		check.Status = HealthStatusDegraded
		check.Message = "no historical draws"
	}
	check.LastChecked = time.Now().UTC().Format(time.RFC3339)
	return check
}

func systemInfo() SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return SystemInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		MemoryAlloc:   m.Alloc,
		MemorySys:     m.Sys,
		GCCycles:      m.NumGC,
	}
}

// handleReadiness reports whether the server can take generation traffic
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.checkStorageHealth().Status == HealthStatusUnhealthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "storage unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLiveness is a simple liveness probe
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
		"uptime": time.Since(s.startTime).String(),
	})
}
