package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/aristath/mvt-analytics/internal/clientdata"
	"github.com/aristath/mvt-analytics/internal/database"
	"github.com/aristath/mvt-analytics/internal/di"
	"github.com/aristath/mvt-analytics/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers handles health, status and job endpoints
type SystemHandlers struct {
	container   *di.Container
	dataDir     string
	startupTime time.Time
	log         zerolog.Logger
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(container *di.Container, dataDir string, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		container:   container,
		dataDir:     dataDir,
		startupTime: time.Now(),
		log:         log.With().Str("handler", "system").Logger(),
	}
}

// RegisterRoutes registers /system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Get("/status", h.HandleSystemStatus)
		r.Get("/jobs", h.HandleJobsStatus)
		r.Post("/jobs/{name}/run", h.HandleRunJob)
	})
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string            `json:"status"`
	Databases map[string]string `json:"databases"`
}

// DatabaseStatus describes one database
type DatabaseStatus struct {
	Name   string          `json:"name"`
	Path   string          `json:"path"`
	Driver string          `json:"driver"`
	Stats  *database.Stats `json:"stats,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string                 `json:"status"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	GoVersion     string                 `json:"go_version"`
	Goroutines    int                    `json:"goroutines"`
	CPUPercent    float64                `json:"cpu_percent"`
	MemoryPercent float64                `json:"memory_percent"`
	DataDirMB     float64                `json:"data_dir_mb"`
	Databases     []DatabaseStatus       `json:"databases"`
	Cache         []clientdata.TypeStats `json:"cache"`
	Jobs          []scheduler.JobStatus  `json:"jobs"`
	CheckedAt     string                 `json:"checked_at"`
}

func (h *SystemHandlers) databases() []*database.DB {
	return []*database.DB{h.container.AnalyticsDB, h.container.CacheDB}
}

// HandleHealth reports whether both databases answer
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Databases: map[string]string{}}
	for _, db := range h.databases() {
		if err := db.HealthCheck(ctx); err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Health check failed")
			resp.Databases[db.Name()] = err.Error()
			resp.Status = "unhealthy"
			continue
		}
		resp.Databases[db.Name()] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

// HandleSystemStatus returns process, database, cache and job status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.getSystemStats()
	resp := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		GoVersion:     runtime.Version(),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		DataDirMB:     h.getDirSize(h.dataDir),
		CheckedAt:     time.Now().Format(time.RFC3339),
	}

	for _, db := range h.databases() {
		status := DatabaseStatus{Name: db.Name(), Path: db.Path(), Driver: db.Driver()}
		stats, err := db.GetStats(r.Context())
		if err != nil {
			status.Error = err.Error()
			resp.Status = "degraded"
		} else {
			status.Stats = stats
		}
		resp.Databases = append(resp.Databases, status)
	}

	cache, err := h.container.CacheRepo.Stats()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read cache stats")
		resp.Status = "degraded"
	}
	resp.Cache = cache

	if h.container.Scheduler != nil {
		resp.Jobs = h.container.Scheduler.Jobs()
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HandleJobsStatus lists the registered background jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.JobStatus{}
	if h.container.Scheduler != nil {
		jobs = h.container.Scheduler.Jobs()
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// HandleRunJob runs a registered job immediately
// POST /api/system/jobs/{name}/run
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.container.Scheduler == nil || !h.hasJob(name) {
		h.writeError(w, http.StatusNotFound, "Unknown job: "+name)
		return
	}

	start := time.Now()
	if err := h.container.Scheduler.RunNow(name); err != nil {
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"job":    name,
			"status": "failed",
			"error":  err.Error(),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"job":         name,
		"status":      "completed",
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

func (h *SystemHandlers) hasJob(name string) bool {
	for _, j := range h.container.Scheduler.Jobs() {
		if j.Name == name {
			return true
		}
	}
	return false
}

// getSystemStats returns CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms sample keeps the endpoint responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(cpuPercent) == 0 {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuPercent[0], 0
	}
	return cpuPercent[0], memStat.UsedPercent
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}
	return float64(totalSize) / 1024 / 1024
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *SystemHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
