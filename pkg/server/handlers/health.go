package handlers

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/zeroshot"
	"github.com/soundprediction/zeroshot/pkg/types"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

const serviceName = "zeroshot"

// HealthHandler handles health check requests
type HealthHandler struct {
	providers zeroshot.ProviderLister
	started   time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(p zeroshot.ProviderLister) *HealthHandler {
	return &HealthHandler{
		providers: p,
		started:   time.Now(),
	}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready. The service is ready once a classifier
// is wired; individual providers may still be unavailable because the
// keyword fallback always answers.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	response := gin.H{
		"status":    "ready",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	checks := gin.H{}
	if h.providers == nil {
		checks["classifier"] = gin.H{
			"status": "unhealthy",
			"error":  "classifier not initialized",
		}
		response["checks"] = checks
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	chain := h.providers.Providers()
	checks["classifier"] = gin.H{
		"status":    "healthy",
		"providers": chain,
	}
	checks["system"] = gin.H{
		"status": "healthy",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}
	response["checks"] = checks

	c.JSON(http.StatusOK, response)
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck handles GET /health/detailed
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	startTime := time.Now()

	status := "healthy"
	code := http.StatusOK
	var providers []types.ProviderID
	if h.providers != nil {
		providers = h.providers.Providers()
	} else {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	m := h.getSystemMetrics()
	c.JSON(code, gin.H{
		"status":  status,
		"service": serviceName,
		"version": Version,
		"build_info": gin.H{
			"git_commit": GitCommit,
			"build_time": BuildTime,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": gin.H{
			"go_version": GoVersion,
		},
		"providers": providers,
		"system": gin.H{
			"memory_usage": m.MemoryUsage,
			"goroutines":   m.Goroutines,
			"gc_cycles":    m.GCCycles,
			"heap_objects": m.HeapObjects,
			"stack_usage":  m.StackUsage,
		},
		"metrics": gin.H{
			"response_time_ms": time.Since(startTime).Milliseconds(),
		},
	})
}

// SystemMetrics holds system runtime metrics
type SystemMetrics struct {
	MemoryUsage string `json:"memory_usage"`
	Goroutines  int    `json:"goroutines"`
	GCCycles    uint32 `json:"gc_cycles"`
	HeapObjects uint64 `json:"heap_objects"`
	StackUsage  string `json:"stack_usage"`
}

// getSystemMetrics collects current system runtime metrics
func (h *HealthHandler) getSystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		MemoryUsage: fmt.Sprintf("%.2f MB", float64(m.Alloc)/(1024*1024)),
		Goroutines:  runtime.NumGoroutine(),
		GCCycles:    m.NumGC,
		HeapObjects: m.HeapObjects,
		StackUsage:  fmt.Sprintf("%.2f MB", float64(m.StackSys)/(1024*1024)),
	}
}
