package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/erp/einvoice/internal/interfaces/http/dto"
	"github.com/erp/einvoice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Pinger checks a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the liveness endpoint
type SystemHandler struct {
	BaseHandler
	db          Pinger
	version     string
	startTime   time.Time
	pingTimeout time.Duration
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, version string) *SystemHandler {
	return &SystemHandler{
		db:          db,
		version:     version,
		startTime:   time.Now(),
		pingTimeout: 2 * time.Second,
	}
}

// HealthResponse describes the process and its database
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health answers 200 while the database answers pings and 503 otherwise
func (h *SystemHandler) Health(c *gin.Context) {
	health := HealthResponse{
		Status:    "ok",
		Database:  "up",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.pingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		_ = c.Error(err)
		health.Status = "degraded"
		health.Database = "down"
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeDatabaseUnavailable, "Database is not reachable", middleware.GetRequestID(c))
		resp.Data = health
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	h.Success(c, health)
}
