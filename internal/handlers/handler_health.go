package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/expense_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Pinger is a backing dependency the health check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthHandler struct {
	database Pinger
	cache    Pinger
}

// HealthResponse reports the state of the service and its dependencies.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
}

// health godoc
// @Summary Service health
// @Description Reports 503 when the database is unreachable. A cache outage only degrades the status.
// @Tags root
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *healthHandler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	logger := middleware.GetLoggerFromCtx(ctx)

	resp := HealthResponse{Status: "ok", Database: "ok"}
	status := http.StatusOK
	if h.database != nil {
		if err := h.database.Ping(ctx); err != nil {
			logger.Error("Database health check failed", slog.String("error", err.Error()))
			resp.Status, resp.Database = "unavailable", "down"
			status = http.StatusServiceUnavailable
		}
	}
	if h.cache != nil {
		resp.Cache = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			logger.Warn("Cache health check failed", slog.String("error", err.Error()))
			resp.Cache = "down"
			if status == http.StatusOK {
				resp.Status = "degraded"
			}
		}
	}
	c.JSON(status, resp)
}
