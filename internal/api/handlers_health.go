// handlers_health.go - Health check handlers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/OdochHerbert/dropbox-clone/internal/metadata"
)

const healthPingTimeout = 2 * time.Second

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	meta    metadata.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, meta metadata.Store) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		meta:    meta,
	}
}

// HandleHealth returns server health status, including a metadata store ping
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
	defer cancel()

	if err := h.meta.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "degraded",
			"version":  h.version,
			"metadata": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"version":  h.version,
		"metadata": "ok",
	})
}
