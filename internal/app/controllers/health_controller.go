package controllers

import (
	"context"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schoolportal/internal/app/models/dto"
	"github.com/yigit/schoolportal/internal/pkg/logger"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

// HealthController reports the state of the database and other backing services
type HealthController struct {
	checks map[string]HealthCheck
}

// NewHealthController creates a new HealthController. Nil checks are skipped.
func NewHealthController(checks map[string]HealthCheck) *HealthController {
	active := make(map[string]HealthCheck, len(checks))
	for name, check := range checks {
		if check != nil {
			active[name] = check
		}
	}
	return &HealthController{checks: active}
}

// Health answers 200 when every component is up and 503 otherwise.
func (c *HealthController) Health(ctx *gin.Context) {
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := dto.HealthResponse{Status: "ok", Components: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := c.checks[name](ctx.Request.Context()); err != nil {
			logger.Warn().Err(err).Str("component", name).Msg("Health check failed")
			resp.Components[name] = "down"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = "up"
	}

	ctx.JSON(status, resp)
}
