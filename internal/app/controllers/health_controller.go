package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skillpivot/api/internal/app/models/dto"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

// HealthController reports whether the backing services answer
type HealthController struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthController creates a new HealthController
func NewHealthController(checks map[string]HealthCheck) *HealthController {
	return &HealthController{
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

// Health runs every check
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 503 {object} dto.APIResponse
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := map[string]string{}
	healthy := true
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), c.timeout)
		err := c.checks[name](checkCtx)
		cancel()
		if err != nil {
			healthy = false
			status[name] = "down"
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		resp := dto.NewSuccessResponse(status, "Service degraded")
		resp.Success = false
		ctx.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(status, "OK"))
}
