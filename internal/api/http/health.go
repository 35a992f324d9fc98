package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check is one dependency probed by the health endpoint. A failing required
// check turns the daemon unhealthy; optional ones only degrade it.
type Check struct {
	Name     string
	Required bool
	Ping     func(ctx context.Context) error
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Backend   string            `json:"backend,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	backend     func() string
	checks      []Check
}

func NewHealthHandler(serviceName, version string, backend func() string, checks ...Check) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		backend:     backend,
		checks:      checks,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	results := make(map[string]string, len(h.checks))

	for _, chk := range h.checks {
		if chk.Ping == nil {
			results[chk.Name] = "disabled"
			continue
		}
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		err := chk.Ping(pingCtx)
		cancel()

		if err == nil {
			results[chk.Name] = "up"
			continue
		}
		results[chk.Name] = "down"
		if chk.Required {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		} else if status == "healthy" {
			status = "degraded"
		}
	}

	resp := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Checks:    results,
	}
	if h.backend != nil {
		resp.Backend = h.backend()
	}
	c.JSON(code, resp)
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
