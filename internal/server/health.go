package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/karolswdev/reqsmith/internal/session"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Store     string    `json:"store"`
}

type HealthHandler struct {
	serviceName string
	version     string
	store       session.Store
}

func NewHealthHandler(serviceName, version string, store session.Store) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, store: store}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status, storeStatus, code := "healthy", "up", http.StatusOK

	pingCtx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()
	if err := h.store.Ping(pingCtx); err != nil {
		status, storeStatus, code = "degraded", "down", http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Store:     storeStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
