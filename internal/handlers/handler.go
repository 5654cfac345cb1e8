package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Cknrf/intelligent-plant-care-system/internal/logger"
	"github.com/Cknrf/intelligent-plant-care-system/internal/service"
)

// Handler wires the read-only HTTP surface to the services.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs the HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/status", h.getStatus)
		api.GET("/events", h.getEvents)
	}

	// WebSocket live snapshot stream on the same port.
	router.GET("/ws", h.wsConnect)

	return router
}
