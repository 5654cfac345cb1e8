package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusOK      = "ok"
	errGetStatus  = "failed to load status"
	errListEvents = "failed to load events"
)

// logAndJSONError centralizes error logging and the error response shape.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// getStatus serves the full system snapshot: both plants, the shared
// actuators, sensors and the cached weather advisory.
func (h *Handler) getStatus(c *gin.Context) {
	snap, err := h.services.Monitoring.Status(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "status_failed", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
