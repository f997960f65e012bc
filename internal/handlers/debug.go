package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatlink-service/internal/rabbitmq"
	"chatlink-service/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints. They stay off unless
// explicitly enabled.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, publisher rabbitmq.Publisher, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/debug/publisher", func(c *gin.Context) {
		resp := gin.H{"mode": rabbitmq.PublisherMode(publisher)}
		if reason := rabbitmq.PublisherNoopReason(publisher); reason != "" {
			resp["noop_reason"] = reason
		}
		c.JSON(http.StatusOK, resp)
	})
}
