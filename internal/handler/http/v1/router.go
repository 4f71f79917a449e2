package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршруты для инцидентов и тредов сообщений
	incidents := api.Group("/incidents")
	{
		incidents.POST("", h.createIncident)
		incidents.GET("", h.listIncidents)
		incidents.GET("/stats", h.getStats)
		incidents.GET("/:id", h.getIncident)
		incidents.POST("/:id/messages", h.createMessage)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
