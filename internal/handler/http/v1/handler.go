package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avolkov/community_safety_watch/internal/config"
	"github.com/avolkov/community_safety_watch/internal/models"
	"github.com/avolkov/community_safety_watch/internal/service"
)

type Handler struct {
	incidentService service.IncidentService
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(incidentService service.IncidentService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		incidentService: incidentService,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// @Summary Report a new incident
// @Description Create a new community incident report.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param incident body CreateIncidentRequest true "Incident creation request"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	var input CreateIncidentRequest
	log := h.logger.WithField("method", "createIncident")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := DTOToIncidentModel(input)
	if err := h.incidentService.CreateIncident(c.Request.Context(), model); err != nil {
		log.WithError(err).Error("Failed to create incident in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, ModelToIncidentResponse(model))
}

// @Summary Get a list of incidents
// @Description Get all incidents ordered by creation time descending, each with its message thread. Optionally filtered by category.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param category query string false "Filter by category" Enums(accident, infrastructure, noise, safety, other)
// @Success 200 {array} IncidentResponse
// @Failure 400 {object} map[string]string "Unknown category"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	var category *models.Category
	if raw := c.Query("category"); raw != "" {
		parsed, err := models.ParseCategory(raw)
		if err != nil {
			log.WithError(err).Warn("Unknown category in query")
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
			return
		}
		category = &parsed
	}

	incidents, err := h.incidentService.ListIncidents(c.Request.Context(), category)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident by ID
// @Description Get a single incident with its message thread by ID.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrIncidentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
			return
		}
		log.WithError(err).Error("Failed to get incident from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Add a message to an incident thread
// @Description Append a message to the incident's discussion thread. The author defaults to the anonymous label.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident ID"
// @Param message body CreateMessageRequest true "Message creation request"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} map[string]string "Invalid incident ID or request body"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id}/messages [post]
func (h *Handler) createMessage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "createMessage").WithField("id", id)

	var input CreateMessageRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message := &models.Message{
		IncidentID: id,
		Author:     input.Author,
		Text:       input.Text,
	}

	if err := h.incidentService.AddMessage(c.Request.Context(), message); err != nil {
		if errors.Is(err, service.ErrIncidentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
			return
		}
		log.WithError(err).Error("Failed to add message in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, ModelToMessageResponse(message))
}

// @Summary Get report statistics
// @Description Get the number of incidents reported within the configured time window.
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	reportCount, err := h.incidentService.GetStats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get stats from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{ReportCount: reportCount})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
