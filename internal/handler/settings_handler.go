package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-organizer/internal/models"
	"github.com/noah-isme/timetable-organizer/internal/service"
	"github.com/noah-isme/timetable-organizer/pkg/response"
)

// SettingsHandler serves user preferences and derived statistics.
type SettingsHandler struct {
	timetable *service.TimetableService
}

// NewSettingsHandler constructs a settings handler.
func NewSettingsHandler(timetable *service.TimetableService) *SettingsHandler {
	return &SettingsHandler{timetable: timetable}
}

// Get godoc
// @Summary Get settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope{data=models.Settings}
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.timetable.Settings())
}

// Update godoc
// @Summary Update settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body models.SettingsPatch true "Fields to change"
// @Success 200 {object} response.Envelope{data=models.Settings}
// @Failure 400 {object} response.Envelope
// @Router /settings [patch]
func (h *SettingsHandler) Update(c *gin.Context) {
	var patch models.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	settings, err := h.timetable.UpdateSettings(c.Request.Context(), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}

// Stats godoc
// @Summary Weekly statistics
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope{data=models.Stats}
// @Router /stats [get]
func (h *SettingsHandler) Stats(c *gin.Context) {
	response.JSON(c, http.StatusOK, service.ComputeStats(h.timetable.Subjects()))
}
