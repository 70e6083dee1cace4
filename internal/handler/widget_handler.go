package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-organizer/internal/service"
	appErrors "github.com/noah-isme/timetable-organizer/pkg/errors"
	"github.com/noah-isme/timetable-organizer/pkg/response"
)

// WidgetHandler exposes the home-screen widget mirror.
type WidgetHandler struct {
	bridge    *service.WidgetBridge
	timetable *service.TimetableService
	hub       *WidgetHub
	now       func() time.Time
}

// NewWidgetHandler constructs a widget handler. hub may be nil when live
// streaming is disabled.
func NewWidgetHandler(bridge *service.WidgetBridge, timetable *service.TimetableService, hub *WidgetHub) *WidgetHandler {
	return &WidgetHandler{bridge: bridge, timetable: timetable, hub: hub, now: time.Now}
}

// Subjects godoc
// @Summary Subjects as stored for the widget
// @Description Always an empty list on platforms without a widget.
// @Tags Widget
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.Subject}
// @Router /widget/subjects [get]
func (h *WidgetHandler) Subjects(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.bridge.GetSubjects(c.Request.Context()))
}

// Preview godoc
// @Summary Tomorrow's widget view
// @Tags Widget
// @Produce json
// @Param source query string false "stored (default) reads the widget store, live uses the current subject list"
// @Success 200 {object} response.Envelope{data=models.WidgetView}
// @Router /widget/preview [get]
func (h *WidgetHandler) Preview(c *gin.Context) {
	now := h.now()
	if c.Query("source") == "live" {
		response.JSON(c, http.StatusOK, service.BuildWidgetView(h.timetable.Subjects(), now))
		return
	}
	response.JSON(c, http.StatusOK, h.bridge.Preview(c.Request.Context(), now))
}

// Stream godoc
// @Summary Live widget subject stream (websocket)
// @Tags Widget
// @Success 101
// @Failure 503 {object} response.Envelope
// @Router /widget/stream [get]
func (h *WidgetHandler) Stream(c *gin.Context) {
	if h.hub == nil || !h.bridge.Enabled() {
		response.Error(c, appErrors.ErrUnavailable)
		return
	}
	h.hub.ServeHTTP(c.Writer, c.Request)
}
