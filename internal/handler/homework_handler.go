package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-organizer/internal/models"
	"github.com/noah-isme/timetable-organizer/internal/service"
	appErrors "github.com/noah-isme/timetable-organizer/pkg/errors"
	"github.com/noah-isme/timetable-organizer/pkg/response"
)

// HomeworkHandler exposes homework endpoints.
type HomeworkHandler struct {
	service *service.HomeworkService
}

// NewHomeworkHandler constructs a homework handler.
func NewHomeworkHandler(svc *service.HomeworkService) *HomeworkHandler {
	return &HomeworkHandler{service: svc}
}

// List godoc
// @Summary List homework
// @Description Incomplete items first, then by due date.
// @Tags Homework
// @Produce json
// @Param subject_id query string false "Only homework of this subject"
// @Param from query string false "Due on or after (YYYY-MM-DD), requires to"
// @Param to query string false "Due on or before (YYYY-MM-DD), requires from"
// @Success 200 {object} response.Envelope{data=[]models.Homework}
// @Router /homework [get]
func (h *HomeworkHandler) List(c *gin.Context) {
	var (
		items []models.Homework
		err   error
	)
	from, to := c.Query("from"), c.Query("to")
	switch {
	case c.Query("subject_id") != "":
		items, err = h.service.BySubject(c.Request.Context(), c.Query("subject_id"))
	case from != "" || to != "":
		items, err = h.service.DueBetween(c.Request.Context(), from, to)
	default:
		items, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []models.Homework{}
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// Create godoc
// @Summary Add homework
// @Tags Homework
// @Accept json
// @Produce json
// @Param payload body models.CreateHomeworkRequest true "Homework payload"
// @Success 201 {object} response.Envelope{data=models.Homework}
// @Failure 409 {object} response.Envelope
// @Router /homework [post]
func (h *HomeworkHandler) Create(c *gin.Context) {
	var req models.CreateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update homework
// @Tags Homework
// @Accept json
// @Produce json
// @Param id path string true "Homework ID"
// @Param payload body models.HomeworkPatch true "Fields to change"
// @Success 200 {object} response.Envelope{data=models.Homework}
// @Failure 404 {object} response.Envelope
// @Router /homework/{id} [patch]
func (h *HomeworkHandler) Update(c *gin.Context) {
	var patch models.HomeworkPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	if item == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "homework not found"))
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Toggle godoc
// @Summary Toggle homework completion
// @Tags Homework
// @Produce json
// @Param id path string true "Homework ID"
// @Success 200 {object} response.Envelope{data=models.Homework}
// @Failure 404 {object} response.Envelope
// @Router /homework/{id}/toggle [post]
func (h *HomeworkHandler) Toggle(c *gin.Context) {
	item, err := h.service.ToggleComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if item == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "homework not found"))
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete homework
// @Tags Homework
// @Param id path string true "Homework ID"
// @Success 204
// @Router /homework/{id} [delete]
func (h *HomeworkHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reload godoc
// @Summary Reload homework from the store
// @Tags Homework
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.Homework}
// @Router /homework/reload [post]
func (h *HomeworkHandler) Reload(c *gin.Context) {
	if err := h.service.Reload(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	h.List(c)
}
