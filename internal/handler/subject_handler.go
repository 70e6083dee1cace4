package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-organizer/internal/models"
	"github.com/noah-isme/timetable-organizer/internal/service"
	appErrors "github.com/noah-isme/timetable-organizer/pkg/errors"
	"github.com/noah-isme/timetable-organizer/pkg/response"
)

// SubjectHandler handles subject endpoints.
type SubjectHandler struct {
	timetable *service.TimetableService
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(timetable *service.TimetableService) *SubjectHandler {
	return &SubjectHandler{timetable: timetable}
}

// List godoc
// @Summary Search subjects
// @Tags Subjects
// @Produce json
// @Param q query string false "Text matched against name, teacher, room and notes"
// @Param day query int false "Day index, Monday = 0"
// @Param tags query string false "Comma separated tags, any may match"
// @Param has_teacher query bool false "Filter by teacher presence"
// @Param has_room query bool false "Filter by room presence"
// @Param extra query bool false "Filter by extra-class flag"
// @Success 200 {object} response.Envelope{data=models.SearchResult}
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	filters, err := parseSearchFilters(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result := service.Search(h.timetable.Subjects(), c.Query("q"), filters)
	response.JSON(c, http.StatusOK, result)
}

func parseSearchFilters(c *gin.Context) (models.SearchFilters, error) {
	var filters models.SearchFilters
	if raw := strings.TrimSpace(c.Query("day")); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || day < 0 || day >= models.DaysPerWeek {
			return filters, appErrors.Clone(appErrors.ErrValidation, "day must be between 0 and 6")
		}
		filters.Day = &day
	}
	if raw, ok := c.GetQuery("tags"); ok {
		filters.Tags = []string{}
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filters.Tags = append(filters.Tags, tag)
			}
		}
	}
	var err error
	if filters.HasTeacher, err = queryBool(c.Query("has_teacher"), "has_teacher"); err != nil {
		return filters, err
	}
	if filters.HasRoom, err = queryBool(c.Query("has_room"), "has_room"); err != nil {
		return filters, err
	}
	if filters.IsExtraClass, err = queryBool(c.Query("extra"), "extra"); err != nil {
		return filters, err
	}
	return filters, nil
}

// Get godoc
// @Summary Get subject by id
// @Tags Subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {object} response.Envelope{data=models.Subject}
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id} [get]
func (h *SubjectHandler) Get(c *gin.Context) {
	subject, err := h.timetable.Subject(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject)
}

// Create godoc
// @Summary Create subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body models.SubjectInput true "Subject payload"
// @Success 201 {object} response.Envelope{data=models.Subject}
// @Failure 400 {object} response.Envelope
// @Router /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req models.SubjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	subject, err := h.timetable.AddSubject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// Update godoc
// @Summary Update subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param payload body models.SubjectInput true "Subject payload"
// @Success 200 {object} response.Envelope{data=models.Subject}
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id} [put]
func (h *SubjectHandler) Update(c *gin.Context) {
	var req models.SubjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	subject, err := h.timetable.UpdateSubject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject)
}

// Delete godoc
// @Summary Delete subject
// @Tags Subjects
// @Param id path string true "Subject ID"
// @Success 204
// @Router /subjects/{id} [delete]
func (h *SubjectHandler) Delete(c *gin.Context) {
	h.timetable.DeleteSubject(c.Request.Context(), c.Param("id"))
	response.NoContent(c)
}
