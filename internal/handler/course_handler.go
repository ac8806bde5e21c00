package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-admin/internal/dto"
	"github.com/noah-isme/course-admin/internal/models"
	"github.com/noah-isme/course-admin/internal/service"
	appErrors "github.com/noah-isme/course-admin/pkg/errors"
	"github.com/noah-isme/course-admin/pkg/response"
)

type courseService interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	Get(ctx context.Context, id int64) (*models.Course, error)
	Create(ctx context.Context, req dto.CoursePayload) (*models.Course, error)
	Update(ctx context.Context, id int64, req dto.CoursePayload) (*models.Course, error)
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context, query dto.CourseExportQuery) (*service.ExportResult, error)
}

// CourseHandler handles course endpoints.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(svc courseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param instructor_id query int false "Filter by instructor"
// @Param domain query string false "Filter by domain"
// @Param level query string false "Filter by level"
// @Param search query string false "Search keyword"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	var filter models.CourseFilter
	filter.Domain = strings.TrimSpace(c.Query("domain"))
	filter.Level = strings.TrimSpace(c.Query("level"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if raw := c.Query("instructor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid instructor_id"))
			return
		}
		filter.InstructorID = id
	}

	courses, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, courses)
}

// Get godoc
// @Summary Get course by id
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		return
	}
	course, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.CoursePayload true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CoursePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload"))
		return
	}
	course, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body dto.CoursePayload true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		return
	}
	var req dto.CoursePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload"))
		return
	}
	course, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 204
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := courseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export the course catalog
// @Tags Courses
// @Produce text/csv,application/pdf
// @Param format query string false "csv or pdf"
// @Param domain query string false "Filter by domain"
// @Param level query string false "Filter by level"
// @Success 200 {file} file
// @Router /courses/export [get]
func (h *CourseHandler) Export(c *gin.Context) {
	var query dto.CourseExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid query"))
		return
	}
	result, err := h.service.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

func courseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid course id"))
		return 0, false
	}
	return id, true
}
