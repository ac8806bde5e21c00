package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-admin/internal/dto"
	"github.com/noah-isme/course-admin/internal/models"
	appErrors "github.com/noah-isme/course-admin/pkg/errors"
	"github.com/noah-isme/course-admin/pkg/export"
	"github.com/noah-isme/course-admin/pkg/middleware/requestid"
)

const (
	courseListCachePattern  = "courses:list:*"
	courseListGenerationKey = "courses:generation"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

// CourseService handles course catalog workflows.
type CourseService struct {
	repo      courseRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService creates a new course service. cache and metrics may be nil.
func NewCourseService(repo courseRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// List returns courses matching the filter, served from cache when possible. Cache
// keys carry the list generation, so a load that overlaps a mutation can only fill a
// key that later reads no longer use.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	load := func(ctx context.Context) ([]models.Course, error) {
		start := time.Now()
		courses, err := s.repo.List(ctx, filter)
		s.metrics.ObserveDBQuery("courses.list", time.Since(start))
		if err != nil {
			return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list courses")
		}
		return courses, nil
	}

	generation, ok := s.cache.Generation(ctx, courseListGenerationKey)
	if !ok {
		return load(ctx)
	}
	return ReadThrough(ctx, s.cache, listCacheKey(generation, filter), load)
}

// Get returns a course by identifier.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.Course, error) {
	start := time.Now()
	course, err := s.repo.FindByID(ctx, id)
	s.metrics.ObserveDBQuery("courses.get", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load course")
	}
	return course, nil
}

// Create stores a course under the id chosen by the client.
func (s *CourseService) Create(ctx context.Context, req dto.CoursePayload) (course *models.Course, err error) {
	defer func() { s.metrics.RecordCourseMutation("create", err) }()

	req = normalisePayload(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid course payload")
	}

	exists, err := s.repo.Exists(ctx, req.ID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to check course id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course id already exists")
	}

	created := req.Course()
	start := time.Now()
	err = s.repo.Create(ctx, &created)
	s.metrics.ObserveDBQuery("courses.create", time.Since(start))
	if err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, appErrors.WrapAs(err, appErrors.ErrConflict, "course id already exists")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to create course")
	}

	s.invalidate(ctx)
	s.logger.Info("course created", zap.Int64("course_id", created.ID), zap.Int64("instructor_id", created.InstructorID), requestIDField(ctx))
	return &created, nil
}

// Update replaces every writable field of an existing course.
func (s *CourseService) Update(ctx context.Context, id int64, req dto.CoursePayload) (course *models.Course, err error) {
	defer func() { s.metrics.RecordCourseMutation("update", err) }()

	if req.ID != 0 && req.ID != id {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course id does not match path")
	}
	req.ID = id
	req = normalisePayload(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid course payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := req.Course()
	updated.CreatedAt = existing.CreatedAt
	start := time.Now()
	err = s.repo.Update(ctx, &updated)
	s.metrics.ObserveDBQuery("courses.update", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to update course")
	}

	s.invalidate(ctx)
	s.logger.Info("course updated", zap.Int64("course_id", id), requestIDField(ctx))
	return &updated, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id int64) (err error) {
	defer func() { s.metrics.RecordCourseMutation("delete", err) }()

	start := time.Now()
	err = s.repo.Delete(ctx, id)
	s.metrics.ObserveDBQuery("courses.delete", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to delete course")
	}

	s.invalidate(ctx)
	s.logger.Info("course deleted", zap.Int64("course_id", id), requestIDField(ctx))
	return nil
}

// ExportResult is a rendered catalog document.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Export renders the filtered catalog as CSV or PDF.
func (s *CourseService) Export(ctx context.Context, query dto.CourseExportQuery) (*ExportResult, error) {
	format, err := export.ParseFormat(query.Format)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "unsupported export format")
	}

	courses, err := s.List(ctx, models.CourseFilter{Domain: query.Domain, Level: query.Level})
	if err != nil {
		return nil, err
	}

	renderer := export.For(format)
	body, err := renderer.Render(catalogTable(courses))
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to render catalog")
	}
	return &ExportResult{
		Filename:    "courses." + renderer.Extension(),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func catalogTable(courses []models.Course) export.Table {
	table := export.Table{
		Title:   "Course Catalog",
		Headers: []string{"ID", "Title", "Instructor", "Domain", "Level", "Hours", "Tags"},
		Rows:    make([][]string, 0, len(courses)),
	}
	for _, c := range courses {
		hours := ""
		if c.DurationHrs != nil {
			hours = strconv.FormatFloat(*c.DurationHrs, 'f', -1, 64)
		}
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Title,
			strconv.FormatInt(c.InstructorID, 10),
			c.Domain,
			c.Level,
			hours,
			strings.Join(c.Tags, ", "),
		})
	}
	return table
}

func (s *CourseService) invalidate(ctx context.Context) {
	s.cache.Bump(ctx, courseListGenerationKey)
	_ = s.cache.Invalidate(ctx, courseListCachePattern)
}

func normalisePayload(req dto.CoursePayload) dto.CoursePayload {
	req.Title = strings.TrimSpace(req.Title)
	req.Domain = strings.TrimSpace(req.Domain)
	req.Level = strings.TrimSpace(req.Level)
	tags := make([]string, len(req.Tags))
	for i, tag := range req.Tags {
		tags[i] = strings.TrimSpace(tag)
	}
	req.Tags = tags
	return req
}

func requestIDField(ctx context.Context) zap.Field {
	return zap.String("request_id", requestid.FromContext(ctx))
}

// listCacheKey escapes every filter part so that no two filters share a key.
func listCacheKey(generation int64, filter models.CourseFilter) string {
	return fmt.Sprintf("courses:list:%d:%d:%s:%s:%s",
		generation,
		filter.InstructorID,
		url.QueryEscape(strings.ToLower(filter.Domain)),
		url.QueryEscape(strings.ToLower(filter.Level)),
		url.QueryEscape(strings.ToLower(filter.Search)),
	)
}
