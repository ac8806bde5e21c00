package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-admin/internal/dto"
	"github.com/noah-isme/course-admin/internal/models"
	appErrors "github.com/noah-isme/course-admin/pkg/errors"
)

type mockCourseRepo struct {
	items     map[int64]*models.Course
	order     []int64
	listCalls int
	listErr   error
	createErr error
	// duringList runs once, after the rows are read and before they are returned.
	duringList func()
}

func newMockCourseRepo(courses ...models.Course) *mockCourseRepo {
	repo := &mockCourseRepo{items: make(map[int64]*models.Course)}
	for i := range courses {
		c := courses[i]
		repo.items[c.ID] = &c
		repo.order = append(repo.order, c.ID)
	}
	return repo
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []models.Course{}
	for _, id := range m.order {
		c, ok := m.items[id]
		if !ok {
			continue
		}
		if filter.Domain != "" && !strings.EqualFold(filter.Domain, c.Domain) {
			continue
		}
		out = append(out, *c)
	}
	if hook := m.duringList; hook != nil {
		m.duringList = nil
		hook()
	}
	return out, nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	if c, ok := m.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.createErr != nil {
		return m.createErr
	}
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	cp := *course
	m.items[course.ID] = &cp
	m.order = append([]int64{course.ID}, m.order...)
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	if _, ok := m.items[course.ID]; !ok {
		return sql.ErrNoRows
	}
	course.UpdatedAt = time.Now()
	cp := *course
	m.items[course.ID] = &cp
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type memoryCache struct {
	entries  map[string][]byte
	counters map[string]int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte), counters: make(map[string]int64)}
}

func (c *memoryCache) Counter(ctx context.Context, key string) (int64, error) {
	return c.counters[key], nil
}

func (c *memoryCache) Incr(ctx context.Context, key string) (int64, error) {
	if c.counters == nil {
		c.counters = make(map[string]int64)
	}
	c.counters[key]++
	return c.counters[key], nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
		}
	}
	return nil
}

func newCourseServiceForTest(repo *mockCourseRepo) (*CourseService, *memoryCache, *MetricsService) {
	metrics := NewMetricsService()
	cacheRepo := newMemoryCache()
	cache := NewCacheService(cacheRepo, metrics, time.Minute, zap.NewNop(), true)
	return NewCourseService(repo, cache, metrics, validator.New(), zap.NewNop()), cacheRepo, metrics
}

func validPayload(id int64) dto.CoursePayload {
	return dto.CoursePayload{ID: id, Title: "Intro", InstructorID: 1001, Domain: "CS", Level: "Beginner", Tags: []string{"a", "b"}}
}

func TestCourseServiceCreate(t *testing.T) {
	repo := newMockCourseRepo()
	svc, _, metrics := newCourseServiceForTest(repo)

	req := validPayload(42)
	req.Title = "  Intro  "
	req.Tags = []string{" a", "b "}
	course, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(42), course.ID)
	assert.Equal(t, "Intro", course.Title)
	assert.Equal(t, []string{"a", "b"}, []string(course.Tags))
	assert.Len(t, repo.items, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.courseMutations.WithLabelValues("create", "success")))
}

func TestCourseServiceCreateDuplicate(t *testing.T) {
	repo := newMockCourseRepo(models.Course{ID: 42, Title: "Existing"})
	svc, _, metrics := newCourseServiceForTest(repo)

	_, err := svc.Create(context.Background(), validPayload(42))
	require.Error(t, err)
	assert.True(t, appErrors.IsStatus(err, http.StatusConflict))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.courseMutations.WithLabelValues("create", "error")))
}

func TestCourseServiceCreateLosesInsertRace(t *testing.T) {
	repo := newMockCourseRepo()
	repo.createErr = appErrors.WrapAs(errors.New("pq: duplicate key"), appErrors.ErrConflict, "course id already exists")
	svc, _, _ := newCourseServiceForTest(repo)

	_, err := svc.Create(context.Background(), validPayload(42))
	require.Error(t, err)
	assert.True(t, appErrors.IsStatus(err, http.StatusConflict))
}

func TestCourseServiceCreateValidation(t *testing.T) {
	svc, _, _ := newCourseServiceForTest(newMockCourseRepo())
	negative := -2.0

	cases := map[string]func(*dto.CoursePayload){
		"blank title":     func(p *dto.CoursePayload) { p.Title = "   " },
		"missing domain":  func(p *dto.CoursePayload) { p.Domain = "" },
		"missing level":   func(p *dto.CoursePayload) { p.Level = "" },
		"zero instructor": func(p *dto.CoursePayload) { p.InstructorID = 0 },
		"zero id":         func(p *dto.CoursePayload) { p.ID = 0 },
		"negative hours":  func(p *dto.CoursePayload) { p.DurationHrs = &negative },
		"empty tag":       func(p *dto.CoursePayload) { p.Tags = []string{"a", " "} },
	}
	for name, mutate := range cases {
		req := validPayload(7)
		mutate(&req)
		_, err := svc.Create(context.Background(), req)
		require.Error(t, err, name)
		assert.True(t, appErrors.IsStatus(err, http.StatusBadRequest), name)
	}
}

func TestCourseServiceUpdate(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newMockCourseRepo(models.Course{ID: 5, Title: "Old", InstructorID: 1001, Domain: "CS", Level: "Beginner", CreatedAt: created})
	svc, _, _ := newCourseServiceForTest(repo)

	req := validPayload(0)
	req.Title = "New"
	updated, err := svc.Update(context.Background(), 5, req)
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.ID)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, created, updated.CreatedAt)
	assert.Equal(t, "New", repo.items[5].Title)
}

func TestCourseServiceUpdateErrors(t *testing.T) {
	repo := newMockCourseRepo(models.Course{ID: 5, Title: "Old"})
	svc, _, _ := newCourseServiceForTest(repo)

	_, err := svc.Update(context.Background(), 5, validPayload(6))
	assert.True(t, appErrors.IsStatus(err, http.StatusBadRequest))

	_, err = svc.Update(context.Background(), 99, validPayload(99))
	assert.True(t, appErrors.IsStatus(err, http.StatusNotFound))
}

func TestCourseServiceDelete(t *testing.T) {
	repo := newMockCourseRepo(models.Course{ID: 5})
	svc, _, _ := newCourseServiceForTest(repo)

	require.NoError(t, svc.Delete(context.Background(), 5))
	assert.Empty(t, repo.items)

	err := svc.Delete(context.Background(), 5)
	assert.True(t, appErrors.IsStatus(err, http.StatusNotFound))
}

func TestCourseServiceListCaching(t *testing.T) {
	repo := newMockCourseRepo(models.Course{ID: 1, Title: "A", Domain: "CS"})
	svc, cache, _ := newCourseServiceForTest(repo)
	ctx := context.Background()

	first, err := svc.List(ctx, models.CourseFilter{})
	require.NoError(t, err)
	second, err := svc.List(ctx, models.CourseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Len(t, cache.entries, 1)

	_, err = svc.Create(ctx, validPayload(2))
	require.NoError(t, err)
	assert.Empty(t, cache.entries)

	third, err := svc.List(ctx, models.CourseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
	assert.Equal(t, []int64{2, 1}, []int64{third[0].ID, third[1].ID})
}

func TestListCacheKeyEscapesFilterParts(t *testing.T) {
	colonInDomain := models.CourseFilter{Domain: "a:b"}
	colonInLevel := models.CourseFilter{Domain: "a", Level: "b:"}

	assert.NotEqual(t, listCacheKey(0, colonInDomain), listCacheKey(0, colonInLevel))
	assert.NotEqual(t, listCacheKey(0, colonInDomain), listCacheKey(1, colonInDomain))
	for _, key := range []string{listCacheKey(0, colonInDomain), listCacheKey(3, colonInLevel)} {
		matched, err := path.Match(courseListCachePattern, key)
		require.NoError(t, err)
		assert.True(t, matched, key)
	}
}

func TestCourseServiceListSeparatesLookalikeFilters(t *testing.T) {
	repo := newMockCourseRepo(
		models.Course{ID: 1, Title: "Colon domain", Domain: "a:b"},
		models.Course{ID: 2, Title: "Plain domain", Domain: "a", Level: "b:"},
	)
	svc, cache, _ := newCourseServiceForTest(repo)
	ctx := context.Background()

	first, err := svc.List(ctx, models.CourseFilter{Domain: "a:b"})
	require.NoError(t, err)
	second, err := svc.List(ctx, models.CourseFilter{Domain: "a", Level: "b:"})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.listCalls)
	assert.Len(t, cache.entries, 2)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, int64(1), first[0].ID)
	assert.Equal(t, int64(2), second[0].ID)
}

func TestCourseServiceListOverlappingMutationNotServedStale(t *testing.T) {
	repo := newMockCourseRepo(models.Course{ID: 1, Title: "A", Domain: "CS"})
	svc, _, _ := newCourseServiceForTest(repo)
	ctx := context.Background()

	repo.duringList = func() {
		_, err := svc.Create(ctx, validPayload(2))
		require.NoError(t, err)
	}
	stale, err := svc.List(ctx, models.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	fresh, err := svc.List(ctx, models.CourseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
	assert.Len(t, fresh, 2)
}

func TestCourseServiceListFailure(t *testing.T) {
	repo := newMockCourseRepo()
	repo.listErr = sql.ErrConnDone
	svc := NewCourseService(repo, nil, nil, nil, nil)

	_, err := svc.List(context.Background(), models.CourseFilter{})
	require.Error(t, err)
	assert.True(t, appErrors.IsStatus(err, http.StatusInternalServerError))
}

func TestCourseServiceExport(t *testing.T) {
	hrs := 1.5
	repo := newMockCourseRepo(
		models.Course{ID: 1, Title: "Intro", InstructorID: 1001, Domain: "CS", Level: "Beginner", DurationHrs: &hrs, Tags: []string{"a", "b"}},
		models.Course{ID: 2, Title: "Art", InstructorID: 1002, Domain: "Art", Level: "Beginner"},
	)
	svc := NewCourseService(repo, nil, nil, nil, nil)

	res, err := svc.Export(context.Background(), dto.CourseExportQuery{Domain: "cs"})
	require.NoError(t, err)
	assert.Equal(t, "courses.csv", res.Filename)
	assert.Equal(t, "text/csv", res.ContentType)
	assert.Equal(t, "ID,Title,Instructor,Domain,Level,Hours,Tags\n1,Intro,1001,CS,Beginner,1.5,\"a, b\"\n", string(res.Body))

	pdf, err := svc.Export(context.Background(), dto.CourseExportQuery{Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.NotEmpty(t, pdf.Body)

	_, err = svc.Export(context.Background(), dto.CourseExportQuery{Format: "doc"})
	assert.True(t, appErrors.IsStatus(err, http.StatusBadRequest))
}
