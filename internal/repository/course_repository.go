package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-admin/internal/models"
	appErrors "github.com/noah-isme/course-admin/pkg/errors"
)

const courseColumns = "id, title, instructor_id, domain, level, duration_hrs, tags, description, created_at, updated_at"

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new repository instance.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching the filter, newest first.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	base := "FROM courses WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.InstructorID > 0 {
		conditions = append(conditions, fmt.Sprintf("instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.Domain != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(domain) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Domain)
	}
	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(level) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(COALESCE(description, '')) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC, id DESC", courseColumns, base)
	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Exists reports whether a course with the id is stored.
func (r *CourseRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM courses WHERE id = $1 LIMIT 1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check course id: %w", err)
	}
	return true, nil
}

// Create persists a new course under the id it already carries.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	if course.Tags == nil {
		course.Tags = pq.StringArray{}
	}

	const query = `INSERT INTO courses (id, title, instructor_id, domain, level, duration_hrs, tags, description, created_at, updated_at) VALUES (:id, :title, :instructor_id, :domain, :level, :duration_hrs, :tags, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		if isUniqueViolation(err) {
			return appErrors.WrapAs(err, appErrors.ErrConflict, "course id already exists")
		}
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update replaces every writable column of a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	if course.Tags == nil {
		course.Tags = pq.StringArray{}
	}

	const query = `UPDATE courses SET title = :title, instructor_id = :instructor_id, domain = :domain, level = :level, duration_hrs = :duration_hrs, tags = :tags, description = :description, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a course record.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return requireAffected(res)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// requireAffected maps a zero row count to sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
