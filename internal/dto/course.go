package dto

import "github.com/noah-isme/course-admin/internal/models"

// CoursePayload is the wire body for creating or replacing a course.
type CoursePayload struct {
	ID           int64    `json:"id" validate:"required,gt=0"`
	Title        string   `json:"title" validate:"required"`
	InstructorID int64    `json:"instructor_id" validate:"required,gt=0"`
	Domain       string   `json:"domain" validate:"required"`
	Level        string   `json:"level" validate:"required"`
	DurationHrs  *float64 `json:"duration_hrs" validate:"omitempty,gte=0"`
	Tags         []string `json:"tags" validate:"dive,required"`
	Description  *string  `json:"description,omitempty"`
}

// NewCoursePayload copies the writable fields of a course.
func NewCoursePayload(c models.Course) CoursePayload {
	tags := []string(c.Tags)
	if tags == nil {
		tags = []string{}
	}
	return CoursePayload{
		ID:           c.ID,
		Title:        c.Title,
		InstructorID: c.InstructorID,
		Domain:       c.Domain,
		Level:        c.Level,
		DurationHrs:  c.DurationHrs,
		Tags:         tags,
		Description:  c.Description,
	}
}

// Course converts the payload back into a domain record.
func (p CoursePayload) Course() models.Course {
	tags := make([]string, len(p.Tags))
	copy(tags, p.Tags)
	return models.Course{
		ID:           p.ID,
		Title:        p.Title,
		InstructorID: p.InstructorID,
		Domain:       p.Domain,
		Level:        p.Level,
		DurationHrs:  p.DurationHrs,
		Tags:         tags,
		Description:  p.Description,
	}
}

// CourseExportQuery selects the catalog rows and document format for an export.
type CourseExportQuery struct {
	Format string `form:"format"`
	Domain string `form:"domain"`
	Level  string `form:"level"`
}
