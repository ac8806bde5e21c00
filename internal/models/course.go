package models

import (
	"time"

	"github.com/lib/pq"
)

// DefaultInstructorID is assigned to new courses when the form is reset.
const DefaultInstructorID int64 = 1001

// Course represents a course offered by an instructor.
type Course struct {
	ID           int64          `db:"id" json:"id"`
	Title        string         `db:"title" json:"title"`
	InstructorID int64          `db:"instructor_id" json:"instructor_id"`
	Domain       string         `db:"domain" json:"domain"`
	Level        string         `db:"level" json:"level"`
	DurationHrs  *float64       `db:"duration_hrs" json:"duration_hrs"`
	Tags         pq.StringArray `db:"tags" json:"tags"`
	Description  *string        `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at,omitempty"`
}

// CourseFilter captures supported filters for listing courses.
type CourseFilter struct {
	InstructorID int64
	Domain       string
	Level        string
	Search       string
}
