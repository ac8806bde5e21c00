package courseform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/course-admin/internal/models"
)

// Field names a form input.
type Field string

const (
	FieldTitle        Field = "title"
	FieldInstructorID Field = "instructorId"
	FieldDomain       Field = "domain"
	FieldLevel        Field = "level"
	FieldDurationHrs  Field = "durationHrs"
	FieldTags         Field = "tags"
	FieldDescription  Field = "description"
)

// Fields lists every form input in display order.
var Fields = []Field{FieldTitle, FieldInstructorID, FieldDomain, FieldLevel, FieldDurationHrs, FieldTags, FieldDescription}

// Values holds the raw text of every form input. An empty DurationHrs stands for an
// absent duration.
type Values struct {
	Title        string `validate:"required"`
	InstructorID string `validate:"required"`
	Domain       string `validate:"required"`
	Level        string `validate:"required"`
	DurationHrs  string
	Tags         string
	Description  string
}

// DefaultValues returns the values a fresh form starts with.
func DefaultValues(instructorID int64) Values {
	if instructorID <= 0 {
		instructorID = models.DefaultInstructorID
	}
	return Values{InstructorID: strconv.FormatInt(instructorID, 10)}
}

// ValuesFromCourse renders a course back into form text.
func ValuesFromCourse(c models.Course) Values {
	v := Values{
		Title:        c.Title,
		InstructorID: strconv.FormatInt(c.InstructorID, 10),
		Domain:       c.Domain,
		Level:        c.Level,
		Tags:         JoinTags(c.Tags),
	}
	if c.DurationHrs != nil {
		v.DurationHrs = strconv.FormatFloat(*c.DurationHrs, 'f', -1, 64)
	}
	if c.Description != nil {
		v.Description = *c.Description
	}
	return v
}

// Get returns the value of a single field.
func (v Values) Get(f Field) (string, error) {
	switch f {
	case FieldTitle:
		return v.Title, nil
	case FieldInstructorID:
		return v.InstructorID, nil
	case FieldDomain:
		return v.Domain, nil
	case FieldLevel:
		return v.Level, nil
	case FieldDurationHrs:
		return v.DurationHrs, nil
	case FieldTags:
		return v.Tags, nil
	case FieldDescription:
		return v.Description, nil
	}
	return "", fmt.Errorf("unknown form field %q", f)
}

// Patch returns a copy with the named fields overwritten and every other field kept.
func (v Values) Patch(patch map[Field]string) (Values, error) {
	out := v
	for f, value := range patch {
		switch f {
		case FieldTitle:
			out.Title = value
		case FieldInstructorID:
			out.InstructorID = value
		case FieldDomain:
			out.Domain = value
		case FieldLevel:
			out.Level = value
		case FieldDurationHrs:
			out.DurationHrs = value
		case FieldTags:
			out.Tags = value
		case FieldDescription:
			out.Description = value
		default:
			return v, fmt.Errorf("unknown form field %q", f)
		}
	}
	return out, nil
}

// IsValid reports whether title, instructor, domain and level are all filled in.
func (v Values) IsValid(validate *validator.Validate) bool {
	return validate.Struct(v) == nil
}

// Course builds the record a submit would send. Numeric inputs are coerced; an input
// that does not parse is reported as an error.
func (v Values) Course(id int64) (models.Course, error) {
	instructorID, err := strconv.ParseInt(strings.TrimSpace(v.InstructorID), 10, 64)
	if err != nil {
		return models.Course{}, fmt.Errorf("instructor id %q: %w", v.InstructorID, err)
	}

	course := models.Course{
		ID:           id,
		Title:        v.Title,
		InstructorID: instructorID,
		Domain:       v.Domain,
		Level:        v.Level,
		Tags:         ParseTags(v.Tags),
	}

	if raw := strings.TrimSpace(v.DurationHrs); raw != "" {
		hrs, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.Course{}, fmt.Errorf("duration %q: %w", v.DurationHrs, err)
		}
		if hrs < 0 {
			return models.Course{}, fmt.Errorf("duration %q: must not be negative", v.DurationHrs)
		}
		course.DurationHrs = &hrs
	}
	if v.Description != "" {
		desc := v.Description
		course.Description = &desc
	}
	return course, nil
}
