package courseform

import (
	"fmt"

	"github.com/noah-isme/course-admin/internal/models"
)

// User facing messages.
const (
	MsgRequiredFields = "Please fill required fields."
	MsgBusy           = "Please wait for the current request to finish."
	MsgCourseAdded    = "Course added successfully"
	MsgAddFailed      = "Failed to add course"
	MsgCourseUpdated  = "Course updated successfully"
	MsgUpdateFailed   = "Failed to update course"
	MsgCourseDeleted  = "Course deleted successfully"
	MsgDeleteFailed   = "Failed to delete course"
)

// Mode is either Creating or Editing(id).
type Mode struct {
	id      int64
	editing bool
}

// Creating is the mode for a new record.
func Creating() Mode { return Mode{} }

// Editing is the mode for changing the record with the given id.
func Editing(id int64) Mode { return Mode{id: id, editing: true} }

// EditingID returns the edit marker.
func (m Mode) EditingID() (int64, bool) { return m.id, m.editing }

func (m Mode) String() string {
	if m.editing {
		return fmt.Sprintf("editing #%d", m.id)
	}
	return "creating"
}

// State is everything the form component owns.
type State struct {
	Form    Values
	Mode    Mode
	Message string
	Courses []models.Course
}

// Initial returns the state of a freshly opened form.
func Initial(defaults Values) State {
	return State{Form: defaults, Mode: Creating(), Courses: []models.Course{}}
}

// Edit switches to Editing(c.ID) and loads every field of c into the form.
func Edit(s State, c models.Course) State {
	s.Mode = Editing(c.ID)
	s.Form = ValuesFromCourse(c)
	return s
}

// Rejected records a submit that failed local validation.
func Rejected(s State) State {
	s.Message = MsgRequiredFields
	return s
}

// Busy records an event that arrived while a request was in flight.
func Busy(s State) State {
	s.Message = MsgBusy
	return s
}

// Submitted applies the outcome of a create or update. On success the form returns to
// defaults in Creating mode; on failure only the message changes.
func Submitted(s State, updating bool, err error, defaults Values) State {
	switch {
	case err != nil && updating:
		s.Message = MsgUpdateFailed
	case err != nil:
		s.Message = MsgAddFailed
	default:
		if updating {
			s.Message = MsgCourseUpdated
		} else {
			s.Message = MsgCourseAdded
		}
		s.Form = defaults
		s.Mode = Creating()
	}
	return s
}

// Removed applies the outcome of a delete.
func Removed(s State, err error) State {
	if err != nil {
		s.Message = MsgDeleteFailed
	} else {
		s.Message = MsgCourseDeleted
	}
	return s
}

// Loaded replaces the local course list wholesale.
func Loaded(s State, courses []models.Course) State {
	list := make([]models.Course, len(courses))
	copy(list, courses)
	s.Courses = list
	return s
}

// clone copies the slices so a snapshot can be handed out safely.
func (s State) clone() State {
	list := make([]models.Course, len(s.Courses))
	copy(list, s.Courses)
	s.Courses = list
	return s
}
