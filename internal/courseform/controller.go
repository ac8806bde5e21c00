// Package courseform drives the instructor's course form: it holds the form inputs,
// tracks whether a new course is being created or an existing one edited, and sends
// each submit or delete to a Gateway before refreshing the course list.
package courseform

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-admin/internal/models"
)

var (
	// ErrInvalidForm is returned when a required field is missing or a number does not parse.
	ErrInvalidForm = errors.New("courseform: required fields missing")
	// ErrBusy is returned when an event arrives while a request is still in flight.
	ErrBusy = errors.New("courseform: request in flight")
)

// Gateway gives access to the remote course records.
type Gateway interface {
	List(ctx context.Context) ([]models.Course, error)
	Create(ctx context.Context, course models.Course) error
	Update(ctx context.Context, id int64, course models.Course) error
	Delete(ctx context.Context, id int64) error
}

// Controller owns the form state and serialises the events that change it. At most one
// gateway request is in flight at a time; events arriving meanwhile get ErrBusy.
type Controller struct {
	gateway  Gateway
	validate *validator.Validate
	logger   *zap.Logger
	ids      *IDGenerator
	defaults Values

	mu    sync.Mutex
	state State
	busy  bool
}

// NewController constructs a controller in Creating mode with default form values.
func NewController(gateway Gateway, validate *validator.Validate, logger *zap.Logger, defaultInstructorID int64) *Controller {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultValues(defaultInstructorID)
	return &Controller{
		gateway:  gateway,
		validate: validate,
		logger:   logger,
		ids:      NewIDGenerator(),
		defaults: defaults,
		state:    Initial(defaults),
	}
}

// State returns a snapshot of the component state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Message returns the last user facing message.
func (c *Controller) Message() string {
	return c.State().Message
}

// Courses returns the list from the last successful load.
func (c *Controller) Courses() []models.Course {
	return c.State().Courses
}

// Form returns the current form values.
func (c *Controller) Form() Values {
	return c.State().Form
}

// Mode returns Creating or Editing(id).
func (c *Controller) Mode() Mode {
	return c.State().Mode
}

// IsValid reports whether every required field is filled in.
func (c *Controller) IsValid() bool {
	return c.Form().IsValid(c.validate)
}

// Patch overwrites the named form fields, leaving the others untouched.
func (c *Controller) Patch(values map[Field]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		c.state = Busy(c.state)
		return ErrBusy
	}
	next, err := c.state.Form.Patch(values)
	if err != nil {
		return err
	}
	c.state.Form = next
	return nil
}

// SetDefaults resets every form field without leaving edit mode.
func (c *Controller) SetDefaults() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		c.state = Busy(c.state)
		return ErrBusy
	}
	c.state.Form = c.defaults
	return nil
}

// Cancel drops any edit in progress and resets the form.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		c.state = Busy(c.state)
		return ErrBusy
	}
	c.state.Form = c.defaults
	c.state.Mode = Creating()
	return nil
}

// Edit switches to editing course and loads its fields into the form.
func (c *Controller) Edit(course models.Course) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		c.state = Busy(c.state)
		return ErrBusy
	}
	c.state = Edit(c.state, course)
	return nil
}

// Submit validates the form and creates or updates the course depending on the mode.
// A successful mutation resets the form and reloads the list; a failed one leaves the
// form and edit marker as they were so the user can retry.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.state = Busy(c.state)
		c.mu.Unlock()
		return ErrBusy
	}
	if !c.state.Form.IsValid(c.validate) {
		c.state = Rejected(c.state)
		c.mu.Unlock()
		return ErrInvalidForm
	}

	id, updating := c.state.Mode.EditingID()
	if !updating {
		id = c.ids.Next()
	}
	course, err := c.state.Form.Course(id)
	if err != nil {
		c.logger.Debug("course form coercion failed", zap.Error(err))
		c.state = Rejected(c.state)
		c.mu.Unlock()
		return ErrInvalidForm
	}
	c.busy = true
	c.mu.Unlock()
	defer c.settle()

	if updating {
		err = c.gateway.Update(ctx, id, course)
	} else {
		err = c.gateway.Create(ctx, course)
	}

	c.mu.Lock()
	c.state = Submitted(c.state, updating, err, c.defaults)
	c.mu.Unlock()

	if err != nil {
		if updating {
			c.logger.Error("update course failed", zap.Int64("course_id", id), zap.Error(err))
		} else {
			c.logger.Error("create course failed", zap.Int64("course_id", id), zap.Error(err))
		}
		return err
	}

	_ = c.refresh(ctx)
	return nil
}

// Remove deletes the course with the given id and reloads the list on success.
func (c *Controller) Remove(ctx context.Context, id int64) error {
	if err := c.acquire(true); err != nil {
		return err
	}
	defer c.settle()

	err := c.gateway.Delete(ctx, id)

	c.mu.Lock()
	c.state = Removed(c.state, err)
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("delete course failed", zap.Int64("course_id", id), zap.Error(err))
		return err
	}

	_ = c.refresh(ctx)
	return nil
}

// LoadCourses replaces the local list with the gateway's. On failure the list is kept
// and the error is logged; the user facing message is not touched.
func (c *Controller) LoadCourses(ctx context.Context) error {
	if err := c.acquire(false); err != nil {
		return err
	}
	defer c.settle()
	return c.refresh(ctx)
}

func (c *Controller) refresh(ctx context.Context) error {
	courses, err := c.gateway.List(ctx)
	if err != nil {
		c.logger.Error("load courses failed", zap.Error(err))
		return err
	}

	c.mu.Lock()
	c.state = Loaded(c.state, courses)
	c.mu.Unlock()
	return nil
}

func (c *Controller) acquire(announce bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		if announce {
			c.state = Busy(c.state)
		}
		return ErrBusy
	}
	c.busy = true
	return nil
}

func (c *Controller) settle() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}
