package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/noah-isme/course-admin/internal/courseform"
	"github.com/noah-isme/course-admin/internal/models"
)

const helpText = `commands:
  list                   reload courses from the API
  show                   print the form
  set <field> <value>    fields: title instructorId domain level durationHrs tags description
  edit <id>              load a listed course into the form
  submit                 create or update from the form
  delete <id>            delete a course
  reset                  clear the form and leave edit mode
  help                   this text
  quit                   exit`

var errQuit = errors.New("quit")

// session feeds terminal lines to the controller one event at a time.
type session struct {
	ctrl *courseform.Controller
	out  io.Writer
}

func (s *session) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(s.out, "> ")
	for scanner.Scan() {
		err := s.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(s.out, "error:", err)
		}
		fmt.Fprint(s.out, "> ")
	}
	return scanner.Err()
}

func (s *session) exec(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "quit", "exit":
		return errQuit
	case "help":
		fmt.Fprintln(s.out, helpText)
		return nil
	case "show":
		s.printForm()
		return nil
	case "list":
		_ = s.ctrl.LoadCourses(ctx)
	case "set":
		field, value, _ := strings.Cut(rest, " ")
		if field == "" {
			return errors.New("usage: set <field> <value>")
		}
		if err := s.ctrl.Patch(map[courseform.Field]string{courseform.Field(field): value}); err != nil {
			return err
		}
	case "edit":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		course, ok := s.find(id)
		if !ok {
			return fmt.Errorf("course %d is not in the list, run list first", id)
		}
		if err := s.ctrl.Edit(course); err != nil {
			return err
		}
		s.printForm()
	case "submit":
		_ = s.ctrl.Submit(ctx)
	case "delete":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		_ = s.ctrl.Remove(ctx, id)
	case "reset":
		if err := s.ctrl.Cancel(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}

	s.printStatus()
	return nil
}

func (s *session) find(id int64) (models.Course, bool) {
	for _, c := range s.ctrl.Courses() {
		if c.ID == id {
			return c, true
		}
	}
	return models.Course{}, false
}

func (s *session) printForm() {
	form := s.ctrl.Form()
	fmt.Fprintf(s.out, "[%s] valid=%t\n", s.ctrl.Mode(), s.ctrl.IsValid())
	for _, f := range courseform.Fields {
		value, _ := form.Get(f)
		fmt.Fprintf(s.out, "  %-13s %q\n", f, value)
	}
}

func (s *session) printStatus() {
	if msg := s.ctrl.Message(); msg != "" {
		fmt.Fprintln(s.out, msg)
	}
	fmt.Fprintf(s.out, "[%s]\n", s.ctrl.Mode())
	for _, c := range s.ctrl.Courses() {
		fmt.Fprintf(s.out, "  #%d %s (%s, %s) instructor=%d tags=%s\n",
			c.ID, c.Title, c.Domain, c.Level, c.InstructorID, courseform.JoinTags(c.Tags))
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid course id %q", raw)
	}
	return id, nil
}
