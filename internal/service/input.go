package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Dan9191/task-tracker/internal/models"
)

// TaskForm is the raw task form as submitted by the browser.
type TaskForm struct {
	Title       string
	Description string
	DueDate     string
}

// TaskInput is a validated task form.
type TaskInput struct {
	Title       string `form:"title" validate:"required,max=200"`
	Description string `form:"description"`
	DueDate     *time.Time
}

// RegisterForm is the raw registration form.
type RegisterForm struct {
	Username string
	Email    string
	Password string
}

// RegisterInput is a validated registration form.
type RegisterInput struct {
	Username string `form:"username" validate:"required,max=50"`
	Email    string `form:"email" validate:"required,email,max=120"`
	Password string `form:"password" validate:"required,min=6,max=72"`
}

// maxPasswordBytes is the longest input bcrypt accepts. The max tag above
// counts runes, so multibyte passwords need this check too.
const maxPasswordBytes = 72

// Accepted due date layouts, most specific first. datetime-local inputs submit
// the first one.
var dueDateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ParseTaskForm validates a task form. It returns either a usable TaskInput or
// a *models.ValidationError listing every offending field.
func (s *Service) ParseTaskForm(form TaskForm) (TaskInput, error) {
	in := TaskInput{
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
	}
	verr := &models.ValidationError{}

	if raw := strings.TrimSpace(form.DueDate); raw != "" {
		due, err := parseDueDate(raw, s.loc)
		if err != nil {
			verr.Add("due_date", "Due date is not a valid date")
		} else {
			in.DueDate = &due
		}
	}
	s.collect(verr, in)

	if err := verr.OrNil(); err != nil {
		return TaskInput{}, err
	}
	return in, nil
}

// ParseRegisterForm validates a registration form.
func (s *Service) ParseRegisterForm(form RegisterForm) (RegisterInput, error) {
	in := RegisterInput{
		Username: strings.TrimSpace(form.Username),
		Email:    strings.ToLower(strings.TrimSpace(form.Email)),
		Password: form.Password,
	}
	verr := &models.ValidationError{}
	s.collect(verr, in)
	if len(in.Password) > maxPasswordBytes {
		verr.Add("password", fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
	}
	if err := verr.OrNil(); err != nil {
		return RegisterInput{}, err
	}
	return in, nil
}

func (s *Service) collect(verr *models.ValidationError, in any) {
	err := s.validate.Struct(in)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("form", "Form could not be validated")
		return
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	label = strings.ToUpper(label[:1]) + label[1:]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "email":
		return label + " must be a valid e-mail address"
	default:
		return label + " is invalid"
	}
}

func parseDueDate(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
