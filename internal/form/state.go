// Package form holds the per-form draft controllers: the draft record, its
// error map and submission status.
package form

import (
	"errors"
	"fmt"

	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
)

// Outcome is the result of the last submission attempt.
type Outcome string

const (
	OutcomeIdle    Outcome = "idle"
	OutcomeError   Outcome = "error"
	OutcomeSuccess Outcome = "success"
)

// ErrUnknownField is returned for field names the form does not own.
var ErrUnknownField = errors.New("unknown field")

// ErrWrongForm is returned when a group setter is used on a form without that group.
var ErrWrongForm = errors.New("operation not supported by this form")

// State is the status shared by every form controller.
type State struct {
	Errors     map[string]string `json:"errors"`
	Submitting bool              `json:"submitting"`
	Outcome    Outcome           `json:"outcome"`
}

func newState() State {
	return State{Errors: map[string]string{}, Outcome: OutcomeIdle}
}

// FormState exposes the embedded state.
func (s *State) FormState() *State {
	return s
}

// HasErrors reports whether the last validation produced any error.
func (s *State) HasErrors() bool {
	return len(s.Errors) > 0
}

func (s *State) clearError(field string) {
	if s.Errors == nil {
		s.Errors = map[string]string{}
	}
	delete(s.Errors, field)
}

// Controller is implemented by the student, teacher and contact forms.
type Controller interface {
	Kind() models.FormKind
	OnFieldChange(name string, value interface{}) error
	ValidateAll() bool
	Validity() map[string]bool
	Reset()
	Honeypot() string
	FormState() *State
}

// New returns an empty controller for kind.
func New(kind models.FormKind, v *validation.Validator, cvMaxBytes int64) (Controller, error) {
	switch kind {
	case models.FormStudent:
		return NewStudentForm(v), nil
	case models.FormTeacher:
		return NewTeacherForm(v, cvMaxBytes), nil
	case models.FormContact:
		return NewContactForm(v), nil
	}
	return nil, fmt.Errorf("unknown form %q", kind)
}

func coerceString(name string, value interface{}) (string, error) {
	coerced, ok := validation.Coerce(name, value)
	if !ok {
		return "", fmt.Errorf("field %s: unexpected value type %T", name, value)
	}
	s, _ := coerced.(string)
	return s, nil
}

func coerceBool(name string, value interface{}) (bool, error) {
	coerced, ok := validation.Coerce(name, value)
	if !ok {
		return false, fmt.Errorf("field %s: unexpected value type %T", name, value)
	}
	b, _ := coerced.(bool)
	return b, nil
}

// phoneError returns the submit message for a phone field, or "".
func phoneError(v *validation.Validator, field, value, invalidMsg string) string {
	switch {
	case value == "":
		if field == validation.FieldEmergencyContactPhone {
			return "Contact number is required"
		}
		return "Phone number is required"
	case !v.IsValid(field, value):
		return invalidMsg
	}
	return ""
}

func validity(v *validation.Validator, values map[string]interface{}) map[string]bool {
	out := make(map[string]bool, len(values))
	for field, value := range values {
		out[field] = v.IsValid(field, value)
	}
	return out
}
