package form

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
)

// Draft is a server-held form session. Exactly one of the form pointers is set.
type Draft struct {
	ID             string          `json:"id"`
	Kind           models.FormKind `json:"kind"`
	IdempotencyKey string          `json:"idempotencyKey"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Student        *StudentForm    `json:"student,omitempty"`
	Teacher        *TeacherForm    `json:"teacher,omitempty"`
	Contact        *ContactForm    `json:"contact,omitempty"`
}

// NewDraft opens an empty draft of kind.
func NewDraft(kind models.FormKind, v *validation.Validator, cvMaxBytes int64, now time.Time) (*Draft, error) {
	d := &Draft{
		ID:             uuid.NewString(),
		Kind:           kind,
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	switch kind {
	case models.FormStudent:
		d.Student = NewStudentForm(v)
	case models.FormTeacher:
		d.Teacher = NewTeacherForm(v, cvMaxBytes)
	case models.FormContact:
		d.Contact = NewContactForm(v)
	default:
		return nil, fmt.Errorf("unknown form %q", kind)
	}
	return d, nil
}

// Controller returns the form held by the draft.
func (d *Draft) Controller() (Controller, error) {
	switch {
	case d.Kind == models.FormStudent && d.Student != nil:
		return d.Student, nil
	case d.Kind == models.FormTeacher && d.Teacher != nil:
		return d.Teacher, nil
	case d.Kind == models.FormContact && d.Contact != nil:
		return d.Contact, nil
	}
	return nil, fmt.Errorf("draft %s has no %s form", d.ID, d.Kind)
}

// Bind reattaches collaborators after the draft was decoded.
func (d *Draft) Bind(v *validation.Validator, cvMaxBytes int64) {
	if d.Student != nil {
		d.Student.Bind(v)
	}
	if d.Teacher != nil {
		d.Teacher.Bind(v, cvMaxBytes)
	}
	if d.Contact != nil {
		d.Contact.Bind(v)
	}
}

// SelectClass applies the single-choice class setter.
func (d *Draft) SelectClass(program string) error {
	if d.Student == nil {
		return ErrWrongForm
	}
	d.Student.OnSelectClass(program)
	return nil
}

// ToggleInstrument applies the multi-choice instrument setter.
func (d *Draft) ToggleInstrument(name string) error {
	if d.Teacher == nil {
		return ErrWrongForm
	}
	d.Teacher.OnToggleInstrument(name)
	return nil
}
