package form

import (
	"fmt"
	"strings"

	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
)

// ContactForm controls a contact inquiry draft.
type ContactForm struct {
	Data models.ContactInquiry `json:"data"`
	State
	v *validation.Validator
}

// NewContactForm returns an empty contact draft.
func NewContactForm(v *validation.Validator) *ContactForm {
	return &ContactForm{State: newState(), v: v}
}

func (f *ContactForm) Kind() models.FormKind { return models.FormContact }

func (f *ContactForm) Honeypot() string { return f.Data.BotField }

// OnFieldChange stores a raw input value and clears that field's error.
func (f *ContactForm) OnFieldChange(name string, value interface{}) error {
	var target *string
	switch name {
	case validation.FieldName:
		target = &f.Data.Name
	case validation.FieldEmail:
		target = &f.Data.Email
	case validation.FieldSubject:
		target = &f.Data.Subject
	case validation.FieldMessage:
		target = &f.Data.Message
	case validation.FieldBotField:
		target = &f.Data.BotField
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	s, err := coerceString(name, value)
	if err != nil {
		return err
	}
	*target = s
	f.clearError(name)
	return nil
}

// ValidateAll recomputes the error map from scratch and reports validity.
func (f *ContactForm) ValidateAll() bool {
	d := f.Data
	errs := map[string]string{}
	if strings.TrimSpace(d.Name) == "" {
		errs[validation.FieldName] = "Name is required"
	}
	if d.Email == "" {
		errs[validation.FieldEmail] = "Email is required"
	} else if !f.v.IsValid(validation.FieldEmail, d.Email) {
		errs[validation.FieldEmail] = "Invalid email address"
	}
	if strings.TrimSpace(d.Subject) == "" {
		errs[validation.FieldSubject] = "Subject is required"
	}
	if strings.TrimSpace(d.Message) == "" {
		errs[validation.FieldMessage] = "Message is required"
	}
	f.Errors = errs
	return len(errs) == 0
}

// Validity reports live per-field validity.
func (f *ContactForm) Validity() map[string]bool {
	d := f.Data
	return validity(f.v, map[string]interface{}{
		validation.FieldName:    d.Name,
		validation.FieldEmail:   d.Email,
		validation.FieldSubject: d.Subject,
		validation.FieldMessage: d.Message,
	})
}

// Reset restores the empty draft.
func (f *ContactForm) Reset() {
	f.Data = models.ContactInquiry{}
	f.State = newState()
}

// Bind attaches a validator after the form was decoded from storage.
func (f *ContactForm) Bind(v *validation.Validator) {
	f.v = v
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
}
