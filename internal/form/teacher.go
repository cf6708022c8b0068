package form

import (
	"fmt"
	"strings"

	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
)

// DefaultCVMaxBytes caps CV uploads when no limit is configured.
const DefaultCVMaxBytes int64 = 5 * 1024 * 1024

// TeacherForm controls a teacher application draft.
type TeacherForm struct {
	Data models.TeacherApplication `json:"data"`
	State
	v          *validation.Validator
	cvMaxBytes int64
}

// NewTeacherForm returns an empty teacher draft.
func NewTeacherForm(v *validation.Validator, cvMaxBytes int64) *TeacherForm {
	if cvMaxBytes <= 0 {
		cvMaxBytes = DefaultCVMaxBytes
	}
	return &TeacherForm{Data: models.TeacherApplication{Instruments: []string{}}, State: newState(), v: v, cvMaxBytes: cvMaxBytes}
}

func (f *TeacherForm) Kind() models.FormKind { return models.FormTeacher }

func (f *TeacherForm) Honeypot() string { return f.Data.BotField }

// OnFieldChange stores a raw input value and clears that field's error.
func (f *TeacherForm) OnFieldChange(name string, value interface{}) error {
	d := &f.Data
	var err error
	switch name {
	case validation.FieldSendCopy:
		d.SendCopy, err = coerceBool(name, value)
	case validation.FieldPhone:
		var s string
		if s, err = coerceString(name, value); err == nil {
			d.Phone = validation.FormatPhoneProgressive(s)
		}
	case validation.FieldInstruments:
		coerced, ok := validation.Coerce(name, value)
		if !ok {
			return fmt.Errorf("field %s: unexpected value type %T", name, value)
		}
		d.Instruments = coerced.([]string)
	case validation.FieldFullName:
		d.FullName, err = coerceString(name, value)
	case validation.FieldEmail:
		d.Email, err = coerceString(name, value)
	case validation.FieldQualifications:
		d.Qualifications, err = coerceString(name, value)
	case validation.FieldExperience:
		d.Experience, err = coerceString(name, value)
	case validation.FieldBotField:
		d.BotField, err = coerceString(name, value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if err != nil {
		return err
	}
	f.clearError(name)
	return nil
}

// OnToggleInstrument adds the instrument when absent and removes it when present.
func (f *TeacherForm) OnToggleInstrument(name string) {
	for i, existing := range f.Data.Instruments {
		if existing == name {
			f.Data.Instruments = append(f.Data.Instruments[:i:i], f.Data.Instruments[i+1:]...)
			f.clearError(validation.FieldInstruments)
			return
		}
	}
	f.Data.Instruments = append(f.Data.Instruments, name)
	f.clearError(validation.FieldInstruments)
}

// AttachCV stores the optional CV. Oversized files are rejected and reported
// under the cvFile key.
func (f *TeacherForm) AttachCV(cv *models.CVFile) bool {
	if cv != nil && cv.Size > f.cvMaxBytes {
		f.Errors[validation.FieldCV] = f.cvTooLarge()
		f.Data.CV = nil
		return false
	}
	f.Data.CV = cv
	f.clearError(validation.FieldCV)
	return true
}

func (f *TeacherForm) cvTooLarge() string {
	return fmt.Sprintf("File size must be under %dMB", f.cvMaxBytes/(1024*1024))
}

// ValidateAll recomputes the error map from scratch and reports validity.
func (f *TeacherForm) ValidateAll() bool {
	d := f.Data
	errs := map[string]string{}

	if strings.TrimSpace(d.FullName) == "" {
		errs[validation.FieldFullName] = "Full Name is required"
	}
	if !f.v.IsValid(validation.FieldEmail, d.Email) {
		errs[validation.FieldEmail] = "Invalid email address"
	}
	if msg := phoneError(f.v, validation.FieldPhone, d.Phone, invalidPhoneHint); msg != "" {
		errs[validation.FieldPhone] = msg
	}
	if !f.v.IsValid(validation.FieldInstruments, d.Instruments) {
		errs[validation.FieldInstruments] = "Select at least one instrument"
	}
	if strings.TrimSpace(d.Qualifications) == "" {
		errs[validation.FieldQualifications] = "Qualifications are required"
	}
	if strings.TrimSpace(d.Experience) == "" {
		errs[validation.FieldExperience] = "Experience details are required"
	}
	if d.CV != nil && d.CV.Size > f.cvMaxBytes {
		errs[validation.FieldCV] = f.cvTooLarge()
	}

	f.Errors = errs
	return len(errs) == 0
}

// Validity reports live per-field validity for the indicator icons.
func (f *TeacherForm) Validity() map[string]bool {
	d := f.Data
	return validity(f.v, map[string]interface{}{
		validation.FieldFullName:       d.FullName,
		validation.FieldEmail:          d.Email,
		validation.FieldPhone:          d.Phone,
		validation.FieldInstruments:    d.Instruments,
		validation.FieldQualifications: d.Qualifications,
		validation.FieldExperience:     d.Experience,
	})
}

// Reset restores the empty draft.
func (f *TeacherForm) Reset() {
	f.Data = models.TeacherApplication{Instruments: []string{}}
	f.State = newState()
}

// Bind attaches collaborators after the form was decoded from storage.
func (f *TeacherForm) Bind(v *validation.Validator, cvMaxBytes int64) {
	f.v = v
	if cvMaxBytes <= 0 {
		cvMaxBytes = DefaultCVMaxBytes
	}
	f.cvMaxBytes = cvMaxBytes
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
	if f.Data.Instruments == nil {
		f.Data.Instruments = []string{}
	}
}
