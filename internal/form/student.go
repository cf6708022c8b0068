package form

import (
	"fmt"
	"strings"

	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
)

const invalidPhoneHint = "Invalid SA phone (e.g. 082 123 4567)"

// StudentForm controls a student registration draft.
type StudentForm struct {
	Data models.StudentRegistration `json:"data"`
	State
	v *validation.Validator
}

// NewStudentForm returns an empty student draft.
func NewStudentForm(v *validation.Validator) *StudentForm {
	return &StudentForm{State: newState(), v: v}
}

func (f *StudentForm) Kind() models.FormKind { return models.FormStudent }

func (f *StudentForm) Honeypot() string { return f.Data.BotField }

// OnFieldChange stores a raw input value and clears that field's error.
func (f *StudentForm) OnFieldChange(name string, value interface{}) error {
	d := &f.Data
	var err error
	switch name {
	case validation.FieldConsent:
		d.Consent, err = coerceBool(name, value)
	case validation.FieldSendCopy:
		d.SendCopy, err = coerceBool(name, value)
	case validation.FieldPhone, validation.FieldEmergencyContactPhone:
		var s string
		if s, err = coerceString(name, value); err == nil {
			s = validation.FormatPhoneProgressive(s)
			if name == validation.FieldPhone {
				d.Phone = s
			} else {
				d.EmergencyContactPhone = s
			}
		}
	default:
		target := f.textField(name)
		if target == nil {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		*target, err = coerceString(name, value)
	}
	if err != nil {
		return err
	}
	f.clearError(name)
	return nil
}

func (f *StudentForm) textField(name string) *string {
	d := &f.Data
	switch name {
	case validation.FieldParentName:
		return &d.ParentName
	case validation.FieldStudentName:
		return &d.StudentName
	case validation.FieldStudentDOB:
		return &d.StudentDOB
	case validation.FieldSkillLevel:
		return &d.SkillLevel
	case validation.FieldPriorExperience:
		return &d.PriorExperience
	case validation.FieldClasses:
		return &d.Classes
	case validation.FieldAddress:
		return &d.Address
	case validation.FieldEmail:
		return &d.Email
	case validation.FieldReferral:
		return &d.Referral
	case validation.FieldEmergencyContactName:
		return &d.EmergencyContactName
	case validation.FieldMedicalInfo:
		return &d.MedicalInfo
	case validation.FieldBotField:
		return &d.BotField
	}
	return nil
}

// OnSelectClass sets the single program choice.
func (f *StudentForm) OnSelectClass(program string) {
	f.Data.Classes = program
	f.clearError(validation.FieldClasses)
}

// ValidateAll recomputes the error map from scratch and reports validity.
func (f *StudentForm) ValidateAll() bool {
	d := f.Data
	errs := map[string]string{}

	if strings.TrimSpace(d.ParentName) == "" {
		errs[validation.FieldParentName] = "Parent name is required"
	}
	if strings.TrimSpace(d.StudentName) == "" {
		errs[validation.FieldStudentName] = "Student name is required"
	}
	if age, ok := f.v.Age(d.StudentDOB); !ok {
		errs[validation.FieldStudentDOB] = "Date of Birth is required"
	} else if age < validation.MinStudentAge || age > validation.MaxStudentAge {
		errs[validation.FieldStudentDOB] = fmt.Sprintf("Student must be between %d and %d years old (Current age: %d)",
			validation.MinStudentAge, validation.MaxStudentAge, age)
	}
	if !f.v.IsValid(validation.FieldSkillLevel, d.SkillLevel) {
		errs[validation.FieldSkillLevel] = "Please select a skill level"
	}
	if !f.v.IsValid(validation.FieldClasses, d.Classes) {
		errs[validation.FieldClasses] = "Please select one class"
	}
	if strings.TrimSpace(d.Address) == "" {
		errs[validation.FieldAddress] = "Full address is required"
	}
	if msg := phoneError(f.v, validation.FieldPhone, d.Phone, invalidPhoneHint); msg != "" {
		errs[validation.FieldPhone] = msg
	}
	if d.Email == "" {
		errs[validation.FieldEmail] = "Email is required"
	} else if !f.v.IsValid(validation.FieldEmail, d.Email) {
		errs[validation.FieldEmail] = "Invalid email address"
	}
	if strings.TrimSpace(d.EmergencyContactName) == "" {
		errs[validation.FieldEmergencyContactName] = "Emergency contact name is required"
	}
	if msg := phoneError(f.v, validation.FieldEmergencyContactPhone, d.EmergencyContactPhone, "Invalid SA phone"); msg != "" {
		errs[validation.FieldEmergencyContactPhone] = msg
	}
	if !d.Consent {
		errs[validation.FieldConsent] = "You must consent to continue"
	}

	f.Errors = errs
	return len(errs) == 0
}

// Validity reports live per-field validity for the indicator icons.
func (f *StudentForm) Validity() map[string]bool {
	d := f.Data
	return validity(f.v, map[string]interface{}{
		validation.FieldParentName:            d.ParentName,
		validation.FieldStudentName:           d.StudentName,
		validation.FieldStudentDOB:            d.StudentDOB,
		validation.FieldSkillLevel:            d.SkillLevel,
		validation.FieldPriorExperience:       d.PriorExperience,
		validation.FieldClasses:               d.Classes,
		validation.FieldAddress:               d.Address,
		validation.FieldPhone:                 d.Phone,
		validation.FieldEmail:                 d.Email,
		validation.FieldEmergencyContactName:  d.EmergencyContactName,
		validation.FieldEmergencyContactPhone: d.EmergencyContactPhone,
		validation.FieldConsent:               d.Consent,
	})
}

// Reset restores the empty draft.
func (f *StudentForm) Reset() {
	f.Data = models.StudentRegistration{}
	f.State = newState()
}

// Bind attaches a validator after the form was decoded from storage.
func (f *StudentForm) Bind(v *validation.Validator) {
	f.v = v
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
}
