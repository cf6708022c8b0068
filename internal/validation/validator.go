// Package validation holds the field rules shared by the public forms.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tkmproject/tkm-api/internal/models"
)

const (
	MinStudentAge = 6
	MaxStudentAge = 12

	dobLayout = "2006-01-02"
)

var (
	phonePattern     = regexp.MustCompile(`^(\+27|0)\d{9}$`)
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneSeparators  = regexp.MustCompile(`[\s\-()]`)
	nonDigitsPattern = regexp.MustCompile(`\D`)
)

// Field names understood by IsValid.
const (
	FieldParentName            = "parentName"
	FieldStudentName           = "studentName"
	FieldStudentDOB            = "studentDob"
	FieldSkillLevel            = "skillLevel"
	FieldPriorExperience       = "priorExperience"
	FieldClasses               = "classes"
	FieldAddress               = "address"
	FieldPhone                 = "phone"
	FieldEmail                 = "email"
	FieldReferral              = "referral"
	FieldEmergencyContactName  = "emergencyContactName"
	FieldEmergencyContactPhone = "emergencyContactPhone"
	FieldMedicalInfo           = "medicalInfo"
	FieldConsent               = "consent"
	FieldSendCopy              = "sendCopy"
	FieldBotField              = "botField"
	FieldFullName              = "fullName"
	FieldInstruments           = "instruments"
	FieldQualifications        = "qualifications"
	FieldExperience            = "experience"
	FieldName                  = "name"
	FieldSubject               = "subject"
	FieldMessage               = "message"
	FieldCV                    = "cvFile"
)

var rules = map[string]string{
	FieldParentName:            "nonblank",
	FieldStudentName:           "nonblank",
	FieldStudentDOB:            "student_age",
	FieldSkillLevel:            "oneof=" + models.SkillBeginner + " " + models.SkillIntermediate,
	FieldClasses:               "program",
	FieldAddress:               "nonblank",
	FieldPhone:                 "za_phone",
	FieldEmail:                 "site_email",
	FieldEmergencyContactName:  "nonblank",
	FieldEmergencyContactPhone: "za_phone",
	FieldConsent:               "eq=true",
	FieldFullName:              "nonblank",
	FieldInstruments:           "min=1,dive,program",
	FieldQualifications:        "nonblank",
	FieldExperience:            "nonblank",
	FieldName:                  "nonblank",
	FieldSubject:               "nonblank",
	FieldMessage:               "nonblank",
}

// Fields that are stored as booleans or lists instead of text.
var (
	boolFields  = map[string]bool{FieldConsent: true, FieldSendCopy: true}
	sliceFields = map[string]bool{FieldInstruments: true}
)

// Validator checks single form fields. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New builds a Validator. A nil clock uses time.Now.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validator.New(), now: now}

	must(v.validate.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String && strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.validate.RegisterValidation("za_phone", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String && IsPhone(fl.Field().String())
	}))
	must(v.validate.RegisterValidation("site_email", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String && emailPattern.MatchString(fl.Field().String())
	}))
	must(v.validate.RegisterValidation("program", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String && models.IsProgram(fl.Field().String())
	}))
	must(v.validate.RegisterValidation("student_age", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		age, ok := v.Age(fl.Field().String())
		return ok && age >= MinStudentAge && age <= MaxStudentAge
	}))

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Now returns the validator clock.
func (v *Validator) Now() time.Time {
	return v.now()
}

// IsValid reports whether value satisfies the rule for field. Optional
// free-text fields are always valid; unknown fields never are.
func (v *Validator) IsValid(field string, value interface{}) bool {
	switch field {
	case FieldPriorExperience, FieldReferral, FieldMedicalInfo, FieldSendCopy:
		return true
	}
	rule, ok := rules[field]
	if !ok {
		return false
	}
	coerced, ok := Coerce(field, value)
	if !ok {
		return false
	}
	return v.validate.Var(coerced, rule) == nil
}

// Coerce converts a raw input value into the Go type stored for field.
func Coerce(field string, value interface{}) (interface{}, bool) {
	switch {
	case boolFields[field]:
		switch b := value.(type) {
		case bool:
			return b, true
		case string:
			return b == "true" || b == "on", true
		case nil:
			return false, true
		}
		return nil, false
	case sliceFields[field]:
		switch s := value.(type) {
		case []string:
			return s, true
		case []interface{}:
			out := make([]string, 0, len(s))
			for _, item := range s {
				str, ok := item.(string)
				if !ok {
					return nil, false
				}
				out = append(out, str)
			}
			return out, true
		case nil:
			return []string{}, true
		}
		return nil, false
	default:
		switch s := value.(type) {
		case string:
			return s, true
		case nil:
			return "", true
		}
		return nil, false
	}
}

// Age returns the whole years between dob (YYYY-MM-DD) and the validator clock.
func (v *Validator) Age(dob string) (int, bool) {
	birth, err := time.Parse(dobLayout, strings.TrimSpace(dob))
	if err != nil {
		return 0, false
	}
	return AgeAt(birth, v.now()), true
}

// AgeAt returns completed years between birth and now, by calendar date.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// StripPhone removes spaces, dashes and parentheses.
func StripPhone(raw string) string {
	return phoneSeparators.ReplaceAllString(raw, "")
}

// IsPhone reports whether raw is a South African number in local or +27 form.
func IsPhone(raw string) bool {
	return phonePattern.MatchString(StripPhone(raw))
}

// NormalizePhone canonicalises a number to +27 form. Numbers already in
// +27 form pass through stripped.
func NormalizePhone(raw string) string {
	stripped := StripPhone(raw)
	if strings.HasPrefix(stripped, "0") {
		return "+27" + stripped[1:]
	}
	return stripped
}

// FormatPhoneProgressive groups typed digits as (xxx) xxx-xxxx.
func FormatPhoneProgressive(raw string) string {
	digits := nonDigitsPattern.ReplaceAllString(raw, "")
	if len(digits) > 10 {
		digits = digits[:10]
	}
	switch {
	case len(digits) < 4:
		return digits
	case len(digits) < 7:
		return fmt.Sprintf("(%s) %s", digits[:3], digits[3:])
	default:
		return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
	}
}
