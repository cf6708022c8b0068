package form

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
)

func testValidator() *validation.Validator {
	return validation.New(func() time.Time { return time.Date(2026, time.October, 16, 9, 0, 0, 0, time.Local) })
}

func validStudent(t *testing.T) *StudentForm {
	t.Helper()
	f := NewStudentForm(testValidator())
	fields := map[string]interface{}{
		"parentName":            "Thandiwe Mokoena",
		"studentName":           "Lerato Mokoena",
		"studentDob":            "2017-03-09",
		"skillLevel":            "Beginner",
		"address":               "12 Jan Smuts Ave, Johannesburg",
		"phone":                 "0821234567",
		"email":                 "thandiwe@example.com",
		"emergencyContactName":  "Sipho Mokoena",
		"emergencyContactPhone": "0731234567",
		"consent":               true,
	}
	for name, value := range fields {
		require.NoError(t, f.OnFieldChange(name, value))
	}
	f.OnSelectClass("Violin")
	return f
}

func TestStudentValidateAllEmptyDraft(t *testing.T) {
	f := NewStudentForm(testValidator())
	assert.False(t, f.ValidateAll())
	assert.Equal(t, map[string]string{
		"parentName":            "Parent name is required",
		"studentName":           "Student name is required",
		"studentDob":            "Date of Birth is required",
		"skillLevel":            "Please select a skill level",
		"classes":               "Please select one class",
		"address":               "Full address is required",
		"phone":                 "Phone number is required",
		"email":                 "Email is required",
		"emergencyContactName":  "Emergency contact name is required",
		"emergencyContactPhone": "Contact number is required",
		"consent":               "You must consent to continue",
	}, f.Errors)
}

func TestStudentValidateAllRecomputesErrors(t *testing.T) {
	f := validStudent(t)
	require.NoError(t, f.OnFieldChange("studentDob", "2012-01-01"))
	require.NoError(t, f.OnFieldChange("phone", "12345"))
	require.NoError(t, f.OnFieldChange("email", "nope"))

	assert.False(t, f.ValidateAll())
	assert.Equal(t, "Student must be between 6 and 12 years old (Current age: 14)", f.Errors["studentDob"])
	assert.Equal(t, "Invalid SA phone (e.g. 082 123 4567)", f.Errors["phone"])
	assert.Equal(t, "Invalid email address", f.Errors["email"])
	assert.Len(t, f.Errors, 3)

	require.NoError(t, f.OnFieldChange("studentDob", "2017-03-09"))
	require.NoError(t, f.OnFieldChange("phone", "0821234567"))
	require.NoError(t, f.OnFieldChange("email", "thandiwe@example.com"))
	assert.True(t, f.ValidateAll())
	assert.Empty(t, f.Errors)
}

func TestStudentFieldChangeFormatsAndClears(t *testing.T) {
	f := NewStudentForm(testValidator())
	f.ValidateAll()
	require.Contains(t, f.Errors, "phone")

	require.NoError(t, f.OnFieldChange("phone", "0821234"))
	assert.Equal(t, "(082) 123-4", f.Data.Phone)
	assert.NotContains(t, f.Errors, "phone")
	assert.Contains(t, f.Errors, "email")

	require.NoError(t, f.OnFieldChange("emergencyContactPhone", "073 123 4567"))
	assert.Equal(t, "(073) 123-4567", f.Data.EmergencyContactPhone)

	require.NoError(t, f.OnFieldChange("consent", "on"))
	assert.True(t, f.Data.Consent)

	assert.ErrorIs(t, f.OnFieldChange("favouriteColour", "blue"), ErrUnknownField)
	assert.Error(t, f.OnFieldChange("consent", 3))
}

func TestStudentValidityTreatsPriorExperienceAsOptional(t *testing.T) {
	f := validStudent(t)
	validity := f.Validity()
	assert.True(t, validity["priorExperience"])
	for field, ok := range validity {
		assert.True(t, ok, field)
	}

	f.Reset()
	assert.False(t, f.Validity()["parentName"])
	assert.Equal(t, OutcomeIdle, f.Outcome)
}

func TestTeacherToggleInstrument(t *testing.T) {
	f := NewTeacherForm(testValidator(), 0)
	f.OnToggleInstrument("Violin")
	f.OnToggleInstrument("Cello")
	f.OnToggleInstrument("Violin")
	assert.Equal(t, []string{"Cello"}, f.Data.Instruments)
}

func TestTeacherValidateAll(t *testing.T) {
	f := NewTeacherForm(testValidator(), 0)
	assert.False(t, f.ValidateAll())
	assert.Equal(t, map[string]string{
		"fullName":       "Full Name is required",
		"email":          "Invalid email address",
		"phone":          "Phone number is required",
		"instruments":    "Select at least one instrument",
		"qualifications": "Qualifications are required",
		"experience":     "Experience details are required",
	}, f.Errors)

	require.NoError(t, f.OnFieldChange("fullName", "Naledi Dube"))
	require.NoError(t, f.OnFieldChange("email", "naledi@example.com"))
	require.NoError(t, f.OnFieldChange("phone", "+27 82 123 4567"))
	require.NoError(t, f.OnFieldChange("instruments", []interface{}{"Flute"}))
	require.NoError(t, f.OnFieldChange("qualifications", "BMus"))
	require.NoError(t, f.OnFieldChange("experience", "10 years"))
	assert.False(t, f.ValidateAll(), "progressive formatting drops the + prefix")

	require.NoError(t, f.OnFieldChange("phone", "0821234567"))
	assert.True(t, f.ValidateAll())
}

func TestTeacherAttachCVEnforcesLimit(t *testing.T) {
	f := NewTeacherForm(testValidator(), 0)
	assert.False(t, f.AttachCV(&models.CVFile{Filename: "cv.pdf", Size: DefaultCVMaxBytes + 1}))
	assert.Equal(t, "File size must be under 5MB", f.Errors["cvFile"])
	assert.Nil(t, f.Data.CV)

	assert.True(t, f.AttachCV(&models.CVFile{Filename: "cv.pdf", Size: 1024}))
	assert.NotContains(t, f.Errors, "cvFile")
}

func TestContactValidateAll(t *testing.T) {
	f := NewContactForm(testValidator())
	assert.False(t, f.ValidateAll())
	assert.Len(t, f.Errors, 4)

	for name, value := range map[string]string{"name": "Zanele", "email": "z@example.com", "subject": "Violin", "message": "Hi"} {
		require.NoError(t, f.OnFieldChange(name, value))
	}
	assert.True(t, f.ValidateAll())
}

func TestDraftRoundTripRebinds(t *testing.T) {
	v := testValidator()
	d, err := NewDraft(models.FormTeacher, v, 0, time.Now())
	require.NoError(t, err)
	require.NoError(t, d.ToggleInstrument("Marimba"))
	assert.ErrorIs(t, d.SelectClass("Violin"), ErrWrongForm)

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded Draft
	require.NoError(t, json.Unmarshal(raw, &decoded))
	decoded.Bind(v, 0)

	ctrl, err := decoded.Controller()
	require.NoError(t, err)
	assert.Equal(t, models.FormTeacher, ctrl.Kind())
	assert.Equal(t, []string{"Marimba"}, decoded.Teacher.Data.Instruments)
	assert.Equal(t, d.IdempotencyKey, decoded.IdempotencyKey)
	assert.False(t, ctrl.ValidateAll())
}
