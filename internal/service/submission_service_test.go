package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkmproject/tkm-api/internal/dto"
	"github.com/tkmproject/tkm-api/internal/form"
	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
	appErrors "github.com/tkmproject/tkm-api/pkg/errors"
	"github.com/tkmproject/tkm-api/pkg/relay"
)

var testNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

func testValidator() *validation.Validator {
	return validation.New(func() time.Time { return testNow })
}

type mirrorStub struct {
	mu      sync.Mutex
	err     error
	inserts []map[string]interface{}
	colls   []string
}

func (m *mirrorStub) Insert(_ context.Context, collection string, data map[string]interface{}) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.colls = append(m.colls, collection)
	m.inserts = append(m.inserts, data)
	if m.err != nil {
		return nil, m.err
	}
	return &models.Document{ID: "doc-1", Collection: collection, Data: data, Status: models.StatusNew, SubmittedAt: testNow}, nil
}

type relayStub struct {
	mu       sync.Mutex
	err      error
	messages []relay.Message
}

func (r *relayStub) Submit(_ context.Context, msg relay.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return r.err
}

type copyMailerStub struct {
	sent []dto.Envelope
	err  error
}

func (m *copyMailerStub) SendCopy(env dto.Envelope) error {
	m.sent = append(m.sent, env)
	return m.err
}

func validStudentForm(v *validation.Validator) *form.StudentForm {
	f := form.NewStudentForm(v)
	f.Data = models.StudentRegistration{
		ParentName:            "Thandi Mokoena",
		StudentName:           "Lerato Mokoena",
		StudentDOB:            "2016-05-01",
		SkillLevel:            models.SkillBeginner,
		Classes:               "Violin",
		Address:               "12 Long Street, Cape Town",
		Phone:                 "(082) 555-1234",
		Email:                 "thandi@example.com",
		EmergencyContactName:  "Sipho Mokoena",
		EmergencyContactPhone: "083 555 9876",
		Consent:               true,
	}
	return f
}

func validTeacherForm(v *validation.Validator) *form.TeacherForm {
	f := form.NewTeacherForm(v, 0)
	f.Data = models.TeacherApplication{
		FullName:       "Anele Dlamini",
		Email:          "anele@example.com",
		Phone:          "+27825551234",
		Instruments:    []string{"Cello", "Viola"},
		Qualifications: "BMus",
		Experience:     "5 years",
	}
	return f
}

func newSubmissionService(mirror mirrorWriter, rl relay.Relay, mail copyMailer) *SubmissionService {
	svc := NewSubmissionService(mirror, rl, mail, NewMetricsService(), SubmissionConfig{ConfirmationURL: "/thanks.html"}, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func fieldValue(t *testing.T, msg relay.Message, name string) interface{} {
	t.Helper()
	v, ok := msg.Get(name)
	require.True(t, ok, "field %s missing", name)
	return v
}

func TestSubmitHoneypotSkipsNetwork(t *testing.T) {
	mirror := &mirrorStub{}
	rl := &relayStub{}
	svc := newSubmissionService(mirror, rl, nil)

	f := validStudentForm(testValidator())
	f.Data.BotField = "http://spam.example"

	result, err := svc.Submit(context.Background(), f, "")
	require.NoError(t, err)
	assert.Equal(t, SubmissionStatusSubmitted, result.Status)
	assert.Equal(t, "/thanks.html", result.Redirect)
	assert.Empty(t, mirror.inserts)
	assert.Empty(t, rl.messages)
}

func TestSubmitInvalidFormReturnsFieldErrors(t *testing.T) {
	rl := &relayStub{}
	svc := newSubmissionService(&mirrorStub{}, rl, nil)

	f := form.NewStudentForm(testValidator())
	_, err := svc.Submit(context.Background(), f, "")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrFormInvalid.Code, appErr.Code)
	assert.Equal(t, "Parent name is required", appErr.Details[validation.FieldParentName])
	assert.Equal(t, "Date of Birth is required", appErr.Details[validation.FieldStudentDOB])
	assert.Empty(t, rl.messages)
}

func TestSubmitStudentNormalizesAndRelays(t *testing.T) {
	mirror := &mirrorStub{}
	rl := &relayStub{}
	svc := newSubmissionService(mirror, rl, nil)

	f := validStudentForm(testValidator())
	result, err := svc.Submit(context.Background(), f, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "/thanks.html", result.Redirect)

	require.Len(t, rl.messages, 1)
	msg := rl.messages[0]
	assert.Equal(t, "+27825551234", fieldValue(t, msg, validation.FieldPhone))
	assert.Equal(t, "+27835559876", fieldValue(t, msg, validation.FieldEmergencyContactPhone))
	assert.Equal(t, "New Student Registration: Lerato Mokoena", fieldValue(t, msg, dto.KeySubject))
	assert.Equal(t, "Student", fieldValue(t, msg, dto.KeySubmissionType))
	assert.Equal(t, "thandi@example.com", fieldValue(t, msg, dto.KeyReplyTo))
	assert.Equal(t, "key-1", fieldValue(t, msg, dto.KeyIdempotency))
	assert.Equal(t, testNow.Format(time.RFC3339Nano), fieldValue(t, msg, dto.KeyTimestamp))
	_, hasBot := msg.Get(validation.FieldBotField)
	assert.False(t, hasBot)

	require.Len(t, mirror.inserts, 1)
	assert.Equal(t, models.CollectionRegistrations, mirror.colls[0])
	assert.Equal(t, "+27825551234", mirror.inserts[0][validation.FieldPhone])
	_, hasSubject := mirror.inserts[0][dto.KeySubject]
	assert.False(t, hasSubject)

	assert.Equal(t, form.OutcomeSuccess, f.State.Outcome)
	assert.Empty(t, f.Data.StudentName)
}

func TestSubmitMirrorFailureStillSucceeds(t *testing.T) {
	mirror := &mirrorStub{err: errors.New("db down")}
	rl := &relayStub{}
	svc := newSubmissionService(mirror, rl, nil)

	f := validStudentForm(testValidator())
	result, err := svc.Submit(context.Background(), f, "")
	require.NoError(t, err)
	assert.Equal(t, SubmissionStatusSubmitted, result.Status)
	assert.Len(t, mirror.inserts, 1)
	assert.Len(t, rl.messages, 1)
	assert.Equal(t, form.OutcomeSuccess, f.State.Outcome)
}

func TestSubmitRelayFailureKeepsData(t *testing.T) {
	mirror := &mirrorStub{}
	rl := &relayStub{err: &relay.StatusError{StatusCode: 500, Body: "boom"}}
	svc := newSubmissionService(mirror, rl, nil)

	f := validStudentForm(testValidator())
	_, err := svc.Submit(context.Background(), f, "")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrRelayFailed.Code, appErr.Code)
	assert.Equal(t, appErrors.ErrRelayFailed.Message, appErr.Message)

	assert.Equal(t, form.OutcomeError, f.State.Outcome)
	assert.False(t, f.State.Submitting)
	assert.Equal(t, "Lerato Mokoena", f.Data.StudentName)
	assert.Equal(t, "(082) 555-1234", f.Data.Phone)
	assert.Len(t, mirror.inserts, 1)
}

func TestSubmitTeacherWithCV(t *testing.T) {
	mirror := &mirrorStub{}
	rl := &relayStub{}
	svc := newSubmissionService(mirror, rl, nil)

	f := validTeacherForm(testValidator())
	require.True(t, f.AttachCV(&models.CVFile{Filename: "cv.pdf", ContentType: "application/pdf", Size: 4, Content: []byte("%PDF")}))

	_, err := svc.Submit(context.Background(), f, "")
	require.NoError(t, err)

	msg := rl.messages[0]
	require.NotNil(t, msg.Attachment)
	assert.Equal(t, validation.FieldCV, msg.Attachment.Field)
	assert.Equal(t, []string{"Cello", "Viola"}, fieldValue(t, msg, validation.FieldInstruments))
	assert.Equal(t, "New Teacher Application: Anele Dlamini", fieldValue(t, msg, dto.KeyMailSubject))

	assert.Equal(t, models.CollectionTeacherApplications, mirror.colls[0])
	assert.Equal(t, true, mirror.inserts[0][dto.KeyHasCV])
}

func TestSubmitContactIsRelayOnly(t *testing.T) {
	mirror := &mirrorStub{}
	rl := &relayStub{}
	svc := newSubmissionService(mirror, rl, nil)

	f := form.NewContactForm(testValidator())
	f.Data = models.ContactInquiry{Name: "Zola", Email: "zola@example.com", Subject: "Lessons", Message: "Hello"}

	result, err := svc.Submit(context.Background(), f, "")
	require.NoError(t, err)
	assert.Empty(t, result.Redirect)
	assert.Empty(t, mirror.inserts)
	require.Len(t, rl.messages, 1)
	assert.Equal(t, "Lessons", fieldValue(t, rl.messages[0], validation.FieldSubject))
	assert.Equal(t, "Contact", fieldValue(t, rl.messages[0], dto.KeySubmissionType))
}

func TestSubmitQueuesCopyMail(t *testing.T) {
	mail := &copyMailerStub{}
	svc := newSubmissionService(nil, &relayStub{}, mail)

	f := validStudentForm(testValidator())
	f.Data.SendCopy = true
	_, err := svc.Submit(context.Background(), f, "")
	require.NoError(t, err)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "thandi@example.com", mail.sent[0].ReplyTo)

	msg := CopyMessage(mail.sent[0])
	assert.Equal(t, "thandi@example.com", msg.ToAddress)
	assert.Contains(t, msg.Text, "studentName: Lerato Mokoena")
	assert.NotContains(t, msg.Text, "sendCopy")
}

func TestSubmitCopyMailFailureIsSwallowed(t *testing.T) {
	mail := &copyMailerStub{err: errors.New("queue full")}
	svc := newSubmissionService(nil, &relayStub{}, mail)

	f := validStudentForm(testValidator())
	f.Data.SendCopy = true
	_, err := svc.Submit(context.Background(), f, "")
	require.NoError(t, err)
}
