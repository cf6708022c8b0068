package dto

import (
	"time"

	"github.com/tkmproject/tkm-api/internal/form"
	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
	"github.com/tkmproject/tkm-api/pkg/relay"
)

// Relay metadata keys.
const (
	KeySubject        = "subject"
	KeyMailSubject    = "_subject"
	KeyReplyTo        = "_replyto"
	KeySubmissionType = "submission_type"
	KeyTimestamp      = "timestamp"
	KeyIdempotency    = "idempotencyKey"
	KeyHasCV          = "hasCv"
)

// SubmissionResult is returned for every accepted submission, spam included.
type SubmissionResult struct {
	Status   string `json:"status"`
	Redirect string `json:"redirect,omitempty"`
}

// FieldChangeRequest carries one onFieldChange event.
type FieldChangeRequest struct {
	Name  string      `json:"name" binding:"required"`
	Value interface{} `json:"value"`
}

// ChoiceRequest carries a class selection or instrument toggle.
type ChoiceRequest struct {
	Value string `json:"value" binding:"required"`
}

// Envelope is the allow-listed payload of one submission: the record fields that
// are mirrored plus the metadata only the relay receives.
type Envelope struct {
	Kind       models.FormKind
	Record     []relay.Field
	Meta       []relay.Field
	Attachment *relay.Attachment
	ReplyTo    string
	Name       string
}

// Message builds the relay message: record first, then metadata.
func (e Envelope) Message() relay.Message {
	fields := make([]relay.Field, 0, len(e.Record)+len(e.Meta))
	fields = append(fields, e.Record...)
	fields = append(fields, e.Meta...)
	return relay.Message{Fields: fields, Attachment: e.Attachment}
}

// Document returns the mirrored document body.
func (e Envelope) Document() map[string]interface{} {
	doc := make(map[string]interface{}, len(e.Record)+2)
	for _, f := range e.Record {
		doc[f.Name] = f.Value
	}
	for _, f := range e.Meta {
		if f.Name == KeyIdempotency {
			doc[f.Name] = f.Value
		}
	}
	if e.Kind == models.FormTeacher {
		doc[KeyHasCV] = e.Attachment != nil
	}
	return doc
}

// StudentEnvelope shapes a validated student registration. Phone numbers must
// already be normalized.
func StudentEnvelope(d models.StudentRegistration, at time.Time, idempotencyKey string) Envelope {
	subject := "New Student Registration: " + d.StudentName
	return Envelope{
		Kind: models.FormStudent,
		Record: []relay.Field{
			{Name: validation.FieldParentName, Value: d.ParentName},
			{Name: validation.FieldStudentName, Value: d.StudentName},
			{Name: validation.FieldStudentDOB, Value: d.StudentDOB},
			{Name: validation.FieldSkillLevel, Value: d.SkillLevel},
			{Name: validation.FieldPriorExperience, Value: d.PriorExperience},
			{Name: validation.FieldClasses, Value: d.Classes},
			{Name: validation.FieldAddress, Value: d.Address},
			{Name: validation.FieldPhone, Value: d.Phone},
			{Name: validation.FieldEmail, Value: d.Email},
			{Name: validation.FieldReferral, Value: d.Referral},
			{Name: validation.FieldEmergencyContactName, Value: d.EmergencyContactName},
			{Name: validation.FieldEmergencyContactPhone, Value: d.EmergencyContactPhone},
			{Name: validation.FieldMedicalInfo, Value: d.MedicalInfo},
			{Name: validation.FieldConsent, Value: d.Consent},
			{Name: validation.FieldSendCopy, Value: d.SendCopy},
		},
		Meta:    meta(models.FormStudent, subject, d.Email, at, idempotencyKey),
		ReplyTo: d.Email,
		Name:    d.ParentName,
	}
}

// TeacherEnvelope shapes a validated teacher application.
func TeacherEnvelope(d models.TeacherApplication, at time.Time, idempotencyKey string) Envelope {
	subject := "New Teacher Application: " + d.FullName
	instruments := append([]string(nil), d.Instruments...)
	env := Envelope{
		Kind: models.FormTeacher,
		Record: []relay.Field{
			{Name: validation.FieldFullName, Value: d.FullName},
			{Name: validation.FieldEmail, Value: d.Email},
			{Name: validation.FieldPhone, Value: d.Phone},
			{Name: validation.FieldInstruments, Value: instruments},
			{Name: validation.FieldQualifications, Value: d.Qualifications},
			{Name: validation.FieldExperience, Value: d.Experience},
			{Name: validation.FieldSendCopy, Value: d.SendCopy},
		},
		Meta:    meta(models.FormTeacher, subject, d.Email, at, idempotencyKey),
		ReplyTo: d.Email,
		Name:    d.FullName,
	}
	if d.CV != nil {
		env.Attachment = &relay.Attachment{
			Field:       validation.FieldCV,
			Filename:    d.CV.Filename,
			ContentType: d.CV.ContentType,
			Content:     d.CV.Content,
		}
	}
	return env
}

// ContactEnvelope shapes a contact inquiry. The user's subject travels as a
// record field, so the relay subject line is set only through _subject.
func ContactEnvelope(d models.ContactInquiry, at time.Time, idempotencyKey string) Envelope {
	return Envelope{
		Kind: models.FormContact,
		Record: []relay.Field{
			{Name: validation.FieldName, Value: d.Name},
			{Name: validation.FieldEmail, Value: d.Email},
			{Name: validation.FieldSubject, Value: d.Subject},
			{Name: validation.FieldMessage, Value: d.Message},
		},
		Meta: []relay.Field{
			{Name: KeyMailSubject, Value: "New Contact Inquiry: " + d.Subject},
			{Name: KeyReplyTo, Value: d.Email},
			{Name: KeySubmissionType, Value: models.FormContact.SubmissionType()},
			{Name: KeyTimestamp, Value: at.UTC().Format(time.RFC3339Nano)},
			{Name: KeyIdempotency, Value: idempotencyKey},
		},
		ReplyTo: d.Email,
		Name:    d.Name,
	}
}

func meta(kind models.FormKind, subject, replyTo string, at time.Time, idempotencyKey string) []relay.Field {
	return []relay.Field{
		{Name: KeySubject, Value: subject},
		{Name: KeyMailSubject, Value: subject},
		{Name: KeyReplyTo, Value: replyTo},
		{Name: KeySubmissionType, Value: kind.SubmissionType()},
		{Name: KeyTimestamp, Value: at.UTC().Format(time.RFC3339Nano)},
		{Name: KeyIdempotency, Value: idempotencyKey},
	}
}

// DraftView is a draft together with the live per-field validity.
type DraftView struct {
	Draft    *form.Draft     `json:"draft"`
	Validity map[string]bool `json:"validity"`
}
