package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tkmproject/tkm-api/internal/dto"
	"github.com/tkmproject/tkm-api/internal/form"
	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
	appErrors "github.com/tkmproject/tkm-api/pkg/errors"
	"github.com/tkmproject/tkm-api/pkg/relay"
)

// SubmissionStatusSubmitted is reported for accepted and silently dropped submissions.
const SubmissionStatusSubmitted = "submitted"

type mirrorWriter interface {
	Insert(ctx context.Context, collection string, data map[string]interface{}) (*models.Document, error)
}

type copyMailer interface {
	SendCopy(env dto.Envelope) error
}

// SubmissionConfig configures the pipeline.
type SubmissionConfig struct {
	ConfirmationURL string
}

// SubmissionService runs validated forms through the mirror and the relay.
type SubmissionService struct {
	mirror  mirrorWriter
	relay   relay.Relay
	mail    copyMailer
	metrics *MetricsService
	logger  *zap.Logger
	cfg     SubmissionConfig
	now     func() time.Time
}

// NewSubmissionService constructs the pipeline. mirror and mail may be nil.
func NewSubmissionService(mirror mirrorWriter, rl relay.Relay, mail copyMailer, metrics *MetricsService, cfg SubmissionConfig, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ConfirmationURL == "" {
		cfg.ConfirmationURL = "/thanks.html"
	}
	return &SubmissionService{
		mirror:  mirror,
		relay:   rl,
		mail:    mail,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Submit validates ctrl and delivers it. idempotencyKey may be empty, in which
// case a fresh key is generated for this attempt.
//
// On relay failure the form keeps its data and its outcome is set to error.
// On success the form is reset.
func (s *SubmissionService) Submit(ctx context.Context, ctrl form.Controller, idempotencyKey string) (*dto.SubmissionResult, error) {
	kind := ctrl.Kind()
	state := ctrl.FormState()
	result := &dto.SubmissionResult{Status: SubmissionStatusSubmitted, Redirect: s.redirectFor(kind)}

	if ctrl.Honeypot() != "" {
		s.metrics.RecordSubmission(kind, OutcomeSpam)
		s.logger.Info("honeypot submission dropped", zap.String("form", string(kind)))
		return result, nil
	}

	if !ctrl.ValidateAll() {
		s.metrics.RecordSubmission(kind, OutcomeInvalid)
		return nil, appErrors.WithDetails(appErrors.ErrFormInvalid, state.Errors)
	}

	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	env, err := s.envelope(ctrl, idempotencyKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prepare submission")
	}

	state.Submitting = true
	defer func() { state.Submitting = false }()

	// The pipeline outlives a dropped client connection; the relay client's
	// own timeout bounds it.
	ctx = context.WithoutCancel(ctx)

	s.mirrorWrite(ctx, env)

	start := time.Now()
	err = s.relay.Submit(ctx, env.Message())
	s.metrics.ObserveRelay(kind, err == nil, time.Since(start))
	if err != nil {
		state.Outcome = form.OutcomeError
		s.metrics.RecordSubmission(kind, OutcomeRelayFailed)
		s.logger.Error("relay submission failed",
			zap.String("form", string(kind)),
			zap.String("idempotency_key", idempotencyKey),
			zap.Error(err),
		)
		return nil, appErrors.Wrap(err, appErrors.ErrRelayFailed.Code, appErrors.ErrRelayFailed.Status, appErrors.ErrRelayFailed.Message)
	}

	ctrl.Reset()
	state.Outcome = form.OutcomeSuccess
	s.metrics.RecordSubmission(kind, OutcomeAccepted)

	if wantsCopy(env) && s.mail != nil {
		if err := s.mail.SendCopy(env); err != nil {
			s.logger.Warn("failed to queue copy mail", zap.String("form", string(kind)), zap.Error(err))
		}
	}

	return result, nil
}

func (s *SubmissionService) redirectFor(kind models.FormKind) string {
	if kind == models.FormContact {
		return ""
	}
	return s.cfg.ConfirmationURL
}

// envelope normalizes a copy of the form data and shapes the outbound payload.
func (s *SubmissionService) envelope(ctrl form.Controller, idempotencyKey string) (dto.Envelope, error) {
	at := s.now()
	switch f := ctrl.(type) {
	case *form.StudentForm:
		data := f.Data
		data.Phone = validation.NormalizePhone(data.Phone)
		data.EmergencyContactPhone = validation.NormalizePhone(data.EmergencyContactPhone)
		return dto.StudentEnvelope(data, at, idempotencyKey), nil
	case *form.TeacherForm:
		data := f.Data
		data.Phone = validation.NormalizePhone(data.Phone)
		return dto.TeacherEnvelope(data, at, idempotencyKey), nil
	case *form.ContactForm:
		return dto.ContactEnvelope(f.Data, at, idempotencyKey), nil
	}
	return dto.Envelope{}, fmt.Errorf("unsupported form controller %T", ctrl)
}

// mirrorWrite stores the dashboard copy. Failures never reach the caller.
func (s *SubmissionService) mirrorWrite(ctx context.Context, env dto.Envelope) {
	collection := env.Kind.Collection()
	if collection == "" || s.mirror == nil {
		return
	}
	doc, err := s.mirror.Insert(ctx, collection, env.Document())
	if err != nil {
		s.metrics.RecordMirrorFailure(collection)
		s.logger.Warn("failed to mirror submission", zap.String("collection", collection), zap.Error(err))
		return
	}
	s.logger.Debug("submission mirrored", zap.String("collection", collection), zap.String("id", doc.ID))
}

func wantsCopy(env dto.Envelope) bool {
	for _, f := range env.Record {
		if f.Name == validation.FieldSendCopy {
			v, _ := f.Value.(bool)
			return v
		}
	}
	return false
}
