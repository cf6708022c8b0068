package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tkmproject/tkm-api/internal/dto"
	"github.com/tkmproject/tkm-api/internal/form"
	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
	appErrors "github.com/tkmproject/tkm-api/pkg/errors"
)

type draftStore interface {
	Save(ctx context.Context, draft *form.Draft) error
	Get(ctx context.Context, id string) (*form.Draft, error)
	Delete(ctx context.Context, id string) error
}

type submitter interface {
	Submit(ctx context.Context, ctrl form.Controller, idempotencyKey string) (*dto.SubmissionResult, error)
}

// DraftService keeps server-side form sessions and forwards them to the pipeline.
type DraftService struct {
	store      draftStore
	submitter  submitter
	validator  *validation.Validator
	cvMaxBytes int64
	logger     *zap.Logger
	now        func() time.Time
}

// NewDraftService constructs a DraftService.
func NewDraftService(store draftStore, sub submitter, v *validation.Validator, cvMaxBytes int64, logger *zap.Logger) *DraftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if v == nil {
		v = validation.New(nil)
	}
	return &DraftService{
		store:      store,
		submitter:  sub,
		validator:  v,
		cvMaxBytes: cvMaxBytes,
		logger:     logger,
		now:        time.Now,
	}
}

// Create opens an empty draft for kind.
func (s *DraftService) Create(ctx context.Context, kind models.FormKind) (*dto.DraftView, error) {
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown form "+string(kind))
	}
	draft, err := form.NewDraft(kind, s.validator, s.cvMaxBytes, s.now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := s.store.Save(ctx, draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store draft")
	}
	return s.view(draft)
}

// Get returns a stored draft.
func (s *DraftService) Get(ctx context.Context, id string) (*dto.DraftView, error) {
	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(draft)
}

// UpdateField applies onFieldChange to the draft.
func (s *DraftService) UpdateField(ctx context.Context, id string, req dto.FieldChangeRequest) (*dto.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		ctrl, err := d.Controller()
		if err != nil {
			return err
		}
		return ctrl.OnFieldChange(req.Name, req.Value)
	})
}

// SelectClass sets the student's class.
func (s *DraftService) SelectClass(ctx context.Context, id, program string) (*dto.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		return d.SelectClass(program)
	})
}

// ToggleInstrument adds or removes an instrument on a teacher draft.
func (s *DraftService) ToggleInstrument(ctx context.Context, id, instrument string) (*dto.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		return d.ToggleInstrument(instrument)
	})
}

// Submit runs the draft through the submission pipeline. The draft is reset
// and given a new idempotency key on success, and kept as-is on failure.
func (s *DraftService) Submit(ctx context.Context, id string) (*dto.SubmissionResult, error) {
	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ctrl, err := draft.Controller()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt draft")
	}

	result, submitErr := s.submitter.Submit(ctx, ctrl, draft.IdempotencyKey)
	if submitErr == nil {
		draft.IdempotencyKey = uuid.NewString()
	}
	draft.UpdatedAt = s.now().UTC()
	if err := s.store.Save(context.WithoutCancel(ctx), draft); err != nil {
		s.logger.Warn("failed to store draft after submit", zap.String("draft_id", id), zap.Error(err))
	}

	if submitErr != nil {
		return nil, submitErr
	}
	return result, nil
}

// Discard removes a draft.
func (s *DraftService) Discard(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete draft")
	}
	return nil
}

func (s *DraftService) mutate(ctx context.Context, id string, apply func(*form.Draft) error) (*dto.DraftView, error) {
	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(draft); err != nil {
		if errors.Is(err, form.ErrUnknownField) || errors.Is(err, form.ErrWrongForm) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid field value")
	}
	draft.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store draft")
	}
	return s.view(draft)
}

func (s *DraftService) load(ctx context.Context, id string) (*form.Draft, error) {
	draft, err := s.store.Get(ctx, id)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load draft")
	}
	draft.Bind(s.validator, s.cvMaxBytes)
	return draft, nil
}

func (s *DraftService) view(draft *form.Draft) (*dto.DraftView, error) {
	ctrl, err := draft.Controller()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt draft")
	}
	return &dto.DraftView{Draft: draft, Validity: ctrl.Validity()}, nil
}
