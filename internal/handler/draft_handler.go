package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tkmproject/tkm-api/internal/dto"
	"github.com/tkmproject/tkm-api/internal/models"
	appErrors "github.com/tkmproject/tkm-api/pkg/errors"
	"github.com/tkmproject/tkm-api/pkg/response"
)

type draftService interface {
	Create(ctx context.Context, kind models.FormKind) (*dto.DraftView, error)
	Get(ctx context.Context, id string) (*dto.DraftView, error)
	UpdateField(ctx context.Context, id string, req dto.FieldChangeRequest) (*dto.DraftView, error)
	SelectClass(ctx context.Context, id, program string) (*dto.DraftView, error)
	ToggleInstrument(ctx context.Context, id, instrument string) (*dto.DraftView, error)
	Submit(ctx context.Context, id string) (*dto.SubmissionResult, error)
	Discard(ctx context.Context, id string) error
}

// DraftHandler exposes server-held form sessions.
type DraftHandler struct {
	service draftService
}

// NewDraftHandler constructs the handler.
func NewDraftHandler(svc draftService) *DraftHandler {
	return &DraftHandler{service: svc}
}

// Create godoc
// @Summary Open a form draft
// @Tags Drafts
// @Produce json
// @Param form path string true "student, teacher or contact"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /drafts/{form} [post]
func (h *DraftHandler) Create(c *gin.Context) {
	view, err := h.service.Create(c.Request.Context(), models.FormKind(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Get godoc
// @Summary Get a form draft
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /drafts/{id} [get]
func (h *DraftHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// UpdateField godoc
// @Summary Change one draft field
// @Description Stores the (formatted) value, clears the field error and reports live validity
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body dto.FieldChangeRequest true "Field change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /drafts/{id}/fields [patch]
func (h *DraftHandler) UpdateField(c *gin.Context) {
	var req dto.FieldChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid field payload"))
		return
	}
	view, err := h.service.UpdateField(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// SelectClass godoc
// @Summary Select the student's class
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body dto.ChoiceRequest true "Program"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id}/classes [post]
func (h *DraftHandler) SelectClass(c *gin.Context) {
	var req dto.ChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "value is required"))
		return
	}
	view, err := h.service.SelectClass(c.Request.Context(), c.Param("id"), req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// ToggleInstrument godoc
// @Summary Toggle a teacher instrument
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param payload body dto.ChoiceRequest true "Instrument"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id}/instruments [post]
func (h *DraftHandler) ToggleInstrument(c *gin.Context) {
	var req dto.ChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "value is required"))
		return
	}
	view, err := h.service.ToggleInstrument(c.Request.Context(), c.Param("id"), req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Submit godoc
// @Summary Submit a draft
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /drafts/{id}/submit [post]
func (h *DraftHandler) Submit(c *gin.Context) {
	result, err := h.service.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Discard godoc
// @Summary Discard a draft
// @Tags Drafts
// @Param id path string true "Draft ID"
// @Success 204
// @Router /drafts/{id} [delete]
func (h *DraftHandler) Discard(c *gin.Context) {
	if err := h.service.Discard(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
