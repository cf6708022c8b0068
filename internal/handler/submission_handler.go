package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tkmproject/tkm-api/internal/dto"
	"github.com/tkmproject/tkm-api/internal/form"
	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
	appErrors "github.com/tkmproject/tkm-api/pkg/errors"
	"github.com/tkmproject/tkm-api/pkg/response"
)

type submissionService interface {
	Submit(ctx context.Context, ctrl form.Controller, idempotencyKey string) (*dto.SubmissionResult, error)
}

// SubmissionHandler accepts complete form payloads in one request.
type SubmissionHandler struct {
	service    submissionService
	validator  *validation.Validator
	cvMaxBytes int64
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(svc submissionService, v *validation.Validator, cvMaxBytes int64) *SubmissionHandler {
	if v == nil {
		v = validation.New(nil)
	}
	if cvMaxBytes <= 0 {
		cvMaxBytes = form.DefaultCVMaxBytes
	}
	return &SubmissionHandler{service: svc, validator: v, cvMaxBytes: cvMaxBytes}
}

// Student godoc
// @Summary Submit a student registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client idempotency key"
// @Param payload body models.StudentRegistration true "Registration"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /registrations/students [post]
func (h *SubmissionHandler) Student(c *gin.Context) {
	var req models.StudentRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	f := form.NewStudentForm(h.validator)
	f.Data = req
	h.submit(c, f)
}

// Teacher godoc
// @Summary Submit a teacher application
// @Tags Registrations
// @Accept multipart/form-data
// @Produce json
// @Param Idempotency-Key header string false "Client idempotency key"
// @Param fullName formData string true "Full name"
// @Param email formData string true "Email"
// @Param phone formData string true "Phone"
// @Param instruments formData []string true "Instruments" collectionFormat(multi)
// @Param qualifications formData string true "Qualifications"
// @Param experience formData string true "Experience"
// @Param sendCopy formData bool false "Mail a copy to the applicant"
// @Param cvFile formData file false "CV"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /registrations/teachers [post]
func (h *SubmissionHandler) Teacher(c *gin.Context) {
	f := form.NewTeacherForm(h.validator, h.cvMaxBytes)
	f.Data = models.TeacherApplication{
		FullName:       c.PostForm(validation.FieldFullName),
		Email:          c.PostForm(validation.FieldEmail),
		Phone:          c.PostForm(validation.FieldPhone),
		Instruments:    instrumentsFromForm(c.PostFormArray(validation.FieldInstruments)),
		Qualifications: c.PostForm(validation.FieldQualifications),
		Experience:     c.PostForm(validation.FieldExperience),
		BotField:       c.PostForm(validation.FieldBotField),
	}
	if raw := c.PostForm(validation.FieldSendCopy); raw != "" {
		sendCopy, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "sendCopy must be a boolean"))
			return
		}
		f.Data.SendCopy = sendCopy
	}

	cv, err := h.readCV(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if cv != nil && !f.AttachCV(cv) {
		response.Error(c, appErrors.WithDetails(appErrors.ErrPayloadTooLarge, f.Errors))
		return
	}
	h.submit(c, f)
}

// Contact godoc
// @Summary Send a contact inquiry
// @Tags Contact
// @Accept json
// @Produce json
// @Param payload body models.ContactInquiry true "Inquiry"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /contact [post]
func (h *SubmissionHandler) Contact(c *gin.Context) {
	var req models.ContactInquiry
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid contact payload"))
		return
	}
	f := form.NewContactForm(h.validator)
	f.Data = req
	h.submit(c, f)
}

func (h *SubmissionHandler) submit(c *gin.Context, ctrl form.Controller) {
	result, err := h.service.Submit(c.Request.Context(), ctrl, strings.TrimSpace(c.GetHeader("Idempotency-Key")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// readCV loads the optional cvFile part. Oversized files are reported by
// size only so their content is never buffered.
func (h *SubmissionHandler) readCV(c *gin.Context) (*models.CVFile, error) {
	header, err := c.FormFile(validation.FieldCV)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cv upload")
	}
	cv := &models.CVFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	if header.Size > h.cvMaxBytes {
		return cv, nil
	}
	src, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	defer src.Close() //nolint:errcheck
	content, err := io.ReadAll(src)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file")
	}
	cv.Content = content
	if cv.ContentType == "" {
		cv.ContentType = http.DetectContentType(content)
	}
	return cv, nil
}

// instrumentsFromForm accepts repeated fields as well as one comma-joined value.
func instrumentsFromForm(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
