package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tkmproject/tkm-api/internal/dto"
	"github.com/tkmproject/tkm-api/internal/service"
	appErrors "github.com/tkmproject/tkm-api/pkg/errors"
	"github.com/tkmproject/tkm-api/pkg/export"
	"github.com/tkmproject/tkm-api/pkg/response"
)

type exportService interface {
	Render(ctx context.Context, req dto.ExportRequest) (*service.ExportFile, error)
	Store(ctx context.Context, req dto.ExportRequest) (*dto.ExportLink, error)
	Open(token string) (*os.File, string, error)
}

// ExportHandler serves dashboard exports.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Download godoc
// @Summary Download the current projection
// @Tags Exports
// @Produce octet-stream
// @Security BearerAuth
// @Param view path string true "overview, students, teachers or analytics"
// @Param format query string false "xlsx (default), pdf, doc or csv"
// @Param variant query string false "class-list (students view only)"
// @Param search query string false "Search filter"
// @Param program query string false "Program filter"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /admin/exports/{view} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	req.View = c.Param("view")

	file, err := h.service.Render(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// Create godoc
// @Summary Store an export and return a signed link
// @Tags Exports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ExportRequest true "Export request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	link, err := h.service.Store(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Serve godoc
// @Summary Fetch a stored export
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ExportHandler) Serve(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, name, err := h.service.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export"))
		return
	}
	contentType := "application/octet-stream"
	if format, err := export.ParseFormat(strings.TrimPrefix(path.Ext(name), ".")); err == nil {
		contentType = format.ContentType()
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
