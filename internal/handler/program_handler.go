package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/pkg/response"
)

// ProgramHandler serves the program catalogue.
type ProgramHandler struct{}

// NewProgramHandler constructs the handler.
func NewProgramHandler() *ProgramHandler {
	return &ProgramHandler{}
}

// List godoc
// @Summary List programs
// @Description Instruments and disciplines taught, in display order
// @Tags Programs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *ProgramHandler) List(c *gin.Context) {
	programs := models.Programs()
	response.JSON(c, http.StatusOK, programs, map[string]interface{}{"total": len(programs)})
}
