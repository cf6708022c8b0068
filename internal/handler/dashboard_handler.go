package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tkmproject/tkm-api/internal/dto"
	"github.com/tkmproject/tkm-api/internal/middleware"
	"github.com/tkmproject/tkm-api/internal/service"
	appErrors "github.com/tkmproject/tkm-api/pkg/errors"
	"github.com/tkmproject/tkm-api/pkg/response"
)

const streamHeartbeat = 15 * time.Second

type dashboardService interface {
	Dashboard(query dto.DashboardQuery) (*dto.DashboardResponse, error)
	OpenStream() *service.Aggregator
	Build(agg *service.Aggregator, query dto.DashboardQuery) (*dto.DashboardResponse, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service   dashboardService
	heartbeat time.Duration
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service, heartbeat: streamHeartbeat}
}

// Get godoc
// @Summary Admin dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param view query string false "overview, students, teachers or analytics"
// @Param search query string false "Case-insensitive name or email match"
// @Param program query string false "Program filter"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.DashboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid dashboard query"))
		return
	}
	resp, err := h.service.Dashboard(query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "rows", len(resp.Rows))
	response.JSON(c, http.StatusOK, resp, middleware.ExtractMeta(c))
}

// Stream godoc
// @Summary Live dashboard updates
// @Description Server-sent events. A "dashboard" event carries the full payload after every collection change.
// @Tags Dashboard
// @Produce text/event-stream
// @Security BearerAuth
// @Param view query string false "overview, students, teachers or analytics"
// @Param search query string false "Case-insensitive name or email match"
// @Param program query string false "Program filter"
// @Success 200 {string} string "event stream"
// @Router /admin/dashboard/stream [get]
func (h *DashboardHandler) Stream(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.DashboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid dashboard query"))
		return
	}
	if _, ok := service.ParseView(query.View); !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "view must be one of overview, students, teachers, analytics"))
		return
	}

	agg := h.service.OpenStream()
	defer agg.Unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	first := true
	c.Stream(func(w io.Writer) bool {
		if !first {
			select {
			case <-ctx.Done():
				return false
			case <-agg.Done():
				return false
			case <-heartbeat.C:
				c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
				return true
			case <-agg.Changes():
			}
		}
		first = false
		resp, err := h.service.Build(agg, query)
		if err != nil {
			c.SSEvent("error", appErrors.FromError(err))
			return false
		}
		c.SSEvent("dashboard", resp)
		return true
	})
}
