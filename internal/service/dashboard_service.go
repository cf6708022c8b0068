package service

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tkmproject/tkm-api/internal/dto"
	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
	appErrors "github.com/tkmproject/tkm-api/pkg/errors"
)

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	TrendDays int
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Students LiveCollection
	Teachers LiveCollection
	Metrics  *MetricsService
	Logger   *zap.Logger
	Config   DashboardServiceConfig
}

// DashboardService composes dashboard payloads from live collections. A
// shared aggregator serves plain reads; each stream gets its own.
type DashboardService struct {
	students LiveCollection
	teachers LiveCollection
	shared   *Aggregator
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
	cfg      DashboardServiceConfig
}

// NewDashboardService wires the dashboard service.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := params.Config
	if cfg.TrendDays <= 0 {
		cfg.TrendDays = 7
	}
	return &DashboardService{
		students: params.Students,
		teachers: params.Teachers,
		shared:   NewAggregator(params.Students, params.Teachers, params.Metrics, logger),
		metrics:  params.Metrics,
		logger:   logger,
		now:      time.Now,
		cfg:      cfg,
	}
}

// Start subscribes the shared aggregator.
func (s *DashboardService) Start() {
	s.shared.Subscribe()
}

// Stop releases the shared aggregator.
func (s *DashboardService) Stop() {
	s.shared.Unsubscribe()
}

// Shared exposes the process-wide aggregator.
func (s *DashboardService) Shared() *Aggregator {
	return s.shared
}

// OpenStream returns a freshly subscribed aggregator. The caller must
// Unsubscribe it when the stream ends.
func (s *DashboardService) OpenStream() *Aggregator {
	agg := NewAggregator(s.students, s.teachers, s.metrics, s.logger)
	agg.now = s.now
	agg.Subscribe()
	return agg
}

// Dashboard builds the payload for query from the shared aggregator.
func (s *DashboardService) Dashboard(query dto.DashboardQuery) (*dto.DashboardResponse, error) {
	return s.Build(s.shared, query)
}

// Build composes the payload for query from agg.
func (s *DashboardService) Build(agg *Aggregator, query dto.DashboardQuery) (*dto.DashboardResponse, error) {
	view, ok := ParseView(query.View)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "view must be one of overview, students, teachers, analytics")
	}

	students, teachers := agg.Snapshot()
	now := s.now()
	trend := Trend(students, s.cfg.TrendDays, now)
	records := Project(view, students, teachers, query.Search, query.Program)

	resp := &dto.DashboardResponse{
		View:    string(view),
		Loading: agg.Loading(),
		Counts: dto.DashboardCounts{
			Students:    len(students),
			Teachers:    len(teachers),
			NewToday:    CountOnDay(append(append([]models.Document(nil), students...), teachers...), now),
			NewThisWeek: SumTrend(trend),
		},
		Rows:        Rows(records),
		GeneratedAt: now.UTC(),
	}
	if view == ViewAnalytics || view == ViewOverview {
		resp.Trend = trend
		resp.Distribution = Distribution(students)
	}
	return resp, nil
}

// Rows flattens documents into table rows.
func Rows(docs []models.Document) []dto.DashboardRow {
	rows := make([]dto.DashboardRow, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, Row(doc))
	}
	return rows
}

// Row flattens one document. Missing statuses show as New.
func Row(doc models.Document) dto.DashboardRow {
	row := dto.DashboardRow{
		ID:          doc.ID,
		Email:       doc.String(validation.FieldEmail),
		Phone:       doc.String(validation.FieldPhone),
		Status:      displayStatus(doc.Status),
		SubmittedAt: doc.SubmittedAt,
		Data:        doc.Data,
	}
	if doc.Collection == models.CollectionTeacherApplications {
		row.Type = models.FormTeacher.SubmissionType()
		row.Name = doc.String(validation.FieldFullName)
		row.Program = strings.Join(stringList(doc.Data[validation.FieldInstruments]), ", ")
	} else {
		row.Type = models.FormStudent.SubmissionType()
		row.Name = doc.String(validation.FieldStudentName)
		row.Program = doc.String(validation.FieldClasses)
	}
	return row
}

func displayStatus(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return "New"
	}
	return strings.ToUpper(status[:1]) + status[1:]
}

// stringList reads a list that may have been decoded from JSON.
func stringList(v interface{}) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	}
	return nil
}
