package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tkmproject/tkm-api/internal/dto"
	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/validation"
)

// View names a dashboard projection.
type View string

const (
	ViewOverview  View = "overview"
	ViewStudents  View = "students"
	ViewTeachers  View = "teachers"
	ViewAnalytics View = "analytics"
)

// ParseView maps a query value to a View; empty means overview.
func ParseView(raw string) (View, bool) {
	switch v := View(strings.ToLower(strings.TrimSpace(raw))); v {
	case "":
		return ViewOverview, true
	case ViewOverview, ViewStudents, ViewTeachers, ViewAnalytics:
		return v, true
	}
	return "", false
}

// DistributionUnknown groups students without a class.
const DistributionUnknown = "Unknown"

// LiveCollection pushes full snapshots of one mirror collection.
type LiveCollection interface {
	Name() string
	Subscribe(onSnapshot func([]models.Document), onError func(error)) func()
}

// Aggregator merges the student and teacher collections into one dashboard
// state. Every push replaces the collection's snapshot. Callbacks arriving
// after Unsubscribe are dropped.
type Aggregator struct {
	students LiveCollection
	teachers LiveCollection
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time

	mu             sync.RWMutex
	studentDocs    []models.Document
	teacherDocs    []models.Document
	studentsLoaded bool
	teachersLoaded bool
	subscribed     bool
	closed         bool
	unsubs         []func()

	changes chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewAggregator constructs an unsubscribed aggregator.
func NewAggregator(students, teachers LiveCollection, metrics *MetricsService, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		students: students,
		teachers: teachers,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Subscribe opens both collection subscriptions. Later calls are no-ops.
func (a *Aggregator) Subscribe() {
	a.mu.Lock()
	if a.subscribed || a.closed {
		a.mu.Unlock()
		return
	}
	a.subscribed = true
	a.mu.Unlock()

	a.metrics.SubscriptionOpened()

	// Collections may push synchronously, so no lock is held here.
	stopStudents := a.students.Subscribe(a.onSnapshot(models.FormStudent), a.onError(a.students.Name(), models.FormStudent))
	stopTeachers := a.teachers.Subscribe(a.onSnapshot(models.FormTeacher), a.onError(a.teachers.Name(), models.FormTeacher))

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		stopStudents()
		stopTeachers()
		return
	}
	a.unsubs = append(a.unsubs, stopStudents, stopTeachers)
	a.mu.Unlock()
}

// Unsubscribe releases both subscriptions. It is safe to call more than once;
// only the first call has effect.
func (a *Aggregator) Unsubscribe() {
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		unsubs := a.unsubs
		a.unsubs = nil
		wasSubscribed := a.subscribed
		a.mu.Unlock()

		for _, stop := range unsubs {
			stop()
		}
		if wasSubscribed {
			a.metrics.SubscriptionClosed()
		}
		close(a.done)
	})
}

// Changes signals after every accepted snapshot or error. Signals coalesce.
func (a *Aggregator) Changes() <-chan struct{} {
	return a.changes
}

// Done is closed once Unsubscribe has run.
func (a *Aggregator) Done() <-chan struct{} {
	return a.done
}

// Loading reports whether either collection has yet to deliver.
func (a *Aggregator) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return !a.studentsLoaded || !a.teachersLoaded
}

func (a *Aggregator) onSnapshot(kind models.FormKind) func([]models.Document) {
	return func(docs []models.Document) {
		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			return
		}
		snapshot := make([]models.Document, len(docs))
		copy(snapshot, docs)
		if kind == models.FormStudent {
			a.studentDocs = snapshot
			a.studentsLoaded = true
		} else {
			a.teacherDocs = snapshot
			a.teachersLoaded = true
		}
		a.mu.Unlock()
		a.notify()
	}
}

func (a *Aggregator) onError(collection string, kind models.FormKind) func(error) {
	return func(err error) {
		a.logger.Error("live collection subscription failed", zap.String("collection", collection), zap.Error(err))
		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			return
		}
		if kind == models.FormStudent {
			a.studentsLoaded = true
		} else {
			a.teachersLoaded = true
		}
		a.mu.Unlock()
		a.notify()
	}
}

func (a *Aggregator) notify() {
	select {
	case a.changes <- struct{}{}:
	default:
	}
}

// Snapshot returns copies of both collections, newest first.
func (a *Aggregator) Snapshot() (students, teachers []models.Document) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	students = append([]models.Document(nil), a.studentDocs...)
	teachers = append([]models.Document(nil), a.teacherDocs...)
	return students, teachers
}

// Project returns the records shown for view after the program and search filters.
func (a *Aggregator) Project(view View, search, program string) []models.Document {
	students, teachers := a.Snapshot()
	return Project(view, students, teachers, search, program)
}

// NewToday counts records across both collections submitted today.
func (a *Aggregator) NewToday() int {
	students, teachers := a.Snapshot()
	return CountOnDay(append(students, teachers...), a.now())
}

// Trend counts student registrations for the last days calendar days.
func (a *Aggregator) Trend(days int) []dto.TrendPoint {
	students, _ := a.Snapshot()
	return Trend(students, days, a.now())
}

// Distribution groups student registrations by class.
func (a *Aggregator) Distribution() []dto.DistributionSlice {
	students, _ := a.Snapshot()
	return Distribution(students)
}

// Project selects the collection for view, then applies the program filter
// (students view only) and a case-insensitive search over name, email and phone.
func Project(view View, students, teachers []models.Document, search, program string) []models.Document {
	var records []models.Document
	switch view {
	case ViewStudents, ViewAnalytics:
		records = students
	case ViewTeachers:
		records = teachers
	default:
		records = make([]models.Document, 0, len(students)+len(teachers))
		records = append(records, students...)
		records = append(records, teachers...)
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].SubmittedAt.After(records[j].SubmittedAt)
		})
	}

	program = strings.TrimSpace(program)
	term := strings.ToLower(strings.TrimSpace(search))
	if (program == "" || view != ViewStudents) && term == "" {
		return records
	}

	out := make([]models.Document, 0, len(records))
	for _, doc := range records {
		if view == ViewStudents && program != "" && doc.String(validation.FieldClasses) != program {
			continue
		}
		if term != "" && !matches(doc, term) {
			continue
		}
		out = append(out, doc)
	}
	return out
}

func matches(doc models.Document, term string) bool {
	name := doc.String(validation.FieldStudentName)
	if name == "" {
		name = doc.String(validation.FieldFullName)
	}
	for _, field := range []string{name, doc.String(validation.FieldEmail), doc.String(validation.FieldPhone)} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// CountOnDay counts docs whose local submission date equals now's.
func CountOnDay(docs []models.Document, now time.Time) int {
	day := startOfDay(now)
	count := 0
	for _, doc := range docs {
		if startOfDay(doc.SubmittedAt.In(now.Location())).Equal(day) {
			count++
		}
	}
	return count
}

// Trend returns one point per calendar day, oldest first, ending today.
func Trend(docs []models.Document, days int, now time.Time) []dto.TrendPoint {
	if days <= 0 {
		days = 7
	}
	today := startOfDay(now)
	counts := make(map[string]int, days)
	for _, doc := range docs {
		counts[doc.SubmittedAt.In(now.Location()).Format("2006-01-02")]++
	}

	points := make([]dto.TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		points = append(points, dto.TrendPoint{Date: key, Label: day.Format("Mon"), Count: counts[key]})
	}
	return points
}

// SumTrend totals a trend series.
func SumTrend(points []dto.TrendPoint) int {
	total := 0
	for _, p := range points {
		total += p.Count
	}
	return total
}

// Distribution counts docs per class, largest first, ties by name.
func Distribution(docs []models.Document) []dto.DistributionSlice {
	counts := map[string]int{}
	for _, doc := range docs {
		name := strings.TrimSpace(doc.String(validation.FieldClasses))
		if name == "" {
			name = DistributionUnknown
		}
		counts[name]++
	}

	out := make([]dto.DistributionSlice, 0, len(counts))
	for name, value := range counts {
		out = append(out, dto.DistributionSlice{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
