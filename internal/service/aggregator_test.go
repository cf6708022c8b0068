package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkmproject/tkm-api/internal/dto"
	"github.com/tkmproject/tkm-api/internal/models"
	"github.com/tkmproject/tkm-api/internal/repository"
)

// captureCollection records the callbacks handed to Subscribe so tests can
// push snapshots at any time, including after teardown.
type captureCollection struct {
	name         string
	onSnapshot   func([]models.Document)
	onError      func(error)
	unsubscribed int
}

func (c *captureCollection) Name() string { return c.name }

func (c *captureCollection) Subscribe(onSnapshot func([]models.Document), onError func(error)) func() {
	c.onSnapshot = onSnapshot
	c.onError = onError
	return func() { c.unsubscribed++ }
}

func studentDoc(id, name, email, phone, class string, at time.Time) models.Document {
	return models.Document{
		ID:         id,
		Collection: models.CollectionRegistrations,
		Data: map[string]interface{}{
			"studentName": name,
			"email":       email,
			"phone":       phone,
			"classes":     class,
			"studentDob":  "2016-05-01",
			"parentName":  "Parent " + name,
		},
		Status:      models.StatusNew,
		SubmittedAt: at,
	}
}

func teacherDoc(id, name, email string, at time.Time) models.Document {
	return models.Document{
		ID:          id,
		Collection:  models.CollectionTeacherApplications,
		Data:        map[string]interface{}{"fullName": name, "email": email, "phone": "+27825550000", "instruments": []interface{}{"Cello"}},
		SubmittedAt: at,
	}
}

func newTestAggregator() (*Aggregator, *captureCollection, *captureCollection) {
	students := &captureCollection{name: models.CollectionRegistrations}
	teachers := &captureCollection{name: models.CollectionTeacherApplications}
	agg := NewAggregator(students, teachers, NewMetricsService(), nil)
	agg.now = func() time.Time { return testNow }
	return agg, students, teachers
}

func TestAggregatorLoadingClearsAfterBothCollections(t *testing.T) {
	agg, students, teachers := newTestAggregator()
	agg.Subscribe()
	assert.True(t, agg.Loading())

	students.onSnapshot([]models.Document{studentDoc("s1", "Amy", "amy@example.com", "+27820000001", "Violin", testNow)})
	assert.True(t, agg.Loading())

	teachers.onSnapshot(nil)
	assert.False(t, agg.Loading())

	select {
	case <-agg.Changes():
	default:
		t.Fatal("expected a change signal")
	}
}

func TestAggregatorSubscriptionErrorDegradesToEmpty(t *testing.T) {
	agg, students, teachers := newTestAggregator()
	agg.Subscribe()

	students.onError(errors.New("permission denied"))
	teachers.onSnapshot(nil)

	assert.False(t, agg.Loading())
	assert.Empty(t, agg.Project(ViewStudents, "", ""))
}

func TestAggregatorSnapshotReplacesState(t *testing.T) {
	agg, students, teachers := newTestAggregator()
	agg.Subscribe()
	teachers.onSnapshot(nil)

	students.onSnapshot([]models.Document{
		studentDoc("s1", "Amy", "amy@example.com", "", "Violin", testNow),
		studentDoc("s2", "Ben", "ben@example.com", "", "Cello", testNow),
	})
	students.onSnapshot([]models.Document{studentDoc("s3", "Cal", "cal@example.com", "", "Flute", testNow)})

	got := agg.Project(ViewStudents, "", "")
	require.Len(t, got, 1)
	assert.Equal(t, "s3", got[0].ID)
}

func TestAggregatorIgnoresCallbacksAfterUnsubscribe(t *testing.T) {
	agg, students, teachers := newTestAggregator()
	agg.Subscribe()
	students.onSnapshot([]models.Document{studentDoc("s1", "Amy", "amy@example.com", "", "Violin", testNow)})

	agg.Unsubscribe()
	agg.Unsubscribe()
	assert.Equal(t, 1, students.unsubscribed)
	assert.Equal(t, 1, teachers.unsubscribed)

	students.onSnapshot([]models.Document{
		studentDoc("late-1", "Zed", "zed@example.com", "", "Dance", testNow),
		studentDoc("late-2", "Yas", "yas@example.com", "", "Dance", testNow),
	})
	teachers.onSnapshot([]models.Document{teacherDoc("t1", "Tess", "tess@example.com", testNow)})
	teachers.onError(errors.New("late error"))

	got := agg.Project(ViewOverview, "", "")
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)
	assert.True(t, agg.Loading())

	select {
	case <-agg.Done():
	default:
		t.Fatal("done should be closed after unsubscribe")
	}
}

func TestAggregatorWithMemoryStore(t *testing.T) {
	store := repository.NewMemoryStore()
	agg := NewAggregator(store.Collection(models.CollectionRegistrations), store.Collection(models.CollectionTeacherApplications), nil, nil)
	agg.Subscribe()
	defer agg.Unsubscribe()

	assert.False(t, agg.Loading())

	_, err := store.Insert(context.Background(), models.CollectionRegistrations, map[string]interface{}{"studentName": "Amy", "classes": "Violin"})
	require.NoError(t, err)

	got := agg.Project(ViewStudents, "amy", "")
	require.Len(t, got, 1)
	assert.Equal(t, "Amy", got[0].String("studentName"))
}

func TestProjectSearchIsCaseInsensitive(t *testing.T) {
	students := []models.Document{
		studentDoc("s1", "Vionna", "v@example.com", "+27820000001", "Violin", testNow),
		studentDoc("s2", "Ben", "BEN.VIOLA@example.com", "+27820000002", "Viola", testNow),
		studentDoc("s3", "Cal", "cal@example.com", "+27820000003", "Violin", testNow),
	}

	got := Project(ViewStudents, students, nil, "vio", "")
	ids := []string{}
	for _, doc := range got {
		ids = append(ids, doc.ID)
	}
	assert.Equal(t, []string{"s1", "s2"}, ids)
}

func TestProjectProgramFilterOnlyOnStudentsView(t *testing.T) {
	students := []models.Document{
		studentDoc("s1", "Amy", "amy@example.com", "", "Violin", testNow),
		studentDoc("s2", "Ben", "ben@example.com", "", "Cello", testNow),
	}
	teachers := []models.Document{teacherDoc("t1", "Tess", "tess@example.com", testNow.Add(time.Minute))}

	assert.Len(t, Project(ViewStudents, students, teachers, "", "Cello"), 1)
	assert.Len(t, Project(ViewOverview, students, teachers, "", "Cello"), 3)
	assert.Len(t, Project(ViewTeachers, students, teachers, "tess", ""), 1)
	assert.Len(t, Project(ViewStudents, students, teachers, "", ""), 2)
}

func TestProjectOverviewIsNewestFirst(t *testing.T) {
	students := []models.Document{studentDoc("s1", "Amy", "", "", "Violin", testNow.Add(-time.Hour))}
	teachers := []models.Document{teacherDoc("t1", "Tess", "", testNow)}

	got := Project(ViewOverview, students, teachers, "", "")
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "s1", got[1].ID)
}

func TestDistributionSortsByCount(t *testing.T) {
	students := []models.Document{
		studentDoc("s1", "A", "", "", "Violin", testNow),
		studentDoc("s2", "B", "", "", "Violin", testNow),
		studentDoc("s3", "C", "", "", "Cello", testNow),
	}
	assert.Equal(t, []dto.DistributionSlice{{Name: "Violin", Value: 2}, {Name: "Cello", Value: 1}}, Distribution(students))
}

func TestDistributionGroupsMissingClass(t *testing.T) {
	students := []models.Document{studentDoc("s1", "A", "", "", "", testNow)}
	assert.Equal(t, []dto.DistributionSlice{{Name: DistributionUnknown, Value: 1}}, Distribution(students))
}

func TestTrendOldestFirst(t *testing.T) {
	students := []models.Document{
		studentDoc("s1", "A", "", "", "Violin", testNow),
		studentDoc("s2", "B", "", "", "Violin", testNow.Add(-2*time.Hour)),
		studentDoc("s3", "C", "", "", "Violin", testNow.AddDate(0, 0, -6)),
		studentDoc("s4", "D", "", "", "Violin", testNow.AddDate(0, 0, -7)),
	}

	points := Trend(students, 7, testNow)
	require.Len(t, points, 7)
	assert.Equal(t, "2025-03-04", points[0].Date)
	assert.Equal(t, 1, points[0].Count)
	assert.Equal(t, "2025-03-10", points[6].Date)
	assert.Equal(t, "Mon", points[6].Label)
	assert.Equal(t, 2, points[6].Count)
	assert.Equal(t, 3, SumTrend(points))
}

func TestCountOnDayUsesCalendarDate(t *testing.T) {
	docs := []models.Document{
		studentDoc("s1", "A", "", "", "Violin", testNow),
		teacherDoc("t1", "T", "", time.Date(2025, time.March, 10, 0, 0, 1, 0, time.UTC)),
		studentDoc("s2", "B", "", "", "Violin", time.Date(2025, time.March, 9, 23, 59, 59, 0, time.UTC)),
	}
	assert.Equal(t, 2, CountOnDay(docs, testNow))
}

func TestParseView(t *testing.T) {
	v, ok := ParseView("")
	assert.True(t, ok)
	assert.Equal(t, ViewOverview, v)

	v, ok = ParseView("Students")
	assert.True(t, ok)
	assert.Equal(t, ViewStudents, v)

	_, ok = ParseView("finance")
	assert.False(t, ok)
}
