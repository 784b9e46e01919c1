package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/micromata/projectforge-sub017/internal/domain"
)

var testShortIDCounter atomic.Int64

// TaskOption customizes a fixture task.
type TaskOption func(*domain.Task)

func WithParent(id int64) TaskOption {
	return func(t *domain.Task) {
		t.ParentID = &id
	}
}

func WithOrderIndex(i int) TaskOption {
	return func(t *domain.Task) {
		t.OrderIndex = i
	}
}

func WithDuration(days float64) TaskOption {
	return func(t *domain.Task) {
		t.Duration = &days
	}
}

func WithStartDate(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.StartDate = &d
	}
}

func WithEndDate(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.EndDate = &d
	}
}

func WithPredecessor(id int64, rel domain.RelationType, offset int) TaskOption {
	return func(t *domain.Task) {
		t.PredecessorID = &id
		t.RelationType = rel
		t.PredecessorOffset = offset
	}
}

func NewTestTask(id int64, title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC().Truncate(time.Second)
	t := &domain.Task{
		ID:           id,
		Title:        title,
		RelationType: domain.DefaultRelationType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ChartOption customizes a fixture chart.
type ChartOption func(*domain.GanttChart)

func WithChartShortID(id string) ChartOption {
	return func(c *domain.GanttChart) {
		c.ShortID = id
	}
}

func WithGanttObjects(xml string) ChartOption {
	return func(c *domain.GanttChart) {
		c.GanttObjects = xml
	}
}

func NewTestChart(title string, rootTaskID int64, opts ...ChartOption) *domain.GanttChart {
	now := time.Now().UTC().Truncate(time.Second)
	c := &domain.GanttChart{
		ID:         uuid.New().String(),
		ShortID:    fmt.Sprintf("gc-test%04d", testShortIDCounter.Add(1)),
		Title:      title,
		RootTaskID: rootTaskID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ScenarioTasks returns the reference hierarchy: root 1 with A (2) starting
// 2010-06-01 for 10 working days and B (3) following A finish-start with a
// 10 day offset.
func ScenarioTasks() []*domain.Task {
	return []*domain.Task{
		NewTestTask(1, "Project"),
		NewTestTask(2, "A", WithParent(1), WithOrderIndex(0),
			WithStartDate(domain.Date(2010, 6, 1)), WithDuration(10)),
		NewTestTask(3, "B", WithParent(1), WithOrderIndex(1),
			WithPredecessor(2, domain.FinishStart, 10)),
	}
}
