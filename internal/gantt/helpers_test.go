package gantt

import (
	"time"

	"github.com/micromata/projectforge-sub017/internal/calendar"
	"github.com/micromata/projectforge-sub017/internal/domain"
)

func date(y int, m time.Month, d int) *time.Time {
	t := domain.Date(y, m, d)
	return &t
}

func days(f float64) *float64 {
	return &f
}

func ref(id int64) *int64 {
	return &id
}

// juneCalendar has the 2010-06-03 holiday used throughout the scenarios.
func juneCalendar() *calendar.Calendar {
	return calendar.New(nil, domain.Holiday{Date: domain.Date(2010, 6, 3), Name: "Corpus Christi"})
}

func node(id int64, title string, opts ...func(*TaskNode)) *TaskNode {
	n := NewTaskNode(id, title)
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func withStart(d *time.Time) func(*TaskNode) { return func(n *TaskNode) { n.StartDate = d } }
func withEnd(d *time.Time) func(*TaskNode)   { return func(n *TaskNode) { n.EndDate = d } }
func withDuration(f float64) func(*TaskNode) { return func(n *TaskNode) { n.Duration = days(f) } }
func withPredecessor(id int64, rel domain.RelationType, offset int) func(*TaskNode) {
	return func(n *TaskNode) {
		n.PredecessorID = ref(id)
		n.RelationType = rel
		n.PredecessorOffset = offset
	}
}

// scenarioChart builds root 1 with children A (2) and B (3), where B follows
// A finish-start with a 10 day offset.
func scenarioChart() *Chart {
	root := node(1, "Project")
	root.AddChild(node(2, "A", withStart(date(2010, 6, 1)), withDuration(10)))
	root.AddChild(node(3, "B", withPredecessor(2, domain.FinishStart, 10)))
	return NewChart(root)
}
