// Package events publishes chart lifecycle notifications so other tools can
// refresh their views when a chart changes.
package events

import "context"

const (
	TopicChartCreated  = "pfgantt.chart.created"
	TopicChartSaved    = "pfgantt.chart.saved"
	TopicChartDeleted  = "pfgantt.chart.deleted"
	TopicTasksImported = "pfgantt.tasks.imported"
)

type ChartCreated struct {
	ChartID    string `json:"chart_id"`
	ShortID    string `json:"short_id"`
	Title      string `json:"title"`
	RootTaskID int64  `json:"root_task_id"`
}

type ChartSaved struct {
	ChartID    string `json:"chart_id"`
	ShortID    string `json:"short_id"`
	RootTaskID int64  `json:"root_task_id"`
	Overrides  int    `json:"overrides"` // size of the stored XML diff in bytes
}

type ChartDeleted struct {
	ChartID string `json:"chart_id"`
	ShortID string `json:"short_id"`
}

type TasksImported struct {
	TaskCount    int `json:"task_count"`
	HolidayCount int `json:"holiday_count"`
}

// Publisher sends JSON-encoded events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
