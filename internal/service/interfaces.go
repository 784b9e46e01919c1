package service

import (
	"context"
	"time"

	"github.com/micromata/projectforge-sub017/internal/calendar"
	"github.com/micromata/projectforge-sub017/internal/domain"
	"github.com/micromata/projectforge-sub017/internal/gantt"
	"github.com/micromata/projectforge-sub017/internal/importer"
)

// ImportResult holds the outcome of a task-hierarchy import.
type ImportResult struct {
	TaskCount    int
	HolidayCount int
	RootIDs      []int64
}

type TaskService interface {
	Import(ctx context.Context, filePath string) (*ImportResult, error)
	ImportSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
	List(ctx context.Context) ([]*domain.Task, error)
	Get(ctx context.Context, id int64) (*domain.Task, error)
	// Tree builds the plain chart of a task subtree, resolved against the
	// current calendar but without any stored overrides.
	Tree(ctx context.Context, rootID int64) (*gantt.Chart, error)
}

type HolidayService interface {
	Add(ctx context.Context, date time.Time, name string) error
	Remove(ctx context.Context, date time.Time) error
	List(ctx context.Context) ([]domain.Holiday, error)
	// Calendar combines the configured weekend and config-file holidays with
	// the holidays stored in the database.
	Calendar(ctx context.Context) (*calendar.Calendar, error)
}

// OpenChart is a chart entity with its resolved tree: the fresh build from
// the task hierarchy with the stored overrides applied and dates calculated.
type OpenChart struct {
	Entity   *domain.GanttChart
	Chart    *gantt.Chart
	Warnings []gantt.Warning

	// defaults is the untouched build Chart was cloned from.
	defaults *gantt.Chart
}

// EditRequest changes scheduling fields of one chart node. Nil fields are
// left untouched; the Clear flags reset a field to "not set", which is
// stored as an explicit override when the task itself has a value.
type EditRequest struct {
	Title            *string
	Duration         *float64
	ClearDuration    bool
	StartDate        *time.Time
	ClearStartDate   bool
	EndDate          *time.Time
	ClearEndDate     bool
	PredecessorID    *int64
	ClearPredecessor bool
	Offset           *int
	RelationType     *domain.RelationType
}

type ChartService interface {
	Create(ctx context.Context, title string, rootTaskID int64) (*domain.GanttChart, error)
	// Open accepts a chart id or short id.
	Open(ctx context.Context, ref string) (*OpenChart, error)
	Save(ctx context.Context, open *OpenChart) error
	Edit(ctx context.Context, ref string, nodeID int64, req EditRequest) (*OpenChart, error)
	AddNode(ctx context.Context, ref string, parentID int64, title string, duration *float64) (*OpenChart, *gantt.TaskNode, error)
	RemoveNode(ctx context.Context, ref string, nodeID int64) (*OpenChart, error)
	XML(ctx context.Context, ref string) (string, error)
	List(ctx context.Context) ([]*domain.GanttChart, error)
	Delete(ctx context.Context, ref string) error
}
