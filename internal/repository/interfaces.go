package repository

import (
	"context"
	"time"

	"github.com/micromata/projectforge-sub017/internal/domain"
	"github.com/micromata/projectforge-sub017/internal/gantt"
)

// TaskRepo stores the task-hierarchy snapshot. It also serves as the
// provider the chart builder reads from.
type TaskRepo interface {
	gantt.TaskProvider
	Create(ctx context.Context, t *domain.Task) error
	Upsert(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context) ([]*domain.Task, error)
	ListRoots(ctx context.Context) ([]*domain.Task, error)
	Delete(ctx context.Context, id int64) error
}

type ChartRepo interface {
	Create(ctx context.Context, c *domain.GanttChart) error
	GetByID(ctx context.Context, id string) (*domain.GanttChart, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.GanttChart, error)
	List(ctx context.Context) ([]*domain.GanttChart, error)
	Update(ctx context.Context, c *domain.GanttChart) error
	Delete(ctx context.Context, id string) error
}

type HolidayRepo interface {
	Upsert(ctx context.Context, h domain.Holiday) error
	Delete(ctx context.Context, date time.Time) error
	List(ctx context.Context) ([]domain.Holiday, error)
}
