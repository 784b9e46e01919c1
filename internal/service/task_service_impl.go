package service

import (
	"context"
	"fmt"
	"time"

	"github.com/micromata/projectforge-sub017/internal/db"
	"github.com/micromata/projectforge-sub017/internal/domain"
	"github.com/micromata/projectforge-sub017/internal/events"
	"github.com/micromata/projectforge-sub017/internal/gantt"
	"github.com/micromata/projectforge-sub017/internal/importer"
	"github.com/micromata/projectforge-sub017/internal/repository"
)

type taskService struct {
	tasks     repository.TaskRepo
	holidays  HolidayService
	uow       db.UnitOfWork
	publisher events.Publisher
	observer  UseCaseObserver
}

func NewTaskService(
	tasks repository.TaskRepo,
	holidays HolidayService,
	uow db.UnitOfWork,
	publisher events.Publisher,
	observers ...UseCaseObserver,
) TaskService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &taskService{
		tasks:     tasks,
		holidays:  holidays,
		uow:       uow,
		publisher: publisher,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *taskService) Import(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.ImportSchema(ctx, schema)
}

// ImportSchema validates and stores a task hierarchy in one transaction.
// Existing tasks with the same ids are updated in place, so re-importing a
// changed hierarchy refreshes the snapshot the charts are built from.
func (s *taskService) ImportSchema(ctx context.Context, schema *importer.ImportSchema) (result *ImportResult, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "import-tasks", time.Now().UTC(), fields, &err)

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}
	converted, err := importer.Convert(schema)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		txHolidays := repository.NewSQLiteHolidayRepo(tx)

		if external := converted.ExternalPredecessors(); len(external) > 0 {
			found, err := txTasks.TasksByID(ctx, external)
			if err != nil {
				return err
			}
			if missing := missingIDs(external, found); len(missing) > 0 {
				errs := make([]error, 0, len(missing))
				for _, id := range missing {
					errs = append(errs, fmt.Errorf("predecessor %d: %w", id, ErrPredecessorAbsent))
				}
				return formatValidationErrors(errs)
			}
		}

		for _, t := range converted.Tasks {
			if err := txTasks.Upsert(ctx, t); err != nil {
				return fmt.Errorf("storing task %q: %w", t.Title, err)
			}
		}
		for _, h := range converted.Holidays {
			if err := txHolidays.Upsert(ctx, h); err != nil {
				return fmt.Errorf("storing holiday %s: %w", h.Date.Format(domain.DateLayout), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = &ImportResult{TaskCount: len(converted.Tasks), HolidayCount: len(converted.Holidays)}
	for _, t := range converted.Tasks {
		if t.IsRoot() {
			result.RootIDs = append(result.RootIDs, t.ID)
		}
	}
	fields["task_count"] = result.TaskCount
	fields["holiday_count"] = result.HolidayCount

	if perr := s.publisher.Publish(ctx, events.TopicTasksImported, events.TasksImported{
		TaskCount:    result.TaskCount,
		HolidayCount: result.HolidayCount,
	}); perr != nil {
		fields["publish_error"] = perr.Error()
	}
	return result, nil
}

func (s *taskService) List(ctx context.Context) ([]*domain.Task, error) {
	return s.tasks.List(ctx)
}

func (s *taskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *taskService) Tree(ctx context.Context, rootID int64) (*gantt.Chart, error) {
	chart, err := gantt.Build(ctx, s.tasks, rootID)
	if err != nil {
		return nil, err
	}
	cal, err := s.holidays.Calendar(ctx)
	if err != nil {
		return nil, err
	}
	gantt.NewResolver(cal).Recalculate(chart)
	return chart, nil
}

func missingIDs(want []int64, found []domain.Task) []int64 {
	have := make(map[int64]bool, len(found))
	for _, t := range found {
		have[t.ID] = true
	}
	var out []int64
	for _, id := range want {
		if !have[id] {
			out = append(out, id)
		}
	}
	return out
}
