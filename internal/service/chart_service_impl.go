package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/micromata/projectforge-sub017/internal/domain"
	"github.com/micromata/projectforge-sub017/internal/events"
	"github.com/micromata/projectforge-sub017/internal/gantt"
	"github.com/micromata/projectforge-sub017/internal/idgen"
	"github.com/micromata/projectforge-sub017/internal/repository"
)

type chartService struct {
	charts    repository.ChartRepo
	tasks     repository.TaskRepo
	holidays  HolidayService
	publisher events.Publisher
	logger    *slog.Logger
	observer  UseCaseObserver
	now       func() time.Time
}

// NewChartService wires the chart use cases. A nil publisher disables
// events and a nil logger discards chart XML warnings.
func NewChartService(
	charts repository.ChartRepo,
	tasks repository.TaskRepo,
	holidays HolidayService,
	publisher events.Publisher,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) ChartService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &chartService{
		charts:    charts,
		tasks:     tasks,
		holidays:  holidays,
		publisher: publisher,
		logger:    logger,
		observer:  useCaseObserverOrNoop(observers),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *chartService) Create(ctx context.Context, title string, rootTaskID int64) (chart *domain.GanttChart, err error) {
	fields := map[string]any{"root_task_id": rootTaskID}
	defer observe(ctx, s.observer, "create-chart", s.now(), fields, &err)

	root, err := s.tasks.GetByID(ctx, rootTaskID)
	if err != nil {
		return nil, fmt.Errorf("root task: %w", err)
	}
	shortID, err := idgen.ChartShortID()
	if err != nil {
		return nil, err
	}
	now := s.now()
	chart = &domain.GanttChart{
		ID:         uuid.New().String(),
		ShortID:    shortID,
		Title:      domain.CoalesceStr(strings.TrimSpace(title), root.Title),
		RootTaskID: rootTaskID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err = s.charts.Create(ctx, chart); err != nil {
		return nil, err
	}
	fields["chart"] = chart.ShortID

	s.publish(ctx, events.TopicChartCreated, events.ChartCreated{
		ChartID:    chart.ID,
		ShortID:    chart.ShortID,
		Title:      chart.Title,
		RootTaskID: chart.RootTaskID,
	})
	return chart, nil
}

func (s *chartService) Open(ctx context.Context, ref string) (open *OpenChart, err error) {
	fields := map[string]any{"chart": ref}
	defer observe(ctx, s.observer, "open-chart", s.now(), fields, &err)

	entity, err := s.lookup(ctx, ref)
	if err != nil {
		return nil, err
	}
	open, err = s.open(ctx, entity)
	if err != nil {
		return nil, err
	}
	fields["warnings"] = len(open.Warnings)
	return open, nil
}

// open rebuilds the chart from the current task hierarchy, applies the
// stored overrides and calculates all dates.
func (s *chartService) open(ctx context.Context, entity *domain.GanttChart) (*OpenChart, error) {
	defaults, err := gantt.Build(ctx, s.tasks, entity.RootTaskID)
	if err != nil {
		return nil, fmt.Errorf("building chart %s: %w", entity.DisplayID(), err)
	}
	chart := defaults.Clone()

	reader := &gantt.Reader{LookupExternal: s.lookupExternal(ctx)}
	warnings, err := reader.Read(entity.GanttObjects, chart)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", entity.DisplayID(), err)
	}
	if err := gantt.LoadExternals(ctx, s.tasks, chart); err != nil {
		return nil, err
	}
	for _, w := range warnings {
		s.logger.WarnContext(ctx, "chart_xml_warning",
			"chart", entity.DisplayID(), "path", w.Path, "message", w.Message)
	}

	if err := s.recalculate(ctx, chart); err != nil {
		return nil, err
	}
	return &OpenChart{Entity: entity, Chart: chart, Warnings: warnings, defaults: defaults}, nil
}

// lookupExternal loads tasks outside the chart's subtree that the stored
// XML names as predecessors.
func (s *chartService) lookupExternal(ctx context.Context) func(int64) *gantt.TaskNode {
	return func(id int64) *gantt.TaskNode {
		if id <= 0 {
			return nil
		}
		found, err := s.tasks.TasksByID(ctx, []int64{id})
		if err != nil {
			s.logger.WarnContext(ctx, "external_lookup_failed", "task", id, "error", err.Error())
			return nil
		}
		if len(found) == 0 {
			return nil
		}
		return gantt.NodeFromTask(found[0])
	}
}

func (s *chartService) recalculate(ctx context.Context, chart *gantt.Chart) error {
	cal, err := s.holidays.Calendar(ctx)
	if err != nil {
		return err
	}
	gantt.NewResolver(cal).Recalculate(chart)
	return nil
}

// Save stores the overrides of open.Chart against the task hierarchy it was
// opened from, or a fresh build of it when open did not come from Open.
// Concurrent saves are not merged; the last one wins.
func (s *chartService) Save(ctx context.Context, open *OpenChart) (err error) {
	fields := map[string]any{"chart": open.Entity.DisplayID()}
	defer observe(ctx, s.observer, "save-chart", s.now(), fields, &err)

	defaults := open.defaults
	if defaults == nil {
		if defaults, err = gantt.Build(ctx, s.tasks, open.Entity.RootTaskID); err != nil {
			return fmt.Errorf("building default chart: %w", err)
		}
	}
	open.Chart.PruneExternals()
	blob := gantt.Write(open.Chart, defaults)

	open.Entity.GanttObjects = blob
	open.Entity.UpdatedAt = s.now()
	if err = s.charts.Update(ctx, open.Entity); err != nil {
		return err
	}
	fields["bytes"] = len(blob)

	s.publish(ctx, events.TopicChartSaved, events.ChartSaved{
		ChartID:    open.Entity.ID,
		ShortID:    open.Entity.ShortID,
		RootTaskID: open.Entity.RootTaskID,
		Overrides:  len(blob),
	})
	return s.recalculate(ctx, open.Chart)
}

func (s *chartService) Edit(ctx context.Context, ref string, nodeID int64, req EditRequest) (*OpenChart, error) {
	open, err := s.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	n := open.Chart.Root.FindByID(nodeID)
	if n == nil {
		return nil, fmt.Errorf("node %d: %w", nodeID, ErrNodeNotFound)
	}
	if err := s.applyEdit(ctx, open.Chart, n, req); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, open); err != nil {
		return nil, err
	}
	return open, nil
}

func (s *chartService) applyEdit(ctx context.Context, chart *gantt.Chart, n *gantt.TaskNode, req EditRequest) error {
	if req.Title != nil {
		n.Title = *req.Title
	}

	switch {
	case req.ClearDuration:
		n.Duration = nil
	case req.Duration != nil:
		if *req.Duration < 0 {
			return fmt.Errorf("%w: duration must not be negative", ErrInvalidEdit)
		}
		n.Duration = domain.Ptr(*req.Duration)
	}
	switch {
	case req.ClearStartDate:
		n.StartDate = nil
	case req.StartDate != nil:
		n.StartDate = domain.Ptr(domain.Day(*req.StartDate))
	}
	switch {
	case req.ClearEndDate:
		n.EndDate = nil
	case req.EndDate != nil:
		n.EndDate = domain.Ptr(domain.Day(*req.EndDate))
	}
	if n.StartDate != nil && n.EndDate != nil && n.EndDate.Before(*n.StartDate) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidEdit,
			domain.FormatDate(n.EndDate), domain.FormatDate(n.StartDate))
	}

	if req.Offset != nil {
		n.PredecessorOffset = *req.Offset
	}
	if req.RelationType != nil {
		if !domain.ValidRelationTypes[*req.RelationType] {
			return fmt.Errorf("%w: unknown relation type %q", ErrInvalidEdit, *req.RelationType)
		}
		n.RelationType = *req.RelationType
	}

	switch {
	case req.ClearPredecessor:
		n.PredecessorID = nil
	case req.PredecessorID != nil:
		id := *req.PredecessorID
		if id == n.ID {
			return fmt.Errorf("%w: a node cannot be its own predecessor", ErrInvalidEdit)
		}
		if chart.FindByID(id) == nil {
			ext := s.lookupExternal(ctx)(id)
			if ext == nil {
				return fmt.Errorf("task %d: %w", id, ErrPredecessorAbsent)
			}
			chart.AddExternal(ext)
			if err := gantt.LoadExternals(ctx, s.tasks, chart); err != nil {
				return err
			}
		}
		n.PredecessorID = domain.Ptr(id)
	}
	return nil
}

func (s *chartService) AddNode(ctx context.Context, ref string, parentID int64, title string, duration *float64) (*OpenChart, *gantt.TaskNode, error) {
	if strings.TrimSpace(title) == "" {
		return nil, nil, fmt.Errorf("%w: title is required", ErrInvalidEdit)
	}
	if duration != nil && *duration < 0 {
		return nil, nil, fmt.Errorf("%w: duration must not be negative", ErrInvalidEdit)
	}
	open, err := s.Open(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	parent := open.Chart.Root.FindByID(parentID)
	if parent == nil {
		return nil, nil, fmt.Errorf("parent %d: %w", parentID, ErrNodeNotFound)
	}

	n := gantt.NewTaskNode(open.Chart.NextSyntheticID(), strings.TrimSpace(title))
	if duration != nil {
		n.Duration = domain.Ptr(*duration)
	}
	parent.AddChild(n)

	if err := s.Save(ctx, open); err != nil {
		return nil, nil, err
	}
	return open, n, nil
}

// RemoveNode deletes an ad-hoc node with its subtree. Links from other
// nodes to any removed node are cleared.
func (s *chartService) RemoveNode(ctx context.Context, ref string, nodeID int64) (*OpenChart, error) {
	open, err := s.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	n := open.Chart.Root.FindByID(nodeID)
	if n == nil {
		return nil, fmt.Errorf("node %d: %w", nodeID, ErrNodeNotFound)
	}
	if !n.IsSynthetic() {
		return nil, fmt.Errorf("node %d: %w", nodeID, ErrNotAdHoc)
	}

	removed := make(map[int64]bool)
	n.Walk(func(c *gantt.TaskNode) bool {
		removed[c.ID] = true
		return true
	})
	n.Parent().RemoveChild(nodeID)
	for _, other := range open.Chart.Nodes() {
		if other.PredecessorID != nil && removed[*other.PredecessorID] {
			other.PredecessorID = nil
		}
	}

	if err := s.Save(ctx, open); err != nil {
		return nil, err
	}
	return open, nil
}

func (s *chartService) XML(ctx context.Context, ref string) (string, error) {
	entity, err := s.lookup(ctx, ref)
	if err != nil {
		return "", err
	}
	return entity.GanttObjects, nil
}

func (s *chartService) List(ctx context.Context) ([]*domain.GanttChart, error) {
	return s.charts.List(ctx)
}

func (s *chartService) Delete(ctx context.Context, ref string) (err error) {
	fields := map[string]any{"chart": ref}
	defer observe(ctx, s.observer, "delete-chart", s.now(), fields, &err)

	entity, err := s.lookup(ctx, ref)
	if err != nil {
		return err
	}
	if err = s.charts.Delete(ctx, entity.ID); err != nil {
		return err
	}
	s.publish(ctx, events.TopicChartDeleted, events.ChartDeleted{ChartID: entity.ID, ShortID: entity.ShortID})
	return nil
}

// lookup resolves a short id first, then a full id.
func (s *chartService) lookup(ctx context.Context, ref string) (*domain.GanttChart, error) {
	ref = strings.TrimSpace(ref)
	chart, err := s.charts.GetByShortID(ctx, ref)
	if err == nil {
		return chart, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return s.charts.GetByID(ctx, ref)
}

// publish sends an event; failures are logged and never fail the use case.
func (s *chartService) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.WarnContext(ctx, "event_publish_failed", "topic", topic, "error", err.Error())
	}
}
