package gantt

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/micromata/projectforge-sub017/internal/domain"
)

// ErrRootTaskNotFound is returned when the chart's root task does not exist.
var ErrRootTaskNotFound = errors.New("root task not found")

// maxExternalDepth bounds how far predecessor chains are followed outside
// the chart's subtree.
const maxExternalDepth = 32

// TaskProvider supplies read-only snapshots of the task hierarchy.
type TaskProvider interface {
	// TaskTree returns the task rootID and all of its descendants.
	TaskTree(ctx context.Context, rootID int64) ([]domain.Task, error)
	// TasksByID returns the tasks with the given ids; unknown ids are skipped.
	TasksByID(ctx context.Context, ids []int64) ([]domain.Task, error)
}

// Build constructs a fresh chart for the subtree below rootID. Predecessors
// outside the subtree are loaded into the external map; references to tasks
// that no longer exist are dropped.
func Build(ctx context.Context, provider TaskProvider, rootID int64) (*Chart, error) {
	tasks, err := provider.TaskTree(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("loading task tree %d: %w", rootID, err)
	}
	chart, err := BuildFromTasks(rootID, tasks)
	if err != nil {
		return nil, err
	}
	if err := LoadExternals(ctx, provider, chart); err != nil {
		return nil, err
	}
	return chart, nil
}

// LoadExternals follows predecessor references that leave the chart's
// subtree and adds the referenced tasks to the external map, up to
// maxExternalDepth hops. References that cannot be resolved afterwards are
// cleared.
func LoadExternals(ctx context.Context, provider TaskProvider, chart *Chart) error {
	for depth := 0; depth < maxExternalDepth; depth++ {
		missing := missingPredecessors(chart)
		if len(missing) == 0 {
			break
		}
		found, err := provider.TasksByID(ctx, missing)
		if err != nil {
			return fmt.Errorf("loading external predecessors: %w", err)
		}
		if len(found) == 0 {
			break
		}
		for _, t := range found {
			chart.AddExternal(NodeFromTask(t))
		}
	}
	dropDanglingPredecessors(chart)
	return nil
}

// BuildFromTasks assembles the tree below rootID from an unordered task list.
// Siblings are ordered by OrderIndex, then ID. Tasks whose parent is not part
// of the list are ignored.
func BuildFromTasks(rootID int64, tasks []domain.Task) (*Chart, error) {
	byParent := make(map[int64][]domain.Task)
	var root *domain.Task
	for i := range tasks {
		t := tasks[i]
		if t.ID == rootID {
			root = &tasks[i]
			continue
		}
		if t.ParentID != nil {
			byParent[*t.ParentID] = append(byParent[*t.ParentID], t)
		}
	}
	if root == nil {
		return nil, fmt.Errorf("task %d: %w", rootID, ErrRootTaskNotFound)
	}

	for _, siblings := range byParent {
		sort.Slice(siblings, func(i, j int) bool {
			if siblings[i].OrderIndex != siblings[j].OrderIndex {
				return siblings[i].OrderIndex < siblings[j].OrderIndex
			}
			return siblings[i].ID < siblings[j].ID
		})
	}

	var attach func(parent *TaskNode)
	attach = func(parent *TaskNode) {
		for _, t := range byParent[parent.ID] {
			child := NodeFromTask(t)
			parent.AddChild(child)
			attach(child)
		}
	}
	rootNode := NodeFromTask(*root)
	attach(rootNode)
	return NewChart(rootNode), nil
}

func missingPredecessors(c *Chart) []int64 {
	seen := make(map[int64]bool)
	var missing []int64
	for _, n := range c.Nodes() {
		if n.PredecessorID == nil {
			continue
		}
		id := *n.PredecessorID
		if seen[id] || c.FindByID(id) != nil {
			continue
		}
		seen[id] = true
		missing = append(missing, id)
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

func dropDanglingPredecessors(c *Chart) {
	for _, n := range c.Nodes() {
		if n.PredecessorID != nil && c.FindByID(*n.PredecessorID) == nil {
			n.PredecessorID = nil
		}
	}
}
