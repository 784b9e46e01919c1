// Package gantt holds the Gantt chart engine: the task node tree, the
// dependency resolver that computes calculated dates, and the compact XML
// diff format charts are persisted in.
package gantt

import (
	"time"

	"github.com/micromata/projectforge-sub017/internal/domain"
)

// TaskNode is one node of a chart's work-breakdown tree. Children are owned;
// the predecessor is referenced by id and may live anywhere in the chart,
// including the external map.
type TaskNode struct {
	ID                int64
	Title             string
	Duration          *float64 // working days
	StartDate         *time.Time
	EndDate           *time.Time
	PredecessorID     *int64
	PredecessorOffset int // working days
	RelationType      domain.RelationType
	Children          []*TaskNode

	parent *TaskNode

	// Filled by Resolver.Recalculate.
	calcStart    *time.Time
	calcEnd      *time.Time
	calcDuration *float64
	resolved     bool
	inCycle      bool
}

// NewTaskNode creates a detached node with the default relation type.
func NewTaskNode(id int64, title string) *TaskNode {
	return &TaskNode{ID: id, Title: title, RelationType: domain.DefaultRelationType}
}

// NodeFromTask copies the scheduling fields of a task record.
func NodeFromTask(t domain.Task) *TaskNode {
	n := NewTaskNode(t.ID, t.Title)
	if t.Duration != nil {
		n.Duration = domain.Ptr(*t.Duration)
	}
	if t.StartDate != nil {
		n.StartDate = domain.Ptr(domain.Day(*t.StartDate))
	}
	if t.EndDate != nil {
		n.EndDate = domain.Ptr(domain.Day(*t.EndDate))
	}
	if t.PredecessorID != nil {
		n.PredecessorID = domain.Ptr(*t.PredecessorID)
	}
	n.PredecessorOffset = t.PredecessorOffset
	n.RelationType = t.RelationType.OrDefault()
	return n
}

// IsSynthetic reports whether the node is an ad-hoc node not backed by a task.
func (n *TaskNode) IsSynthetic() bool {
	return n.ID < 0
}

// Parent returns the owning node, or nil for a root or detached node.
func (n *TaskNode) Parent() *TaskNode {
	return n.parent
}

// AddChild appends child and makes n its owner.
func (n *TaskNode) AddChild(child *TaskNode) {
	if child.parent != nil && child.parent != n {
		child.parent.RemoveChild(child.ID)
	}
	child.parent = n
	n.Children = append(n.Children, child)
}

// RemoveChild detaches the direct child with the given id.
func (n *TaskNode) RemoveChild(id int64) bool {
	for i, c := range n.Children {
		if c.ID == id {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// FindByID searches n and its owned descendants depth-first.
func (n *TaskNode) FindByID(id int64) *TaskNode {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.FindByID(id); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's subtree.
func (n *TaskNode) Walk(fn func(*TaskNode) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// NextSyntheticID returns an id for a new ad-hoc node: one below the most
// negative id in the subtree, or -1 if no negative id is in use.
func (n *TaskNode) NextSyntheticID() int64 {
	var lowest int64
	n.Walk(func(c *TaskNode) bool {
		if c.ID < lowest {
			lowest = c.ID
		}
		return true
	})
	return lowest - 1
}

// Depth returns the number of ancestors; the chart root is at depth 0.
func (n *TaskNode) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// CalculatedStartDate is the start computed by the last recalculation pass;
// nil means unresolvable.
func (n *TaskNode) CalculatedStartDate() *time.Time {
	return n.calcStart
}

// CalculatedEndDate is the end computed by the last recalculation pass.
func (n *TaskNode) CalculatedEndDate() *time.Time {
	return n.calcEnd
}

// CalculatedDuration is the working-day duration in effect after the last
// recalculation: derived from the fixed dates when both are set, the
// explicit duration otherwise.
func (n *TaskNode) CalculatedDuration() *float64 {
	return n.calcDuration
}

// InCycle reports whether the last recalculation found the node on a
// predecessor cycle.
func (n *TaskNode) InCycle() bool {
	return n.inCycle
}

// Clone deep-copies n and its owned subtree. Calculated values are not copied.
func (n *TaskNode) Clone() *TaskNode {
	c := &TaskNode{
		ID:                n.ID,
		Title:             n.Title,
		PredecessorOffset: n.PredecessorOffset,
		RelationType:      n.RelationType,
	}
	if n.Duration != nil {
		c.Duration = domain.Ptr(*n.Duration)
	}
	if n.StartDate != nil {
		c.StartDate = domain.Ptr(*n.StartDate)
	}
	if n.EndDate != nil {
		c.EndDate = domain.Ptr(*n.EndDate)
	}
	if n.PredecessorID != nil {
		c.PredecessorID = domain.Ptr(*n.PredecessorID)
	}
	for _, child := range n.Children {
		c.AddChild(child.Clone())
	}
	return c
}

func (n *TaskNode) resetCalculated() {
	n.calcStart, n.calcEnd, n.calcDuration = nil, nil, nil
	n.resolved, n.inCycle = false, false
}
