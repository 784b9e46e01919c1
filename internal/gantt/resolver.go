package gantt

import (
	"math"
	"time"

	"github.com/micromata/projectforge-sub017/internal/calendar"
	"github.com/micromata/projectforge-sub017/internal/domain"
)

// Resolver computes calculated start and end dates of chart nodes from
// their fixed dates, durations, predecessor relations and children.
type Resolver struct {
	cal calendar.WorkingDays
}

// NewResolver creates a resolver doing date arithmetic in cal.
func NewResolver(cal calendar.WorkingDays) *Resolver {
	return &Resolver{cal: cal}
}

// Recalculate clears every calculated value of the chart and resolves all
// nodes again. Callers must recalculate after mutating any node before
// reading calculated dates.
func (r *Resolver) Recalculate(c *Chart) {
	nodes := c.Nodes()
	for _, n := range nodes {
		n.resetCalculated()
	}
	markCycles(c, nodes)

	p := &pass{r: r, chart: c, inProgress: make(map[int64]bool)}
	for _, n := range nodes {
		p.resolve(n)
	}
}

// Duration returns the effective duration of n in working days. A node with
// both a fixed start and a fixed end derives it from their distance;
// otherwise the explicit duration is used.
func (r *Resolver) Duration(n *TaskNode) *float64 {
	if n.StartDate != nil && n.EndDate != nil {
		d := float64(r.cal.WorkingDaysBetween(*n.StartDate, *n.EndDate))
		return &d
	}
	return n.Duration
}

// markCycles flags every node lying on a cycle of the predecessor graph.
// Each node has at most one predecessor, so following the chain from every
// node finds all cycles.
func markCycles(c *Chart, nodes []*TaskNode) {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[int64]int, len(nodes))
	for _, start := range nodes {
		var path []*TaskNode
		index := make(map[int64]int)
		for n := start; n != nil; n = c.Predecessor(n) {
			if st := state[n.ID]; st == done {
				break
			} else if st == onPath {
				for _, member := range path[index[n.ID]:] {
					member.inCycle = true
				}
				break
			}
			state[n.ID] = onPath
			index[n.ID] = len(path)
			path = append(path, n)
		}
		for _, n := range path {
			state[n.ID] = done
		}
	}
}

type pass struct {
	r          *Resolver
	chart      *Chart
	inProgress map[int64]bool
}

func (p *pass) resolve(n *TaskNode) {
	if n.resolved || p.inProgress[n.ID] {
		// A node revisited while still being resolved contributes nil dates.
		return
	}
	n.calcDuration = p.r.Duration(n)
	if n.inCycle {
		n.resolved = true
		return
	}
	p.inProgress[n.ID] = true
	defer delete(p.inProgress, n.ID)

	start := copyDate(n.StartDate)
	end := copyDate(n.EndDate)

	if pred := p.chart.Predecessor(n); pred != nil && (start == nil || end == nil) {
		p.resolve(pred)
		rel := n.RelationType.OrDefault()
		anchor := pred.calcStart
		if rel.AnchorsOnFinish() {
			anchor = pred.calcEnd
		}
		if anchor != nil {
			d := p.r.cal.AddWorkingDays(*anchor, n.PredecessorOffset)
			if rel.ConstrainsStart() {
				if start == nil {
					start = &d
				}
			} else if end == nil {
				end = &d
			}
		}
	}

	if n.Duration != nil {
		days := roundDays(*n.Duration)
		switch {
		case start != nil && end == nil:
			end = domain.Ptr(p.r.cal.AddWorkingDays(*start, days))
		case end != nil && start == nil:
			start = domain.Ptr(p.r.cal.AddWorkingDays(*end, -days))
		}
	}

	// Only a node with nothing of its own to go on rolls up its children.
	if start == nil && end == nil && n.Duration == nil && len(n.Children) > 0 {
		var minStart, maxEnd *time.Time
		for _, child := range n.Children {
			p.resolve(child)
			if s := child.calcStart; s != nil && (minStart == nil || s.Before(*minStart)) {
				minStart = s
			}
			if e := child.calcEnd; e != nil && (maxEnd == nil || e.After(*maxEnd)) {
				maxEnd = e
			}
		}
		start, end = copyDate(minStart), copyDate(maxEnd)
	}

	n.calcStart, n.calcEnd = start, end
	n.resolved = true
}

// roundDays rounds a fractional working-day duration half away from zero.
func roundDays(d float64) int {
	return int(math.Round(d))
}

func copyDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := domain.Day(*t)
	return &d
}
