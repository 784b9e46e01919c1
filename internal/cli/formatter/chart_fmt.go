package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/micromata/projectforge-sub017/internal/domain"
	"github.com/micromata/projectforge-sub017/internal/gantt"
)

const dateArrow = " → "

// FormatChartTree renders a resolved chart: one line per node with its
// calculated dates, followed by the external predecessors.
func FormatChartTree(title string, c *gantt.Chart) string {
	var items []TreeItem
	var visit func(n *gantt.TaskNode, isLast bool, ancestors []bool)
	visit = func(n *gantt.TaskNode, isLast bool, ancestors []bool) {
		level := n.Depth()
		items = append(items, TreeItem{
			ID:        n.ID,
			Title:     n.Title,
			Level:     level,
			IsLast:    isLast,
			Ancestors: ancestors,
			Marker:    nodeMarker(n),
			Detail:    nodeDetail(n),
		})
		next := ancestors
		if level > 0 {
			next = append(append([]bool(nil), ancestors...), isLast)
		}
		for i, child := range n.Children {
			visit(child, i == len(n.Children)-1, next)
		}
	}
	visit(c.Root, true, nil)

	var b strings.Builder
	b.WriteString(Header(title) + "\n")
	b.WriteString(RenderTree(items))

	if externals := c.Externals(); len(externals) > 0 {
		b.WriteString("\n" + Header("External predecessors") + "\n")
		ext := make([]TreeItem, 0, len(externals))
		for _, n := range externals {
			ext = append(ext, TreeItem{ID: n.ID, Title: n.Title, Marker: nodeMarker(n), Detail: nodeDetail(n)})
		}
		b.WriteString(RenderTree(ext))
	}
	if hasCycle(c) {
		b.WriteString("\n" + StyleRed.Render("⟳ marks tasks on a predecessor cycle; their dates cannot be calculated.") + "\n")
	}
	return b.String()
}

func nodeMarker(n *gantt.TaskNode) string {
	switch {
	case n.InCycle():
		return StyleRed.Render("⟳ ")
	case n.IsSynthetic():
		return StylePurple.Render("+ ")
	default:
		return ""
	}
}

func nodeDetail(n *gantt.TaskNode) string {
	start, end := n.CalculatedStartDate(), n.CalculatedEndDate()
	var parts []string
	if start != nil || end != nil {
		parts = append(parts, dateOrDash(start)+dateArrow+dateOrDash(end))
	}
	if d := n.CalculatedDuration(); d != nil {
		parts = append(parts, FormatDays(*d))
	}
	if n.PredecessorID != nil {
		rel := fmt.Sprintf("%s #%d", n.RelationType.OrDefault().Short(), *n.PredecessorID)
		if n.PredecessorOffset != 0 {
			rel += fmt.Sprintf("%+d", n.PredecessorOffset)
		}
		parts = append(parts, rel)
	}
	return strings.Join(parts, "  ")
}

func dateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return domain.FormatDate(t)
}

func hasCycle(c *gantt.Chart) bool {
	for _, n := range c.Nodes() {
		if n.InCycle() {
			return true
		}
	}
	return false
}

// FormatDays renders a working-day duration such as "10d" or "2.5d".
func FormatDays(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64) + "d"
}

// FormatChartList renders stored charts as a table.
func FormatChartList(charts []*domain.GanttChart) string {
	rows := make([][]string, 0, len(charts))
	for _, c := range charts {
		overrides := Dim("none")
		if c.GanttObjects != "" {
			overrides = fmt.Sprintf("%d bytes", len(c.GanttObjects))
		}
		rows = append(rows, []string{
			c.DisplayID(),
			c.Title,
			fmt.Sprintf("#%d", c.RootTaskID),
			overrides,
			c.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	return RenderTable([]string{"ID", "TITLE", "ROOT", "OVERRIDES", "UPDATED"}, rows)
}

// FormatTaskList renders task records as a table.
func FormatTaskList(tasks []*domain.Task) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		parent := Dim("-")
		if t.ParentID != nil {
			parent = fmt.Sprintf("#%d", *t.ParentID)
		}
		duration := ""
		if t.Duration != nil {
			duration = FormatDays(*t.Duration)
		}
		pred := ""
		if t.PredecessorID != nil {
			pred = fmt.Sprintf("%s #%d", t.RelationType.OrDefault().Short(), *t.PredecessorID)
			if t.PredecessorOffset != 0 {
				pred += fmt.Sprintf("%+d", t.PredecessorOffset)
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("#%d", t.ID),
			t.Title,
			parent,
			domain.FormatDate(t.StartDate),
			domain.FormatDate(t.EndDate),
			duration,
			pred,
		})
	}
	return RenderTable([]string{"ID", "TITLE", "PARENT", "START", "END", "DURATION", "PREDECESSOR"}, rows)
}

// FormatHolidayList renders holidays with their weekday.
func FormatHolidayList(holidays []domain.Holiday) string {
	rows := make([][]string, 0, len(holidays))
	for _, h := range holidays {
		rows = append(rows, []string{
			h.Date.Format(domain.DateLayout),
			h.Date.Weekday().String()[:3],
			h.Name,
		})
	}
	return RenderTable([]string{"DATE", "DAY", "NAME"}, rows)
}

// FormatWarnings renders the warnings of an opened chart, or "" when there
// are none.
func FormatWarnings(warnings []gantt.Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(Warn("! ") + w.Message + "  " + Dim(w.Path) + "\n")
	}
	return b.String()
}
