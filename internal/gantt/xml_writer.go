package gantt

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/micromata/projectforge-sub017/internal/domain"
)

// XML vocabulary of the persisted chart format.
const (
	elemGanttObject = "ganttObject"
	elemChildren    = "children"
	elemPredecessor = "predecessor"

	attrID                = "id"
	attrTitle             = "title"
	attrDuration          = "duration"
	attrStartDate         = "startDate"
	attrEndDate           = "endDate"
	attrRelationType      = "relationType"
	attrPredecessorOffset = "predecessorOffset"
	attrObjectID          = "o-id"
	attrRefID             = "ref-id"
	attrExternal          = "external"
	attrNull              = "null"
)

// Write serializes the overrides of chart c against defaults: only fields
// that differ from the node with the same id in defaults are written. Nodes
// unknown to defaults (ad-hoc nodes) are compared against a blank node and
// always written. A chart without any override serializes to "".
func Write(c *Chart, defaults *Chart) string {
	w := &writer{chart: c, defaults: defaults, refs: make(map[int64]int)}
	root := w.node(c.Root)
	if root == nil {
		return ""
	}
	var sb strings.Builder
	root.encode(&sb, 0)
	return sb.String()
}

// writer holds the per-call reference map: predecessor id -> o-id.
type writer struct {
	chart    *Chart
	defaults *Chart
	refs     map[int64]int
	nextRef  int
}

func (w *writer) defaultFor(n *TaskNode) (*TaskNode, bool) {
	if w.defaults != nil {
		if d := w.defaults.Root.FindByID(n.ID); d != nil {
			return d, true
		}
	}
	return NewTaskNode(n.ID, ""), false
}

// node returns the element for n, or nil when neither n nor any descendant
// carries an override.
func (w *writer) node(n *TaskNode) *element {
	def, known := w.defaultFor(n)
	el := &element{name: elemGanttObject}
	el.attr(attrID, strconv.FormatInt(n.ID, 10))

	var nulls []*element
	nullMarker := func(field string) {
		nulls = append(nulls, (&element{name: field}).attr(attrNull, "true"))
	}

	if n.Title != def.Title {
		if n.Title == "" {
			nullMarker(attrTitle)
		} else {
			el.attr(attrTitle, n.Title)
		}
	}
	if !domain.SameFloat(n.Duration, def.Duration) {
		if n.Duration == nil {
			nullMarker(attrDuration)
		} else {
			el.attr(attrDuration, formatFloat(*n.Duration))
		}
	}
	if !domain.SameDate(n.StartDate, def.StartDate) {
		if n.StartDate == nil {
			nullMarker(attrStartDate)
		} else {
			el.attr(attrStartDate, formatDate(*n.StartDate))
		}
	}
	if !domain.SameDate(n.EndDate, def.EndDate) {
		if n.EndDate == nil {
			nullMarker(attrEndDate)
		} else {
			el.attr(attrEndDate, formatDate(*n.EndDate))
		}
	}
	if n.RelationType.OrDefault() != def.RelationType.OrDefault() {
		el.attr(attrRelationType, string(n.RelationType.OrDefault()))
	}
	if n.PredecessorOffset != def.PredecessorOffset {
		el.attr(attrPredecessorOffset, strconv.Itoa(n.PredecessorOffset))
	}
	if !domain.SameInt64(n.PredecessorID, def.PredecessorID) {
		if n.PredecessorID == nil {
			el.add((&element{name: elemPredecessor}).attr(attrNull, "true"))
		} else {
			el.add(w.predecessor(*n.PredecessorID))
		}
	}
	el.children = append(el.children, nulls...)

	children := &element{name: elemChildren}
	for _, c := range n.Children {
		if ce := w.node(c); ce != nil {
			children.add(ce)
		}
	}
	if len(children.children) > 0 {
		el.add(children)
	}

	if known && len(el.attrs) == 1 && len(el.children) == 0 {
		return nil
	}
	return el
}

// predecessor writes the first reference to a node in full with a fresh
// o-id and every later one as a ref-id pointer.
func (w *writer) predecessor(id int64) *element {
	el := &element{name: elemPredecessor}
	if ref, ok := w.refs[id]; ok {
		return el.attr(attrRefID, strconv.Itoa(ref))
	}
	w.nextRef++
	w.refs[id] = w.nextRef
	el.attr(attrObjectID, strconv.Itoa(w.nextRef))
	el.attr(attrID, strconv.FormatInt(id, 10))
	if w.chart.IsExternal(id) {
		el.attr(attrExternal, "true")
		if ext := w.chart.External(id); ext.Title != "" {
			el.attr(attrTitle, ext.Title)
		}
	}
	return el
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// element is a minimal XML tree; encode emits self-closing tags for empty
// elements and two-space indentation so stored blobs stay diffable.
type element struct {
	name     string
	attrs    []xml.Attr
	children []*element
}

func (e *element) attr(name, value string) *element {
	e.attrs = append(e.attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return e
}

func (e *element) add(child *element) {
	e.children = append(e.children, child)
}

func (e *element) encode(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	sb.WriteString(indent)
	sb.WriteByte('<')
	sb.WriteString(e.name)
	for _, a := range e.attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name.Local)
		sb.WriteString(`="`)
		_ = xml.EscapeText(sb, []byte(a.Value))
		sb.WriteByte('"')
	}
	if len(e.children) == 0 {
		sb.WriteString("/>\n")
		return
	}
	sb.WriteString(">\n")
	for _, c := range e.children {
		c.encode(sb, depth+1)
	}
	sb.WriteString(indent)
	sb.WriteString("</")
	sb.WriteString(e.name)
	sb.WriteString(">\n")
}
