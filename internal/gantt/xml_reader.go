package gantt

import (
	"encoding/xml"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/micromata/projectforge-sub017/internal/domain"
)

// ErrMalformedChartXML is returned when a chart blob is not well-formed XML
// or its root element is not a ganttObject.
var ErrMalformedChartXML = errors.New("malformed chart xml")

// Warning is a recoverable problem found while reading a chart blob. Path
// names the offending element, e.g. "/ganttObject[id=1]/children/ganttObject[id=4]/predecessor".
type Warning struct {
	Path    string
	Message string
}

func (w Warning) String() string {
	return w.Path + ": " + w.Message
}

// Reader overlays a stored chart blob onto a freshly built chart.
type Reader struct {
	// LookupExternal loads a node the target chart does not hold, such as a
	// task outside the subtree that a user picked as predecessor. It returns
	// nil for unknown ids. A nil LookupExternal disables lookups.
	LookupExternal func(id int64) *TaskNode
}

// Read overlays data onto target using a Reader without external lookups.
func Read(data string, target *Chart) ([]Warning, error) {
	return (&Reader{}).Read(data, target)
}

// Read applies the overrides stored in data to target. Nodes are matched by
// id wherever they sit in target's tree, so renamed or moved tasks keep
// their overrides. Unknown ad-hoc nodes (negative ids) are recreated under
// their stored parent; overrides of tasks that no longer exist are dropped.
// Problems with individual elements are reported as warnings.
func (r *Reader) Read(data string, target *Chart) ([]Warning, error) {
	if strings.TrimSpace(data) == "" {
		return nil, nil
	}
	var root rawElement
	if err := xml.Unmarshal([]byte(data), &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedChartXML, err)
	}
	if root.XMLName.Local != elemGanttObject {
		return nil, fmt.Errorf("%w: root element is <%s>, want <%s>", ErrMalformedChartXML, root.XMLName.Local, elemGanttObject)
	}

	st := &readState{target: target, refs: make(map[int]int64), titles: make(map[int64]string)}
	st.visitNode(&root, nil, "")

	for _, l := range st.links {
		if target.FindByID(l.id) == nil && r.LookupExternal != nil {
			if ext := r.LookupExternal(l.id); ext != nil {
				target.AddExternal(ext)
			}
		}
		if target.FindByID(l.id) == nil {
			st.warn(l.path, "predecessor %d no longer exists, dropped", l.id)
			l.node.PredecessorID = nil
			continue
		}
		if ext := target.External(l.id); ext != nil && ext.Title == "" {
			ext.Title = st.titles[l.id]
		}
		l.node.PredecessorID = domain.Ptr(l.id)
	}
	return st.warnings, nil
}

type rawElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Children []rawElement `xml:",any"`
}

func (e *rawElement) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *rawElement) isNull() bool {
	v, ok := e.attr(attrNull)
	return ok && v == "true"
}

type pendingLink struct {
	node *TaskNode
	id   int64
	path string
}

type readState struct {
	target   *Chart
	refs     map[int]int64 // o-id -> node id
	titles   map[int64]string
	links    []pendingLink
	warnings []Warning
}

func (st *readState) warn(path, format string, args ...any) {
	st.warnings = append(st.warnings, Warning{Path: path, Message: fmt.Sprintf(format, args...)})
}

// visitNode applies one ganttObject element. parent is the node the element
// was nested in, nil for the document root.
func (st *readState) visitNode(raw *rawElement, parent *TaskNode, parentPath string) {
	idStr, _ := raw.attr(attrID)
	path := fmt.Sprintf("%s/%s[id=%s]", parentPath, elemGanttObject, idStr)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		st.warn(path, "invalid id %q, element skipped", idStr)
		return
	}

	node := st.target.Root.FindByID(id)
	if node == nil && id < 0 {
		node = NewTaskNode(id, "")
		attachTo := parent
		if attachTo == nil {
			attachTo = st.target.Root
		}
		attachTo.AddChild(node)
	}
	if node == nil && parent == nil {
		st.warn(path, "root id does not match chart root %d", st.target.Root.ID)
	}

	// Descendants of a dropped node are attached to the nearest known ancestor.
	container := node
	if container == nil {
		container = parent
		if container == nil {
			container = st.target.Root
		}
	}

	if node != nil {
		st.applyAttrs(raw, node, path)
	}

	for i := range raw.Children {
		child := &raw.Children[i]
		childPath := path + "/" + child.XMLName.Local
		switch child.XMLName.Local {
		case elemChildren:
			for j := range child.Children {
				gc := &child.Children[j]
				if gc.XMLName.Local != elemGanttObject {
					st.warn(childPath+"/"+gc.XMLName.Local, "unexpected element")
					continue
				}
				st.visitNode(gc, container, childPath)
			}
		case elemPredecessor:
			st.readPredecessor(child, node, childPath)
		case attrTitle, attrDuration, attrStartDate, attrEndDate:
			if !child.isNull() {
				st.warn(childPath, "field element without null marker ignored")
				continue
			}
			if node != nil {
				clearField(node, child.XMLName.Local)
			}
		default:
			st.warn(childPath, "unexpected element")
		}
	}
}

func (st *readState) applyAttrs(raw *rawElement, node *TaskNode, path string) {
	for _, a := range raw.Attrs {
		v := a.Value
		switch a.Name.Local {
		case attrID:
		case attrTitle:
			node.Title = v
		case attrDuration:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
				st.warn(path, "invalid duration %q ignored", v)
				continue
			}
			node.Duration = &f
		case attrStartDate:
			d, err := domain.ParseDate(v)
			if err != nil {
				st.warn(path, "invalid startDate %q ignored", v)
				continue
			}
			node.StartDate = &d
		case attrEndDate:
			d, err := domain.ParseDate(v)
			if err != nil {
				st.warn(path, "invalid endDate %q ignored", v)
				continue
			}
			node.EndDate = &d
		case attrRelationType:
			rel, ok := domain.ParseRelationType(v)
			if !ok {
				st.warn(path, "invalid relationType %q, using %s", v, rel)
			}
			node.RelationType = rel
		case attrPredecessorOffset:
			off, err := strconv.Atoi(v)
			if err != nil {
				st.warn(path, "invalid predecessorOffset %q ignored", v)
				continue
			}
			node.PredecessorOffset = off
		default:
			st.warn(path, "unknown attribute %q ignored", a.Name.Local)
		}
	}
}

// readPredecessor handles a <predecessor> element. node may be nil when the
// owning node was dropped; o-ids are still registered so later pointers
// resolve.
func (st *readState) readPredecessor(raw *rawElement, node *TaskNode, path string) {
	if raw.isNull() {
		if node != nil {
			node.PredecessorID = nil
		}
		return
	}

	if refStr, ok := raw.attr(attrRefID); ok {
		ref, err := strconv.Atoi(refStr)
		id, known := st.refs[ref]
		if err != nil || !known {
			st.warn(path, "ref-id %q does not point to a previously written predecessor", refStr)
			if node != nil {
				node.PredecessorID = nil
			}
			return
		}
		if node != nil {
			st.links = append(st.links, pendingLink{node: node, id: id, path: path})
		}
		return
	}

	idStr, _ := raw.attr(attrID)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		st.warn(path, "invalid predecessor id %q", idStr)
		if node != nil {
			node.PredecessorID = nil
		}
		return
	}
	if title, ok := raw.attr(attrTitle); ok {
		st.titles[id] = title
	}
	if oidStr, ok := raw.attr(attrObjectID); ok {
		oid, err := strconv.Atoi(oidStr)
		if err != nil {
			st.warn(path, "invalid o-id %q", oidStr)
		} else {
			st.refs[oid] = id
		}
	}
	if node != nil {
		st.links = append(st.links, pendingLink{node: node, id: id, path: path})
	}
}

func clearField(n *TaskNode, field string) {
	switch field {
	case attrTitle:
		n.Title = ""
	case attrDuration:
		n.Duration = nil
	case attrStartDate:
		n.StartDate = nil
	case attrEndDate:
		n.EndDate = nil
	}
}
