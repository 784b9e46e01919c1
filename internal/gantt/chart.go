package gantt

import "sort"

// Chart is the tree container of one Gantt chart: the owned root subtree
// plus the external nodes that in-tree nodes reference as predecessors
// without owning them.
type Chart struct {
	Root      *TaskNode
	externals map[int64]*TaskNode
}

// NewChart wraps root in a chart with an empty external map.
func NewChart(root *TaskNode) *Chart {
	return &Chart{Root: root, externals: make(map[int64]*TaskNode)}
}

// AddExternal registers n as an external node. An already registered node
// with the same id is kept and returned instead.
func (c *Chart) AddExternal(n *TaskNode) *TaskNode {
	if existing, ok := c.externals[n.ID]; ok {
		return existing
	}
	n.parent = nil
	c.externals[n.ID] = n
	return n
}

// External returns the external node with the given id, if any.
func (c *Chart) External(id int64) *TaskNode {
	return c.externals[id]
}

// Externals returns all external nodes ordered by id.
func (c *Chart) Externals() []*TaskNode {
	out := make([]*TaskNode, 0, len(c.externals))
	for _, n := range c.externals {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsExternal reports whether id is held in the external map and not in the tree.
func (c *Chart) IsExternal(id int64) bool {
	if c.Root.FindByID(id) != nil {
		return false
	}
	_, ok := c.externals[id]
	return ok
}

// FindByID searches the owned tree first, then the external map.
func (c *Chart) FindByID(id int64) *TaskNode {
	if n := c.Root.FindByID(id); n != nil {
		return n
	}
	return c.externals[id]
}

// Predecessor resolves the predecessor reference of n, or nil when n has
// none or it points at a node the chart does not know.
func (c *Chart) Predecessor(n *TaskNode) *TaskNode {
	if n.PredecessorID == nil {
		return nil
	}
	return c.FindByID(*n.PredecessorID)
}

// NextSyntheticID returns a fresh id for an ad-hoc node.
func (c *Chart) NextSyntheticID() int64 {
	return c.Root.NextSyntheticID()
}

// Nodes returns the tree in pre-order followed by the externals.
func (c *Chart) Nodes() []*TaskNode {
	var out []*TaskNode
	c.Root.Walk(func(n *TaskNode) bool {
		out = append(out, n)
		return true
	})
	return append(out, c.Externals()...)
}

// PruneExternals drops external nodes that are no longer reachable from the
// tree through predecessor links and returns how many were removed.
func (c *Chart) PruneExternals() int {
	referenced := make(map[int64]bool)
	var queue []int64
	c.Root.Walk(func(n *TaskNode) bool {
		if n.PredecessorID != nil {
			queue = append(queue, *n.PredecessorID)
		}
		return true
	})
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if referenced[id] {
			continue
		}
		referenced[id] = true
		if ext, ok := c.externals[id]; ok && ext.PredecessorID != nil {
			queue = append(queue, *ext.PredecessorID)
		}
	}
	removed := 0
	for id := range c.externals {
		if !referenced[id] {
			delete(c.externals, id)
			removed++
		}
	}
	return removed
}

// Clone deep-copies the tree and the externals.
func (c *Chart) Clone() *Chart {
	out := NewChart(c.Root.Clone())
	for _, n := range c.externals {
		out.externals[n.ID] = n.Clone()
	}
	return out
}
