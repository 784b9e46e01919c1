package domain

import "time"

// GanttChart is the persisted chart entity. GanttObjects holds the compact
// XML diff of user overrides against the task hierarchy below RootTaskID.
type GanttChart struct {
	ID           string
	ShortID      string
	Title        string
	RootTaskID   int64
	GanttObjects string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayID returns the best short identifier for display.
// It prefers ShortID; if empty it truncates ID to 8 characters.
func (c *GanttChart) DisplayID() string {
	if c.ShortID != "" {
		return c.ShortID
	}
	if len(c.ID) >= 8 {
		return c.ID[:8]
	}
	return c.ID
}
