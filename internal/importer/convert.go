package importer

import (
	"fmt"
	"time"

	"github.com/micromata/projectforge-sub017/internal/domain"
)

// Result holds the records produced from an import file.
type Result struct {
	Tasks    []*domain.Task // parents before children
	Holidays []domain.Holiday
}

// Convert turns a validated schema into domain records. Call
// ValidateImportSchema first; Convert assumes the schema is valid.
func Convert(schema *ImportSchema) (*Result, error) {
	now := time.Now().UTC()
	res := &Result{}

	var convErr error
	schema.Walk(func(t *TaskImport, parentID *int64, order int) {
		if convErr != nil {
			return
		}
		start, err := parseOptionalDate("start", t.Start)
		if err != nil {
			convErr = fmt.Errorf("task %d: %w", t.ID, err)
			return
		}
		end, err := parseOptionalDate("end", t.End)
		if err != nil {
			convErr = fmt.Errorf("task %d: %w", t.ID, err)
			return
		}
		rel := domain.DefaultRelationType
		if t.Relation != "" {
			rel, _ = domain.ParseRelationType(t.Relation)
		}

		task := &domain.Task{
			ID:                t.ID,
			Title:             t.Title,
			OrderIndex:        order,
			StartDate:         start,
			EndDate:           end,
			PredecessorOffset: t.Offset,
			RelationType:      rel,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if parentID != nil {
			task.ParentID = domain.Ptr(*parentID)
		}
		if t.Duration != nil {
			task.Duration = domain.Ptr(*t.Duration)
		}
		if t.Predecessor != nil {
			task.PredecessorID = domain.Ptr(*t.Predecessor)
		}
		res.Tasks = append(res.Tasks, task)
	})
	if convErr != nil {
		return nil, convErr
	}

	for _, h := range schema.Holidays {
		d, err := domain.ParseDate(h.Date)
		if err != nil {
			return nil, fmt.Errorf("holiday: %w", err)
		}
		res.Holidays = append(res.Holidays, domain.Holiday{Date: d, Name: h.Name})
	}
	return res, nil
}

// ExternalPredecessors returns predecessor ids that are not defined in the
// result itself.
func (r *Result) ExternalPredecessors() []int64 {
	defined := make(map[int64]bool, len(r.Tasks))
	for _, t := range r.Tasks {
		defined[t.ID] = true
	}
	var out []int64
	seen := make(map[int64]bool)
	for _, t := range r.Tasks {
		if t.PredecessorID == nil {
			continue
		}
		id := *t.PredecessorID
		if !defined[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
