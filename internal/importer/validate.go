package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/micromata/projectforge-sub017/internal/domain"
)

// ValidateImportSchema checks the schema before conversion and returns every
// problem found. Predecessors that are not part of the file are not flagged
// here; they may refer to tasks imported earlier.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	if len(schema.Tasks) == 0 {
		errs = append(errs, fmt.Errorf("tasks: at least one task is required"))
	}

	seen := make(map[int64]string)
	schema.Walk(func(t *TaskImport, _ *int64, _ int) {
		errs = append(errs, validateTask(t, seen)...)
	})
	errs = append(errs, validateHolidays(schema.Holidays)...)
	return errs
}

func validateTask(t *TaskImport, seen map[int64]string) []error {
	var errs []error
	label := fmt.Sprintf("task %d", t.ID)

	if t.ID <= 0 {
		errs = append(errs, fmt.Errorf("task %q: id must be positive, got %d", t.Title, t.ID))
	} else if prev, dup := seen[t.ID]; dup {
		errs = append(errs, fmt.Errorf("%s: duplicate id (also used by %q)", label, prev))
	} else {
		seen[t.ID] = t.Title
	}
	if strings.TrimSpace(t.Title) == "" {
		errs = append(errs, fmt.Errorf("%s: title is required", label))
	}
	if t.Duration != nil && *t.Duration < 0 {
		errs = append(errs, fmt.Errorf("%s: duration must not be negative, got %v", label, *t.Duration))
	}

	start, startErr := parseOptionalDate(label+".start", t.Start)
	end, endErr := parseOptionalDate(label+".end", t.End)
	for _, err := range []error{startErr, endErr} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if start != nil && end != nil && end.Before(*start) {
		errs = append(errs, fmt.Errorf("%s: end %s is before start %s", label, *t.End, *t.Start))
	}

	if t.Predecessor != nil && *t.Predecessor == t.ID {
		errs = append(errs, fmt.Errorf("%s: a task cannot be its own predecessor", label))
	}
	if t.Predecessor == nil && (t.Offset != 0 || t.Relation != "") {
		errs = append(errs, fmt.Errorf("%s: offset and relation require a predecessor", label))
	}
	if t.Relation != "" {
		if _, ok := domain.ParseRelationType(t.Relation); !ok {
			errs = append(errs, fmt.Errorf("%s.relation: invalid value %q", label, t.Relation))
		}
	}
	return errs
}

func validateHolidays(holidays []HolidayImport) []error {
	var errs []error
	seen := make(map[string]bool)
	for i, h := range holidays {
		prefix := fmt.Sprintf("holidays[%d]", i)
		if h.Date == "" {
			errs = append(errs, fmt.Errorf("%s.date is required", prefix))
			continue
		}
		if _, err := domain.ParseDate(h.Date); err != nil {
			errs = append(errs, fmt.Errorf("%s.date: %w", prefix, err))
			continue
		}
		if seen[h.Date] {
			errs = append(errs, fmt.Errorf("%s.date: duplicate holiday %s", prefix, h.Date))
		}
		seen[h.Date] = true
	}
	return errs
}

func parseOptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(*s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &d, nil
}
