package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ImportSchema is the top-level structure of a task-hierarchy import file.
type ImportSchema struct {
	Tasks    []TaskImport    `yaml:"tasks"`
	Holidays []HolidayImport `yaml:"holidays,omitempty"`
}

// TaskImport is one task. Children are nested; their position in the list
// becomes the sibling order.
type TaskImport struct {
	ID          int64        `yaml:"id"`
	Title       string       `yaml:"title"`
	Duration    *float64     `yaml:"duration,omitempty"`
	Start       *string      `yaml:"start,omitempty"`
	End         *string      `yaml:"end,omitempty"`
	Predecessor *int64       `yaml:"predecessor,omitempty"`
	Offset      int          `yaml:"offset,omitempty"`
	Relation    string       `yaml:"relation,omitempty"`
	Children    []TaskImport `yaml:"children,omitempty"`
}

type HolidayImport struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

// LoadImportSchema reads and parses an import file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data)
}

// ParseImportSchema parses YAML import data. Unknown keys are rejected so
// typos such as "predecesor" do not silently drop a dependency.
func ParseImportSchema(data []byte) (*ImportSchema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var schema ImportSchema
	if err := dec.Decode(&schema); err != nil {
		if errors.Is(err, io.EOF) {
			return &schema, nil
		}
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}

// Walk visits every task depth-first together with its parent id (nil for
// top-level tasks) and its index among its siblings.
func (s *ImportSchema) Walk(fn func(t *TaskImport, parentID *int64, order int)) {
	var walk func(tasks []TaskImport, parentID *int64)
	walk = func(tasks []TaskImport, parentID *int64) {
		for i := range tasks {
			t := &tasks[i]
			fn(t, parentID, i)
			id := t.ID
			walk(t.Children, &id)
		}
	}
	walk(s.Tasks, nil)
}
