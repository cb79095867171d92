// Package eventfile reads and writes the YAML documents holding planning
// events:
//
//	events:
//	  - id: standup
//	    recurring: true
//	    weeks_period: 1
//	    start_date: "2024-01-01"
//	    start_time: "09:00"
//	    end_time: "09:15"
//	    exceptions: ["2024-12-23"]
package eventfile

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"plancal/internal/atomicfile"
	"plancal/internal/model"
)

var (
	// ErrDuplicateID is returned when two events of a document share an ID.
	ErrDuplicateID = errors.New("eventfile: duplicate event id")
	// ErrNotFound is returned by Document.Find for unknown IDs.
	ErrNotFound = errors.New("eventfile: event not found")
)

// Document is the top-level layout of an event file.
type Document struct {
	Events []model.PlanningEvent `yaml:"events" json:"events"`
}

// Normalize fills in what a hand-written file may leave out: a one-off
// event without end_date ends on its start date.
func (d *Document) Normalize() {
	for i, ev := range d.Events {
		if !ev.Recurring && !ev.EndDate.IsBounded() {
			d.Events[i].EndDate = model.Bounded(ev.StartDate)
		}
	}
}

// Validate checks every event and the uniqueness of non-empty IDs.
func (d *Document) Validate() error {
	seen := make(map[string]int, len(d.Events))
	for i, ev := range d.Events {
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("event %s: %w", label(ev, i), err)
		}
		if ev.ID == "" {
			continue
		}
		if j, dup := seen[ev.ID]; dup {
			return fmt.Errorf("%w: %q at #%d and #%d", ErrDuplicateID, ev.ID, j, i)
		}
		seen[ev.ID] = i
	}
	return nil
}

// Find returns the event with the given ID.
func (d *Document) Find(id string) (model.PlanningEvent, error) {
	for _, ev := range d.Events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return model.PlanningEvent{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// FindAll resolves several IDs, failing on the first unknown one.
func (d *Document) FindAll(ids []string) ([]model.PlanningEvent, error) {
	out := make([]model.PlanningEvent, 0, len(ids))
	for _, id := range ids {
		ev, err := d.Find(id)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// Parse decodes and validates a YAML event document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads the event document at path. Unlike the config file, a missing
// event file is an error.
func Load(path string) (*Document, error) {
	if path == "" {
		return nil, errors.New("event file path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Save validates doc and writes it to path atomically (temp file in the same
// directory, then rename). The file ends up with 0600 permissions.
func Save(path string, doc *Document) error {
	if path == "" {
		return errors.New("event file path is empty")
	}
	if doc == nil {
		return errors.New("document is nil")
	}
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}

	return atomicfile.WriteFile(path, data, 0o600, ".plancal-events-*.tmp")
}

func label(ev model.PlanningEvent, i int) string {
	if ev.ID != "" {
		return fmt.Sprintf("%q", ev.ID)
	}
	return fmt.Sprintf("#%d", i)
}
