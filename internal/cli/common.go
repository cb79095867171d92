package cli

import (
	"fmt"
	"time"

	"plancal/internal/eventfile"
	"plancal/internal/model"
)

// now is replaced in tests.
var now = time.Now

func today() model.Date {
	return model.DateOf(now())
}

// dateFlag parses a YYYY-MM-DD flag value, falling back to def when empty.
func dateFlag(name, value string, def model.Date) (model.Date, error) {
	if value == "" {
		return def, nil
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return model.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

// loadEvents reads the event file and resolves the given IDs in order.
func loadEvents(path string, ids ...string) (*eventfile.Document, []model.PlanningEvent, error) {
	doc, err := eventfile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	picked, err := doc.FindAll(ids)
	if err != nil {
		return nil, nil, err
	}
	return doc, picked, nil
}
