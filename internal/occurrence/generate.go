package occurrence

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/teambition/rrule-go"

	appLog "plancal/internal/log"
	"plancal/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
)

// ErrInvalidWindow is returned when the window starts after it ends.
var ErrInvalidWindow = errors.New("occurrence: window start is after window end")

// Config controls how occurrences are generated.
type Config struct {
	// From / Until define the inclusive window of dates.
	From  model.Date
	Until model.Date

	// MaxOccurrencesPerEvent caps the number of occurrences produced for a
	// single input event. Zero selects defaultMaxOccurrencesPerEvent and a
	// negative value disables the cap.
	MaxOccurrencesPerEvent int

	// SkipExceptions drops occurrences that fall on one of the event's
	// exception dates. GenerateFor leaves it off.
	SkipExceptions bool
}

// Result wraps the generated occurrences and which events were truncated.
type Result struct {
	Occurrences []model.PlanningEvent `json:"occurrences"`
	// TruncatedEvents holds the ID (or "#index" when the ID is empty) of
	// every event that hit MaxOccurrencesPerEvent.
	TruncatedEvents []string `json:"truncated_events,omitempty"`
}

// GenerateFor expands events into single-day occurrences between from and
// until, both inclusive. Occurrences are grouped per input event, in input
// order, and chronological within each event. Exceptions are not applied.
func GenerateFor(events []model.PlanningEvent, from, until model.Date) ([]model.PlanningEvent, error) {
	res, err := Expand(events, Config{From: from, Until: until, MaxOccurrencesPerEvent: -1})
	if err != nil {
		return nil, err
	}
	return res.Occurrences, nil
}

// Expand is GenerateFor with a per-event cap and optional exception
// filtering.
func Expand(events []model.PlanningEvent, cfg Config) (Result, error) {
	var result Result

	if cfg.Until.Before(cfg.From) {
		return result, fmt.Errorf("%w: %s > %s", ErrInvalidWindow, cfg.From, cfg.Until)
	}
	if cfg.MaxOccurrencesPerEvent == 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	result.Occurrences = make([]model.PlanningEvent, 0)
	for i, ev := range events {
		occ, hitCap, err := expandEvent(ev, cfg)
		if err != nil {
			return Result{}, fmt.Errorf("expand event %s: %w", eventKey(ev, i), err)
		}
		if hitCap {
			result.TruncatedEvents = append(result.TruncatedEvents, eventKey(ev, i))
			appLog.Error("occurrence: truncated occurrences due to cap",
				errors.New("max occurrences reached"),
				"event", eventKey(ev, i),
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
		result.Occurrences = append(result.Occurrences, occ...)
	}

	appLog.Debug("occurrence: expansion completed",
		"from", cfg.From,
		"until", cfg.Until,
		"events", len(events),
		"occurrences", len(result.Occurrences),
	)
	return result, nil
}

func expandEvent(ev model.PlanningEvent, cfg Config) ([]model.PlanningEvent, bool, error) {
	if !ev.Recurring {
		return expandSingleEvent(ev, cfg), false, nil
	}
	if ev.WeeksPeriod <= 0 {
		return nil, false, fmt.Errorf("%w: recurring event without weeks period", model.ErrInvalidEvent)
	}
	return expandRecurringEvent(ev, cfg)
}

func expandSingleEvent(ev model.PlanningEvent, cfg Config) []model.PlanningEvent {
	if ev.StartDate.Before(cfg.From) || ev.StartDate.After(cfg.Until) {
		return nil
	}
	if cfg.SkipExceptions && ev.IsException(ev.StartDate) {
		return nil
	}
	return []model.PlanningEvent{ev.OnDay(ev.StartDate)}
}

func expandRecurringEvent(ev model.PlanningEvent, cfg Config) ([]model.PlanningEvent, bool, error) {
	first, ok := ev.FirstOccurrenceOnOrAfter(cfg.From)
	if !ok {
		return nil, false, nil
	}
	last := cfg.Until
	if end, bounded := ev.EndDate.Date(); bounded && end.Before(last) {
		last = end
	}
	if first.After(last) {
		return nil, false, nil
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.WEEKLY,
		Interval: ev.WeeksPeriod,
		Dtstart:  first.Time(),
		Until:    last.Time(),
	})
	if err != nil {
		return nil, false, fmt.Errorf("build weekly rule: %w", err)
	}

	var set rrule.Set
	set.RRule(r)
	if cfg.SkipExceptions {
		for _, ex := range ev.Exceptions {
			set.ExDate(ex.Time())
		}
	}

	occTimes := set.All()
	hitCap := false
	if cfg.MaxOccurrencesPerEvent > 0 && len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]model.PlanningEvent, 0, len(occTimes))
	for _, t := range occTimes {
		out = append(out, ev.OnDay(model.DateOf(t)))
	}
	return out, hitCap, nil
}

func eventKey(ev model.PlanningEvent, index int) string {
	if ev.ID != "" {
		return ev.ID
	}
	return "#" + strconv.Itoa(index)
}
