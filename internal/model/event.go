package model

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidEvent is wrapped by every Validate failure.
var ErrInvalidEvent = errors.New("invalid planning event")

// PlanningEvent is a slot on the calendar that happens once, or every
// WeeksPeriod weeks between StartDate and EndDate. Engine code treats it as
// an immutable value: derived events are built with the With* helpers,
// which never modify the receiver.
type PlanningEvent struct {
	// ID and Title are caller data. The engine copies them onto every
	// derived event untouched.
	ID    string `yaml:"id,omitempty" json:"id,omitempty"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`

	Recurring bool `yaml:"recurring" json:"recurring"`
	// WeeksPeriod is the number of weeks between two occurrences. Zero
	// means absent and is only valid for non-recurring events.
	WeeksPeriod int `yaml:"weeks_period,omitempty" json:"weeks_period,omitempty"`

	StartDate Date    `yaml:"start_date" json:"start_date"`
	EndDate   EndDate `yaml:"end_date,omitempty" json:"end_date"`

	StartTime TimeOfDay `yaml:"start_time" json:"start_time"`
	EndTime   TimeOfDay `yaml:"end_time" json:"end_time"`

	// Exceptions lists dates on which a recurring event is cancelled.
	Exceptions []Date `yaml:"exceptions,omitempty" json:"exceptions,omitempty"`
}

// NewSingle returns a non-recurring event on a single day.
func NewSingle(date Date, start, end TimeOfDay) PlanningEvent {
	return PlanningEvent{
		StartDate: date,
		EndDate:   Bounded(date),
		StartTime: start,
		EndTime:   end,
	}
}

// NewRecurring returns an event repeating every weeksPeriod weeks from start
// until end (inclusive). Pass Unbounded() to repeat forever.
func NewRecurring(weeksPeriod int, start Date, end EndDate, startTime, endTime TimeOfDay, exceptions ...Date) PlanningEvent {
	return PlanningEvent{
		Recurring:   true,
		WeeksPeriod: weeksPeriod,
		StartDate:   start,
		EndDate:     end,
		StartTime:   startTime,
		EndTime:     endTime,
		Exceptions:  slices.Clone(exceptions),
	}
}

// Validate checks the invariants callers are expected to uphold.
func (e PlanningEvent) Validate() error {
	if e.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is missing", ErrInvalidEvent)
	}
	if end, ok := e.EndDate.Date(); ok && end.Before(e.StartDate) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidEvent, end, e.StartDate)
	}
	if e.StartTime >= e.EndTime {
		return fmt.Errorf("%w: start time %s is not before end time %s", ErrInvalidEvent, e.StartTime, e.EndTime)
	}
	if e.StartTime < 0 || e.EndTime > Clock(24, 0) {
		return fmt.Errorf("%w: times must lie within one day", ErrInvalidEvent)
	}
	if e.Recurring && e.WeeksPeriod <= 0 {
		return fmt.Errorf("%w: recurring event needs a positive weeks period, got %d", ErrInvalidEvent, e.WeeksPeriod)
	}
	if !e.Recurring && !e.EndDate.IsBounded() {
		return fmt.Errorf("%w: non-recurring event must have an end date", ErrInvalidEvent)
	}
	return nil
}

// Period returns WeeksPeriod for recurring events and 0 otherwise.
func (e PlanningEvent) Period() int {
	if !e.Recurring {
		return 0
	}
	return e.WeeksPeriod
}

// IsInfinite reports whether e recurs forever.
func (e PlanningEvent) IsInfinite() bool {
	return e.Recurring && !e.EndDate.IsBounded()
}

// Clone returns a deep copy of e.
func (e PlanningEvent) Clone() PlanningEvent {
	e.Exceptions = slices.Clone(e.Exceptions)
	return e
}

// WithDates returns a copy of e spanning start..end.
func (e PlanningEvent) WithDates(start Date, end EndDate) PlanningEvent {
	c := e.Clone()
	c.StartDate = start
	c.EndDate = end
	return c
}

// WithPeriod returns a recurring copy of e with the given period.
func (e PlanningEvent) WithPeriod(weeks int) PlanningEvent {
	c := e.Clone()
	c.Recurring = true
	c.WeeksPeriod = weeks
	return c
}

// WithTimes returns a copy of e occupying start..end on each of its days.
func (e PlanningEvent) WithTimes(start, end TimeOfDay) PlanningEvent {
	c := e.Clone()
	c.StartTime = start
	c.EndTime = end
	return c
}

// OnDay returns a non-recurring copy of e restricted to the single day d.
func (e PlanningEvent) OnDay(d Date) PlanningEvent {
	c := e.WithDates(d, Bounded(d))
	c.Recurring = false
	c.WeeksPeriod = 0
	return c
}

// ExceptionSet indexes e's exceptions for constant-time lookup.
func (e PlanningEvent) ExceptionSet() map[Date]struct{} {
	set := make(map[Date]struct{}, len(e.Exceptions))
	for _, d := range e.Exceptions {
		set[d] = struct{}{}
	}
	return set
}

// IsException reports whether d is listed in e's exceptions.
func (e PlanningEvent) IsException(d Date) bool {
	return slices.ContainsFunc(e.Exceptions, d.Equal)
}

// FirstOccurrenceOnOrAfter returns the earliest occurrence of e that falls
// on or after d, ignoring exceptions. ok is false when e has ended before d.
func (e PlanningEvent) FirstOccurrenceOnOrAfter(d Date) (occ Date, ok bool) {
	occ = e.StartDate
	if occ.Before(d) {
		if e.Period() == 0 {
			return Date{}, false
		}
		step := 7 * e.WeeksPeriod
		n := (occ.DaysUntil(d) + step - 1) / step
		occ = occ.AddDays(n * step)
	}
	if e.EndDate.CompareDate(occ) < 0 {
		return Date{}, false
	}
	return occ, true
}

// LastOccurrenceOnOrBefore returns the latest occurrence of e that falls on
// or before d, ignoring exceptions. ok is false when e starts after d.
func (e PlanningEvent) LastOccurrenceOnOrBefore(d Date) (occ Date, ok bool) {
	if d.Before(e.StartDate) {
		return Date{}, false
	}
	if end, bounded := e.EndDate.Date(); bounded && end.Before(d) {
		d = end
	}
	if e.Period() == 0 {
		return e.StartDate, true
	}
	step := 7 * e.WeeksPeriod
	n := e.StartDate.DaysUntil(d) / step
	return e.StartDate.AddDays(n * step), true
}

// OccursOn reports whether d is one of e's dates, exceptions aside.
func (e PlanningEvent) OccursOn(d Date) bool {
	occ, ok := e.FirstOccurrenceOnOrAfter(d)
	return ok && occ.Equal(d)
}

func (e PlanningEvent) String() string {
	s := fmt.Sprintf("%s..%s %s-%s", e.StartDate, e.EndDate, e.StartTime, e.EndTime)
	if e.Recurring {
		s += fmt.Sprintf(" every %dw", e.WeeksPeriod)
	}
	if e.ID != "" {
		s = e.ID + " " + s
	}
	return s
}
