// Package overlap decides whether two planning events ever occupy the same
// date and time slot.
//
// A weekly-periodic event only ever lands on one weekday, and two weekly
// sequences with periods p and q meet iff the number of weeks between their
// starts is a multiple of gcd(p, q). Everything else is bookkeeping around
// finite ends and per-date exceptions.
package overlap

import (
	"plancal/internal/intmath"
	"plancal/internal/model"
	"plancal/internal/period"
)

// Overlap reports whether event and candidate coincide on at least one date
// with overlapping times of day. Argument order does not matter.
func Overlap(event, candidate model.PlanningEvent) bool {
	if !sameWeekday(event, candidate) {
		return false
	}
	if !aligned(event, candidate) {
		return false
	}
	if !timesOverlap(event, candidate) {
		return false
	}

	switch {
	case !event.Recurring && !candidate.Recurring:
		return true
	case event.Recurring != candidate.Recurring:
		recurring, single := event, candidate
		if !recurring.Recurring {
			recurring, single = candidate, event
		}
		return !recurring.IsException(single.StartDate)
	case event.IsInfinite() && candidate.IsInfinite():
		// Exceptions are finite; they cannot cancel every future coincidence.
		return true
	}

	return len(surviving(coincidingDates(event, candidate), event, candidate)) > 0
}

// Coincidences returns the dates on which both events actually take place,
// ignoring time of day. finite is false when both events recur forever and
// meet infinitely often; dates is nil in that case.
func Coincidences(a, b model.PlanningEvent) (dates []model.Date, finite bool) {
	if !sameWeekday(a, b) || !aligned(a, b) {
		return nil, true
	}

	switch {
	case !a.Recurring && !b.Recurring:
		return []model.Date{a.StartDate}, true
	case a.Recurring != b.Recurring:
		recurring, single := a, b
		if !recurring.Recurring {
			recurring, single = b, a
		}
		if recurring.IsException(single.StartDate) {
			return nil, true
		}
		return []model.Date{single.StartDate}, true
	case a.IsInfinite() && b.IsInfinite():
		return nil, false
	}

	return surviving(coincidingDates(a, b), a, b), true
}

func sameWeekday(a, b model.PlanningEvent) bool {
	return a.StartDate.Weekday() == b.StartDate.Weekday()
}

// aligned checks that the date spans intersect and that the two sequences,
// non-recurring ones counting as period 0, can land on a common date.
func aligned(a, b model.PlanningEvent) bool {
	if !period.DoDatePeriodsOverlap(period.FromEvent(a), period.FromEvent(b)) {
		return false
	}
	g := intmath.GCD(a.Period(), b.Period())
	if g == 0 {
		return true
	}
	return intmath.Mod(a.StartDate.WeeksUntil(b.StartDate), g) == 0
}

// timesOverlap compares the half-open [StartTime, EndTime) slots.
func timesOverlap(event, candidate model.PlanningEvent) bool {
	return candidate.StartTime < event.EndTime && candidate.EndTime > event.StartTime
}

// surviving drops every date listed in either event's exceptions.
func surviving(dates []model.Date, a, b model.PlanningEvent) []model.Date {
	if len(a.Exceptions) == 0 && len(b.Exceptions) == 0 {
		return dates
	}
	exA, exB := a.ExceptionSet(), b.ExceptionSet()
	out := dates[:0:0]
	for _, d := range dates {
		if _, ok := exA[d]; ok {
			continue
		}
		if _, ok := exB[d]; ok {
			continue
		}
		out = append(out, d)
	}
	return out
}
