// Package period compares date spans whose ends may be open.
package period

import "plancal/internal/model"

// Bound is one end of a date span. An Infinite bound lies past every date and
// ignores Value and Inclusive.
type Bound struct {
	Value     model.Date
	Inclusive bool
	Infinite  bool
}

// Closed returns an inclusive bound at d.
func Closed(d model.Date) Bound { return Bound{Value: d, Inclusive: true} }

// Open returns an exclusive bound at d.
func Open(d model.Date) Bound { return Bound{Value: d} }

// Infinity returns the bound used for spans that never end.
func Infinity() Bound { return Bound{Infinite: true} }

// Period is a span of dates from Start to End.
type Period struct {
	Start Bound
	End   Bound
}

// FromEvent returns the closed span covering e's start and end dates.
func FromEvent(e model.PlanningEvent) Period {
	p := Period{Start: Closed(e.StartDate), End: Infinity()}
	if end, ok := e.EndDate.Date(); ok {
		p.End = Closed(end)
	}
	return p
}

// endsBefore reports whether a span ending at end finishes strictly before a
// span starting at start begins, so that no date belongs to both.
func endsBefore(end, start Bound) bool {
	if end.Infinite {
		return false
	}
	switch c := end.Value.Compare(start.Value); {
	case c < 0:
		return true
	case c > 0:
		return false
	}
	return !(end.Inclusive && start.Inclusive)
}

// DoDatePeriodsOverlap reports whether first and second share at least one
// date.
func DoDatePeriodsOverlap(first, second Period) bool {
	return !endsBefore(first.End, second.Start) && !endsBefore(second.End, first.Start)
}

// Intersect returns the common part of a and b. ok is false when they are
// disjoint.
func Intersect(a, b Period) (p Period, ok bool) {
	if !DoDatePeriodsOverlap(a, b) {
		return Period{}, false
	}
	p.Start = a.Start
	if startsAfter(b.Start, a.Start) {
		p.Start = b.Start
	}
	p.End = a.End
	if endsEarlier(b.End, a.End) {
		p.End = b.End
	}
	return p, true
}

func startsAfter(x, y Bound) bool {
	if c := x.Value.Compare(y.Value); c != 0 {
		return c > 0
	}
	return !x.Inclusive && y.Inclusive
}

func endsEarlier(x, y Bound) bool {
	if x.Infinite || y.Infinite {
		return !x.Infinite
	}
	if c := x.Value.Compare(y.Value); c != 0 {
		return c < 0
	}
	return !x.Inclusive && y.Inclusive
}

// EndDate converts an inclusive or infinite end bound back to an EndDate.
func (b Bound) EndDate() model.EndDate {
	if b.Infinite {
		return model.Unbounded()
	}
	if b.Inclusive {
		return model.Bounded(b.Value)
	}
	return model.Bounded(b.Value.AddDays(-1))
}
