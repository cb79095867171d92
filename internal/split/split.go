// Package split carves the part that another event occupies out of an
// "open" planning event.
//
// The open event is cut three ways, each step narrowing the piece that
// still collides with the other event:
//
//   - by date: occurrences before and after the other event's span;
//   - by period: when both recur with different periods, the remaining
//     occurrences are regrouped at lcm(p, q) and only one group meets the
//     other event;
//   - by time of day: the slices of that group before and after the other
//     event's time slot.
//
// The colliding time slice itself is dropped; it belongs to the other event.
package split

import (
	"errors"
	"fmt"

	"plancal/internal/intmath"
	appLog "plancal/internal/log"
	"plancal/internal/model"
	"plancal/internal/overlap"
	"plancal/internal/period"
)

// ErrInconsistentSplit signals a fragment derivation that contradicts the
// overlap check. It is a bug or corrupt input, never a user error.
var ErrInconsistentSplit = errors.New("split: inconsistent fragment derivation")

// Split returns events that together cover exactly the occurrences and times
// of open that other does not occupy. When the two do not overlap the result
// is []PlanningEvent{open}. An empty result means open is fully covered.
func Split(open, other model.PlanningEvent) ([]model.PlanningEvent, error) {
	if !overlap.Overlap(open, other) {
		return []model.PlanningEvent{open}, nil
	}
	if !open.Recurring {
		return splitTimes(open, other), nil
	}

	dates, err := splitDates(open, other)
	if err != nil {
		return nil, err
	}
	out := append(dates.head, dates.tail...)

	target := dates.overlap
	if target.Recurring && other.Recurring {
		siblings, match, err := splitPeriods(target, other)
		if err != nil {
			return nil, err
		}
		out = append(out, siblings...)
		target = match
	}

	out = append(out, reinstateCancelled(target, other)...)
	out = append(out, splitTimes(target, other)...)

	appLog.Debug("split: fragments derived", "open", open, "other", other, "fragments", len(out))
	return out, nil
}

// SplitAgainst removes every event of others from open in turn.
func SplitAgainst(open model.PlanningEvent, others []model.PlanningEvent) ([]model.PlanningEvent, error) {
	pieces := []model.PlanningEvent{open}
	for _, other := range others {
		next := make([]model.PlanningEvent, 0, len(pieces))
		for _, p := range pieces {
			frags, err := Split(p, other)
			if err != nil {
				return nil, fmt.Errorf("split %s against %s: %w", p, other, err)
			}
			next = append(next, frags...)
		}
		pieces = next
	}
	return pieces, nil
}

type dateFragments struct {
	head    []model.PlanningEvent
	overlap model.PlanningEvent
	tail    []model.PlanningEvent
}

// splitDates cuts a recurring open event around other's date span. Every
// fragment boundary is snapped to a real occurrence of open.
func splitDates(open, other model.PlanningEvent) (dateFragments, error) {
	var f dateFragments

	span, ok := period.Intersect(period.FromEvent(open), period.FromEvent(other))
	if !ok {
		return f, fmt.Errorf("%w: %s and %s have disjoint dates", ErrInconsistentSplit, open, other)
	}

	first, ok := open.FirstOccurrenceOnOrAfter(span.Start.Value)
	if !ok {
		return f, fmt.Errorf("%w: %s has no occurrence from %s", ErrInconsistentSplit, open, span.Start.Value)
	}

	if !other.Recurring {
		if !first.Equal(other.StartDate) {
			return f, fmt.Errorf("%w: %s does not occur on %s", ErrInconsistentSplit, open, other.StartDate)
		}
		f.overlap = open.OnDay(first)
	} else {
		end := model.Unbounded()
		if !span.End.Infinite {
			last, ok := open.LastOccurrenceOnOrBefore(span.End.Value)
			if !ok || last.Before(first) {
				return f, fmt.Errorf("%w: %s has no occurrence in %s..%s", ErrInconsistentSplit, open, first, span.End.Value)
			}
			end = model.Bounded(last)
		}
		f.overlap = open.WithDates(first, end)
	}

	step := open.WeeksPeriod
	if first.After(open.StartDate) {
		f.head = append(f.head, open.WithDates(open.StartDate, model.Bounded(first.AddWeeks(-step))))
	}

	if last, bounded := f.overlap.EndDate.Date(); bounded {
		next := last.AddWeeks(step)
		if open.EndDate.CompareDate(next) >= 0 {
			f.tail = append(f.tail, open.WithDates(next, open.EndDate))
		}
	}
	return f, nil
}

// splitPeriods regroups target's occurrences into lcm/p interleaved events of
// period lcm(p, q) and returns the ones other never meets, plus the single
// one it always meets.
func splitPeriods(target, other model.PlanningEvent) (siblings []model.PlanningEvent, match model.PlanningEvent, err error) {
	pT, pO := target.WeeksPeriod, other.WeeksPeriod
	newPeriod := intmath.LCM(pT, pO)
	end, bounded := target.EndDate.Date()

	matches := 0
	for i := range newPeriod / pT {
		start := target.StartDate.AddWeeks(i * pT)
		subEnd := model.Unbounded()
		if bounded {
			if start.After(end) {
				continue
			}
			steps := start.WeeksUntil(end) / newPeriod
			subEnd = model.Bounded(start.AddWeeks(steps * newPeriod))
		}
		sub := target.WithDates(start, subEnd).WithPeriod(newPeriod)

		if intmath.Mod(other.StartDate.WeeksUntil(start), pO) == 0 {
			match = sub
			matches++
			continue
		}
		siblings = append(siblings, sub)
	}

	if matches != 1 {
		return nil, model.PlanningEvent{}, fmt.Errorf("%w: %d of the period-%d groups of %s meet %s",
			ErrInconsistentSplit, matches, newPeriod, target, other)
	}
	return siblings, match, nil
}

// reinstateCancelled gives back the colliding time slice on dates where
// other is cancelled, since other does not actually take them.
func reinstateCancelled(target, other model.PlanningEvent) []model.PlanningEvent {
	if !other.Recurring || len(other.Exceptions) == 0 {
		return nil
	}
	from, to := max(target.StartTime, other.StartTime), min(target.EndTime, other.EndTime)

	var out []model.PlanningEvent
	seen := make(map[model.Date]struct{}, len(other.Exceptions))
	for _, ex := range other.Exceptions {
		if _, dup := seen[ex]; dup {
			continue
		}
		seen[ex] = struct{}{}
		if !target.OccursOn(ex) || !other.OccursOn(ex) || target.IsException(ex) {
			continue
		}
		out = append(out, target.OnDay(ex).WithTimes(from, to))
	}
	return out
}

// splitTimes keeps the parts of target's time slot outside other's.
func splitTimes(target, other model.PlanningEvent) []model.PlanningEvent {
	var out []model.PlanningEvent
	if target.StartTime < other.StartTime {
		out = append(out, target.WithTimes(target.StartTime, other.StartTime))
	}
	if target.EndTime > other.EndTime {
		out = append(out, target.WithTimes(other.EndTime, target.EndTime))
	}
	return out
}
