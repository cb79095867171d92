package overlap

import (
	"fmt"

	"plancal/internal/intmath"
	"plancal/internal/model"
)

// FirstCoincidence returns the earliest date on which two aligned recurring
// events both occur, ignoring their ends and exceptions.
//
// Counting weeks from the earlier start, the events occur at offA + n*pA and
// offB + m*pB. A common date solves -pA*n + pB*m = offA - offB, which is
// solved with the extended Euclidean algorithm and then shifted along the
// homogeneous solution (pB/g, pA/g) to the smallest n, m >= 0.
//
// The caller must have checked alignment; an unsolvable equation panics.
func FirstCoincidence(a, b model.PlanningEvent) model.Date {
	pA, pB := a.WeeksPeriod, b.WeeksPeriod
	if pA <= 0 || pB <= 0 {
		panic(fmt.Sprintf("overlap: first coincidence needs two recurring events, got periods %d and %d", pA, pB))
	}

	origin := model.MinDate(a.StartDate, b.StartDate)
	offA := origin.WeeksUntil(a.StartDate)
	offB := origin.WeeksUntil(b.StartDate)

	g, u, v := intmath.ExtendedGCD(-pA, pB)
	rhs := offA - offB
	if rhs%g != 0 {
		panic(fmt.Sprintf("overlap: %s and %s never coincide (offset %d weeks, gcd %d)", a, b, rhs, g))
	}

	n, m := u*(rhs/g), v*(rhs/g)
	stepN, stepM := pB/g, pA/g
	shift := max(intmath.CeilDiv(-n, stepN), intmath.CeilDiv(-m, stepM))
	n += shift * stepN
	m += shift * stepM

	first := origin.AddWeeks(offA + n*pA)
	if !first.Equal(origin.AddWeeks(offB + m*pB)) {
		panic(fmt.Sprintf("overlap: diophantine solution disagrees for %s and %s", a, b))
	}
	return first
}

// coincidingDates lists every date, up to the earlier bounded end, on which
// both recurring events occur. At least one event must be finite.
func coincidingDates(a, b model.PlanningEvent) []model.Date {
	last, ok := a.EndDate.Min(b.EndDate).Date()
	if !ok {
		panic("overlap: coincidingDates called on two infinite events")
	}

	step := intmath.LCM(a.WeeksPeriod, b.WeeksPeriod)
	var out []model.Date
	for d := FirstCoincidence(a, b); !d.After(last); d = d.AddWeeks(step) {
		out = append(out, d)
	}
	return out
}
