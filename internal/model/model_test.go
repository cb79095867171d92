package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDateArithmetic(t *testing.T) {
	d := MustDate("2023-01-12")

	assert.Equal(t, time.Thursday, d.Weekday())
	assert.Equal(t, "2023-01-19", d.AddWeeks(1).String())
	assert.Equal(t, "2023-01-11", d.AddDays(-1).String())
	assert.Equal(t, 7, d.DaysUntil(MustDate("2023-01-19")))
	assert.Equal(t, -2, d.WeeksUntil(MustDate("2022-12-29")))
	assert.Equal(t, 0, d.Compare(NewDate(2023, time.January, 12)))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.Equal(t, d, MinDate(d, d.AddDays(3)))
	assert.Equal(t, d.AddDays(3), MaxDate(d, d.AddDays(3)))
}

func TestDateAcrossDST(t *testing.T) {
	// Days are counted on UTC midnights, so a DST change in between is invisible.
	a := MustDate("2024-03-01")
	b := MustDate("2024-04-01")
	assert.Equal(t, 31, a.DaysUntil(b))
}

func TestDateFarApart(t *testing.T) {
	old, now := MustDate("1700-01-04"), MustDate("2024-01-01")

	assert.Equal(t, 118335, old.DaysUntil(now))
	assert.Equal(t, -118335, now.DaysUntil(old))
	assert.Equal(t, 16905, old.WeeksUntil(now))
	assert.Equal(t, 219510, MustDate("1500-01-01").DaysUntil(MustDate("2100-12-31")))

	ev := NewRecurring(2, old, Unbounded(), Clock(9, 0), Clock(10, 0))
	first, ok := ev.FirstOccurrenceOnOrAfter(now)
	require.True(t, ok)
	assert.Equal(t, MustDate("2024-01-08"), first)
	last, ok := ev.LastOccurrenceOnOrBefore(MustDate("2024-01-07"))
	require.True(t, ok)
	assert.Equal(t, MustDate("2023-12-25"), last)
}

func TestDateAsMapKey(t *testing.T) {
	set := map[Date]struct{}{MustDate("2024-05-06"): {}}
	_, ok := set[NewDate(2024, time.May, 6)]
	assert.True(t, ok)
	_, ok = set[MustDate("2024-04-29").AddWeeks(1)]
	assert.True(t, ok)
}

func TestParseErrors(t *testing.T) {
	_, err := ParseDate("2024-13-01")
	assert.Error(t, err)
	_, err = ParseTimeOfDay("9h")
	assert.Error(t, err)
}

func TestTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(9, 30), tod)
	assert.Equal(t, "09:30", tod.String())

	withSeconds := MustTimeOfDay("23:59:30")
	assert.Equal(t, "23:59:30", withSeconds.String())
	assert.Equal(t, Clock(24, 0), MustTimeOfDay("24:00"))

	at := tod.On(MustDate("2024-02-03"), time.UTC)
	assert.Equal(t, time.Date(2024, 2, 3, 9, 30, 0, 0, time.UTC), at)
}

func TestEndDateOrdering(t *testing.T) {
	d := MustDate("2024-01-01")

	assert.Equal(t, 1, Unbounded().Compare(Bounded(d)))
	assert.Equal(t, -1, Bounded(d).Compare(Unbounded()))
	assert.Equal(t, 0, Unbounded().Compare(Unbounded()))
	assert.Equal(t, -1, Bounded(d).CompareDate(d.AddDays(1)))
	assert.Equal(t, Bounded(d), Unbounded().Min(Bounded(d)))

	_, ok := Unbounded().Date()
	assert.False(t, ok)
	assert.Equal(t, "never", Unbounded().String())
}

func TestValidate(t *testing.T) {
	d := MustDate("2024-01-01")
	nine, ten := Clock(9, 0), Clock(10, 0)

	tests := []struct {
		name    string
		event   PlanningEvent
		wantErr bool
	}{
		{"single", NewSingle(d, nine, ten), false},
		{"recurring forever", NewRecurring(2, d, Unbounded(), nine, ten), false},
		{"missing period", NewRecurring(0, d, Unbounded(), nine, ten), true},
		{"reversed dates", NewRecurring(1, d, Bounded(d.AddDays(-7)), nine, ten), true},
		{"reversed times", NewSingle(d, ten, nine), true},
		{"empty times", NewSingle(d, nine, nine), true},
		{"single without end", PlanningEvent{StartDate: d, StartTime: nine, EndTime: ten}, true},
		{"no start", PlanningEvent{StartTime: nine, EndTime: ten}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEvent)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCopyHelpersLeaveSourceAlone(t *testing.T) {
	d := MustDate("2024-01-01")
	src := NewRecurring(2, d, Unbounded(), Clock(9, 0), Clock(10, 0), d.AddWeeks(2))
	src.ID = "standup"

	c := src.WithDates(d.AddWeeks(4), Bounded(d.AddWeeks(8)))
	c.Exceptions[0] = d.AddWeeks(6)
	assert.Equal(t, d.AddWeeks(2), src.Exceptions[0])
	assert.Equal(t, "standup", c.ID)

	p := src.WithPeriod(4)
	assert.Equal(t, 4, p.WeeksPeriod)
	assert.Equal(t, 2, src.WeeksPeriod)

	tm := src.WithTimes(Clock(9, 30), Clock(10, 0))
	assert.Equal(t, Clock(9, 0), src.StartTime)
	assert.Equal(t, Clock(9, 30), tm.StartTime)

	one := src.OnDay(d.AddWeeks(4))
	assert.False(t, one.Recurring)
	assert.Equal(t, 0, one.Period())
	assert.Equal(t, Bounded(d.AddWeeks(4)), one.EndDate)
	assert.True(t, src.Recurring)
}

func TestOccurrenceStepping(t *testing.T) {
	start := MustDate("2024-01-01")
	e := NewRecurring(2, start, Bounded(start.AddWeeks(6)), Clock(9, 0), Clock(10, 0))

	occ, ok := e.FirstOccurrenceOnOrAfter(start.AddDays(1))
	require.True(t, ok)
	assert.Equal(t, start.AddWeeks(2), occ)

	occ, ok = e.FirstOccurrenceOnOrAfter(start.AddDays(-30))
	require.True(t, ok)
	assert.Equal(t, start, occ)

	_, ok = e.FirstOccurrenceOnOrAfter(start.AddWeeks(6).AddDays(1))
	assert.False(t, ok)

	occ, ok = e.LastOccurrenceOnOrBefore(start.AddWeeks(5))
	require.True(t, ok)
	assert.Equal(t, start.AddWeeks(4), occ)

	occ, ok = e.LastOccurrenceOnOrBefore(start.AddWeeks(50))
	require.True(t, ok)
	assert.Equal(t, start.AddWeeks(6), occ)

	_, ok = e.LastOccurrenceOnOrBefore(start.AddDays(-1))
	assert.False(t, ok)

	assert.True(t, e.OccursOn(start.AddWeeks(4)))
	assert.False(t, e.OccursOn(start.AddWeeks(3)))

	single := NewSingle(start, Clock(9, 0), Clock(10, 0))
	_, ok = single.FirstOccurrenceOnOrAfter(start.AddDays(1))
	assert.False(t, ok)
	assert.True(t, single.OccursOn(start))
}

func TestExceptions(t *testing.T) {
	d := MustDate("2024-01-01")
	e := NewRecurring(1, d, Unbounded(), Clock(9, 0), Clock(10, 0), d.AddWeeks(3))

	assert.True(t, e.IsException(d.AddWeeks(3)))
	assert.False(t, e.IsException(d.AddWeeks(2)))
	_, ok := e.ExceptionSet()[d.AddWeeks(3)]
	assert.True(t, ok)
}

func TestYAMLRoundTrip(t *testing.T) {
	doc := `
id: gym
recurring: true
weeks_period: 2
start_date: 2024-01-01
start_time: "18:00"
end_time: "19:30"
exceptions: [2024-01-15]
`
	var e PlanningEvent
	require.NoError(t, yaml.Unmarshal([]byte(doc), &e))
	assert.Equal(t, "gym", e.ID)
	assert.True(t, e.IsInfinite())
	assert.Equal(t, Clock(19, 30), e.EndTime)
	assert.Equal(t, []Date{MustDate("2024-01-15")}, e.Exceptions)
	require.NoError(t, e.Validate())

	bounded := e.WithDates(e.StartDate, Bounded(MustDate("2024-03-01")))
	out, err := yaml.Marshal(bounded)
	require.NoError(t, err)
	assert.Contains(t, string(out), "end_date: \"2024-03-01\"")

	out, err = yaml.Marshal(e)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "end_date")
}

func TestJSONEncoding(t *testing.T) {
	e := NewSingle(MustDate("2024-01-01"), Clock(9, 0), Clock(10, 0))
	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"start_date":"2024-01-01"`)
	assert.Contains(t, string(out), `"end_date":"2024-01-01"`)
	assert.Contains(t, string(out), `"start_time":"09:00"`)

	var back PlanningEvent
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, e, back)
}
