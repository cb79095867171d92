package occurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plancal/internal/model"
)

var (
	nine = model.Clock(9, 0)
	ten  = model.Clock(10, 0)
)

func d(s string) model.Date { return model.MustDate(s) }

func dates(events []model.PlanningEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.StartDate.String())
	}
	return out
}

func TestGenerateFor_WeeklyWindow(t *testing.T) {
	ev := model.NewRecurring(1, d("2023-01-12"), model.Bounded(d("2023-01-19")), nine, ten)

	occ, err := GenerateFor([]model.PlanningEvent{ev}, d("2023-01-11"), d("2023-01-20"))
	require.NoError(t, err)
	require.Len(t, occ, 2)
	assert.Equal(t, []string{"2023-01-12", "2023-01-19"}, dates(occ))
	for _, o := range occ {
		assert.Equal(t, model.Bounded(o.StartDate), o.EndDate)
		assert.Equal(t, nine, o.StartTime)
		assert.Equal(t, ten, o.EndTime)
	}
}

func TestGenerateFor_InvalidWindow(t *testing.T) {
	_, err := GenerateFor(nil, d("2024-02-01"), d("2024-01-01"))
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestGenerateFor_AdvancesToWindow(t *testing.T) {
	// Starts well before the window: first occurrence is the first one on or
	// after From, reached in whole periods.
	ev := model.NewRecurring(3, d("2024-01-01"), model.Unbounded(), nine, ten)

	occ, err := GenerateFor([]model.PlanningEvent{ev}, d("2024-02-01"), d("2024-03-31"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-12", "2024-03-04", "2024-03-25"}, dates(occ))
}

func TestGenerateFor_CenturiesOldStart(t *testing.T) {
	ev := model.NewRecurring(1, d("1700-01-04"), model.Unbounded(), nine, ten)

	occ, err := GenerateFor([]model.PlanningEvent{ev}, d("2024-01-01"), d("2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29"}, dates(occ))
}

func TestGenerateFor_StopsAtEventEnd(t *testing.T) {
	ev := model.NewRecurring(1, d("2024-01-01"), model.Bounded(d("2024-01-15")), nine, ten)

	occ, err := GenerateFor([]model.PlanningEvent{ev}, d("2024-01-01"), d("2024-12-31"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-08", "2024-01-15"}, dates(occ))
}

func TestGenerateFor_KeepsExceptions(t *testing.T) {
	ev := model.NewRecurring(1, d("2024-01-01"), model.Unbounded(), nine, ten, d("2024-01-08"))

	occ, err := GenerateFor([]model.PlanningEvent{ev}, d("2024-01-01"), d("2024-01-15"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-08", "2024-01-15"}, dates(occ))
	assert.Equal(t, ev.Exceptions, occ[1].Exceptions)
}

func TestGenerateFor_OrderAndSingles(t *testing.T) {
	weekly := model.NewRecurring(1, d("2024-01-03"), model.Unbounded(), nine, ten)
	weekly.ID = "weekly"
	single := model.NewSingle(d("2024-01-02"), nine, ten)
	single.ID = "single"
	outside := model.NewSingle(d("2024-03-01"), nine, ten)

	occ, err := GenerateFor([]model.PlanningEvent{weekly, single, outside}, d("2024-01-01"), d("2024-01-10"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-03", "2024-01-10", "2024-01-02"}, dates(occ))
	assert.Equal(t, "weekly", occ[0].ID)
	assert.Equal(t, "single", occ[2].ID)
}

func TestGenerateFor_EventEntirelyOutside(t *testing.T) {
	ended := model.NewRecurring(1, d("2023-01-01"), model.Bounded(d("2023-02-01")), nine, ten)
	later := model.NewRecurring(1, d("2025-01-01"), model.Unbounded(), nine, ten)

	occ, err := GenerateFor([]model.PlanningEvent{ended, later}, d("2024-01-01"), d("2024-12-31"))
	require.NoError(t, err)
	assert.Empty(t, occ)
}

func TestGenerateFor_DeterministicAndBounded(t *testing.T) {
	events := []model.PlanningEvent{
		model.NewRecurring(2, d("2023-11-06"), model.Unbounded(), nine, ten),
		model.NewRecurring(5, d("2024-01-04"), model.Bounded(d("2024-09-01")), nine, ten),
	}
	from, until := d("2024-01-01"), d("2024-06-30")

	first, err := GenerateFor(events, from, until)
	require.NoError(t, err)
	second, err := GenerateFor(events, from, until)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for _, o := range first {
		assert.False(t, o.StartDate.Before(from), o.StartDate.String())
		assert.False(t, o.StartDate.After(until), o.StartDate.String())
	}
}

func TestGenerateFor_DoesNotMutateInput(t *testing.T) {
	ev := model.NewRecurring(1, d("2024-01-01"), model.Unbounded(), nine, ten, d("2024-01-08"))
	before := ev.Clone()

	occ, err := GenerateFor([]model.PlanningEvent{ev}, d("2024-01-01"), d("2024-01-31"))
	require.NoError(t, err)
	occ[0].Exceptions[0] = d("2030-01-01")

	assert.Equal(t, before, ev)
}

func TestExpand_SkipExceptions(t *testing.T) {
	ev := model.NewRecurring(1, d("2024-01-01"), model.Unbounded(), nine, ten, d("2024-01-08"))

	res, err := Expand([]model.PlanningEvent{ev}, Config{
		From:           d("2024-01-01"),
		Until:          d("2024-01-15"),
		SkipExceptions: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-15"}, dates(res.Occurrences))
}

func TestExpand_Cap(t *testing.T) {
	ev := model.NewRecurring(1, d("2024-01-01"), model.Unbounded(), nine, ten)
	ev.ID = "daily-standup"

	res, err := Expand([]model.PlanningEvent{ev}, Config{
		From:                   d("2024-01-01"),
		Until:                  d("2024-12-31"),
		MaxOccurrencesPerEvent: 3,
	})
	require.NoError(t, err)
	assert.Len(t, res.Occurrences, 3)
	assert.Equal(t, []string{"daily-standup"}, res.TruncatedEvents)
}

func TestExpand_RejectsRecurringWithoutPeriod(t *testing.T) {
	ev := model.NewRecurring(0, d("2024-01-01"), model.Unbounded(), nine, ten)

	_, err := Expand([]model.PlanningEvent{ev}, Config{From: d("2024-01-01"), Until: d("2024-01-31")})
	assert.ErrorIs(t, err, model.ErrInvalidEvent)
	assert.Contains(t, err.Error(), "#0")
}
