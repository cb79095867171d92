package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"plancal/internal/model"
)

const (
	floatingLayout = "20060102T150405"
	dateLayout     = "20060102"
)

// Export writes events as a VCALENDAR with one VEVENT each. Recurring events
// carry a weekly RRULE and their exceptions as EXDATE. Times are floating
// (no TZID) since planning events have no zone; stamp becomes DTSTAMP.
//
// Events without ID get a positional UID.
func Export(events []model.PlanningEvent, stamp time.Time) string {
	cal := ical.NewCalendarFor("plancal")
	cal.SetMethod(ical.MethodPublish)

	for i, ev := range events {
		uid := ev.ID
		if uid == "" {
			uid = fmt.Sprintf("plancal-%d", i)
		}
		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(stamp)
		if ev.Title != "" {
			ve.SetSummary(ev.Title)
		}

		allDay := ev.StartTime == 0 && ev.EndTime == model.Clock(24, 0)
		if allDay {
			ve.SetAllDayStartAt(ev.StartDate.Time())
			ve.SetAllDayEndAt(ev.StartDate.AddDays(1).Time())
		} else {
			ve.SetProperty(ical.ComponentPropertyDtStart, ev.StartTime.On(ev.StartDate, time.Local).Format(floatingLayout))
			ve.SetProperty(ical.ComponentPropertyDtEnd, ev.EndTime.On(ev.StartDate, time.Local).Format(floatingLayout))
		}

		if !ev.Recurring {
			continue
		}
		ve.AddRrule(weeklyRule(ev, allDay))
		for _, ex := range ev.Exceptions {
			if allDay {
				ve.AddExdate(ex.Time().Format(dateLayout), ical.WithValue(string(ical.ValueDataTypeDate)))
				continue
			}
			ve.AddExdate(ev.StartTime.On(ex, time.Local).Format(floatingLayout))
		}
	}
	return cal.Serialize()
}

// weeklyRule renders FREQ=WEEKLY;INTERVAL=p and, for bounded events, an
// UNTIL at the start of the last occurrence. UNTIL takes the value type of
// DTSTART: a DATE for all-day events, a floating date-time otherwise.
func weeklyRule(ev model.PlanningEvent, allDay bool) string {
	opt := rrule.ROption{Freq: rrule.WEEKLY, Interval: ev.WeeksPeriod}
	rule := opt.RRuleString()

	end, ok := ev.EndDate.Date()
	if !ok {
		return rule
	}
	if allDay {
		return rule + ";UNTIL=" + end.Time().Format(dateLayout)
	}
	return rule + ";UNTIL=" + ev.StartTime.On(end, time.Local).Format(floatingLayout)
}
