package ics

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "plancal/internal/log"
	"plancal/internal/model"
)

// ErrUnsupportedRule marks a VEVENT whose shape or recurrence rule has no
// planning-event equivalent: anything but a plain weekly RRULE, or an event
// crossing midnight.
var ErrUnsupportedRule = errors.New("ics: unsupported recurrence")

// override is a VEVENT carrying RECURRENCE-ID: one moved or cancelled
// instance of a recurring master.
type override struct {
	uid       string
	date      model.Date
	cancelled bool
	event     model.PlanningEvent
}

// ParseICS converts the VEVENTs of an ICS payload into planning events.
//
//   - Only FREQ=WEEKLY rules (optional INTERVAL, UNTIL, COUNT and a BYDAY
//     equal to the start weekday) are accepted. Other events are logged and
//     skipped.
//   - EXDATE values become exceptions.
//   - A RECURRENCE-ID instance cancels that date on its master and, unless
//     it is itself cancelled, is imported as a one-off event.
//   - All-day events occupy 00:00-24:00.
//
// Dates and times are read in the zone the calendar states for them, and in
// the local zone for floating values.
func ParseICS(body []byte) ([]model.PlanningEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	events := make([]model.PlanningEvent, 0)
	var overrides []override
	skipped := 0

	for _, ve := range cal.Events() {
		if rid := ve.GetProperty(ical.ComponentPropertyRecurrenceId); rid != nil {
			ov, err := parseOverride(ve, rid)
			if err != nil {
				appLog.Warn("ics override skipped", "uid", ve.Id(), "reason", err.Error())
				skipped++
				continue
			}
			overrides = append(overrides, ov)
			continue
		}
		if isCancelled(ve) {
			continue
		}

		ev, err := parseVEvent(ve)
		if err != nil {
			appLog.Warn("ics vevent skipped", "uid", ve.Id(), "reason", err.Error())
			skipped++
			continue
		}
		events = append(events, ev)
	}

	events = applyOverrides(events, overrides)

	appLog.Info("ics parse completed", "event_count", len(events), "skipped", skipped)
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (model.PlanningEvent, error) {
	var out model.PlanningEvent

	out.ID = ve.Id()
	if out.ID == "" {
		return out, errors.New("missing UID")
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}

	start, err := eventSlot(ve, &out)
	if err != nil {
		return out, err
	}

	rule := ve.GetProperty(ical.ComponentPropertyRrule)
	if rule == nil {
		out.EndDate = model.Bounded(out.StartDate)
		return out, nil
	}
	if err := applyRule(&out, rule.Value, start.Location()); err != nil {
		return out, err
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		dates, err := propertyDates(p, start.Location())
		if err != nil {
			return out, fmt.Errorf("EXDATE: %w", err)
		}
		for _, d := range dates {
			if !out.IsException(d) {
				out.Exceptions = append(out.Exceptions, d)
			}
		}
	}
	slices.SortFunc(out.Exceptions, model.Date.Compare)

	return out, nil
}

// eventSlot fills the start date and time-of-day range of out from
// DTSTART/DTEND and returns the parsed start instant.
func eventSlot(ve *ical.VEvent, out *model.PlanningEvent) (time.Time, error) {
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return time.Time{}, errors.New("missing DTSTART")
	}

	if isAllDay(dtStart) {
		start, err := ve.GetAllDayStartAt()
		if err != nil {
			return time.Time{}, err
		}
		out.StartDate = model.DateOf(start)
		out.StartTime, out.EndTime = 0, model.Clock(24, 0)
		if end, err := ve.GetAllDayEndAt(); err == nil && model.DateOf(end).After(out.StartDate.AddDays(1)) {
			return time.Time{}, fmt.Errorf("%w: all-day event spans several days", ErrUnsupportedRule)
		}
		return start, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return time.Time{}, err
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return time.Time{}, err
	}
	end = end.In(start.Location())

	out.StartDate = model.DateOf(start)
	out.StartTime = clockOf(start)
	switch endDate := model.DateOf(end); {
	case endDate.Equal(out.StartDate):
		out.EndTime = clockOf(end)
	case endDate.Equal(out.StartDate.AddDays(1)) && clockOf(end) == 0:
		out.EndTime = model.Clock(24, 0)
	default:
		return time.Time{}, fmt.Errorf("%w: event crosses midnight", ErrUnsupportedRule)
	}
	if out.EndTime <= out.StartTime {
		return time.Time{}, fmt.Errorf("DTEND %s is not after DTSTART %s", end, start)
	}
	return start, nil
}

// applyRule turns a weekly RRULE into WeeksPeriod and EndDate.
func applyRule(out *model.PlanningEvent, value string, loc *time.Location) error {
	opt, err := rrule.StrToROptionInLocation(value, loc)
	if err != nil {
		return fmt.Errorf("RRULE %q: %w", value, err)
	}
	if opt.Freq != rrule.WEEKLY {
		return fmt.Errorf("%w: FREQ=%s", ErrUnsupportedRule, opt.Freq)
	}
	if len(opt.Bysetpos)+len(opt.Bymonth)+len(opt.Bymonthday)+len(opt.Byyearday)+len(opt.Byweekno)+
		len(opt.Byhour)+len(opt.Byminute)+len(opt.Bysecond)+len(opt.Byeaster) > 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedRule, value)
	}
	for _, wd := range opt.Byweekday {
		if wd.N() != 0 || wd.Day() != weekdayIndex(out.StartDate) {
			return fmt.Errorf("%w: BYDAY other than the start weekday in %s", ErrUnsupportedRule, value)
		}
	}

	out.Recurring = true
	out.WeeksPeriod = max(opt.Interval, 1)
	out.EndDate = model.Unbounded()

	switch {
	case opt.Count > 0:
		out.EndDate = model.Bounded(out.StartDate.AddWeeks((opt.Count - 1) * out.WeeksPeriod))
	case !opt.Until.IsZero():
		last, ok := out.LastOccurrenceOnOrBefore(model.DateOf(opt.Until.In(loc)))
		if !ok {
			return fmt.Errorf("UNTIL %s is before DTSTART", opt.Until)
		}
		out.EndDate = model.Bounded(last)
	}
	return nil
}

func parseOverride(ve *ical.VEvent, rid *ical.IANAProperty) (override, error) {
	ov := override{uid: ve.Id(), cancelled: isCancelled(ve)}
	if ov.uid == "" {
		return ov, errors.New("missing UID")
	}

	loc := time.Local
	if start, err := ve.GetStartAt(); err == nil {
		loc = start.Location()
	}
	dates, err := propertyDates(rid, loc)
	if err != nil || len(dates) != 1 {
		return ov, fmt.Errorf("bad RECURRENCE-ID %q", rid.Value)
	}
	ov.date = dates[0]
	if ov.cancelled {
		return ov, nil
	}

	ov.event.ID = fmt.Sprintf("%s@%s", ov.uid, ov.date)
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ov.event.Title = p.Value
	}
	if _, err := eventSlot(ve, &ov.event); err != nil {
		return ov, err
	}
	ov.event.EndDate = model.Bounded(ov.event.StartDate)
	return ov, nil
}

// applyOverrides cancels each overridden date on its master and appends the
// moved instances.
func applyOverrides(events []model.PlanningEvent, overrides []override) []model.PlanningEvent {
	byUID := make(map[string]int, len(events))
	for i, ev := range events {
		byUID[ev.ID] = i
	}
	for _, ov := range overrides {
		if i, ok := byUID[ov.uid]; ok && events[i].Recurring && !events[i].IsException(ov.date) {
			events[i].Exceptions = append(events[i].Exceptions, ov.date)
			slices.SortFunc(events[i].Exceptions, model.Date.Compare)
		}
		if !ov.cancelled {
			events = append(events, ov.event)
		}
	}
	return events
}

// propertyDates reads the date list of an EXDATE or RECURRENCE-ID property,
// honouring its TZID parameter.
func propertyDates(p *ical.IANAProperty, loc *time.Location) ([]model.Date, error) {
	if tz, ok := p.ICalParameters["TZID"]; ok && len(tz) > 0 {
		l, err := time.LoadLocation(tz[0])
		if err != nil {
			return nil, err
		}
		loc = l
	}
	times, err := rrule.StrToDatesInLoc(strings.TrimSpace(p.Value), loc)
	if err != nil {
		return nil, err
	}
	out := make([]model.Date, 0, len(times))
	for _, t := range times {
		out = append(out, model.DateOf(t.In(loc)))
	}
	return out, nil
}

// isAllDay reports VALUE=DATE or a date-only DTSTART.
func isAllDay(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func isCancelled(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyStatus)
	return p != nil && strings.EqualFold(p.Value, string(ical.ObjectStatusCancelled))
}

func clockOf(t time.Time) model.TimeOfDay {
	return model.TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// weekdayIndex numbers d's weekday the way rrule does (Monday is 0).
func weekdayIndex(d model.Date) int {
	return (int(d.Weekday()) + 6) % 7
}
