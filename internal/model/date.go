package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DateLayout is the wire layout for calendar dates.
	DateLayout = "2006-01-02"

	secondsPerDay = 24 * 60 * 60
)

// Date is a civil calendar date with no time-of-day and no zone. Internally
// it is kept as midnight UTC so that day arithmetic never sees DST shifts.
type Date struct {
	t time.Time
}

// NewDate builds a Date from its components. Out-of-range values are
// normalized the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustDate is ParseDate for literals; it panics on malformed input.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time { return d.t }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) String() string { return d.t.Format(DateLayout) }

// Weekday returns the day of the week d falls on.
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// AddWeeks returns d shifted by n weeks.
func (d Date) AddWeeks(n int) Date { return d.AddDays(7 * n) }

// DaysUntil returns the signed number of days from d to other. Both sides are
// UTC midnights, so the Unix seconds differ by whole days; time.Duration would
// saturate for dates about 292 years apart.
func (d Date) DaysUntil(other Date) int {
	return int((other.t.Unix() - d.t.Unix()) / secondsPerDay)
}

// WeeksUntil returns the signed number of whole weeks from d to other,
// truncated toward zero.
func (d Date) WeeksUntil(other Date) int { return d.DaysUntil(other) / 7 }

// Compare returns -1, 0 or +1 as d is before, equal to or after other.
func (d Date) Compare(other Date) int { return d.t.Compare(other.t) }

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

// MinDate returns the earlier of a and b.
func MinDate(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

// MaxDate returns the later of a and b.
func MaxDate(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (any, error) { return d.String(), nil }

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// EndDate is the last date of an event's recurrence. An Unbounded end means
// the event repeats forever and compares after every bounded date.
type EndDate struct {
	date    Date
	bounded bool
}

// Bounded returns an end fixed at d.
func Bounded(d Date) EndDate { return EndDate{date: d, bounded: true} }

// Unbounded returns an end that never arrives.
func Unbounded() EndDate { return EndDate{} }

// IsZero reports whether e is Unbounded, so that omitempty drops it.
func (e EndDate) IsZero() bool { return !e.bounded }

// IsBounded reports whether e is a concrete date.
func (e EndDate) IsBounded() bool { return e.bounded }

// Date returns the end date and true, or the zero Date and false when e is
// unbounded.
func (e EndDate) Date() (Date, bool) { return e.date, e.bounded }

// Compare orders two ends, Unbounded being greater than any bounded date.
func (e EndDate) Compare(other EndDate) int {
	switch {
	case !e.bounded && !other.bounded:
		return 0
	case !e.bounded:
		return 1
	case !other.bounded:
		return -1
	}
	return e.date.Compare(other.date)
}

// CompareDate orders e against a bounded date.
func (e EndDate) CompareDate(d Date) int { return e.Compare(Bounded(d)) }

// Min returns the earlier of two ends.
func (e EndDate) Min(other EndDate) EndDate {
	if other.Compare(e) < 0 {
		return other
	}
	return e
}

func (e EndDate) String() string {
	if !e.bounded {
		return "never"
	}
	return e.date.String()
}

func (e EndDate) MarshalYAML() (any, error) {
	if !e.bounded {
		return nil, nil
	}
	return e.date.String(), nil
}

func (e EndDate) MarshalJSON() ([]byte, error) {
	if !e.bounded {
		return []byte("null"), nil
	}
	return json.Marshal(e.date.String())
}

func (e *EndDate) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		return e.parse("")
	}
	return e.parse(*s)
}

func (e *EndDate) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*e = Unbounded()
		return nil
	}
	return e.parse(node.Value)
}

func (e *EndDate) parse(v string) error {
	v = strings.TrimSpace(v)
	if v == "" || v == "~" || strings.EqualFold(v, "never") {
		*e = Unbounded()
		return nil
	}
	d, err := ParseDate(v)
	if err != nil {
		return err
	}
	*e = Bounded(d)
	return nil
}

// TimeOfDay is a wall-clock time expressed in seconds since midnight.
type TimeOfDay int

// Clock builds a TimeOfDay from hours and minutes.
func Clock(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60)
}

// ParseTimeOfDay parses HH:MM or HH:MM:SS.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" {
		return Clock(24, 0), nil
	}
	layout := "15:04"
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
}

// MustTimeOfDay is ParseTimeOfDay for literals.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Duration returns the offset from midnight.
func (t TimeOfDay) Duration() time.Duration { return time.Duration(t) * time.Second }

// On combines t with a date into an instant in loc.
func (t TimeOfDay) On(d Date, loc *time.Location) time.Time {
	return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), 0, 0, int(t), 0, loc)
}

func (t TimeOfDay) String() string {
	h, m, s := int(t)/3600, int(t)%3600/60, int(t)%60
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

func (t TimeOfDay) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) MarshalYAML() (any, error) { return t.String(), nil }

func (t *TimeOfDay) UnmarshalYAML(node *yaml.Node) error {
	return t.UnmarshalText([]byte(node.Value))
}
