package ds3231

import (
	"fmt"
	"time"
)

// Years outside this span cannot be stored under any base century.
const (
	MinYear = 1900
	MaxYear = 2299
)

// DateTime is a date and time of day as the chip stores it. It is immutable; construct it with NewDateTime or
// FromTime.
//
// The day of month is checked against 1-31 only. The chip does not know month lengths, so 31 February is a value it
// will happily store and return.
type DateTime struct {
	year    int
	month   time.Month
	day     int
	hour    int
	minute  int
	second  int
	weekday int
}

// NewDateTime validates each field and returns the value. The day of week is derived from the date, counting
// Sunday as 1.
func NewDateTime(year int, month time.Month, day, hour, minute, second int) (DateTime, error) {
	if err := checkRange("year", year, MinYear, MaxYear); err != nil {
		return DateTime{}, err
	}
	if err := checkRange("month", int(month), 1, 12); err != nil {
		return DateTime{}, err
	}
	if err := checkRange("day", day, 1, 31); err != nil {
		return DateTime{}, err
	}
	if err := checkRange("hour", hour, 0, 23); err != nil {
		return DateTime{}, err
	}
	if err := checkRange("minute", minute, 0, 59); err != nil {
		return DateTime{}, err
	}
	if err := checkRange("second", second, 0, 59); err != nil {
		return DateTime{}, err
	}
	return DateTime{
		year:    year,
		month:   month,
		day:     day,
		hour:    hour,
		minute:  minute,
		second:  second,
		weekday: int(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Weekday()) + 1,
	}, nil
}

// FromTime converts t using its own location's calendar fields. Sub-second precision is dropped.
func FromTime(t time.Time) (DateTime, error) {
	year, month, day := t.Date()
	hour, minute, second := t.Clock()
	return NewDateTime(year, month, day, hour, minute, second)
}

// WithWeekday returns a copy of dt carrying the given day of week (1-7) instead of the derived one. The chip only
// increments this register at midnight and never checks it against the date.
func (dt DateTime) WithWeekday(weekday int) (DateTime, error) {
	if err := checkRange("weekday", weekday, 1, 7); err != nil {
		return DateTime{}, err
	}
	dt.weekday = weekday
	return dt, nil
}

func (dt DateTime) Year() int { return dt.year }
func (dt DateTime) Month() time.Month { return dt.month }
func (dt DateTime) Day() int { return dt.day }
func (dt DateTime) Hour() int { return dt.hour }
func (dt DateTime) Minute() int { return dt.minute }
func (dt DateTime) Second() int { return dt.second }
func (dt DateTime) Weekday() int { return dt.weekday }
func (dt DateTime) IsZero() bool { return dt == DateTime{} }
func (dt DateTime) Equal(o DateTime) bool { return dt == o }

// Time returns dt as a UTC time.Time. Dates the chip accepts but the calendar does not, such as 31 February, are
// normalized by time.Date.
func (dt DateTime) Time() time.Time {
	return time.Date(dt.year, dt.month, dt.day, dt.hour, dt.minute, dt.second, 0, time.UTC)
}

func (dt DateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d (weekday %d)",
		dt.year, dt.month, dt.day, dt.hour, dt.minute, dt.second, dt.weekday)
}
