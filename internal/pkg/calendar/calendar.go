// Package calendar holds the date arithmetic shared by the attendance and leave engines.
// All values are calendar dates: the time component is dropped and dates are kept in UTC so
// that day differences are exact.
package calendar

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t (as seen in t's own location) at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// IsWorkingDay reports whether t falls on Monday through Friday.
// Holiday calendars are not considered.
func IsWorkingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

const secondsPerDay = 24 * 60 * 60

// DaysInclusive returns the number of calendar days in [start, end], or 0 when end < start.
func DaysInclusive(start, end time.Time) int {
	s, e := DateOf(start), DateOf(end)
	if e.Before(s) {
		return 0
	}
	return int((e.Unix()-s.Unix())/secondsPerDay) + 1
}

// WorkingDays counts the Monday-Friday dates in the inclusive range [start, end].
// An empty range (end before start) yields 0.
func WorkingDays(start, end time.Time) int {
	days := DaysInclusive(start, end)
	if days == 0 {
		return 0
	}

	s, e := DateOf(start), DateOf(end)
	weeks := days / 7
	count := weeks * 5

	// Remainder is at most 6 days
	for d := s.AddDate(0, 0, weeks*7); !d.After(e); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d) {
			count++
		}
	}
	return count
}

// WorkingDates lists the working dates in [start, end] in ascending order.
func WorkingDates(start, end time.Time) []time.Time {
	s, e := DateOf(start), DateOf(end)
	dates := make([]time.Time, 0, WorkingDays(s, e))
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d) {
			dates = append(dates, d)
		}
	}
	return dates
}

// MonthRange returns the first and last calendar date of the given month.
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// Clip narrows [start, end] to the window [from, to]. A nil bound leaves that side untouched.
// The result may be an empty range (end before start); WorkingDays handles that as 0.
func Clip(start, end time.Time, from, to *time.Time) (time.Time, time.Time) {
	s, e := DateOf(start), DateOf(end)
	if from != nil {
		if f := DateOf(*from); f.After(s) {
			s = f
		}
	}
	if to != nil {
		if t := DateOf(*to); t.Before(e) {
			e = t
		}
	}
	return s, e
}

// Overlaps reports whether the inclusive ranges [aStart, aEnd] and [bStart, bEnd] share a date.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !DateOf(aEnd).Before(DateOf(bStart)) && !DateOf(bEnd).Before(DateOf(aStart))
}
