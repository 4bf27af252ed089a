// Package calendar implements the civil-date arithmetic behind the goals
// calendar: date keys, month grids, goal-status overlays and day selection.
package calendar

import (
	"fmt"
	"time"
)

// Layout is the storage format for entry dates.
const Layout = "2006-01-02"

// Format returns the date key for t in t's location.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// FormatYMD returns the date key for a civil date.
func FormatYMD(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// Parse reads a date key as local midnight.
func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Midnight truncates t to the start of its day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in month of year.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month normalises to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsFuture reports whether the date key lies after today's date. Keys are
// zero-padded so lexical order matches chronological order; unparsable
// keys are never in the future.
func IsFuture(date string, now time.Time) bool {
	if _, err := time.Parse(Layout, date); err != nil {
		return false
	}
	return date > Format(now)
}

// AddDays shifts a date key by n days.
func AddDays(date string, n int) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}
