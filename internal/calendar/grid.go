package calendar

import (
	"strings"
	"time"

	"github.com/sadopc/calories/internal/goal"
)

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Title renders "January 2024".
func (m Month) Title() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

func (m Month) Days() int {
	return DaysIn(m.Year, m.Month)
}

// Date returns the date key for day of m.
func (m Month) Date(day int) string {
	return FormatYMD(m.Year, m.Month, day)
}

// Range returns the first date key of m and the first of the next month,
// suitable for half-open store queries.
func (m Month) Range() (from, to string) {
	n := m.Next()
	return m.Date(1), n.Date(1)
}

// ParseWeekStart maps "sunday"/"monday" to a weekday, defaulting to Sunday.
func ParseWeekStart(s string) time.Weekday {
	if strings.EqualFold(s, "monday") {
		return time.Monday
	}
	return time.Sunday
}

// WeekdayNames returns three-letter day labels starting at weekStart.
func WeekdayNames(weekStart time.Weekday) [7]string {
	var names [7]string
	for i := range names {
		names[i] = time.Weekday((int(weekStart) + i) % 7).String()[:3]
	}
	return names
}

// Cell is one slot of the month grid. Day is 0 for padding cells.
type Cell struct {
	Day  int
	Date string
}

// Week is one row of seven cells.
type Week [7]Cell

// Offset returns the column of day 1 given the first column's weekday.
func Offset(m Month, weekStart time.Weekday) int {
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Weekday()
	return (int(first) - int(weekStart) + 7) % 7
}

// Grid lays out m as rows of seven cells with day 1 in its weekday column.
func Grid(m Month, weekStart time.Weekday) []Week {
	offset := Offset(m, weekStart)
	days := m.Days()
	rows := (offset + days + 6) / 7

	weeks := make([]Week, rows)
	for day := 1; day <= days; day++ {
		slot := offset + day - 1
		weeks[slot/7][slot%7] = Cell{Day: day, Date: m.Date(day)}
	}
	return weeks
}

// Position returns the row and column of day within the grid.
func Position(m Month, weekStart time.Weekday, day int) (row, col int) {
	slot := Offset(m, weekStart) + day - 1
	return slot / 7, slot % 7
}

// DayAt is the inverse of Position; ok is false for padding cells.
func DayAt(m Month, weekStart time.Weekday, row, col int) (day int, ok bool) {
	if row < 0 || col < 0 || col > 6 {
		return 0, false
	}
	day = row*7 + col - Offset(m, weekStart) + 1
	if day < 1 || day > m.Days() {
		return 0, false
	}
	return day, true
}

// Status is the goal overlay of one calendar day.
type Status int

const (
	StatusNone Status = iota
	StatusMet
	StatusMissed
)

// Overlay computes the per-day status for m. Days without entries, days
// after today and every day when no goal is configured are StatusNone.
func Overlay(m Month, totals map[string]float64, r goal.Range, now time.Time) map[int]Status {
	out := make(map[int]Status)
	for day := 1; day <= m.Days(); day++ {
		date := m.Date(day)
		total, has := totals[date]
		if !has || IsFuture(date, now) {
			continue
		}
		met, ok := r.Met(total)
		if !ok {
			continue
		}
		if met {
			out[day] = StatusMet
		} else {
			out[day] = StatusMissed
		}
	}
	return out
}

// Selection is the outcome of choosing a day on the calendar.
type Selection int

const (
	SelectOpen Selection = iota
	SelectFuture
	SelectEmpty
)

// Message is the user feedback for no-op selections.
func (s Selection) Message() string {
	switch s {
	case SelectFuture:
		return "No data for future dates"
	case SelectEmpty:
		return "No entries for this date"
	}
	return ""
}

// Select decides what choosing date does: future dates and dates without
// entries are no-ops with feedback, anything else opens the day detail.
func Select(date string, now time.Time, hasEntries func(string) bool) Selection {
	if IsFuture(date, now) {
		return SelectFuture
	}
	if hasEntries == nil || !hasEntries(date) {
		return SelectEmpty
	}
	return SelectOpen
}
