package store

import "time"

// CalorieEntry is one logged food item on a calendar day.
type CalorieEntry struct {
	ID              int64   `db:"id"`
	Date            string  `db:"date"` // yyyy-MM-dd
	Name            string  `db:"name"`
	Quantity        float64 `db:"quantity"`
	CaloriesPerUnit float64 `db:"calories_per_unit"`
	Timestamp       int64   `db:"timestamp"` // insertion time, unix millis
}

// TotalCalories is Quantity × CaloriesPerUnit.
func (e CalorieEntry) TotalCalories() float64 {
	return e.Quantity * e.CaloriesPerUnit
}

// InsertedAt returns the insertion timestamp as a time.
func (e CalorieEntry) InsertedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

type Setting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// EntryFilter is used to filter entries in queries. From is inclusive and
// To exclusive; both are date keys.
type EntryFilter struct {
	From  string
	To    string
	Limit int
}

// DailyTotal is the aggregated intake of one date.
type DailyTotal struct {
	Date       string  `db:"date"`
	Total      float64 `db:"total"`
	EntryCount int     `db:"entry_count"`
}

// TotalsByDate indexes daily totals by date key.
func TotalsByDate(totals []DailyTotal) map[string]float64 {
	m := make(map[string]float64, len(totals))
	for _, t := range totals {
		m[t.Date] = t.Total
	}
	return m
}
