package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sadopc/calories/internal/apperr"
	"github.com/sadopc/calories/internal/calendar"
)

const entryColumns = `id, date, name, quantity, calories_per_unit, timestamp`

// ErrEntryNotFound is returned when an entry id does not exist.
var ErrEntryNotFound = apperr.New(apperr.TypeNotFound, "entry_not_found", "Entry no longer exists")

// ValidateEntry checks user-supplied fields before anything is persisted.
func ValidateEntry(e CalorieEntry) error {
	if err := validateFields(e); err != nil {
		return err
	}
	if _, err := time.Parse(calendar.Layout, e.Date); err != nil {
		return apperr.Validation("entry_date", "Entry date must be in yyyy-MM-dd format")
	}
	return nil
}

func validateFields(e CalorieEntry) error {
	if strings.TrimSpace(e.Name) == "" {
		return apperr.Validation("entry_name", "Please enter a food name")
	}
	if !Positive(e.Quantity) || !Positive(e.CaloriesPerUnit) {
		return apperr.Validation("entry_numbers", "Quantity and calories per unit must be positive numbers")
	}
	return nil
}

// Positive reports whether f is a usable quantity or calorie amount: finite
// and greater than zero.
func Positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// AddEntry validates and inserts e, stamping the insertion time when unset.
func (s *Store) AddEntry(e CalorieEntry) (*CalorieEntry, error) {
	e.Name = strings.TrimSpace(e.Name)
	if err := ValidateEntry(e); err != nil {
		return nil, err
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}
	res, err := s.db.Exec(
		`INSERT INTO calorie_entries (date, name, quantity, calories_per_unit, timestamp) VALUES (?, ?, ?, ?, ?)`,
		e.Date, e.Name, e.Quantity, e.CaloriesPerUnit, e.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetEntry(id)
}

func (s *Store) GetEntry(id int64) (*CalorieEntry, error) {
	e := &CalorieEntry{}
	err := s.db.Get(e, `SELECT `+entryColumns+` FROM calorie_entries WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get entry %d: %w", id, ErrEntryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	return e, nil
}

// UpdateEntry rewrites the name, quantity and per-unit calories of an
// existing entry. Date and insertion time are kept.
func (s *Store) UpdateEntry(e CalorieEntry) error {
	e.Name = strings.TrimSpace(e.Name)
	if err := validateFields(e); err != nil {
		return err
	}
	res, err := s.db.Exec(
		`UPDATE calorie_entries SET name = ?, quantity = ?, calories_per_unit = ? WHERE id = ?`,
		e.Name, e.Quantity, e.CaloriesPerUnit, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update entry %d: %w", e.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update entry %d: %w", e.ID, ErrEntryNotFound)
	}
	return nil
}

func (s *Store) DeleteEntry(id int64) error {
	res, err := s.db.Exec(`DELETE FROM calorie_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete entry %d: %w", id, ErrEntryNotFound)
	}
	return nil
}

// ListEntriesForDate returns the entries of date in insertion order.
func (s *Store) ListEntriesForDate(date string) ([]CalorieEntry, error) {
	var entries []CalorieEntry
	err := s.db.Select(&entries,
		`SELECT `+entryColumns+` FROM calorie_entries WHERE date = ? ORDER BY timestamp ASC, id ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("list entries for %s: %w", date, err)
	}
	return entries, nil
}

// TotalForDate sums quantity × calories_per_unit over date's entries.
func (s *Store) TotalForDate(date string) (float64, error) {
	var total float64
	err := s.db.Get(&total,
		`SELECT COALESCE(SUM(quantity * calories_per_unit), 0) FROM calorie_entries WHERE date = ?`, date)
	if err != nil {
		return 0, fmt.Errorf("total for %s: %w", date, err)
	}
	return total, nil
}

// DatesWithEntries returns every date that has at least one entry, newest first.
func (s *Store) DatesWithEntries() ([]string, error) {
	var dates []string
	if err := s.db.Select(&dates, `SELECT DISTINCT date FROM calorie_entries ORDER BY date DESC`); err != nil {
		return nil, fmt.Errorf("dates with entries: %w", err)
	}
	return dates, nil
}

// DailyTotals aggregates entries per date in [from, to).
func (s *Store) DailyTotals(from, to string) ([]DailyTotal, error) {
	var totals []DailyTotal
	err := s.db.Select(&totals, `
		SELECT date,
		       COALESCE(SUM(quantity * calories_per_unit), 0) AS total,
		       COUNT(*) AS entry_count
		FROM calorie_entries
		WHERE date >= ? AND date < ?
		GROUP BY date
		ORDER BY date`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	return totals, nil
}

func (s *Store) ListEntries(f EntryFilter) ([]CalorieEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM calorie_entries WHERE 1=1`
	var args []any

	if f.From != "" {
		query += ` AND date >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND date < ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY date DESC, timestamp ASC, id ASC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	var entries []CalorieEntry
	if err := s.db.Select(&entries, query, args...); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// DeleteEntriesForDate removes every entry of date and reports how many went.
func (s *Store) DeleteEntriesForDate(date string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM calorie_entries WHERE date = ?`, date)
	if err != nil {
		return 0, fmt.Errorf("delete entries for %s: %w", date, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) DeleteAllEntries() error {
	_, err := s.db.Exec(`DELETE FROM calorie_entries`)
	return err
}
