package store

import (
	"errors"
	"math"
	"testing"

	"github.com/sadopc/calories/internal/apperr"
	"github.com/sadopc/calories/internal/goal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// addEntry is a test helper that inserts an entry with a fixed timestamp so
// ordering is deterministic.
func addEntry(t *testing.T, s *Store, date, name string, qty, per float64, ts int64) *CalorieEntry {
	t.Helper()
	e, err := s.AddEntry(CalorieEntry{Date: date, Name: name, Quantity: qty, CaloriesPerUnit: per, Timestamp: ts})
	if err != nil {
		t.Fatalf("add entry %q: %v", name, err)
	}
	return e
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	if err := s.db.Get(&version, "PRAGMA user_version"); err != nil {
		t.Fatal(err)
	}
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/calories.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	addEntry(t, s, "2024-01-01", "Apple", 1, 95, 1)
	s.Close()

	// Reopen: data survives and migration is not re-run destructively.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	entries, err := s2.ListEntriesForDate("2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected persisted entry, got %d", len(entries))
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestSeededSettings(t *testing.T) {
	s := newTestStore(t)
	want := map[string]string{
		KeyMinGoal:              "0",
		KeyMaxGoal:              "0",
		KeyReminders:            "[]",
		KeyWeekStart:            "sunday",
		KeyNotificationsEnabled: "true",
		KeyLastResetDate:        "",
	}
	for k, v := range want {
		got, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("get %s: %v", k, err)
		}
		if got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

// ============================================================
// Entries
// ============================================================

func TestAddEntry(t *testing.T) {
	s := newTestStore(t)
	e := addEntry(t, s, "2024-01-15", "  Toast  ", 2, 80, 0)

	if e.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	if e.Name != "Toast" {
		t.Fatalf("name should be trimmed, got %q", e.Name)
	}
	if e.Timestamp == 0 {
		t.Fatal("timestamp should be stamped")
	}
	if e.TotalCalories() != 160 {
		t.Fatalf("expected 160, got %v", e.TotalCalories())
	}
}

func TestAddEntryValidation(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		name string
		e    CalorieEntry
		code string
	}{
		{"empty name", CalorieEntry{Date: "2024-01-01", Name: "  ", Quantity: 1, CaloriesPerUnit: 1}, "entry_name"},
		{"zero quantity", CalorieEntry{Date: "2024-01-01", Name: "x", Quantity: 0, CaloriesPerUnit: 1}, "entry_numbers"},
		{"negative per unit", CalorieEntry{Date: "2024-01-01", Name: "x", Quantity: 1, CaloriesPerUnit: -5}, "entry_numbers"},
		{"NaN", CalorieEntry{Date: "2024-01-01", Name: "x", Quantity: math.NaN(), CaloriesPerUnit: 1}, "entry_numbers"},
		{"bad date", CalorieEntry{Date: "01/01/2024", Name: "x", Quantity: 1, CaloriesPerUnit: 1}, "entry_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddEntry(tt.e)
			var ae *apperr.Error
			if !errors.As(err, &ae) {
				t.Fatalf("expected *apperr.Error, got %v", err)
			}
			if ae.Type != apperr.TypeValidation || ae.Code != tt.code {
				t.Fatalf("got %s/%s, want validation/%s", ae.Type, ae.Code, tt.code)
			}
		})
	}

	dates, _ := s.DatesWithEntries()
	if len(dates) != 0 {
		t.Fatal("rejected entries must not be persisted")
	}
}

func TestCheckConstraint(t *testing.T) {
	s := newTestStore(t)
	_, err := s.db.Exec(
		`INSERT INTO calorie_entries (date, name, quantity, calories_per_unit, timestamp) VALUES (?, ?, ?, ?, ?)`,
		"2024-01-01", "bad", -1, 10, 1,
	)
	if err == nil {
		t.Fatal("expected CHECK constraint to reject negative quantity")
	}
}

func TestTotalForDate(t *testing.T) {
	s := newTestStore(t)
	// 2 × 80 + 1 × 230 = 390
	addEntry(t, s, "2024-01-15", "Toast", 2, 80, 1)
	addEntry(t, s, "2024-01-15", "Latte", 1, 230, 2)
	addEntry(t, s, "2024-01-16", "Soup", 1, 500, 3)

	total, err := s.TotalForDate("2024-01-15")
	if err != nil {
		t.Fatal(err)
	}
	if total != 390 {
		t.Fatalf("expected 390, got %v", total)
	}

	total, err = s.TotalForDate("2024-01-17")
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("expected 0 for empty day, got %v", total)
	}
}

func TestListEntriesForDateOrder(t *testing.T) {
	s := newTestStore(t)
	addEntry(t, s, "2024-01-15", "Dinner", 1, 700, 300)
	addEntry(t, s, "2024-01-15", "Breakfast", 1, 300, 100)
	addEntry(t, s, "2024-01-15", "Lunch", 1, 500, 200)

	entries, err := s.ListEntriesForDate("2024-01-15")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"Breakfast", "Lunch", "Dinner"}
	for i, e := range entries {
		if e.Name != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.Name, want[i])
		}
	}
	if total, _ := s.TotalForDate("2024-01-15"); total != 1500 {
		t.Fatalf("total: %v", total)
	}
}

func TestUpdateEntry(t *testing.T) {
	s := newTestStore(t)
	e := addEntry(t, s, "2024-01-15", "Toast", 2, 80, 10)

	e.Name = "Rye toast"
	e.Quantity = 3
	if err := s.UpdateEntry(*e); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetEntry(e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Rye toast" || got.TotalCalories() != 240 {
		t.Fatalf("unexpected entry after update: %+v", got)
	}
	if got.Date != "2024-01-15" || got.Timestamp != 10 {
		t.Fatal("update must keep date and timestamp")
	}

	e.Quantity = 0
	if err := s.UpdateEntry(*e); !apperr.IsType(err, apperr.TypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteEntry(t *testing.T) {
	s := newTestStore(t)
	e := addEntry(t, s, "2024-01-15", "Toast", 1, 80, 1)

	if err := s.DeleteEntry(e.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetEntry(e.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
	if err := s.DeleteEntry(e.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("second delete: expected ErrEntryNotFound, got %v", err)
	}
	if err := s.UpdateEntry(*e); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("update of deleted entry: expected ErrEntryNotFound, got %v", err)
	}
}

func TestDatesWithEntries(t *testing.T) {
	s := newTestStore(t)
	addEntry(t, s, "2024-01-10", "a", 1, 1, 1)
	addEntry(t, s, "2024-01-12", "b", 1, 1, 2)
	addEntry(t, s, "2024-01-12", "c", 1, 1, 3)
	addEntry(t, s, "2023-12-31", "d", 1, 1, 4)

	dates, err := s.DatesWithEntries()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2024-01-12", "2024-01-10", "2023-12-31"}
	if len(dates) != len(want) {
		t.Fatalf("got %v, want %v", dates, want)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("got %v, want %v", dates, want)
		}
	}
}

func TestDailyTotals(t *testing.T) {
	s := newTestStore(t)
	addEntry(t, s, "2024-01-31", "outside", 1, 999, 1)
	addEntry(t, s, "2024-02-01", "a", 2, 100, 2)
	addEntry(t, s, "2024-02-01", "b", 1, 50, 3)
	addEntry(t, s, "2024-02-29", "c", 1, 1800, 4)
	addEntry(t, s, "2024-03-01", "outside", 1, 999, 5)

	totals, err := s.DailyTotals("2024-02-01", "2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 days, got %+v", totals)
	}
	if totals[0].Date != "2024-02-01" || totals[0].Total != 250 || totals[0].EntryCount != 2 {
		t.Errorf("first day: %+v", totals[0])
	}
	m := TotalsByDate(totals)
	if m["2024-02-29"] != 1800 {
		t.Errorf("leap day total: %v", m["2024-02-29"])
	}
}

func TestListEntriesFilter(t *testing.T) {
	s := newTestStore(t)
	addEntry(t, s, "2024-01-01", "a", 1, 1, 1)
	addEntry(t, s, "2024-01-02", "b", 1, 1, 2)
	addEntry(t, s, "2024-01-03", "c", 1, 1, 3)

	all, err := s.ListEntries(EntryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Date != "2024-01-03" {
		t.Fatalf("expected newest date first, got %+v", all)
	}

	ranged, _ := s.ListEntries(EntryFilter{From: "2024-01-02", To: "2024-01-03"})
	if len(ranged) != 1 || ranged[0].Name != "b" {
		t.Fatalf("range filter: %+v", ranged)
	}

	limited, _ := s.ListEntries(EntryFilter{Limit: 2})
	if len(limited) != 2 {
		t.Fatalf("limit: %d", len(limited))
	}
}

func TestDeleteEntriesForDate(t *testing.T) {
	s := newTestStore(t)
	addEntry(t, s, "2024-01-01", "a", 1, 1, 1)
	addEntry(t, s, "2024-01-01", "b", 1, 1, 2)
	addEntry(t, s, "2024-01-02", "c", 1, 1, 3)

	n, err := s.DeleteEntriesForDate("2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
	dates, _ := s.DatesWithEntries()
	if len(dates) != 1 || dates[0] != "2024-01-02" {
		t.Fatalf("remaining dates: %v", dates)
	}

	if err := s.DeleteAllEntries(); err != nil {
		t.Fatal(err)
	}
	dates, _ = s.DatesWithEntries()
	if len(dates) != 0 {
		t.Fatalf("expected no dates, got %v", dates)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettings(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetSetting(KeyWeekStart, "monday"); err != nil {
		t.Fatal(err)
	}
	v, err := s.GetSetting(KeyWeekStart)
	if err != nil {
		t.Fatal(err)
	}
	if v != "monday" {
		t.Fatalf("expected monday, got %q", v)
	}

	if _, err := s.GetSetting("nonexistent"); err == nil {
		t.Fatal("expected error for missing key")
	}

	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 6 {
		t.Fatalf("expected 6 settings, got %d", len(all))
	}
}

func TestEnsureSetting(t *testing.T) {
	s := newTestStore(t)

	// Existing keys are left alone.
	if err := s.EnsureSetting(KeyWeekStart, "monday"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.GetSetting(KeyWeekStart); v != "sunday" {
		t.Fatalf("EnsureSetting overwrote existing value: %q", v)
	}

	if err := s.EnsureSetting("custom", "x"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.GetSetting("custom"); v != "x" {
		t.Fatalf("expected new key to be stored, got %q", v)
	}
}

func TestDefaultsRestoredOnOpen(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(KeyWeekStart, "monday")
	if _, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, KeyReminders); err != nil {
		t.Fatal(err)
	}

	if err := s.ensureDefaults(); err != nil {
		t.Fatal(err)
	}
	if v, err := s.GetSetting(KeyReminders); err != nil || v != "[]" {
		t.Fatalf("missing default not restored: %q, %v", v, err)
	}
	if v, _ := s.GetSetting(KeyWeekStart); v != "monday" {
		t.Fatalf("user value overwritten: %q", v)
	}
}

func TestGetBool(t *testing.T) {
	s := newTestStore(t)
	if !s.GetBool(KeyNotificationsEnabled, false) {
		t.Fatal("seeded value is true")
	}
	s.SetSetting(KeyNotificationsEnabled, "nope")
	if !s.GetBool(KeyNotificationsEnabled, true) {
		t.Fatal("invalid value should fall back")
	}
	if s.GetBool("missing", false) {
		t.Fatal("missing key should fall back")
	}
}

// ============================================================
// Goal
// ============================================================

func TestGoalDefaultsToUnset(t *testing.T) {
	s := newTestStore(t)
	r, err := s.GetGoal()
	if err != nil {
		t.Fatal(err)
	}
	if r.Configured() {
		t.Fatalf("fresh store should have no goal, got %+v", r)
	}
}

func TestSetGoal(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetGoal(goal.Range{Min: 1800, Max: 2200}); err != nil {
		t.Fatal(err)
	}
	r, err := s.GetGoal()
	if err != nil {
		t.Fatal(err)
	}
	if r.Min != 1800 || r.Max != 2200 {
		t.Fatalf("unexpected goal %+v", r)
	}

	// Invalid goals leave the stored one untouched.
	if err := s.SetGoal(goal.Range{Min: 2500, Max: 2000}); !apperr.IsType(err, apperr.TypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := s.SetGoal(goal.Range{Min: 0, Max: 2000}); err == nil {
		t.Fatal("expected error for zero minimum")
	}
	r, _ = s.GetGoal()
	if r.Min != 1800 || r.Max != 2200 {
		t.Fatalf("goal changed after rejected update: %+v", r)
	}
}

func TestGetGoalCorrupt(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(KeyMinGoal, "abc")
	r, err := s.GetGoal()
	if err != nil {
		t.Fatal(err)
	}
	if r.Configured() {
		t.Fatalf("corrupt goal should read as unset, got %+v", r)
	}
}

func TestGetGoalOutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max string
	}{
		{"min above max", "500", "400"},
		{"min equals max", "400", "400"},
		{"negative bound", "-100", "200"},
		{"only max set", "0", "2000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			s.SetSetting(KeyMinGoal, tt.min)
			s.SetSetting(KeyMaxGoal, tt.max)
			r, err := s.GetGoal()
			if err != nil {
				t.Fatal(err)
			}
			if r != (goal.Range{}) {
				t.Fatalf("invalid stored goal should read as unset, got %+v", r)
			}
		})
	}
}

func TestPositive(t *testing.T) {
	for _, f := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if Positive(f) {
			t.Errorf("Positive(%v) = true", f)
		}
	}
	if !Positive(0.5) {
		t.Fatal("0.5 is positive")
	}
}
