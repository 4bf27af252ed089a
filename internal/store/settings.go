package store

import (
	"fmt"
	"strconv"

	"github.com/sadopc/calories/internal/goal"
	"github.com/sadopc/calories/internal/logger"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	if err := s.db.Get(&value, `SELECT value FROM settings WHERE key = ?`, key); err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// EnsureSetting stores value only when key has no value yet.
func (s *Store) EnsureSetting(key, value string) error {
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("ensure setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	var settings []Setting
	if err := s.db.Select(&settings, `SELECT key, value FROM settings ORDER BY key`); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// GetGoal reads the goal range. Unparsable values and bounds that break the
// goal rules are logged and treated as "no goal configured".
func (s *Store) GetGoal() (goal.Range, error) {
	minStr, err := s.GetSetting(KeyMinGoal)
	if err != nil {
		return goal.Range{}, err
	}
	maxStr, err := s.GetSetting(KeyMaxGoal)
	if err != nil {
		return goal.Range{}, err
	}
	lo, errMin := strconv.Atoi(minStr)
	hi, errMax := strconv.Atoi(maxStr)
	if errMin != nil || errMax != nil {
		logger.Warn("stored goal is not numeric", "min_goal", minStr, "max_goal", maxStr)
		return goal.Range{}, nil
	}
	r := goal.Range{Min: lo, Max: hi}
	if r == (goal.Range{}) {
		return r, nil
	}
	if err := r.Validate(); err != nil {
		logger.Warn("stored goal is invalid", "min_goal", lo, "max_goal", hi, "error", err)
		return goal.Range{}, nil
	}
	return r, nil
}

// SetGoal validates r and overwrites both bounds in one transaction.
func (s *Store) SetGoal(r goal.Range) error {
	if err := r.Validate(); err != nil {
		return err
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin set goal: %w", err)
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.Exec(upsert, KeyMinGoal, strconv.Itoa(r.Min)); err != nil {
		return fmt.Errorf("set min goal: %w", err)
	}
	if _, err := tx.Exec(upsert, KeyMaxGoal, strconv.Itoa(r.Max)); err != nil {
		return fmt.Errorf("set max goal: %w", err)
	}
	return tx.Commit()
}

// GetBool reads a boolean setting, returning fallback when missing or invalid.
func (s *Store) GetBool(key string, fallback bool) bool {
	v, err := s.GetSetting(key)
	if err != nil {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
