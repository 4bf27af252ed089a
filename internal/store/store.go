package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/sadopc/calories/internal/logger"
)

const currentVersion = 1

// Setting keys.
const (
	KeyMinGoal              = "min_goal"
	KeyMaxGoal              = "max_goal"
	KeyReminders            = "reminders"
	KeyWeekStart            = "week_start"
	KeyNotificationsEnabled = "notifications_enabled"
	KeyLastResetDate        = "last_reset_date"
)

// defaultSettings are seeded on every open; existing values are kept.
var defaultSettings = []Setting{
	{Key: KeyMinGoal, Value: "0"},
	{Key: KeyMaxGoal, Value: "0"},
	{Key: KeyReminders, Value: "[]"},
	{Key: KeyWeekStart, Value: "sunday"},
	{Key: KeyNotificationsEnabled, Value: "true"},
	{Key: KeyLastResetDate, Value: ""},
}

type Store struct {
	db *sqlx.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.ensureDefaults(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.Get(&version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	if err == nil {
		logger.Info("database migrated", "from", version, "to", currentVersion)
	}
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS calorie_entries (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		date              TEXT NOT NULL,
		name              TEXT NOT NULL,
		quantity          REAL NOT NULL CHECK (quantity > 0),
		calories_per_unit REAL NOT NULL CHECK (calories_per_unit > 0),
		timestamp         INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_date ON calorie_entries(date);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

func (s *Store) ensureDefaults() error {
	for _, d := range defaultSettings {
		if err := s.EnsureSetting(d.Key, d.Value); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDBPath returns ~/.config/calories/calories.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "calories", "calories.db"), nil
}
