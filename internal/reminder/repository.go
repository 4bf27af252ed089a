package reminder

import (
	"encoding/json"
	"fmt"

	"github.com/sadopc/calories/internal/logger"
)

// SettingsKey is the settings row holding the JSON-encoded reminder list.
const SettingsKey = "reminders"

// Repository persists the ordered reminder list.
type Repository interface {
	Load() ([]Reminder, error)
	Save([]Reminder) error
}

// Settings is the key/value store the reminder list lives in.
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// SettingsRepository stores reminders as a JSON array in one setting.
type SettingsRepository struct {
	settings Settings
}

func NewSettingsRepository(s Settings) *SettingsRepository {
	return &SettingsRepository{settings: s}
}

// Load returns the stored list. A blob that does not decode is logged and
// treated as an empty list.
func (r *SettingsRepository) Load() ([]Reminder, error) {
	raw, err := r.settings.GetSetting(SettingsKey)
	if err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}
	if raw == "" {
		return nil, nil
	}
	var list []Reminder
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		logger.Warn("stored reminders are corrupt, ignoring", "error", err)
		return nil, nil
	}
	return list, nil
}

func (r *SettingsRepository) Save(list []Reminder) error {
	if list == nil {
		list = []Reminder{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode reminders: %w", err)
	}
	if err := r.settings.SetSetting(SettingsKey, string(data)); err != nil {
		return fmt.Errorf("save reminders: %w", err)
	}
	return nil
}
