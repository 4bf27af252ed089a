package export

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sadopc/calories/internal/goal"
	"github.com/sadopc/calories/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Goal       *jsonGoal   `json:"goal,omitempty"`
	Count      int         `json:"count"`
	Days       []jsonDay   `json:"days"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonGoal struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type jsonDay struct {
	Date    string  `json:"date"`
	Total   float64 `json:"total"`
	Entries int     `json:"entries"`
	GoalMet *bool   `json:"goal_met,omitempty"`
}

type jsonEntry struct {
	ID              int64   `json:"id"`
	Date            string  `json:"date"`
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	CaloriesPerUnit float64 `json:"calories_per_unit"`
	Total           float64 `json:"total"`
	LoggedAt        string  `json:"logged_at"`
}

// ToJSON writes entries plus a per-day summary. Goal status is included only
// when r is configured.
func ToJSON(entries []store.CalorieEntry, r goal.Range, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(entries),
	}
	if r.Configured() {
		export.Goal = &jsonGoal{Min: r.Min, Max: r.Max}
	}

	days := map[string]*jsonDay{}
	for _, e := range entries {
		export.Entries = append(export.Entries, jsonEntry{
			ID:              e.ID,
			Date:            e.Date,
			Name:            e.Name,
			Quantity:        e.Quantity,
			CaloriesPerUnit: e.CaloriesPerUnit,
			Total:           e.TotalCalories(),
			LoggedAt:        e.InsertedAt().Local().Format(time.RFC3339),
		})

		d, ok := days[e.Date]
		if !ok {
			d = &jsonDay{Date: e.Date}
			days[e.Date] = d
		}
		d.Total += e.TotalCalories()
		d.Entries++
	}

	for _, d := range days {
		if met, ok := r.Met(d.Total); ok {
			d.GoalMet = &met
		}
		export.Days = append(export.Days, *d)
	}
	sort.Slice(export.Days, func(i, j int) bool { return export.Days[i].Date < export.Days[j].Date })

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
