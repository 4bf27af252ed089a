package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/calories/internal/store"
)

var csvHeader = []string{"ID", "Date", "Food", "Quantity", "Calories/Unit", "Total", "Logged At"}

func ToCSV(entries []store.CalorieEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range entries {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.Date,
			e.Name,
			formatNumber(e.Quantity),
			formatNumber(e.CaloriesPerUnit),
			formatNumber(e.TotalCalories()),
			e.InsertedAt().Local().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// formatNumber renders a quantity without a trailing ".0" for whole values.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
