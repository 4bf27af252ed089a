// Package goal holds the daily calorie goal range and the goal-met rule.
package goal

import (
	"strconv"
	"strings"

	"github.com/sadopc/calories/internal/apperr"
)

// Range is the user's daily calorie target window. The zero value means no
// goal has been configured.
type Range struct {
	Min int
	Max int
}

// Configured reports whether both bounds are set.
func (r Range) Configured() bool {
	return r.Min > 0 && r.Max > 0
}

// Met classifies total against the range. ok is false when no goal is
// configured, in which case the status is absent rather than "not met".
func (r Range) Met(total float64) (met, ok bool) {
	if !r.Configured() {
		return false, false
	}
	return total >= float64(r.Min) && total <= float64(r.Max), true
}

// Validate rejects non-positive bounds and Min >= Max.
func (r Range) Validate() error {
	if r.Min <= 0 || r.Max <= 0 {
		return apperr.Validation("goal_positive", "Calorie goals must be positive numbers")
	}
	if r.Min >= r.Max {
		return apperr.Validation("goal_order", "Minimum goal must be less than maximum goal")
	}
	return nil
}

// Parse builds a Range from raw form input.
func Parse(minText, maxText string) (Range, error) {
	minText = strings.TrimSpace(minText)
	maxText = strings.TrimSpace(maxText)
	if minText == "" || maxText == "" {
		return Range{}, apperr.Validation("goal_required", "Please enter both minimum and maximum calorie goals")
	}
	lo, err := strconv.Atoi(minText)
	if err != nil {
		return Range{}, apperr.Validation("goal_numeric", "Please enter valid numbers")
	}
	hi, err := strconv.Atoi(maxText)
	if err != nil {
		return Range{}, apperr.Validation("goal_numeric", "Please enter valid numbers")
	}
	r := Range{Min: lo, Max: hi}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Classify maps each date in totals to its goal-met status. The result is
// empty when no goal is configured.
func Classify(totals map[string]float64, r Range) map[string]bool {
	status := make(map[string]bool, len(totals))
	if !r.Configured() {
		return status
	}
	for date, total := range totals {
		met, _ := r.Met(total)
		status[date] = met
	}
	return status
}

// Progress returns total as a fraction of Max, clamped to [0, 1].
func (r Range) Progress(total float64) float64 {
	if r.Max <= 0 || total <= 0 {
		return 0
	}
	p := total / float64(r.Max)
	if p > 1 {
		return 1
	}
	return p
}
