package tui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/calories/internal/apperr"
	"github.com/sadopc/calories/internal/goal"
	"github.com/sadopc/calories/internal/logger"
)

// viewState represents the currently active view.
type viewState int

const (
	viewOverview viewState = iota
	viewGoals
	viewReports
	viewReminders
	viewSettings
)

var viewNames = []string{"Today", "Goals", "Reports", "Reminders", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// entriesChangedMsg is sent after any write to the entry table so every view
// showing totals reloads.
type entriesChangedMsg struct {
	text string
}

type goalSavedMsg struct {
	goal goal.Range
}

type settingsSavedMsg struct{}

type remindersChangedMsg struct {
	text string
}

type reminderShownMsg struct {
	text      string
	delivered bool
}

type dayChangedMsg struct {
	date string
}

// --- Helpers ---

// errStatus logs err and turns it into a status line message. Untyped errors
// come from the store and are reported as database failures.
func errStatus(action string, err error) statusMsg {
	return typedErrStatus(action, err, apperr.TypeDatabase)
}

// typedErrStatus is errStatus with the type given to untyped errors.
func typedErrStatus(action string, err error, t apperr.Type) statusMsg {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		err = apperr.Wrap(err, t, strings.ReplaceAll(action, " ", "_"), "Could not "+action)
	}
	apperr.Log(logger.Get(), action, err)
	return statusMsg{text: apperr.UserMessage(err), isError: true}
}

// formatCalories renders a calorie amount with at most one decimal place.
func formatCalories(kcal float64) string {
	return strconv.FormatFloat(roundTenth(kcal), 'f', -1, 64) + " kcal"
}

// formatAmount renders a quantity without trailing zeros.
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func roundTenth(f float64) float64 {
	return float64(int64(f*10+0.5)) / 10
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
