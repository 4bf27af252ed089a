// Package reminder manages the list of daily reminders and keeps one alarm
// scheduled per reminder.
package reminder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/calories/internal/apperr"
)

// DefaultMessage is used when a reminder is saved without text.
const DefaultMessage = "It's time for your reminder!"

// Daily is the repeat interval of every reminder alarm.
const Daily = 24 * time.Hour

var idSpace = uuid.MustParse("6f1c2f0e-8d3a-4c55-9a57-2d1b0c6e4f10")

// Reminder is a time of day plus the text shown when it fires.
type Reminder struct {
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
	Message string `json:"message"`
}

// New validates hour and minute and fills in the default message.
func New(hour, minute int, message string) (Reminder, error) {
	r := Reminder{Hour: hour, Minute: minute, Message: strings.TrimSpace(message)}
	if r.Message == "" {
		r.Message = DefaultMessage
	}
	return r, r.Validate()
}

// Parse builds a reminder from "HH:MM" form input.
func Parse(clock, message string) (Reminder, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return Reminder{}, apperr.Validation("reminder_time", "Time must look like HH:MM")
	}
	hour, errH := strconv.Atoi(hh)
	minute, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil {
		return Reminder{}, apperr.Validation("reminder_time", "Time must look like HH:MM")
	}
	return New(hour, minute, message)
}

func (r Reminder) Validate() error {
	if r.Hour < 0 || r.Hour > 23 || r.Minute < 0 || r.Minute > 59 {
		return apperr.Validation("reminder_range", "Hour must be 0-23 and minute 0-59")
	}
	return nil
}

// ID identifies the reminder by its time and message. Two reminders with the
// same time and text share an ID.
func (r Reminder) ID() string {
	return uuid.NewSHA1(idSpace, []byte(r.TimeString()+"|"+r.Message)).String()
}

// TimeString formats the reminder time as zero-padded "HH:MM".
func (r Reminder) TimeString() string {
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
}

// NextFire returns today at HH:MM:00 in now's zone, or tomorrow at the same
// time when that moment is already before now.
func (r Reminder) NextFire(now time.Time) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), r.Hour, r.Minute, 0, 0, now.Location())
	if t.Before(now) {
		t = time.Date(now.Year(), now.Month(), now.Day()+1, r.Hour, r.Minute, 0, 0, now.Location())
	}
	return t
}
