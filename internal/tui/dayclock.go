package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/calories/internal/calendar"
)

// dayClock notices when the local calendar date changes so "today" views
// can roll over without a restart.
type dayClock struct {
	now   func() time.Time
	today string
}

func newDayClock(now func() time.Time) dayClock {
	return dayClock{now: now, today: calendar.Format(now())}
}

// tick reports whether the date changed since the previous tick.
func (c *dayClock) tick() bool {
	d := calendar.Format(c.now())
	if d == c.today {
		return false
	}
	c.today = d
	return true
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
