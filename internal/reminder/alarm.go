package reminder

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/calories/internal/logger"
)

// AlarmMsg is a tea.Msg sent when an alarm goes off.
type AlarmMsg struct {
	ID string
	At time.Time
}

// AlarmScheduler runs one goroutine per armed alarm and delivers fired
// alarms on a channel.
type AlarmScheduler struct {
	firedCh chan AlarmMsg
	stopCh  chan struct{}
	now     func() time.Time

	mu      sync.Mutex
	alarms  map[string]chan struct{}
	stopped bool
}

func NewAlarmScheduler() *AlarmScheduler {
	return &AlarmScheduler{
		firedCh: make(chan AlarmMsg, 16),
		stopCh:  make(chan struct{}),
		now:     time.Now,
		alarms:  make(map[string]chan struct{}),
	}
}

// Schedule arms id to fire at first and then every interval after that.
// A non-positive interval fires once. Re-scheduling an id replaces its alarm.
func (a *AlarmScheduler) Schedule(id string, first time.Time, every time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if cancel, ok := a.alarms[id]; ok {
		close(cancel)
	}
	cancel := make(chan struct{})
	a.alarms[id] = cancel
	go a.run(id, first, every, cancel)
	logger.Debug("alarm scheduled", "id", id, "first", first)
}

func (a *AlarmScheduler) Cancel(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cancel, ok := a.alarms[id]; ok {
		close(cancel)
		delete(a.alarms, id)
		logger.Debug("alarm cancelled", "id", id)
	}
}

// Pending returns the number of armed alarms.
func (a *AlarmScheduler) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.alarms)
}

// Stop disarms everything. The scheduler cannot be reused.
func (a *AlarmScheduler) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	close(a.stopCh)
	a.stopped = true
	a.alarms = map[string]chan struct{}{}
}

// Fired exposes the channel fired alarms are delivered on.
func (a *AlarmScheduler) Fired() <-chan AlarmMsg {
	return a.firedCh
}

// WaitForAlarm returns a tea.Cmd that blocks until the next alarm fires.
// The receiver must re-issue it after every AlarmMsg.
func (a *AlarmScheduler) WaitForAlarm() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-a.firedCh:
			return msg
		case <-a.stopCh:
			return nil
		}
	}
}

func (a *AlarmScheduler) run(id string, next time.Time, every time.Duration, cancel chan struct{}) {
	log := logger.With("alarm", id)
	for {
		timer := time.NewTimer(next.Sub(a.now()))
		select {
		case <-cancel:
			timer.Stop()
			return
		case <-a.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		log.Debug("alarm fired", "at", next)
		select {
		case a.firedCh <- AlarmMsg{ID: id, At: next}:
		case <-cancel:
			return
		case <-a.stopCh:
			return
		}

		if every <= 0 {
			a.release(id, cancel)
			return
		}
		next = advance(next, a.now(), every)
	}
}

// advance steps next forward by every until it is after now. Whole-day
// intervals move by calendar days so a daily alarm keeps its wall-clock time
// across daylight saving changes.
func advance(next, now time.Time, every time.Duration) time.Time {
	days := int(every / Daily)
	for !next.After(now) {
		if every%Daily == 0 {
			next = next.AddDate(0, 0, days)
		} else {
			next = next.Add(every)
		}
	}
	return next
}

// release forgets a one-shot alarm unless it was already replaced.
func (a *AlarmScheduler) release(id string, cancel chan struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.alarms[id] == cancel {
		delete(a.alarms, id)
	}
}
