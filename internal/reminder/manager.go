package reminder

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sadopc/calories/internal/apperr"
	"github.com/sadopc/calories/internal/logger"
)

// Scheduler arms and disarms alarms by id.
type Scheduler interface {
	Schedule(id string, first time.Time, every time.Duration)
	Cancel(id string)
}

var (
	ErrDuplicate = apperr.Validation("reminder_duplicate", "A reminder with this time and message already exists")
	ErrNotFound  = apperr.New(apperr.TypeNotFound, "reminder_not_found", "Reminder no longer exists")
)

// Manager owns the reminder list. Every reminder in the list has exactly one
// alarm armed in the scheduler.
type Manager struct {
	repo  Repository
	sched Scheduler
	now   func() time.Time

	mu   sync.Mutex
	list []Reminder
}

func NewManager(repo Repository, sched Scheduler) *Manager {
	return &Manager{repo: repo, sched: sched, now: time.Now}
}

// Load reads the stored list and re-arms an alarm for each reminder.
// Duplicate rows are dropped.
func (m *Manager) Load() error {
	list, err := m.repo.Load()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.list {
		m.sched.Cancel(r.ID())
	}
	m.list = nil

	seen := make(map[string]bool, len(list))
	now := m.now()
	for _, r := range list {
		if err := r.Validate(); err != nil {
			logger.Warn("skipping invalid stored reminder", "hour", r.Hour, "minute", r.Minute)
			continue
		}
		id := r.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		m.list = append(m.list, r)
		m.sched.Schedule(id, r.NextFire(now), Daily)
	}
	logger.Debug("reminders loaded", "count", len(m.list))
	return nil
}

// Add appends r, persists the list and arms a daily alarm for it.
func (m *Manager) Add(r Reminder) error {
	if r.Message == "" {
		r.Message = DefaultMessage
	}
	if err := r.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := r.ID()
	if m.indexOf(id) >= 0 {
		return ErrDuplicate
	}

	next := append(slices.Clone(m.list), r)
	if err := m.repo.Save(next); err != nil {
		return fmt.Errorf("add reminder: %w", err)
	}
	m.list = next
	m.sched.Schedule(id, r.NextFire(m.now()), Daily)
	logger.Info("reminder added", "id", id, "time", r.TimeString())
	return nil
}

// Delete removes the reminder with id and cancels its alarm only.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	next := slices.Delete(slices.Clone(m.list), i, i+1)
	if err := m.repo.Save(next); err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	m.list = next
	m.sched.Cancel(id)
	logger.Info("reminder deleted", "id", id)
	return nil
}

// List returns a copy of the reminders in insertion order.
func (m *Manager) List() []Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.list)
}

// Lookup finds the reminder with id.
func (m *Manager) Lookup(id string) (Reminder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		return m.list[i], true
	}
	return Reminder{}, false
}

func (m *Manager) indexOf(id string) int {
	return slices.IndexFunc(m.list, func(r Reminder) bool { return r.ID() == id })
}
