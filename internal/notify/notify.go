// Package notify posts user-visible notifications on named channels.
package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sadopc/calories/internal/apperr"
	"github.com/sadopc/calories/internal/logger"
)

// Reminder channel registered at startup.
const (
	ReminderChannelID   = "reminder_channel"
	ReminderChannelName = "Daily Reminders"
	ReminderChannelDesc = "Channel for daily reminder notifications"
)

var ErrUnknownChannel = apperr.New(apperr.TypeNotFound, "notify_channel", "Notification channel is not registered")

type Channel struct {
	ID          string
	Name        string
	Description string
}

type Notification struct {
	ChannelID string
	Title     string
	Body      string
}

// Sink displays a notification somewhere.
type Sink interface {
	Deliver(Channel, Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Channel, Notification) error

func (f SinkFunc) Deliver(ch Channel, n Notification) error { return f(ch, n) }

// LogSink writes notifications to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Deliver(ch Channel, n Notification) error {
	l := s.Logger
	if l == nil {
		l = logger.Get()
	}
	l.Info("notification", "channel", ch.ID, "title", n.Title, "body", n.Body)
	return nil
}

// Center holds registered channels and the notification permission.
type Center struct {
	mu       sync.RWMutex
	channels map[string]Channel
	allowed  bool
	sinks    []Sink
}

func NewCenter(allowed bool, sinks ...Sink) *Center {
	return &Center{
		channels: make(map[string]Channel),
		allowed:  allowed,
		sinks:    sinks,
	}
}

// CreateChannel registers ch. Registering an existing id updates it.
func (c *Center) CreateChannel(ch Channel) error {
	if strings.TrimSpace(ch.ID) == "" {
		return apperr.Validation("notify_channel_id", "Channel id is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels[ch.ID] = ch
	return nil
}

func (c *Center) SetAllowed(allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allowed = allowed
}

func (c *Center) Allowed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.allowed
}

// Post hands n to every sink. Without permission nothing is delivered and
// no error is returned.
func (c *Center) Post(n Notification) (delivered bool, err error) {
	c.mu.RLock()
	ch, ok := c.channels[n.ChannelID]
	allowed := c.allowed
	sinks := c.sinks
	c.mu.RUnlock()

	if !ok {
		return false, fmt.Errorf("post to %q: %w", n.ChannelID, ErrUnknownChannel)
	}
	if !allowed {
		logger.Debug("notification skipped, permission not granted", "channel", ch.ID)
		return false, nil
	}

	var errs []error
	for _, s := range sinks {
		if err := s.Deliver(ch, n); err != nil {
			errs = append(errs, err)
		}
	}
	return true, errors.Join(errs...)
}
