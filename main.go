package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/calories/internal/config"
	"github.com/sadopc/calories/internal/logger"
	"github.com/sadopc/calories/internal/notify"
	"github.com/sadopc/calories/internal/reminder"
	"github.com/sadopc/calories/internal/store"
	"github.com/sadopc/calories/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := config.DefaultPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	log, err := logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Path:   cfg.Log.Path,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()
	log.Info("starting", "db", cfg.Database.Path)

	if wrote, err := config.SaveIfMissing(cfgPath, cfg); err != nil {
		log.Warn("could not write default config", "path", cfgPath, "error", err)
	} else if wrote {
		log.Info("wrote default config", "path", cfgPath)
	}

	s, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	if err := applyFirstRunDefaults(s, cfg); err != nil {
		return err
	}

	center := notify.NewCenter(
		s.GetBool(store.KeyNotificationsEnabled, cfg.Notifications.Enabled),
		notify.LogSink{Logger: log},
		notify.SinkFunc(func(notify.Channel, notify.Notification) error {
			// Terminal bell; stdout belongs to the UI.
			_, err := fmt.Fprint(os.Stderr, "\a")
			return err
		}),
	)
	if err := center.CreateChannel(notify.Channel{
		ID:          notify.ReminderChannelID,
		Name:        notify.ReminderChannelName,
		Description: notify.ReminderChannelDesc,
	}); err != nil {
		return err
	}

	alarms := reminder.NewAlarmScheduler()
	defer alarms.Stop()

	reminders := reminder.NewManager(reminder.NewSettingsRepository(s), alarms)
	if err := reminders.Load(); err != nil {
		return fmt.Errorf("loading reminders: %w", err)
	}

	app := tui.NewApp(tui.Deps{
		Store:             s,
		Reminders:         reminders,
		Alarms:            alarms,
		Notify:            center,
		NotificationTitle: cfg.Notifications.Title,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return err
	}
	log.Info("exiting")
	return nil
}

// applyFirstRunDefaults copies config preferences into a database that has
// never been opened by the UI. Later changes are made from the Settings view.
func applyFirstRunDefaults(s *store.Store, cfg *config.Config) error {
	last, err := s.GetSetting(store.KeyLastResetDate)
	if err != nil {
		return err
	}
	if last != "" {
		return nil
	}
	if err := s.SetSetting(store.KeyWeekStart, strings.ToLower(cfg.Calendar.WeekStart)); err != nil {
		return err
	}
	return s.SetSetting(store.KeyNotificationsEnabled, strconv.FormatBool(cfg.Notifications.Enabled))
}
