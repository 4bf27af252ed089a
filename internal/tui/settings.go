package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/calories/internal/notify"
	"github.com/sadopc/calories/internal/store"
)

type settingsModel struct {
	store  *store.Store
	center *notify.Center
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	confirmReset bool

	// Form values as pointers (survive value copies)
	weekStart     *string
	notifications *bool
}

func newSettingsModel(s *store.Store, c *notify.Center) settingsModel {
	ws, on := "", false
	return settingsModel{
		store:         s,
		center:        c,
		weekStart:     &ws,
		notifications: &on,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings()
		if err != nil {
			return errStatus("load settings", err)
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(settingsDataMsg); ok {
		s.settings = msg.settings
		return s, nil
	}

	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.confirmReset {
			s.confirmReset = false
			if key.Matches(msg, keys.Confirm) {
				return s, s.resetEntries()
			}
			return s, nil
		}
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		case key.Matches(msg, keys.Delete):
			s.confirmReset = true
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.weekStart = s.getVal(store.KeyWeekStart, "sunday")
	*s.notifications = s.store.GetBool(store.KeyNotificationsEnabled, true)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Sunday", "sunday"),
					huh.NewOption("Monday", "monday"),
				).Value(s.weekStart),
			huh.NewConfirm().Title("Reminder notifications").
				Affirmative("On").
				Negative("Off").
				Value(s.notifications),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.saveSettings(*s.weekStart, *s.notifications)
	}

	return s, cmd
}

func (s settingsModel) saveSettings(weekStart string, notifications bool) tea.Cmd {
	return func() tea.Msg {
		if err := s.store.SetSetting(store.KeyWeekStart, weekStart); err != nil {
			return errStatus("save week start", err)
		}
		if err := s.store.SetSetting(store.KeyNotificationsEnabled, strconv.FormatBool(notifications)); err != nil {
			return errStatus("save notifications", err)
		}
		s.center.SetAllowed(notifications)
		return settingsSavedMsg{}
	}
}

func (s settingsModel) resetEntries() tea.Cmd {
	return func() tea.Msg {
		if err := s.store.DeleteAllEntries(); err != nil {
			return errStatus("delete all entries", err)
		}
		return entriesChangedMsg{text: "All entries deleted"}
	}
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(settingLabel(setting.Key))
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	if s.confirmReset {
		rows = append(rows, warningStyle.Render("Delete ALL logged entries? y: yes  any key: no"))
	} else {
		rows = append(rows, mutedStyle.Render("enter: edit settings  d: delete all entries"))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

var settingLabels = map[string]string{
	store.KeyMinGoal:              "Minimum goal",
	store.KeyMaxGoal:              "Maximum goal",
	store.KeyReminders:            "Reminders",
	store.KeyWeekStart:            "Week starts on",
	store.KeyNotificationsEnabled: "Notifications",
	store.KeyLastResetDate:        "Last day rollover",
}

func settingLabel(k string) string {
	if l, ok := settingLabels[k]; ok {
		return l
	}
	return k
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.KeyMinGoal, store.KeyMaxGoal:
		if n, err := strconv.Atoi(v); err == nil {
			if n <= 0 {
				return "not set"
			}
			return fmt.Sprintf("%d kcal", n)
		}
	case store.KeyNotificationsEnabled:
		if b, err := strconv.ParseBool(v); err == nil {
			if b {
				return "on"
			}
			return "off"
		}
	case store.KeyReminders:
		return "see Reminders tab"
	case store.KeyLastResetDate:
		if v == "" {
			return "never"
		}
	}
	return v
}
