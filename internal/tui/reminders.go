package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/calories/internal/reminder"
)

type remindersModel struct {
	manager *reminder.Manager
	width   int
	height  int

	reminders []reminder.Reminder
	cursor    int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formTime    *string
	formMessage *string
}

func newRemindersModel(m *reminder.Manager) remindersModel {
	clock, msg := "", ""
	return remindersModel{
		manager:     m,
		formTime:    &clock,
		formMessage: &msg,
	}
}

func (r *remindersModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type remindersDataMsg struct {
	reminders []reminder.Reminder
}

func (r remindersModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return remindersDataMsg{reminders: r.manager.List()}
	}
}

func (r remindersModel) update(msg tea.Msg) (remindersModel, tea.Cmd) {
	if msg, ok := msg.(remindersDataMsg); ok {
		r.reminders = msg.reminders
		r.cursor = clamp(r.cursor, 0, max(0, len(r.reminders)-1))
		return r, nil
	}

	if r.formActive && r.form != nil {
		return r.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if r.cursor > 0 {
				r.cursor--
			}
		case key.Matches(msg, keys.Down):
			if r.cursor < len(r.reminders)-1 {
				r.cursor++
			}
		case key.Matches(msg, keys.New):
			return r.showForm()
		case key.Matches(msg, keys.Delete):
			if len(r.reminders) > 0 {
				return r, r.deleteReminder(r.reminders[r.cursor])
			}
		}
	}
	return r, nil
}

func validateClock(s string) error {
	_, err := reminder.Parse(s, "")
	return err
}

func (r remindersModel) showForm() (remindersModel, tea.Cmd) {
	*r.formTime = ""
	*r.formMessage = ""

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Time (HH:MM)").Placeholder("08:00").Value(r.formTime).Validate(validateClock),
			huh.NewInput().Title("Message").Placeholder(reminder.DefaultMessage).Value(r.formMessage),
		),
	).WithShowHelp(true).WithShowErrors(true)

	r.formActive = true
	return r, r.form.Init()
}

func (r remindersModel) updateForm(msg tea.Msg) (remindersModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			r.formActive = false
			r.form = nil
			return r, nil
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted {
		r.formActive = false
		rem, err := reminder.Parse(*r.formTime, *r.formMessage)
		if err != nil {
			return r, func() tea.Msg { return errStatus("parse reminder", err) }
		}
		return r, r.addReminder(rem)
	}

	return r, cmd
}

func (r remindersModel) addReminder(rem reminder.Reminder) tea.Cmd {
	return func() tea.Msg {
		if err := r.manager.Add(rem); err != nil {
			return errStatus("add reminder", err)
		}
		return remindersChangedMsg{text: "Reminder set for " + rem.TimeString()}
	}
}

func (r remindersModel) deleteReminder(rem reminder.Reminder) tea.Cmd {
	return func() tea.Msg {
		if err := r.manager.Delete(rem.ID()); err != nil {
			return errStatus("delete reminder", err)
		}
		return remindersChangedMsg{text: "Reminder at " + rem.TimeString() + " removed"}
	}
}

func (r remindersModel) view() string {
	w := r.width - 4

	if r.formActive && r.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Reminder"), "", r.form.View()),
		)
	}

	title := titleStyle.Render("Daily Reminders")
	if len(r.reminders) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No reminders set. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")
	for i, rem := range r.reminders {
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s  %s", cursor, rem.TimeString(), rem.Message)))
	}
	rows = append(rows, "", mutedStyle.Render("  n: new  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
