package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/calories/internal/apperr"
	"github.com/sadopc/calories/internal/calendar"
	"github.com/sadopc/calories/internal/export"
	"github.com/sadopc/calories/internal/logger"
	"github.com/sadopc/calories/internal/notify"
	"github.com/sadopc/calories/internal/reminder"
	"github.com/sadopc/calories/internal/store"
)

// Deps are the collaborators the UI drives.
type Deps struct {
	Store     *store.Store
	Reminders *reminder.Manager
	Alarms    *reminder.AlarmScheduler
	Notify    *notify.Center

	// NotificationTitle is the title of reminder notifications.
	NotificationTitle string
	// ExportDir is where exports are written; defaults to the home directory.
	ExportDir string
	// Now defaults to time.Now.
	Now func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	deps   Deps
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	clock dayClock

	overview  overviewModel
	goals     goalsModel
	reports   reportsModel
	reminders remindersModel
	settings  settingsModel

	help    help.Model
	status  string
	isError bool
}

func NewApp(d Deps) App {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NotificationTitle == "" {
		d.NotificationTitle = "Calorie Counter Reminder"
	}
	h := help.New()
	h.ShowAll = false

	return App{
		deps:       d,
		activeView: viewOverview,
		clock:      newDayClock(d.Now),
		overview:   newOverviewModel(d.Store, d.Now),
		goals:      newGoalsModel(d.Store, d.Now),
		reports:    newReportsModel(d.Store, d.Now),
		reminders:  newRemindersModel(d.Reminders),
		settings:   newSettingsModel(d.Store, d.Notify),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.overview.Init(),
		a.goals.refresh(),
		a.recordRollover(a.clock.today),
		a.deps.Alarms.WaitForAlarm(),
		tickCmd(),
	)
}

// recordRollover stores the date the app last rolled over to.
func (a App) recordRollover(date string) tea.Cmd {
	s := a.deps.Store
	return func() tea.Msg {
		last, _ := s.GetSetting(store.KeyLastResetDate)
		if last == date {
			return nil
		}
		if err := s.SetSetting(store.KeyLastResetDate, date); err != nil {
			return errStatus("record day rollover", err)
		}
		logger.Info("day rollover", "from", last, "to", date)
		return dayChangedMsg{date: date}
	}
}

// showReminder posts the fired reminder as a notification.
func (a App) showReminder(msg reminder.AlarmMsg) tea.Cmd {
	rem, ok := a.deps.Reminders.Lookup(msg.ID)
	if !ok {
		logger.Debug("alarm for removed reminder", "id", msg.ID)
		return nil
	}
	center, title := a.deps.Notify, a.deps.NotificationTitle
	return func() tea.Msg {
		delivered, err := center.Post(notify.Notification{
			ChannelID: notify.ReminderChannelID,
			Title:     title,
			Body:      rem.Message,
		})
		if err != nil {
			return typedErrStatus("post reminder", err, apperr.TypeInternal)
		}
		return reminderShownMsg{text: rem.Message, delivered: delivered}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.overview.setSize(a.width, contentHeight)
		a.goals.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.reminders.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewOverview
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewGoals
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewReminders
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		if a.clock.tick() {
			cmds = append(cmds, a.recordRollover(a.clock.today))
		}
		return a, tea.Batch(cmds...)

	case dayChangedMsg:
		return a, tea.Batch(a.overview.loadData(), a.goals.refresh())

	case reminder.AlarmMsg:
		return a, tea.Batch(a.deps.Alarms.WaitForAlarm(), a.showReminder(msg))

	case reminderShownMsg:
		if msg.delivered {
			a.status = "⏰ " + msg.text
			a.isError = false
		}
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.isError = msg.isError
		return a, nil

	case entriesChangedMsg:
		a.status = msg.text
		a.isError = false
		a.goals.detailDate = ""
		return a, tea.Batch(a.overview.loadData(), a.goals.refresh(), a.refreshCurrentView())

	case goalSavedMsg:
		a.status = fmt.Sprintf("Goal set to %d - %d kcal", msg.goal.Min, msg.goal.Max)
		a.isError = false
		return a, tea.Batch(a.overview.loadData(), a.goals.refresh())

	case remindersChangedMsg:
		a.status = msg.text
		a.isError = false
		return a, a.reminders.refresh()

	case settingsSavedMsg:
		a.status = "Settings saved"
		a.isError = false
		return a, tea.Batch(a.settings.refresh(), a.goals.refresh())

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isError = false
		a.exportPicking = false
		return a, nil

	// Data messages always reach their view, even when another tab is active.
	case overviewDataMsg:
		var cmd tea.Cmd
		a.overview, cmd = a.overview.update(msg)
		return a, cmd
	case goalsDataMsg, dayDetailMsg:
		var cmd tea.Cmd
		a.goals, cmd = a.goals.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewOverview:
		a.overview, cmd = a.overview.update(msg)
	case viewGoals:
		a.goals, cmd = a.goals.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewReminders:
		a.reminders, cmd = a.reminders.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewOverview:
		return a.overview.formActive || a.overview.confirmDelete
	case viewGoals:
		return a.goals.modal()
	case viewReminders:
		return a.reminders.formActive
	case viewSettings:
		return a.settings.formActive || a.settings.confirmReset
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewOverview:
		return a.overview.loadData()
	case viewGoals:
		return a.goals.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewReminders:
		return a.reminders.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewOverview:
		content = a.overview.view()
	case viewGoals:
		content = a.goals.view()
	case viewReports:
		content = a.reports.view()
	case viewReminders:
		content = a.reminders.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("calories")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.isError {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	today := highlightStyle.Render(" " + formatCalories(a.overview.total))

	left := footerStyle.Render(helpView)
	right := today + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Format"), "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	s, dir, now := a.deps.Store, a.deps.ExportDir, a.deps.Now
	return func() tea.Msg {
		entries, err := s.ListEntries(store.EntryFilter{})
		if err != nil {
			return errStatus("export", err)
		}
		r, err := s.GetGoal()
		if err != nil {
			return errStatus("export", err)
		}

		if dir == "" {
			dir, _ = os.UserHomeDir()
		}
		dateStr := calendar.Format(now())

		var path string
		if format == 0 {
			path = filepath.Join(dir, fmt.Sprintf("calories-export-%s.csv", dateStr))
			err = export.ToCSV(entries, path)
		} else {
			path = filepath.Join(dir, fmt.Sprintf("calories-export-%s.json", dateStr))
			err = export.ToJSON(entries, r, path)
		}
		if err != nil {
			return typedErrStatus("write export", err, apperr.TypeInternal)
		}

		logger.Info("exported entries", "path", path, "count", len(entries))
		return exportDoneMsg{path: path}
	}
}
