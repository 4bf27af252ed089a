package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/calories/internal/apperr"
	"github.com/sadopc/calories/internal/calendar"
	"github.com/sadopc/calories/internal/goal"
	"github.com/sadopc/calories/internal/store"
)

// overviewModel shows today's entries, the running total and goal progress.
type overviewModel struct {
	store  *store.Store
	now    func() time.Time
	width  int
	height int

	date    string
	entries []store.CalorieEntry
	total   float64
	goal    goal.Range
	cursor  int
	bar     progress.Model

	confirmDelete bool

	formActive bool
	form       *huh.Form
	editingID  int64 // 0 while adding

	// Form field pointers (survive value copies)
	formName *string
	formQty  *string
	formPer  *string
}

func newOverviewModel(s *store.Store, now func() time.Time) overviewModel {
	name, qty, per := "", "", ""
	return overviewModel{
		store:    s,
		now:      now,
		date:     calendar.Format(now()),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		formName: &name,
		formQty:  &qty,
		formPer:  &per,
	}
}

func (o overviewModel) Init() tea.Cmd {
	return o.loadData()
}

func (o *overviewModel) setSize(w, h int) {
	o.width = w
	o.height = h
	o.bar.Width = max(10, w-16)
}

type overviewDataMsg struct {
	date    string
	entries []store.CalorieEntry
	total   float64
	goal    goal.Range
	err     error
}

func (o overviewModel) loadData() tea.Cmd {
	date := calendar.Format(o.now())
	return func() tea.Msg {
		entries, err := o.store.ListEntriesForDate(date)
		if err != nil {
			return overviewDataMsg{date: date, err: err}
		}
		total, err := o.store.TotalForDate(date)
		if err != nil {
			return overviewDataMsg{date: date, err: err}
		}
		r, err := o.store.GetGoal()
		return overviewDataMsg{date: date, entries: entries, total: total, goal: r, err: err}
	}
}

func (o overviewModel) update(msg tea.Msg) (overviewModel, tea.Cmd) {
	// Data lands even while the form is open.
	if msg, ok := msg.(overviewDataMsg); ok {
		if msg.err != nil {
			return o, func() tea.Msg { return errStatus("load today", msg.err) }
		}
		o.date = msg.date
		o.entries = msg.entries
		o.total = msg.total
		o.goal = msg.goal
		o.cursor = clamp(o.cursor, 0, max(0, len(o.entries)-1))
		return o, nil
	}

	if o.formActive && o.form != nil {
		return o.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if o.confirmDelete {
			o.confirmDelete = false
			if key.Matches(msg, keys.Confirm) && len(o.entries) > 0 {
				return o, o.deleteEntry(o.entries[o.cursor])
			}
			return o, nil
		}

		switch {
		case key.Matches(msg, keys.Up):
			if o.cursor > 0 {
				o.cursor--
			}
		case key.Matches(msg, keys.Down):
			if o.cursor < len(o.entries)-1 {
				o.cursor++
			}
		case key.Matches(msg, keys.New):
			return o.showEntryForm(nil)
		case key.Matches(msg, keys.Edit):
			if len(o.entries) > 0 {
				e := o.entries[o.cursor]
				return o.showEntryForm(&e)
			}
		case key.Matches(msg, keys.Delete):
			if len(o.entries) > 0 {
				o.confirmDelete = true
			}
		}
	}
	return o, nil
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("Please enter a food name")
	}
	return nil
}

func validatePositive(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !store.Positive(f) {
		return errors.New("Enter a positive number")
	}
	return nil
}

func (o overviewModel) showEntryForm(e *store.CalorieEntry) (overviewModel, tea.Cmd) {
	if e == nil {
		*o.formName, *o.formQty, *o.formPer = "", "1", ""
		o.editingID = 0
	} else {
		*o.formName = e.Name
		*o.formQty = formatAmount(e.Quantity)
		*o.formPer = formatAmount(e.CaloriesPerUnit)
		o.editingID = e.ID
	}

	o.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Food").Value(o.formName).Validate(validateName),
			huh.NewInput().Title("Quantity").Value(o.formQty).Validate(validatePositive),
			huh.NewInput().Title("Calories per unit").Value(o.formPer).Validate(validatePositive),
		),
	).WithShowHelp(true).WithShowErrors(true)

	o.formActive = true
	return o, o.form.Init()
}

func (o overviewModel) updateForm(msg tea.Msg) (overviewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			o.formActive = false
			o.form = nil
			return o, nil
		}
	}

	form, cmd := o.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		o.form = f
	}

	if o.form.State == huh.StateCompleted {
		o.formActive = false
		e, err := o.formEntry()
		if err != nil {
			return o, func() tea.Msg { return errStatus("parse entry form", err) }
		}
		return o, o.saveEntry(e)
	}

	return o, cmd
}

// formEntry converts the form fields into an entry for today.
func (o overviewModel) formEntry() (store.CalorieEntry, error) {
	qty, errQ := strconv.ParseFloat(strings.TrimSpace(*o.formQty), 64)
	per, errP := strconv.ParseFloat(strings.TrimSpace(*o.formPer), 64)
	if errQ != nil || errP != nil {
		return store.CalorieEntry{}, apperr.Validation("entry_numbers", "Quantity and calories per unit must be positive numbers")
	}
	return store.CalorieEntry{
		ID:              o.editingID,
		Date:            o.date,
		Name:            *o.formName,
		Quantity:        qty,
		CaloriesPerUnit: per,
	}, nil
}

func (o overviewModel) saveEntry(e store.CalorieEntry) tea.Cmd {
	return func() tea.Msg {
		if e.ID == 0 {
			if _, err := o.store.AddEntry(e); err != nil {
				return errStatus("add entry", err)
			}
			return entriesChangedMsg{text: "Added " + strings.TrimSpace(e.Name)}
		}
		if err := o.store.UpdateEntry(e); err != nil {
			return errStatus("update entry", err)
		}
		return entriesChangedMsg{text: "Updated " + strings.TrimSpace(e.Name)}
	}
}

func (o overviewModel) deleteEntry(e store.CalorieEntry) tea.Cmd {
	return func() tea.Msg {
		if err := o.store.DeleteEntry(e.ID); err != nil {
			return errStatus("delete entry", err)
		}
		return entriesChangedMsg{text: "Deleted " + e.Name}
	}
}

func (o overviewModel) view() string {
	if o.width < 20 {
		return "Terminal too small"
	}
	w := o.width - 4

	if o.formActive && o.form != nil {
		title := titleStyle.Render("Add Food")
		if o.editingID != 0 {
			title = titleStyle.Render("Edit Food")
		}
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", o.form.View()),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, o.renderTotalPanel(w), o.renderEntriesPanel(w))
}

func (o overviewModel) renderTotalPanel(w int) string {
	day := o.date
	if t, err := calendar.Parse(o.date); err == nil {
		day = t.Format("Monday, January 2, 2006")
	}
	title := titleStyle.Render(day)
	total := totalStyle.Render(formatCalories(o.total))

	rows := []string{title, "", total}
	if !o.goal.Configured() {
		rows = append(rows, mutedStyle.Render("No goal set. Press 2 then g to set one."))
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rows = append(rows,
		mutedStyle.Render(fmt.Sprintf("Goal: %d - %d kcal", o.goal.Min, o.goal.Max)),
		o.bar.ViewAs(o.goal.Progress(o.total)),
		goalStatusLine(o.goal, o.total),
	)
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// goalStatusLine describes where total sits relative to r.
func goalStatusLine(r goal.Range, total float64) string {
	met, ok := r.Met(total)
	switch {
	case !ok:
		return ""
	case met:
		return successStyle.Render("✓ Within goal")
	case total < float64(r.Min):
		return warningStyle.Render(fmt.Sprintf("%s below minimum", formatCalories(float64(r.Min)-total)))
	default:
		return errorStyle.Render(fmt.Sprintf("%s over maximum", formatCalories(total-float64(r.Max))))
	}
}

func (o overviewModel) renderEntriesPanel(w int) string {
	title := titleStyle.Render("Entries")
	if len(o.entries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing logged today. Press n to add food."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for i, e := range o.entries {
		cursor := "  "
		style := normalItemStyle
		if i == o.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		row := fmt.Sprintf("%s%s  %-24s %s × %s = %s",
			cursor,
			e.InsertedAt().Local().Format("15:04"),
			e.Name,
			formatAmount(e.Quantity),
			formatAmount(e.CaloriesPerUnit),
			formatCalories(e.TotalCalories()),
		)
		rows = append(rows, style.Render(row))
	}
	rows = append(rows, "")
	if o.confirmDelete {
		rows = append(rows, warningStyle.Render(fmt.Sprintf("  Delete %q? y: yes  any key: no", o.entries[o.cursor].Name)))
	} else {
		rows = append(rows, mutedStyle.Render("  n: add  enter: edit  d: delete"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
