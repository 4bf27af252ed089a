package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/calories/internal/calendar"
	"github.com/sadopc/calories/internal/goal"
	"github.com/sadopc/calories/internal/store"
)

// goalsModel is the calendar with the goal overlay, the goal form and the
// preset picker.
type goalsModel struct {
	store  *store.Store
	now    func() time.Time
	width  int
	height int

	month     calendar.Month
	weekStart time.Weekday
	goal      goal.Range
	totals    map[string]float64
	logged    map[string]bool // every date with entries, any month
	cursorDay int

	// Day detail
	detailDate    string
	detailEntries []store.CalorieEntry
	detailTotal   float64
	confirmClear  bool

	picking      bool
	presetCursor int

	formActive bool
	form       *huh.Form
	formMin    *string
	formMax    *string
}

func newGoalsModel(s *store.Store, now func() time.Time) goalsModel {
	lo, hi := "", ""
	today := now()
	return goalsModel{
		store:     s,
		now:       now,
		month:     calendar.MonthOf(today),
		weekStart: time.Sunday,
		cursorDay: today.Day(),
		totals:    map[string]float64{},
		logged:    map[string]bool{},
		formMin:   &lo,
		formMax:   &hi,
	}
}

func (g *goalsModel) setSize(w, h int) {
	g.width = w
	g.height = h
}

type goalsDataMsg struct {
	month     calendar.Month
	totals    map[string]float64
	logged    []string
	goal      goal.Range
	weekStart time.Weekday
	err       error
}

type dayDetailMsg struct {
	date    string
	entries []store.CalorieEntry
	total   float64
	err     error
}

func (g goalsModel) refresh() tea.Cmd {
	m := g.month
	return func() tea.Msg {
		from, to := m.Range()
		totals, err := g.store.DailyTotals(from, to)
		if err != nil {
			return goalsDataMsg{month: m, err: err}
		}
		logged, err := g.store.DatesWithEntries()
		if err != nil {
			return goalsDataMsg{month: m, err: err}
		}
		r, err := g.store.GetGoal()
		if err != nil {
			return goalsDataMsg{month: m, err: err}
		}
		ws := time.Sunday
		if v, err := g.store.GetSetting(store.KeyWeekStart); err == nil {
			ws = calendar.ParseWeekStart(v)
		}
		return goalsDataMsg{month: m, totals: store.TotalsByDate(totals), logged: logged, goal: r, weekStart: ws}
	}
}

func (g goalsModel) loadDetail(date string) tea.Cmd {
	return func() tea.Msg {
		entries, err := g.store.ListEntriesForDate(date)
		if err != nil {
			return dayDetailMsg{date: date, err: err}
		}
		total, err := g.store.TotalForDate(date)
		return dayDetailMsg{date: date, entries: entries, total: total, err: err}
	}
}

func (g goalsModel) inDetail() bool { return g.detailDate != "" }

func (g goalsModel) hasEntries(date string) bool { return g.logged[date] }

// modal reports whether the view is capturing all keys.
func (g goalsModel) modal() bool {
	return g.formActive || g.picking || g.inDetail()
}

func (g goalsModel) update(msg tea.Msg) (goalsModel, tea.Cmd) {
	// Data messages land even while the goal form is open.
	switch msg := msg.(type) {
	case goalsDataMsg:
		if msg.err != nil {
			return g, func() tea.Msg { return errStatus("load calendar", msg.err) }
		}
		if msg.month != g.month {
			return g, nil
		}
		g.totals = msg.totals
		g.logged = make(map[string]bool, len(msg.logged))
		for _, d := range msg.logged {
			g.logged[d] = true
		}
		g.goal = msg.goal
		g.weekStart = msg.weekStart
		return g, nil

	case dayDetailMsg:
		if msg.err != nil {
			return g, func() tea.Msg { return errStatus("load day", msg.err) }
		}
		if len(msg.entries) == 0 {
			g.detailDate = ""
			return g, nil
		}
		g.detailDate = msg.date
		g.detailEntries = msg.entries
		g.detailTotal = msg.total
		return g, nil
	}

	if g.formActive && g.form != nil {
		return g.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case g.picking:
			return g.updatePicker(msg)
		case g.inDetail():
			return g.updateDetail(msg)
		}
		return g.updateCalendar(msg)
	}
	return g, nil
}

func (g goalsModel) updateCalendar(msg tea.KeyMsg) (goalsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Left):
		return g.moveCursor(-1)
	case key.Matches(msg, keys.Right):
		return g.moveCursor(1)
	case key.Matches(msg, keys.Up):
		return g.moveRow(-1)
	case key.Matches(msg, keys.Down):
		return g.moveRow(1)
	case key.Matches(msg, keys.PrevMonth):
		g.month = g.month.Prev()
		g.cursorDay = min(g.cursorDay, g.month.Days())
		return g, g.refresh()
	case key.Matches(msg, keys.NextMonth):
		g.month = g.month.Next()
		g.cursorDay = min(g.cursorDay, g.month.Days())
		return g, g.refresh()
	case key.Matches(msg, keys.Today):
		today := g.now()
		changed := calendar.MonthOf(today) != g.month
		g.month = calendar.MonthOf(today)
		g.cursorDay = today.Day()
		if changed {
			return g, g.refresh()
		}
	case key.Matches(msg, keys.Enter):
		return g.selectDay()
	case key.Matches(msg, keys.Goal):
		return g.showGoalForm()
	case key.Matches(msg, keys.Presets):
		g.picking = true
		g.presetCursor = 0
	}
	return g, nil
}

// moveCursor shifts the cursor by delta days, paging months at the edges.
func (g goalsModel) moveCursor(delta int) (goalsModel, tea.Cmd) {
	day := g.cursorDay + delta
	if day >= 1 && day <= g.month.Days() {
		g.cursorDay = day
		return g, nil
	}
	if day < 1 {
		g.month = g.month.Prev()
		g.cursorDay = g.month.Days() + day
	} else {
		day -= g.month.Days()
		g.month = g.month.Next()
		g.cursorDay = day
	}
	g.cursorDay = clamp(g.cursorDay, 1, g.month.Days())
	return g, g.refresh()
}

// moveRow moves the cursor one grid row, keeping its column. Past the first
// or last row it lands on the same weekday in the neighbouring month.
func (g goalsModel) moveRow(dr int) (goalsModel, tea.Cmd) {
	row, col := calendar.Position(g.month, g.weekStart, g.cursorDay)
	if day, ok := calendar.DayAt(g.month, g.weekStart, row+dr, col); ok {
		g.cursorDay = day
		return g, nil
	}
	return g.moveCursor(7 * dr)
}

func (g goalsModel) selectDay() (goalsModel, tea.Cmd) {
	return g.openDay(g.month.Date(g.cursorDay))
}

// openDay opens the detail of date, moving the calendar along with it, or
// reports why the day cannot be opened.
func (g goalsModel) openDay(date string) (goalsModel, tea.Cmd) {
	sel := calendar.Select(date, g.now(), g.hasEntries)
	if sel != calendar.SelectOpen {
		text := sel.Message()
		return g, func() tea.Msg { return statusMsg{text: text} }
	}
	t, err := calendar.Parse(date)
	if err != nil {
		return g, nil
	}
	g.cursorDay = t.Day()
	if m := calendar.MonthOf(t); m != g.month {
		g.month = m
		return g, tea.Batch(g.refresh(), g.loadDetail(date))
	}
	return g, g.loadDetail(date)
}

func (g goalsModel) updateDetail(msg tea.KeyMsg) (goalsModel, tea.Cmd) {
	if g.confirmClear {
		g.confirmClear = false
		if key.Matches(msg, keys.Confirm) {
			return g, g.clearDay(g.detailDate)
		}
		return g, nil
	}
	switch {
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Enter):
		g.detailDate = ""
		g.detailEntries = nil
	case key.Matches(msg, keys.Delete):
		g.confirmClear = true
	case key.Matches(msg, keys.Left):
		return g.stepDay(-1)
	case key.Matches(msg, keys.Right):
		return g.stepDay(1)
	}
	return g, nil
}

func (g goalsModel) stepDay(n int) (goalsModel, tea.Cmd) {
	date, err := calendar.AddDays(g.detailDate, n)
	if err != nil {
		return g, nil
	}
	return g.openDay(date)
}

func (g goalsModel) clearDay(date string) tea.Cmd {
	return func() tea.Msg {
		n, err := g.store.DeleteEntriesForDate(date)
		if err != nil {
			return errStatus("clear day", err)
		}
		return entriesChangedMsg{text: fmt.Sprintf("Deleted %d entries from %s", n, date)}
	}
}

func (g goalsModel) updatePicker(msg tea.KeyMsg) (goalsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if g.presetCursor > 0 {
			g.presetCursor--
		}
	case key.Matches(msg, keys.Down):
		if g.presetCursor < len(goal.Presets)-1 {
			g.presetCursor++
		}
	case key.Matches(msg, keys.Enter):
		g.picking = false
		return g, g.saveGoal(goal.Presets[g.presetCursor].Range)
	case key.Matches(msg, keys.Back):
		g.picking = false
	}
	return g, nil
}

func (g goalsModel) showGoalForm() (goalsModel, tea.Cmd) {
	*g.formMin, *g.formMax = "", ""
	if g.goal.Configured() {
		*g.formMin = strconv.Itoa(g.goal.Min)
		*g.formMax = strconv.Itoa(g.goal.Max)
	}

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Minimum calories").Value(g.formMin),
			huh.NewInput().Title("Maximum calories").Value(g.formMax),
		).Title("Daily goal"),
	).WithShowHelp(true).WithShowErrors(true)

	g.formActive = true
	return g, g.form.Init()
}

func (g goalsModel) updateForm(msg tea.Msg) (goalsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			g.formActive = false
			g.form = nil
			return g, nil
		}
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.formActive = false
		r, err := goal.Parse(*g.formMin, *g.formMax)
		if err != nil {
			return g, func() tea.Msg { return errStatus("parse goal", err) }
		}
		return g, g.saveGoal(r)
	}

	return g, cmd
}

func (g goalsModel) saveGoal(r goal.Range) tea.Cmd {
	return func() tea.Msg {
		if err := g.store.SetGoal(r); err != nil {
			return errStatus("save goal", err)
		}
		return goalSavedMsg{goal: r}
	}
}

func (g goalsModel) view() string {
	w := g.width - 4

	switch {
	case g.formActive && g.form != nil:
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Set Goal"), "", g.form.View()),
		)
	case g.picking:
		return g.renderPresetPicker(w)
	case g.inDetail():
		return g.renderDetail(w)
	}

	return lipgloss.JoinVertical(lipgloss.Left, g.renderCalendar(w), g.renderGoalPanel(w))
}

func (g goalsModel) renderCalendar(w int) string {
	now := g.now()
	overlay := calendar.Overlay(g.month, g.totals, g.goal, now)
	today := calendar.Format(now)

	var rows []string
	rows = append(rows, titleStyle.Render(g.month.Title()), "")

	var head []string
	for _, name := range calendar.WeekdayNames(g.weekStart) {
		head = append(head, weekdayStyle.Render(name))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, head...))

	for _, week := range calendar.Grid(g.month, g.weekStart) {
		var cells []string
		for _, c := range week {
			cells = append(cells, g.renderCell(c, overlay, today, now))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	rows = append(rows, "",
		dayMetStyle.Width(0).Render(" met ")+" "+dayMissedStyle.Width(0).Render(" missed ")+
			mutedStyle.Render("  ←↓↑→: move  [/]: month  t: today  enter: open day"),
	)
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (g goalsModel) renderCell(c calendar.Cell, overlay map[int]calendar.Status, today string, now time.Time) string {
	if c.Day == 0 {
		return dayStyle.Render("")
	}

	style := dayStyle
	switch overlay[c.Day] {
	case calendar.StatusMet:
		style = dayMetStyle
	case calendar.StatusMissed:
		style = dayMissedStyle
	default:
		if calendar.IsFuture(c.Date, now) {
			style = dayFutureStyle
		}
	}
	if c.Date == today {
		style = style.Bold(true).Underline(true)
	}
	if c.Day == g.cursorDay {
		style = style.Reverse(true)
	}
	return style.Render(strconv.Itoa(c.Day))
}

func (g goalsModel) renderGoalPanel(w int) string {
	title := titleStyle.Render("Daily Goal")
	var line string
	if g.goal.Configured() {
		line = highlightStyle.Render(fmt.Sprintf("%d - %d kcal", g.goal.Min, g.goal.Max))
	} else {
		line = mutedStyle.Render("Not set")
	}

	var met, missed int
	for _, s := range calendar.Overlay(g.month, g.totals, g.goal, g.now()) {
		if s == calendar.StatusMet {
			met++
		} else if s == calendar.StatusMissed {
			missed++
		}
	}
	summary := ""
	if met+missed > 0 {
		summary = mutedStyle.Render(fmt.Sprintf("  %d of %d logged days within goal", met, met+missed))
	}

	if n := len(g.logged); n > 0 {
		summary += mutedStyle.Render(fmt.Sprintf("  (%d days logged in total)", n))
	}

	hint := mutedStyle.Render("g: set goal  p: presets")
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title+"  "+line+summary, hint))
}

func (g goalsModel) renderDetail(w int) string {
	day := g.detailDate
	if t, err := calendar.Parse(day); err == nil {
		day = t.Format("Monday, January 2, 2006")
	}

	var rows []string
	rows = append(rows, titleStyle.Render(day), "")
	for _, e := range g.detailEntries {
		rows = append(rows, fmt.Sprintf("  %-24s %s × %s = %s",
			e.Name, formatAmount(e.Quantity), formatAmount(e.CaloriesPerUnit), formatCalories(e.TotalCalories())))
	}
	rows = append(rows, "", totalStyle.Render("Total: "+formatCalories(g.detailTotal)))
	if status := goalStatusLine(g.goal, g.detailTotal); status != "" {
		rows = append(rows, status)
	}
	rows = append(rows, "")
	if g.confirmClear {
		rows = append(rows, warningStyle.Render("  Delete every entry of this day? y: yes  any key: no"))
	} else {
		rows = append(rows, mutedStyle.Render("  ←/→: previous/next day  d: delete day  esc: back"))
	}
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (g goalsModel) renderPresetPicker(w int) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Goal Presets"), "")
	for i, p := range goal.Presets {
		cursor := "  "
		style := normalItemStyle
		if i == g.presetCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-34s %d - %d kcal", cursor, p.Name, p.Min, p.Max)))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: apply  esc: cancel"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
