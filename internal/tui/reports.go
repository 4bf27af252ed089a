package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/calories/internal/calendar"
	"github.com/sadopc/calories/internal/goal"
	"github.com/sadopc/calories/internal/store"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

type reportsModel struct {
	store  *store.Store
	now    func() time.Time
	width  int
	height int

	mode      reportMode
	weekStart time.Weekday
	goal      goal.Range
	totals    []store.DailyTotal
	offset    int // weeks or 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newReportsModel(s *store.Store, now func() time.Time) reportsModel {
	return reportsModel{
		store:     s,
		now:       now,
		weekStart: time.Sunday,
		chart:     barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	totals    []store.DailyTotal
	goal      goal.Range
	weekStart time.Weekday
	err       error
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ws := time.Sunday
		if v, err := r.store.GetSetting(store.KeyWeekStart); err == nil {
			ws = calendar.ParseWeekStart(v)
		}
		r.weekStart = ws
		from, to := r.dateRange()
		totals, err := r.store.DailyTotals(calendar.Format(from), calendar.Format(to))
		if err != nil {
			return reportsDataMsg{err: err}
		}
		g, err := r.store.GetGoal()
		return reportsDataMsg{totals: totals, goal: g, weekStart: ws, err: err}
	}
}

// dateRange returns [from, to) for the current mode and offset.
func (r reportsModel) dateRange() (time.Time, time.Time) {
	today := calendar.Midnight(r.now())

	switch r.mode {
	case reportWeekly:
		back := (int(today.Weekday()) - int(r.weekStart) + 7) % 7
		start := today.AddDate(0, 0, -back-7*r.offset)
		return start, start.AddDate(0, 0, 7)
	default:
		end := today.AddDate(0, 0, 1-7*r.offset)
		return end.AddDate(0, 0, -7), end
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		if msg.err != nil {
			return r, func() tea.Msg { return errStatus("load report", msg.err) }
		}
		r.totals = msg.totals
		r.goal = msg.goal
		r.weekStart = msg.weekStart
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Mode):
			if r.mode == reportDaily {
				r.mode = reportWeekly
			} else {
				r.mode = reportDaily
			}
			r.offset = 0
			return r, r.refresh()
		}
	}
	return r, nil
}

// barStyle colors a day's bar by its goal status.
func barStyle(g goal.Range, total float64) lipgloss.Style {
	met, ok := g.Met(total)
	switch {
	case !ok:
		return lipgloss.NewStyle().Foreground(colorPrimary)
	case met:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	default:
		return lipgloss.NewStyle().Foreground(colorError)
	}
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	byDate := store.TotalsByDate(r.totals)
	from, to := r.dateRange()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		total := byDate[calendar.Format(d)]
		style := barStyle(r.goal, total)
		if total == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: d.Format("Mon 02"),
			Values: []barchart.BarValue{{
				Name:  "kcal",
				Value: total,
				Style: style,
			}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Last 7 days")
	weeklyTab := inactiveTabStyle.Render("Week")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Last 7 days")
	} else {
		weeklyTab = activeTabStyle.Render("Week")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate  m: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderSummaryTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	if len(r.totals) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %14s %8s  %s", "Date", "Total", "Entries", "Goal")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 48))))

	var sum float64
	var met int
	for _, t := range r.totals {
		sum += t.Total
		status := mutedStyle.Render("-")
		if ok, configured := r.goal.Met(t.Total); configured {
			if ok {
				met++
				status = successStyle.Render("✓ met")
			} else {
				status = errorStyle.Render("✗ missed")
			}
		}
		rows = append(rows, fmt.Sprintf("  %-12s %14s %8d  %s", t.Date, formatCalories(t.Total), t.EntryCount, status))
	}

	avg := sum / float64(len(r.totals))
	footer := fmt.Sprintf("  Average %s over %d logged days", formatCalories(avg), len(r.totals))
	if r.goal.Configured() {
		footer += fmt.Sprintf(", %d within goal", met)
	}
	rows = append(rows, "", highlightStyle.Render(footer))

	return strings.Join(rows, "\n")
}
