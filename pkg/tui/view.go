package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hanzalatafzeel/path-craft/pkg/api"
	"github.com/hanzalatafzeel/path-craft/pkg/calendar"
)

const minWidth = 40
const minHeight = 10

// View implements tea.Model.
func (m Model) View() string {
	w := m.width
	h := m.height
	if w < minWidth {
		w = minWidth
	}
	if h < minHeight {
		h = minHeight
	}

	if m.showHelpModal {
		return placeOverlay(m.renderHelpModal(), w, h)
	}

	if m.showDeleteConfirm {
		return placeOverlay(m.renderDeleteModal(), w, h)
	}

	if m.isInputMode {
		return placeOverlay(m.renderAddGoalModal(), w, h)
	}

	var b strings.Builder

	b.WriteString(m.renderHeader(w))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", w))
	b.WriteString("\n")

	contentHeight := h - 4 // header + two separators + footer

	var leftWidth, rightWidth int
	var leftPanel, rightPanel string
	if m.viewMode == viewCalendar {
		// The grid gets two thirds, the day panel the rest
		leftWidth = w - w/3 - 1
		rightWidth = w - leftWidth - 1
		if rightWidth < 20 {
			rightWidth = 20
		}
		leftPanel = m.renderCalendar(leftWidth, contentHeight)
		rightPanel = m.renderDayPanel(rightWidth, contentHeight)
	} else {
		leftWidth = w / 3
		rightWidth = w - leftWidth - 1
		if leftWidth < 20 {
			leftWidth = 20
		}
		if rightWidth < 20 {
			rightWidth = 20
		}
		leftPanel = m.renderTreePanel(leftWidth, contentHeight)
		rightPanel = m.renderDetailPanel(rightWidth, contentHeight)
	}

	sep := lipgloss.NewStyle().Foreground(ColorGrayDim).Render("│")
	for i := 0; i < contentHeight; i++ {
		b.WriteString(getLine(leftPanel, i, leftWidth))
		b.WriteString(sep)
		b.WriteString(getLine(rightPanel, i, rightWidth))
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("─", w))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(w))

	return b.String()
}

func (m Model) renderHeader(width int) string {
	title := HeaderStyle.Render("PathCraft")

	stats := ""
	if m.stats != nil {
		stats = HeaderCountStyle.Render(fmt.Sprintf(
			"%d/%d goals active · %d/%d tasks done (%.0f%%) · today %d/%d",
			m.stats.ActiveGoals, m.stats.TotalGoals,
			m.stats.CompletedTasks, m.stats.TotalTasks,
			m.stats.CompletionRate,
			m.stats.TodayCompleted, m.stats.TodayTasks,
		))
	}

	status := ""
	if m.statusMsg != "" && time.Now().Before(m.statusTimeout) {
		status = "  " + lipgloss.NewStyle().Foreground(ColorCyan).Render(m.statusMsg)
	}

	gap := width - lipgloss.Width(title) - lipgloss.Width(stats) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}

	return title + strings.Repeat(" ", gap) + status + stats
}

func (m Model) renderTreePanel(width, height int) string {
	var lines []string

	if len(m.rows) == 0 {
		lines = append(lines, FooterStyle.Render("No goals yet. Press 'a' to add one."))
	}

	// Scrolling window centered on the cursor
	startIdx := 0
	endIdx := len(m.rows)
	if len(m.rows) > height {
		half := height / 2
		startIdx = m.cursor - half
		if startIdx < 0 {
			startIdx = 0
		}
		endIdx = startIdx + height
		if endIdx > len(m.rows) {
			endIdx = len(m.rows)
			startIdx = endIdx - height
			if startIdx < 0 {
				startIdx = 0
			}
		}
	}

	for i := startIdx; i < endIdx; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == m.cursor, width))
	}

	for len(lines) < height {
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderRow(row Row, isSelected bool, width int) string {
	indent := strings.Repeat(DepthIndent, row.Depth)

	if row.Kind == RowLoading {
		return indent + LoadingStyle.Render(IconSpinner+" loading subtasks")
	}

	var expandIcon string
	if row.HasChildren {
		if row.IsExpanded {
			expandIcon = IconExpanded + " "
		} else {
			expandIcon = IconCollapsed + " "
		}
	} else {
		expandIcon = "  "
	}

	var statusIcon string
	switch row.Kind {
	case RowGoal:
		statusIcon = goalStatusIcon(row.Goal.Status)
	default:
		st := row.Status()
		statusIcon = StatusStyle(st).Render(StatusIcon(st))
	}

	busy := ""
	if m.session.InFlight(row.EntityKind(), row.EntityID()) {
		busy = " " + LoadingStyle.Render(IconSpinner)
	}

	line := indent + expandIcon + statusIcon + " " + row.Title + busy

	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		line += strings.Repeat(" ", width-lineWidth)
	}

	if isSelected {
		return SelectedStyle.Render(line)
	}
	return line
}

func goalStatusIcon(s api.GoalStatus) string {
	switch s {
	case api.GoalCompleted:
		return CompleteStyle.Render(IconComplete)
	case api.GoalPaused:
		return PendingStyle.Render(IconPending)
	case api.GoalCancelled:
		return CancelledStyle.Render(IconCancelled)
	default:
		return InProgressStyle.Render(IconInProgress)
	}
}

func (m Model) renderDetailPanel(width, height int) string {
	if m.cursor >= len(m.rows) || len(m.rows) == 0 {
		return FooterStyle.Render(" Select an item to view details")
	}

	row := m.rows[m.cursor]
	if row.Kind == RowLoading {
		return FooterStyle.Render(" Loading…")
	}

	md := m.detailMarkdown(row)

	var rendered string
	if m.glamourRenderer != nil {
		var err error
		rendered, err = m.glamourRenderer.Render(md)
		if err != nil {
			rendered = md
		}
	} else {
		rendered = md
	}

	rendered = strings.TrimRight(rendered, "\n ")
	lines := strings.Split(rendered, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// detailMarkdown builds the markdown shown in the right panel for a row.
func (m Model) detailMarkdown(row Row) string {
	var md strings.Builder

	switch row.Kind {
	case RowGoal:
		g := row.Goal
		md.WriteString("# " + g.Name + "\n\n")
		md.WriteString(fmt.Sprintf("**Status:** %s | **Duration:** %d weeks\n\n", g.Status, g.Weeks))
		if !g.CreatedAt.IsZero() {
			md.WriteString("**Started:** " + g.CreatedAt.Format("Jan 2, 2006") + "\n\n")
		}
		if g.Description != "" {
			md.WriteString(g.Description + "\n")
		}

	case RowTask:
		t := row.Task
		md.WriteString("# " + t.Title + "\n\n")
		md.WriteString(fmt.Sprintf("**Week %d** | **Status:** %s", t.WeekNumber, t.Status))
		if !t.ScheduledDate.IsZero() {
			md.WriteString(" | **Scheduled:** " + t.ScheduledDate.Format("Mon, Jan 2"))
		}
		md.WriteString("\n\n")
		if t.Description != "" {
			md.WriteString(t.Description + "\n")
		}
		if subs, ok := m.session.SubTasks(t.ID); ok {
			done := 0
			for _, st := range subs {
				if st.Status == api.StatusCompleted {
					done++
				}
			}
			md.WriteString(fmt.Sprintf("\n%d/%d subtasks complete\n", done, len(subs)))
		}

	case RowSubTask:
		st := row.SubTask
		md.WriteString("# " + st.Description + "\n\n")
		md.WriteString("**Status:** " + string(st.Status))
		if !st.ScheduledDate.IsZero() {
			md.WriteString(" | **Scheduled:** " + st.ScheduledDate.Format("Mon, Jan 2"))
		}
		md.WriteString("\n")
	}

	return md.String()
}

var weekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func (m Model) renderCalendar(width, height int) string {
	var b strings.Builder

	tasks := m.session.AllTasks()
	cells := calendar.MonthGrid(m.calYear, m.calMonth)
	for len(cells)%7 != 0 {
		cells = append(cells, calendar.Cell{})
	}

	cellW := width/7 - 1
	if cellW < 8 {
		cellW = 8
	}

	title := fmt.Sprintf("%s %d", m.calMonth, m.calYear)
	b.WriteString(CalendarTitleStyle.Render(title))
	b.WriteString("\n\n")

	for _, wd := range weekdayLabels {
		b.WriteString(CalendarWeekdayStyle.Render(padCell(wd, cellW)))
		b.WriteString(" ")
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", width))
	b.WriteString("\n")

	now := time.Now()
	weeks := len(cells) / 7
	// Lines per cell: day number plus task slots plus overflow
	cellH := 1 + calendar.MaxTasksPerCell + 1

	for wk := 0; wk < weeks; wk++ {
		for line := 0; line < cellH; line++ {
			for col := 0; col < 7; col++ {
				cell := cells[wk*7+col]
				b.WriteString(m.renderCalendarCellLine(cell, tasks, line, cellW, now))
				b.WriteString(" ")
			}
			b.WriteString("\n")
		}
	}

	out := b.String()
	lines := strings.Split(out, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCalendarCellLine(cell calendar.Cell, tasks []api.Task, line, width int, now time.Time) string {
	if cell.Blank() {
		return strings.Repeat(" ", width)
	}

	dayTasks := calendar.TasksOn(tasks, cell.Date)
	visible, overflow := calendar.CellTasks(dayTasks)

	switch {
	case line == 0:
		label := padCell(fmt.Sprintf("%2d", cell.Day), width)
		// Selection wins over today when both land on the same cell
		if calendar.SameDay(cell.Date, m.calSelected) {
			return CalendarSelectedStyle.Render(label)
		}
		if calendar.SameDay(cell.Date, now) {
			return CalendarTodayStyle.Render(label)
		}
		return CalendarDayStyle.Render(label)

	case line <= len(visible):
		t := visible[line-1]
		return StatusStyle(t.Status).Render(padCell(truncate(t.Title, width), width))

	case line == calendar.MaxTasksPerCell+1 && overflow > 0:
		return CalendarOverflowStyle.Render(padCell(fmt.Sprintf("+%d more", overflow), width))
	}

	return strings.Repeat(" ", width)
}

// renderDayPanel lists every task on the selected date. The per-cell
// cap applies only to the grid; the panel shows the full day.
func (m Model) renderDayPanel(width, height int) string {
	tasks := calendar.TasksOn(m.session.AllTasks(), m.calSelected)

	var lines []string
	lines = append(lines, CalendarTitleStyle.Render(truncate(m.calSelected.Format("Monday, Jan 2"), width)))
	lines = append(lines, "")

	if len(tasks) == 0 {
		lines = append(lines, FooterStyle.Render("Nothing scheduled."))
	}
	for _, t := range tasks {
		icon := StatusStyle(t.Status).Render(StatusIcon(t.Status))
		title := truncate(fmt.Sprintf("W%d  %s", t.WeekNumber, t.Title), width-2)
		lines = append(lines, icon+" "+title)
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter(width int) string {
	help := m.keys.ShortHelp()
	if m.viewMode == viewCalendar {
		help = "←↓↑→ day  [ / ] month  t today  v list  R reload  q quit"
	}
	return FooterStyle.Render(help)
}

func (m Model) renderHelpModal() string {
	var b strings.Builder

	b.WriteString(ModalTitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().Foreground(ColorBlue).Width(16)
	descStyle := lipgloss.NewStyle().Foreground(ColorWhite)

	for _, binding := range m.keys.FullHelp() {
		b.WriteString(keyStyle.Render(binding[0]))
		b.WriteString(descStyle.Render(binding[1]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(FooterStyle.Render("Press Esc or ? to close"))

	return ModalStyle.Render(b.String())
}

func (m Model) renderDeleteModal() string {
	var b strings.Builder

	name := ""
	if m.deleteTarget != nil {
		name = m.deleteTarget.Name
	}

	b.WriteString(ModalTitleStyle.Render("Delete Goal"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Delete '%s' and all of its tasks?\n\n", name))
	b.WriteString(lipgloss.NewStyle().Foreground(ColorGreen).Render("[y]") + " Yes  ")
	b.WriteString(lipgloss.NewStyle().Foreground(ColorRed).Render("[n]") + " No")

	return ModalStyle.Render(b.String())
}

func (m Model) renderAddGoalModal() string {
	var b strings.Builder

	b.WriteString(ModalTitleStyle.Render("New Learning Goal"))
	b.WriteString("\n\n")

	b.WriteString(ModalLabelStyle.Render("Name"))
	b.WriteString(m.nameInput.View())
	b.WriteString("\n")
	b.WriteString(ModalLabelStyle.Render("Weeks"))
	b.WriteString(m.weeksInput.View())
	b.WriteString("\n")
	b.WriteString(ModalLabelStyle.Render("Description"))
	b.WriteString("\n")
	b.WriteString(m.descInput.View())
	b.WriteString("\n\n")
	b.WriteString(FooterStyle.Render("tab next field  enter/ctrl+s create  esc cancel"))

	return ModalStyle.Render(b.String())
}

// Helper functions

func padCell(s string, width int) string {
	w := lipgloss.Width(s)
	if w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 1 {
		return string(runes[:1])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func getLine(block string, idx int, width int) string {
	lines := strings.Split(block, "\n")
	if idx < len(lines) {
		line := lines[idx]
		lineWidth := lipgloss.Width(line)
		if lineWidth < width {
			return line + strings.Repeat(" ", width-lineWidth)
		}
		return line
	}
	return strings.Repeat(" ", width)
}

func placeOverlay(modal string, width, height int) string {
	modalLines := strings.Split(modal, "\n")

	topPadding := (height - len(modalLines)) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	leftPadding := (width - lipgloss.Width(modalLines[0])) / 2
	if leftPadding < 0 {
		leftPadding = 0
	}

	var result strings.Builder
	for i := 0; i < topPadding; i++ {
		result.WriteString("\n")
	}

	for _, line := range modalLines {
		result.WriteString(strings.Repeat(" ", leftPadding))
		result.WriteString(line)
		result.WriteString("\n")
	}

	return result.String()
}
