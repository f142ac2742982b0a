package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/hanzalatafzeel/path-craft/pkg/api"
	"github.com/hanzalatafzeel/path-craft/pkg/calendar"
	"github.com/hanzalatafzeel/path-craft/pkg/config"
	"github.com/hanzalatafzeel/path-craft/pkg/lifecycle"
	"github.com/hanzalatafzeel/path-craft/pkg/session"
)

// View modes.
const (
	viewList = iota
	viewCalendar
)

// DataRefreshedMsg is sent when a full goal/task refresh completes.
type DataRefreshedMsg struct {
	Err error
}

// SubTasksLoadedMsg is sent when a lazy subtask fetch completes.
type SubTasksLoadedMsg struct {
	TaskID int64
	Err    error
}

// MutationDoneMsg is sent when a status change or goal mutation completes.
type MutationDoneMsg struct {
	Label string
	Err   error
}

// StatsLoadedMsg is sent when dashboard stats arrive.
type StatsLoadedMsg struct {
	Stats *api.DashboardStats
	Err   error
}

// ExportDoneMsg is sent when a calendar export finishes.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// ConfigChangedMsg is sent when the config file watcher detects changes.
type ConfigChangedMsg struct {
	Cfg *config.Config
}

// Form focus order for the add-goal modal.
const (
	formName = iota
	formWeeks
	formDescription
	formFieldCount
)

// Model is the Bubble Tea model for the planner TUI.
type Model struct {
	session  *session.Session
	client   *api.Client
	keys     KeyMap
	width    int
	height   int
	rows     []Row
	cursor   int
	viewMode int

	expandedGoals map[int64]bool
	stats         *api.DashboardStats

	// Calendar state
	calYear     int
	calMonth    time.Month
	calSelected time.Time

	// Modal state
	showHelpModal     bool
	showDeleteConfirm bool
	deleteTarget      *api.Goal

	// Add-goal form
	isInputMode bool
	formFocus   int
	nameInput   textinput.Model
	weeksInput  textinput.Model
	descInput   textarea.Model

	// Status message
	statusMsg     string
	statusTimeout time.Time

	// Cached glamour renderer (expensive to create)
	glamourRenderer *glamour.TermRenderer
	glamourWidth    int
}

// NewModel creates a new TUI model.
func NewModel(s *session.Session, c *api.Client) Model {
	name := textinput.New()
	name.Placeholder = "goal name"
	name.CharLimit = 128

	weeks := textinput.New()
	weeks.Placeholder = "12"
	weeks.CharLimit = 3

	desc := textarea.New()
	desc.Placeholder = "what do you want to learn?"
	desc.ShowLineNumbers = false
	desc.SetHeight(4)

	now := time.Now()
	return Model{
		session:       s,
		client:        c,
		keys:          DefaultKeyMap(),
		expandedGoals: make(map[int64]bool),
		calYear:       now.Year(),
		calMonth:      now.Month(),
		calSelected:   now,
		nameInput:     name,
		weeksInput:    weeks,
		descInput:     desc,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), m.refreshCmd(), m.statsCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		rightWidth := msg.Width - (msg.Width / 3) - 3
		if rightWidth < 20 {
			rightWidth = 20
		}
		m.getGlamourRenderer(rightWidth)
		m.rebuildRows()
		return m, tea.ClearScreen

	case DataRefreshedMsg:
		if msg.Err != nil {
			m.setStatus("Refresh failed: " + msg.Err.Error())
		} else {
			m.rebuildRows()
		}
		return m, nil

	case SubTasksLoadedMsg:
		if msg.Err != nil {
			m.setStatus("Could not load subtasks: " + msg.Err.Error())
		}
		m.rebuildRows()
		return m, nil

	case MutationDoneMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, session.ErrBusy) {
				m.setStatus("Still working on that, hold on")
			} else {
				m.setStatus("Error: " + msg.Err.Error())
			}
			return m, nil
		}
		if msg.Label != "" {
			m.setStatus(msg.Label)
		}
		m.rebuildRows()
		return m, m.statsCmd()

	case StatsLoadedMsg:
		if msg.Err == nil {
			m.stats = msg.Stats
		}
		return m, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			m.setStatus("Export failed: " + msg.Err.Error())
		} else {
			m.setStatus("Exported " + msg.Path)
		}
		return m, nil

	case ConfigChangedMsg:
		if msg.Cfg != nil {
			m.client.Token = msg.Cfg.Token
		}
		return m, tea.Batch(m.refreshCmd(), m.statsCmd())

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.isInputMode {
		return m.updateForm(msg)
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Add-goal form handling
	if m.isInputMode {
		return m.handleFormKey(msg)
	}

	// Help modal
	if m.showHelpModal {
		switch msg.String() {
		case "esc", "enter", "?", "q":
			m.showHelpModal = false
		}
		return m, nil
	}

	// Delete confirmation
	if m.showDeleteConfirm {
		switch msg.String() {
		case "y", "Y":
			goal := m.deleteTarget
			m.showDeleteConfirm = false
			m.deleteTarget = nil
			return m, m.deleteGoalCmd(goal)
		case "n", "N", "esc":
			m.showDeleteConfirm = false
			m.deleteTarget = nil
		}
		return m, nil
	}

	if m.viewMode == viewCalendar {
		return m.handleCalendarKey(msg)
	}

	// Normal (list) mode
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Right):
		return m.expandCurrent()

	case key.Matches(msg, m.keys.Left):
		m.collapseCurrent()

	case key.Matches(msg, m.keys.Enter):
		if m.cursor < len(m.rows) {
			row := m.rows[m.cursor]
			if row.IsExpanded {
				m.collapseCurrent()
			} else {
				return m.expandCurrent()
			}
		}

	case key.Matches(msg, m.keys.Start):
		return m, m.actionCmd(lifecycle.ActionStart)

	case key.Matches(msg, m.keys.Pause):
		return m, m.actionCmd(lifecycle.ActionPause)

	case key.Matches(msg, m.keys.Complete):
		return m, m.actionCmd(lifecycle.ActionComplete)

	case key.Matches(msg, m.keys.Add):
		m.enterInputMode()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Delete):
		if m.cursor < len(m.rows) && m.rows[m.cursor].Kind == RowGoal {
			m.deleteTarget = m.rows[m.cursor].Goal
			m.showDeleteConfirm = true
		}

	case key.Matches(msg, m.keys.ToggleView):
		m.viewMode = viewCalendar

	case key.Matches(msg, m.keys.Export):
		if goal := m.currentGoal(); goal != nil {
			return m, m.exportCmd(goal.ID)
		}

	case key.Matches(msg, m.keys.Reload):
		m.setStatus("Reloading")
		return m, tea.Batch(m.refreshCmd(), m.statsCmd())

	case key.Matches(msg, m.keys.Help):
		m.showHelpModal = !m.showHelpModal
	}

	return m, nil
}

func (m Model) handleCalendarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.ToggleView), msg.Type == tea.KeyEsc:
		m.viewMode = viewList

	case key.Matches(msg, m.keys.Left):
		m.moveSelectedDay(-1)

	case key.Matches(msg, m.keys.Right):
		m.moveSelectedDay(1)

	case key.Matches(msg, m.keys.Up):
		m.moveSelectedDay(-7)

	case key.Matches(msg, m.keys.Down):
		m.moveSelectedDay(7)

	case key.Matches(msg, m.keys.PrevMonth):
		m.shiftCalendarMonth(-1)

	case key.Matches(msg, m.keys.NextMonth):
		m.shiftCalendarMonth(1)

	case key.Matches(msg, m.keys.Today):
		now := time.Now()
		m.calYear, m.calMonth = now.Year(), now.Month()
		m.calSelected = now

	case key.Matches(msg, m.keys.Reload):
		m.setStatus("Reloading")
		return m, tea.Batch(m.refreshCmd(), m.statsCmd())

	case key.Matches(msg, m.keys.Help):
		m.showHelpModal = !m.showHelpModal
	}
	return m, nil
}

// moveSelectedDay moves the selected date and keeps the displayed
// month following it across boundaries.
func (m *Model) moveSelectedDay(days int) {
	m.calSelected = m.calSelected.AddDate(0, 0, days)
	m.calYear, m.calMonth = m.calSelected.Year(), m.calSelected.Month()
}

// shiftCalendarMonth moves the displayed month and carries the
// selection into it, clamping the day to the month's length.
func (m *Model) shiftCalendarMonth(delta int) {
	m.calYear, m.calMonth = calendar.AddMonths(m.calYear, m.calMonth, delta)
	day := m.calSelected.Day()
	last := time.Date(m.calYear, m.calMonth, 1, 0, 0, 0, 0, time.Local).AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	m.calSelected = time.Date(m.calYear, m.calMonth, day, 0, 0, 0, 0, time.Local)
}

// expandCurrent expands the row under the cursor. Expanding a task that has
// no cached subtasks kicks off a lazy fetch.
func (m Model) expandCurrent() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.rows) {
		return m, nil
	}
	row := m.rows[m.cursor]
	switch row.Kind {
	case RowGoal:
		m.expandedGoals[row.Goal.ID] = true
		m.rebuildRows()
	case RowTask:
		if !m.session.IsExpanded(row.Task.ID) {
			m.session.ToggleExpanded(row.Task.ID)
		}
		m.rebuildRows()
		if _, ok := m.session.SubTasks(row.Task.ID); !ok {
			return m, m.loadSubTasksCmd(row.Task.ID)
		}
	}
	return m, nil
}

// collapseCurrent collapses the row under the cursor. Collapsing never
// discards cached subtasks.
func (m *Model) collapseCurrent() {
	if m.cursor >= len(m.rows) {
		return
	}
	row := m.rows[m.cursor]
	switch row.Kind {
	case RowGoal:
		delete(m.expandedGoals, row.Goal.ID)
	case RowTask:
		if m.session.IsExpanded(row.Task.ID) {
			m.session.ToggleExpanded(row.Task.ID)
		}
	}
	m.rebuildRows()
}

// currentGoal resolves the goal owning the row under the cursor.
func (m *Model) currentGoal() *api.Goal {
	if m.cursor >= len(m.rows) {
		return nil
	}
	row := m.rows[m.cursor]
	switch row.Kind {
	case RowGoal:
		return row.Goal
	case RowTask:
		goals := m.session.Goals()
		for i := range goals {
			if goals[i].ID == row.Task.GoalID {
				return &goals[i]
			}
		}
	}
	return nil
}

func (m *Model) enterInputMode() {
	m.isInputMode = true
	m.formFocus = formName
	m.nameInput.Reset()
	m.weeksInput.Reset()
	m.descInput.Reset()
	m.nameInput.Focus()
	m.weeksInput.Blur()
	m.descInput.Blur()
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.isInputMode = false
		return m, nil

	case tea.KeyTab:
		m.setFormFocus((m.formFocus + 1) % formFieldCount)
		return m, nil

	case tea.KeyShiftTab:
		m.setFormFocus((m.formFocus - 1 + formFieldCount) % formFieldCount)
		return m, nil

	case tea.KeyCtrlS:
		return m.submitForm()

	case tea.KeyEnter:
		// Enter inside the description adds a newline; elsewhere it submits.
		if m.formFocus != formDescription {
			return m.submitForm()
		}
	}
	return m.updateForm(msg)
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.formFocus {
	case formName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case formWeeks:
		m.weeksInput, cmd = m.weeksInput.Update(msg)
	case formDescription:
		m.descInput, cmd = m.descInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFormFocus(focus int) {
	m.formFocus = focus
	m.nameInput.Blur()
	m.weeksInput.Blur()
	m.descInput.Blur()
	switch focus {
	case formName:
		m.nameInput.Focus()
	case formWeeks:
		m.weeksInput.Focus()
	case formDescription:
		m.descInput.Focus()
	}
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.nameInput.Value())
	if name == "" {
		m.setStatus("Goal name is required")
		return m, nil
	}
	weeks, err := strconv.Atoi(strings.TrimSpace(m.weeksInput.Value()))
	if err != nil || weeks < 1 {
		m.setStatus("Weeks must be a positive number")
		return m, nil
	}
	in := api.GoalCreate{
		Name:        name,
		Description: strings.TrimSpace(m.descInput.Value()),
		Weeks:       weeks,
	}
	m.isInputMode = false
	m.setStatus("Creating " + name)
	return m, m.createGoalCmd(in)
}

func (m *Model) rebuildRows() {
	m.rows = BuildRows(m.session, m.expandedGoals)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// getGlamourRenderer returns a cached glamour renderer, creating one if needed
// or if the width changed.
func (m *Model) getGlamourRenderer(width int) *glamour.TermRenderer {
	if m.glamourRenderer != nil && m.glamourWidth == width {
		return m.glamourRenderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	m.glamourRenderer = r
	m.glamourWidth = width
	return r
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusTimeout = time.Now().Add(3 * time.Second)
}

// Commands

func (m Model) refreshCmd() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return DataRefreshedMsg{Err: s.Refresh(context.Background())}
	}
}

func (m Model) loadSubTasksCmd(taskID int64) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		_, err := s.EnsureSubTasks(context.Background(), taskID)
		return SubTasksLoadedMsg{TaskID: taskID, Err: err}
	}
}

// actionCmd applies a lifecycle action to the row under the cursor.
func (m Model) actionCmd(action lifecycle.Action) tea.Cmd {
	if m.cursor >= len(m.rows) {
		return nil
	}
	row := m.rows[m.cursor]
	s := m.session
	switch row.Kind {
	case RowTask:
		id := row.Task.ID
		title := row.Task.Title
		return func() tea.Msg {
			err := s.ApplyTaskAction(context.Background(), id, action)
			return MutationDoneMsg{Label: mutationLabel(title, action), Err: err}
		}
	case RowSubTask:
		id := row.SubTask.ID
		title := row.SubTask.Description
		return func() tea.Msg {
			err := s.ApplySubTaskAction(context.Background(), id, action)
			return MutationDoneMsg{Label: mutationLabel(title, action), Err: err}
		}
	}
	return nil
}

func mutationLabel(title string, action lifecycle.Action) string {
	title = truncate(title, 40)
	switch action {
	case lifecycle.ActionStart:
		return "Started: " + title
	case lifecycle.ActionPause:
		return "Paused: " + title
	case lifecycle.ActionComplete:
		return "Completed: " + title
	}
	return title
}

func (m Model) createGoalCmd(in api.GoalCreate) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		_, err := s.CreateGoal(context.Background(), in)
		return MutationDoneMsg{Label: "Created: " + in.Name, Err: err}
	}
}

func (m Model) deleteGoalCmd(goal *api.Goal) tea.Cmd {
	if goal == nil {
		return nil
	}
	s := m.session
	return func() tea.Msg {
		err := s.DeleteGoal(context.Background(), goal.ID)
		return MutationDoneMsg{Label: "Deleted: " + goal.Name, Err: err}
	}
}

func (m Model) statsCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		stats, err := c.Dashboard(context.Background())
		return StatsLoadedMsg{Stats: stats, Err: err}
	}
}

func (m Model) exportCmd(goalID int64) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		data, name, err := c.CalendarExport(context.Background(), goalID)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return ExportDoneMsg{Err: fmt.Errorf("write %s: %w", name, err)}
		}
		return ExportDoneMsg{Path: name}
	}
}
