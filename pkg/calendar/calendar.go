// Package calendar buckets tasks into a month grid for the calendar
// view. Everything here is a pure function of its inputs; nothing is
// memoized across task refreshes.
package calendar

import (
	"time"

	"github.com/hanzalatafzeel/path-craft/pkg/api"
)

// MaxTasksPerCell caps how many tasks a day cell shows before the rest
// collapse into a "+N" count.
const MaxTasksPerCell = 2

// Cell is one grid position in the month view. A blank cell pads the
// first week so day 1 lines up under its weekday column.
type Cell struct {
	Day  int       // 1-based day of month; 0 for a blank padding cell
	Date time.Time // midnight local time; zero for a blank cell
}

// Blank reports whether the cell is leading padding.
func (c Cell) Blank() bool {
	return c.Day == 0
}

// MonthGrid returns the cells for a month: leading blanks for a
// Sunday-first week, then one cell per day. There is no trailing
// padding.
func MonthGrid(year int, month time.Month) []Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	leading := int(first.Weekday()) // Sunday == 0

	cells := make([]Cell, 0, leading+daysInMonth)
	for i := 0; i < leading; i++ {
		cells = append(cells, Cell{})
	}
	for day := 1; day <= daysInMonth; day++ {
		cells = append(cells, Cell{
			Day:  day,
			Date: time.Date(year, month, day, 0, 0, 0, 0, time.Local),
		})
	}
	return cells
}

// SameDay compares two instants at calendar-day granularity in local
// time; time of day is ignored.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// TasksOn returns the tasks scheduled on the given calendar day,
// preserving input order.
func TasksOn(tasks []api.Task, date time.Time) []api.Task {
	var matched []api.Task
	for _, t := range tasks {
		if SameDay(t.ScheduledDate.Time, date) {
			matched = append(matched, t)
		}
	}
	return matched
}

// CellTasks splits a day's tasks into the visible slice and the count
// of tasks hidden behind the per-cell cap.
func CellTasks(tasks []api.Task) (visible []api.Task, overflow int) {
	if len(tasks) <= MaxTasksPerCell {
		return tasks, 0
	}
	return tasks[:MaxTasksPerCell], len(tasks) - MaxTasksPerCell
}

// AddMonths moves a (year, month) pair by delta months with calendar
// rollover, e.g. December plus one is January of the next year.
func AddMonths(year int, month time.Month, delta int) (int, time.Month) {
	d := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return d.Year(), d.Month()
}
