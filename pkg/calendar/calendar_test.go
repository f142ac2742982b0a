package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzalatafzeel/path-craft/pkg/api"
)

func TestMonthGridAlignment(t *testing.T) {
	// April 2026: the 1st is a Wednesday, 30 days.
	cells := MonthGrid(2026, time.April)
	require.Len(t, cells, 33, "3 leading blanks + 30 days, no trailing padding")

	for i := 0; i < 3; i++ {
		assert.True(t, cells[i].Blank(), "cell %d should be padding", i)
	}
	assert.Equal(t, 1, cells[3].Day)
	assert.Equal(t, time.Wednesday, cells[3].Date.Weekday())
	assert.Equal(t, 30, cells[len(cells)-1].Day)
}

func TestMonthGridSundayStart(t *testing.T) {
	// March 2026 starts on a Sunday: no leading blanks.
	cells := MonthGrid(2026, time.March)
	require.Len(t, cells, 31)
	assert.Equal(t, 1, cells[0].Day)
}

func TestMonthGridLeapFebruary(t *testing.T) {
	cells := MonthGrid(2024, time.February)
	// Feb 1 2024 is a Thursday.
	require.Len(t, cells, 4+29)
	assert.Equal(t, 29, cells[len(cells)-1].Day)
}

func TestTasksOnIgnoresTimeOfDay(t *testing.T) {
	day := time.Date(2026, time.May, 10, 0, 0, 0, 0, time.Local)
	tasks := []api.Task{
		{ID: 1, ScheduledDate: api.NewTime(time.Date(2026, time.May, 10, 23, 59, 0, 0, time.Local))},
		{ID: 2, ScheduledDate: api.NewTime(time.Date(2026, time.May, 10, 0, 0, 1, 0, time.Local))},
		{ID: 3, ScheduledDate: api.NewTime(time.Date(2026, time.May, 9, 23, 59, 59, 0, time.Local))},
		{ID: 4, ScheduledDate: api.NewTime(time.Date(2026, time.May, 11, 0, 0, 0, 0, time.Local))},
	}

	matched := TasksOn(tasks, day)
	require.Len(t, matched, 2)
	assert.Equal(t, int64(1), matched[0].ID)
	assert.Equal(t, int64(2), matched[1].ID)
}

func TestCellTasksOverflow(t *testing.T) {
	tasks := []api.Task{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}

	visible, overflow := CellTasks(tasks)
	assert.Len(t, visible, MaxTasksPerCell)
	assert.Equal(t, 3, overflow)

	visible, overflow = CellTasks(tasks[:2])
	assert.Len(t, visible, 2)
	assert.Zero(t, overflow)

	visible, overflow = CellTasks(nil)
	assert.Empty(t, visible)
	assert.Zero(t, overflow)
}

func TestAddMonthsRollover(t *testing.T) {
	year, month := AddMonths(2025, time.December, 1)
	assert.Equal(t, 2026, year)
	assert.Equal(t, time.January, month)

	year, month = AddMonths(2026, time.January, -1)
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.December, month)

	year, month = AddMonths(2026, time.March, 14)
	assert.Equal(t, 2027, year)
	assert.Equal(t, time.May, month)
}
