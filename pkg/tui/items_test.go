package tui

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/hanzalatafzeel/path-craft/pkg/api"
	"github.com/hanzalatafzeel/path-craft/pkg/session"
)

type stubBackend struct {
	goals    []api.Goal
	tasks    map[int64][]api.Task
	subtasks map[int64][]api.SubTask
}

func (b *stubBackend) Goals(ctx context.Context) ([]api.Goal, error) {
	return b.goals, nil
}

func (b *stubBackend) CreateGoal(ctx context.Context, in api.GoalCreate) (*api.Goal, error) {
	g := api.Goal{ID: int64(len(b.goals) + 1), Name: in.Name, Weeks: in.Weeks, Status: api.GoalActive}
	b.goals = append(b.goals, g)
	return &g, nil
}

func (b *stubBackend) DeleteGoal(ctx context.Context, id int64) error { return nil }

func (b *stubBackend) GoalTasks(ctx context.Context, goalID int64) ([]api.Task, error) {
	return b.tasks[goalID], nil
}

func (b *stubBackend) TaskSubTasks(ctx context.Context, taskID int64) ([]api.SubTask, error) {
	return b.subtasks[taskID], nil
}

func (b *stubBackend) UpdateTaskStatus(ctx context.Context, taskID int64, status api.Status) (*api.Task, error) {
	return &api.Task{ID: taskID, Status: status}, nil
}

func (b *stubBackend) UpdateSubTaskStatus(ctx context.Context, subtaskID int64, status api.Status) (*api.SubTask, error) {
	return &api.SubTask{ID: subtaskID, Status: status}, nil
}

func setupRows(t *testing.T) (*session.Session, *stubBackend) {
	t.Helper()
	backend := &stubBackend{
		goals: []api.Goal{
			{ID: 1, Name: "Learn Go", Weeks: 4, Status: api.GoalActive},
			{ID: 2, Name: "Learn SQL", Weeks: 2, Status: api.GoalActive},
		},
		tasks: map[int64][]api.Task{
			1: {
				{ID: 10, GoalID: 1, WeekNumber: 1, Title: "Read the tour", Status: api.StatusPending},
				{ID: 11, GoalID: 1, WeekNumber: 2, Title: "Write a CLI", Status: api.StatusInProgress},
			},
		},
		subtasks: map[int64][]api.SubTask{
			10: {
				{ID: 100, TaskID: 10, Description: "Install toolchain", Status: api.StatusCompleted},
				{ID: 101, TaskID: 10, Description: "Finish basics", Status: api.StatusPending},
			},
		},
	}
	s := session.New(backend)
	require.NoError(t, s.Refresh(context.Background()))
	return s, backend
}

func TestBuildRowsCollapsedGoals(t *testing.T) {
	s, _ := setupRows(t)

	rows := BuildRows(s, map[int64]bool{})

	require.Len(t, rows, 2)
	require.Equal(t, RowGoal, rows[0].Kind)
	require.Equal(t, "Learn Go", rows[0].Title)
	require.False(t, rows[0].IsExpanded)
	require.Equal(t, "Learn SQL", rows[1].Title)
}

func TestBuildRowsExpandedGoalShowsTasks(t *testing.T) {
	s, _ := setupRows(t)

	rows := BuildRows(s, map[int64]bool{1: true})

	require.Len(t, rows, 4)
	require.Equal(t, RowTask, rows[1].Kind)
	require.Equal(t, "W1  Read the tour", rows[1].Title)
	require.Equal(t, 1, rows[1].Depth)
	require.Equal(t, "W2  Write a CLI", rows[2].Title)
	require.Equal(t, RowGoal, rows[3].Kind)
}

func TestBuildRowsExpandedTaskBeforeLoadShowsPlaceholder(t *testing.T) {
	s, _ := setupRows(t)
	s.ToggleExpanded(10)

	rows := BuildRows(s, map[int64]bool{1: true})

	require.Len(t, rows, 5)
	require.Equal(t, RowLoading, rows[2].Kind)
	require.Equal(t, 2, rows[2].Depth)
}

func TestBuildRowsExpandedTaskShowsSubtasks(t *testing.T) {
	s, _ := setupRows(t)
	s.ToggleExpanded(10)
	_, err := s.EnsureSubTasks(context.Background(), 10)
	require.NoError(t, err)

	rows := BuildRows(s, map[int64]bool{1: true})

	require.Len(t, rows, 6)
	require.Equal(t, RowSubTask, rows[2].Kind)
	require.Equal(t, "Install toolchain", rows[2].Title)
	require.Equal(t, api.StatusCompleted, rows[2].Status())
	require.Equal(t, RowSubTask, rows[3].Kind)
	require.Equal(t, RowTask, rows[4].Kind)
}

func TestRowEntityKey(t *testing.T) {
	s, _ := setupRows(t)
	s.ToggleExpanded(10)
	_, err := s.EnsureSubTasks(context.Background(), 10)
	require.NoError(t, err)

	rows := BuildRows(s, map[int64]bool{1: true})

	require.Equal(t, session.KindGoal, rows[0].EntityKind())
	require.Equal(t, int64(1), rows[0].EntityID())
	require.Equal(t, session.KindTask, rows[1].EntityKind())
	require.Equal(t, int64(10), rows[1].EntityID())
	require.Equal(t, session.KindSubTask, rows[2].EntityKind())
	require.Equal(t, int64(100), rows[2].EntityID())
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "a ver…", truncate("a very long title", 6))
}

func TestMutationLabel(t *testing.T) {
	require.Equal(t, "Started: Read the tour", mutationLabel("Read the tour", "start"))
	require.Equal(t, "Completed: Read the tour", mutationLabel("Read the tour", "complete"))
}

func TestMutationLabelTruncatesOnRunes(t *testing.T) {
	long := strings.Repeat("é", 60)
	label := mutationLabel(long, "start")

	require.True(t, utf8.ValidString(label))
	require.Contains(t, label, "…")
	require.Equal(t, "Started: "+strings.Repeat("é", 39)+"…", label)
}

func TestDetailMarkdownTaskIncludesSubtaskProgress(t *testing.T) {
	s, _ := setupRows(t)
	_, err := s.EnsureSubTasks(context.Background(), 10)
	require.NoError(t, err)

	m := Model{session: s}
	task := &api.Task{
		ID: 10, GoalID: 1, WeekNumber: 1, Title: "Read the tour",
		Status: api.StatusPending, ScheduledDate: api.NewTime(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)),
	}
	md := m.detailMarkdown(Row{Kind: RowTask, Task: task})

	require.Contains(t, md, "# Read the tour")
	require.Contains(t, md, "**Week 1**")
	require.Contains(t, md, "1/2 subtasks complete")
}
