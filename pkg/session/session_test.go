package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzalatafzeel/path-craft/pkg/api"
	"github.com/hanzalatafzeel/path-craft/pkg/lifecycle"
)

// fakeBackend is a scriptable in-memory backend that counts calls.
type fakeBackend struct {
	mu sync.Mutex

	goals    []api.Goal
	tasks    map[int64][]api.Task
	subtasks map[int64][]api.SubTask

	goalsCalls    int
	taskCalls     map[int64]int
	subtaskCalls  map[int64]int
	failMutations bool
	failReads     bool

	// blockSubtasks, when set, stalls subtask fetches until released.
	blockSubtasks chan struct{}
	// blockMutations, when set, stalls status updates until released.
	blockMutations chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		tasks:        make(map[int64][]api.Task),
		subtasks:     make(map[int64][]api.SubTask),
		taskCalls:    make(map[int64]int),
		subtaskCalls: make(map[int64]int),
	}
}

var errScripted = errors.New("scripted failure")

func (f *fakeBackend) Goals(ctx context.Context) ([]api.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.goalsCalls++
	if f.failReads {
		return nil, errScripted
	}
	return append([]api.Goal(nil), f.goals...), nil
}

func (f *fakeBackend) GoalTasks(ctx context.Context, goalID int64) ([]api.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taskCalls[goalID]++
	if f.failReads {
		return nil, errScripted
	}
	return append([]api.Task(nil), f.tasks[goalID]...), nil
}

func (f *fakeBackend) TaskSubTasks(ctx context.Context, taskID int64) ([]api.SubTask, error) {
	f.mu.Lock()
	block := f.blockSubtasks
	f.subtaskCalls[taskID]++
	failed := f.failReads
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if failed {
		return nil, errScripted
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.SubTask(nil), f.subtasks[taskID]...), nil
}

func (f *fakeBackend) CreateGoal(ctx context.Context, in api.GoalCreate) (*api.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMutations {
		return nil, errScripted
	}
	goal := api.Goal{ID: int64(len(f.goals) + 1), Name: in.Name, Weeks: in.Weeks, Status: api.GoalActive}
	f.goals = append(f.goals, goal)
	return &goal, nil
}

func (f *fakeBackend) DeleteGoal(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMutations {
		return errScripted
	}
	var kept []api.Goal
	for _, g := range f.goals {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	f.goals = kept
	delete(f.tasks, id)
	return nil
}

func (f *fakeBackend) UpdateTaskStatus(ctx context.Context, taskID int64, status api.Status) (*api.Task, error) {
	f.mu.Lock()
	block := f.blockMutations
	f.mu.Unlock()
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMutations {
		return nil, errScripted
	}
	for goalID, ts := range f.tasks {
		for i, t := range ts {
			if t.ID == taskID {
				f.tasks[goalID][i].Status = status
				updated := f.tasks[goalID][i]
				return &updated, nil
			}
		}
	}
	return nil, api.ErrNotFound
}

func (f *fakeBackend) UpdateSubTaskStatus(ctx context.Context, subtaskID int64, status api.Status) (*api.SubTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMutations {
		return nil, errScripted
	}
	for taskID, subs := range f.subtasks {
		for i, sub := range subs {
			if sub.ID == subtaskID {
				f.subtasks[taskID][i].Status = status
				updated := f.subtasks[taskID][i]
				return &updated, nil
			}
		}
	}
	return nil, api.ErrNotFound
}

func seedBackend() *fakeBackend {
	f := newFakeBackend()
	f.goals = []api.Goal{{ID: 1, Name: "learn go", Weeks: 4, Status: api.GoalActive}}
	f.tasks[1] = []api.Task{
		{ID: 10, GoalID: 1, WeekNumber: 1, Title: "week one", Status: api.StatusPending},
		{ID: 11, GoalID: 1, WeekNumber: 2, Title: "week two", Status: api.StatusPending},
	}
	f.subtasks[10] = []api.SubTask{
		{ID: 100, TaskID: 10, Description: "day one", Status: api.StatusPending},
		{ID: 101, TaskID: 10, Description: "day two", Status: api.StatusPending},
	}
	f.subtasks[11] = []api.SubTask{
		{ID: 110, TaskID: 11, Description: "day one", Status: api.StatusPending},
	}
	return f
}

func setupSession(t *testing.T) (*Session, *fakeBackend) {
	t.Helper()
	f := seedBackend()
	s := New(f)
	require.NoError(t, s.Refresh(context.Background()))
	return s, f
}

func TestEnsureSubTasksFetchesOnce(t *testing.T) {
	s, f := setupSession(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		subs, err := s.EnsureSubTasks(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, subs, 2)
	}
	assert.Equal(t, 1, f.subtaskCalls[10], "repeated calls must not refetch")
}

func TestInvalidateRefetchesOnlyThatTask(t *testing.T) {
	s, f := setupSession(t)
	ctx := context.Background()

	_, err := s.EnsureSubTasks(ctx, 10)
	require.NoError(t, err)
	_, err = s.EnsureSubTasks(ctx, 11)
	require.NoError(t, err)

	f.mu.Lock()
	f.subtasks[10] = append(f.subtasks[10], api.SubTask{ID: 102, TaskID: 10, Description: "day three"})
	f.mu.Unlock()

	require.NoError(t, s.InvalidateSubTasks(ctx, 10))

	subs, ok := s.SubTasks(10)
	require.True(t, ok)
	assert.Len(t, subs, 3)
	assert.Equal(t, 2, f.subtaskCalls[10], "exactly one extra fetch after invalidate")
	assert.Equal(t, 1, f.subtaskCalls[11], "other tasks' caches untouched")
}

func TestConcurrentEnsureCoalesces(t *testing.T) {
	s, f := setupSession(t)
	ctx := context.Background()

	release := make(chan struct{})
	f.mu.Lock()
	f.blockSubtasks = release
	f.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			subs, err := s.EnsureSubTasks(ctx, 10)
			assert.NoError(t, err)
			assert.Len(t, subs, 2)
		}()
	}

	// Give the goroutines time to pile onto the shared fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, f.subtaskCalls[10], "duplicate in-flight fetches must coalesce")
}

func TestCollapseKeepsCache(t *testing.T) {
	s, f := setupSession(t)
	ctx := context.Background()

	assert.True(t, s.ToggleExpanded(10))
	_, err := s.EnsureSubTasks(ctx, 10)
	require.NoError(t, err)

	assert.False(t, s.ToggleExpanded(10), "collapsed")
	_, ok := s.SubTasks(10)
	assert.True(t, ok, "collapsing must not clear the cache")

	assert.True(t, s.ToggleExpanded(10))
	_, err = s.EnsureSubTasks(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, f.subtaskCalls[10])
}

func TestTaskActionCoarseRefetch(t *testing.T) {
	s, f := setupSession(t)
	ctx := context.Background()

	goalsBefore := f.goalsCalls
	require.NoError(t, s.ApplyTaskAction(ctx, 10, lifecycle.ActionStart))

	tasks := s.Tasks(1)
	require.Len(t, tasks, 2)
	assert.Equal(t, api.StatusInProgress, tasks[0].Status)
	assert.Equal(t, goalsBefore+1, f.goalsCalls, "task mutation refetches the whole collection")
	assert.False(t, s.InFlight(KindTask, 10))
}

func TestSubTaskActionFineGrainedRefetch(t *testing.T) {
	s, f := setupSession(t)
	ctx := context.Background()

	_, err := s.EnsureSubTasks(ctx, 10)
	require.NoError(t, err)
	goalsBefore := f.goalsCalls

	require.NoError(t, s.ApplySubTaskAction(ctx, 100, lifecycle.ActionComplete))

	subs, ok := s.SubTasks(10)
	require.True(t, ok)
	assert.Equal(t, api.StatusCompleted, subs[0].Status)
	assert.Equal(t, goalsBefore, f.goalsCalls, "subtask mutation must not refetch goals")
	assert.Equal(t, 2, f.subtaskCalls[10], "only the owning task's subtasks refetch")
}

func TestIllegalActionNeverReachesBackend(t *testing.T) {
	s, f := setupSession(t)
	ctx := context.Background()

	require.NoError(t, s.ApplyTaskAction(ctx, 10, lifecycle.ActionComplete))

	goalsBefore := f.goalsCalls
	err := s.ApplyTaskAction(ctx, 10, lifecycle.ActionStart)
	assert.ErrorIs(t, err, lifecycle.ErrUnavailable)
	assert.Equal(t, goalsBefore, f.goalsCalls, "rejected locally, no request issued")
}

func TestFailedMutationLeavesStateUnchanged(t *testing.T) {
	s, f := setupSession(t)
	ctx := context.Background()

	f.mu.Lock()
	f.failMutations = true
	f.mu.Unlock()

	err := s.ApplyTaskAction(ctx, 10, lifecycle.ActionStart)
	require.Error(t, err)

	tasks := s.Tasks(1)
	assert.Equal(t, api.StatusPending, tasks[0].Status, "cached status untouched on failure")
	assert.False(t, s.InFlight(KindTask, 10), "in-flight flag cleared on failure")
}

func TestDuplicateMutationRejected(t *testing.T) {
	s, f := setupSession(t)
	ctx := context.Background()

	release := make(chan struct{})
	f.mu.Lock()
	f.blockMutations = release
	f.mu.Unlock()

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- s.ApplyTaskAction(ctx, 10, lifecycle.ActionStart)
	}()
	<-started
	// Wait until the first mutation holds the in-flight flag.
	require.Eventually(t, func() bool {
		return s.InFlight(KindTask, 10)
	}, time.Second, time.Millisecond)

	err := s.ApplyTaskAction(ctx, 10, lifecycle.ActionStart)
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.InFlight(KindTask, 10))
}

func TestDeleteGoalDropsCaches(t *testing.T) {
	s, f := setupSession(t)
	ctx := context.Background()

	_, err := s.EnsureSubTasks(ctx, 10)
	require.NoError(t, err)
	s.ToggleExpanded(10)

	require.NoError(t, s.DeleteGoal(ctx, 1))

	assert.Empty(t, s.Goals())
	_, ok := s.SubTasks(10)
	assert.False(t, ok, "subtask cache for deleted goal's tasks dropped")
	assert.False(t, s.IsExpanded(10))
	assert.Equal(t, 1, f.subtaskCalls[10], "drop is local, no refetch")
}

func TestCreateGoalRefetches(t *testing.T) {
	s, _ := setupSession(t)
	ctx := context.Background()

	goal, err := s.CreateGoal(ctx, api.GoalCreate{Name: "learn rust", Weeks: 6})
	require.NoError(t, err)
	require.NotNil(t, goal)

	assert.Len(t, s.Goals(), 2)
	assert.False(t, s.InFlight(KindGoal, 0))
}

func TestFailedReadKeepsPreviousState(t *testing.T) {
	s, f := setupSession(t)
	ctx := context.Background()

	_, err := s.EnsureSubTasks(ctx, 10)
	require.NoError(t, err)

	f.mu.Lock()
	f.failReads = true
	f.mu.Unlock()

	require.Error(t, s.Refresh(ctx))
	assert.Len(t, s.Goals(), 1, "previously loaded goals intact")

	require.Error(t, s.InvalidateSubTasks(ctx, 10))
	subs, ok := s.SubTasks(10)
	require.True(t, ok)
	assert.Len(t, subs, 2, "previously loaded subtasks intact")
}

func TestAllTasksFlattens(t *testing.T) {
	s, _ := setupSession(t)
	all := s.AllTasks()
	require.Len(t, all, 2)
	assert.Equal(t, int64(10), all[0].ID)
	assert.Equal(t, int64(11), all[1].ID)
}
