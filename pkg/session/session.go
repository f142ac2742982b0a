// Package session owns the in-process cache of goals, tasks, and
// subtasks, and orchestrates every mutating request against the
// backend. All UI surfaces read through it; nothing else holds domain
// state.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hanzalatafzeel/path-craft/pkg/api"
	"github.com/hanzalatafzeel/path-craft/pkg/lifecycle"
)

// EntityKind distinguishes in-flight flags for the three entity types.
type EntityKind string

const (
	KindGoal    EntityKind = "goal"
	KindTask    EntityKind = "task"
	KindSubTask EntityKind = "subtask"
)

// ErrBusy reports a mutation attempted while one is already in flight
// for the same entity.
var ErrBusy = errors.New("request already in flight for entity")

// ErrUnknownEntity reports an operation on an id absent from the cache.
var ErrUnknownEntity = errors.New("entity not in cache")

type entityKey struct {
	kind EntityKind
	id   int64
}

// Backend is the slice of the API client the session depends on.
type Backend interface {
	Goals(ctx context.Context) ([]api.Goal, error)
	CreateGoal(ctx context.Context, in api.GoalCreate) (*api.Goal, error)
	DeleteGoal(ctx context.Context, id int64) error
	GoalTasks(ctx context.Context, goalID int64) ([]api.Task, error)
	TaskSubTasks(ctx context.Context, taskID int64) ([]api.SubTask, error)
	UpdateTaskStatus(ctx context.Context, taskID int64, status api.Status) (*api.Task, error)
	UpdateSubTaskStatus(ctx context.Context, subtaskID int64, status api.Status) (*api.SubTask, error)
}

// subtaskFetch coalesces duplicate in-flight subtask loads for one
// task: late callers wait on done instead of issuing a second request.
type subtaskFetch struct {
	done chan struct{}
	subs []api.SubTask
	err  error
}

// Session is the shared state container. The mutex makes the
// check-and-set on in-flight flags atomic; it is never held across a
// network call.
type Session struct {
	backend Backend

	mu       sync.Mutex
	goals    []api.Goal
	tasks    map[int64][]api.Task    // keyed by goal id
	subtasks map[int64][]api.SubTask // keyed by task id, populated lazily
	loaded   map[int64]bool          // task ids whose subtasks have been fetched
	fetching map[int64]*subtaskFetch // in-flight subtask loads
	expanded map[int64]bool          // task ids expanded in the UI
	inflight map[entityKey]bool
}

// New creates an empty session backed by the given client.
func New(backend Backend) *Session {
	return &Session{
		backend:  backend,
		tasks:    make(map[int64][]api.Task),
		subtasks: make(map[int64][]api.SubTask),
		loaded:   make(map[int64]bool),
		fetching: make(map[int64]*subtaskFetch),
		expanded: make(map[int64]bool),
		inflight: make(map[entityKey]bool),
	}
}

// Refresh replaces the goal and task collections wholesale. Subtask
// caches survive, except entries for tasks that no longer exist.
func (s *Session) Refresh(ctx context.Context) error {
	goals, err := s.backend.Goals(ctx)
	if err != nil {
		return err
	}

	tasks := make(map[int64][]api.Task, len(goals))
	for _, g := range goals {
		ts, err := s.backend.GoalTasks(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("refreshing tasks for goal %d: %w", g.ID, err)
		}
		tasks[g.ID] = ts
	}

	live := make(map[int64]bool)
	for _, ts := range tasks {
		for _, t := range ts {
			live[t.ID] = true
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = goals
	s.tasks = tasks
	for taskID := range s.subtasks {
		if !live[taskID] {
			delete(s.subtasks, taskID)
			delete(s.loaded, taskID)
			delete(s.expanded, taskID)
		}
	}
	return nil
}

// Goals returns a copy of the cached goal list.
func (s *Session) Goals() []api.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Goal(nil), s.goals...)
}

// Tasks returns a copy of the cached tasks for a goal, already ordered
// by week number.
func (s *Session) Tasks(goalID int64) []api.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Task(nil), s.tasks[goalID]...)
}

// AllTasks flattens the cached tasks across every goal, in goal-list
// order. The calendar view buckets this collection by day.
func (s *Session) AllTasks() []api.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []api.Task
	for _, g := range s.goals {
		all = append(all, s.tasks[g.ID]...)
	}
	return all
}

// SubTasks returns the cached subtasks for a task, in backend order,
// and whether they have been loaded at all.
func (s *Session) SubTasks(taskID int64) ([]api.SubTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded[taskID] {
		return nil, false
	}
	return append([]api.SubTask(nil), s.subtasks[taskID]...), true
}

// EnsureSubTasks loads a task's subtasks on first use. Repeated calls
// return the cache without touching the network; concurrent calls for
// the same task share a single request.
func (s *Session) EnsureSubTasks(ctx context.Context, taskID int64) ([]api.SubTask, error) {
	s.mu.Lock()
	if s.loaded[taskID] {
		subs := append([]api.SubTask(nil), s.subtasks[taskID]...)
		s.mu.Unlock()
		return subs, nil
	}
	if f := s.fetching[taskID]; f != nil {
		s.mu.Unlock()
		<-f.done
		return append([]api.SubTask(nil), f.subs...), f.err
	}
	f := &subtaskFetch{done: make(chan struct{})}
	s.fetching[taskID] = f
	s.mu.Unlock()

	subs, err := s.backend.TaskSubTasks(ctx, taskID)

	s.mu.Lock()
	delete(s.fetching, taskID)
	if err == nil {
		s.subtasks[taskID] = subs
		s.loaded[taskID] = true
	}
	s.mu.Unlock()

	f.subs = subs
	f.err = err
	close(f.done)

	if err != nil {
		return nil, err
	}
	return append([]api.SubTask(nil), subs...), nil
}

// InvalidateSubTasks refetches exactly one task's subtask collection.
// Other tasks' caches are untouched; if the refetch fails the previous
// data stays in place.
func (s *Session) InvalidateSubTasks(ctx context.Context, taskID int64) error {
	subs, err := s.backend.TaskSubTasks(ctx, taskID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.subtasks[taskID] = subs
	s.loaded[taskID] = true
	s.mu.Unlock()
	return nil
}

// IsExpanded reports the per-task visibility toggle. Expansion is
// independent of whether subtasks have been fetched.
func (s *Session) IsExpanded(taskID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[taskID]
}

// ToggleExpanded flips a task's visibility toggle and returns the new
// state. Collapsing does not clear the subtask cache.
func (s *Session) ToggleExpanded(taskID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanded[taskID] = !s.expanded[taskID]
	return s.expanded[taskID]
}

// InFlight reports whether a mutation is outstanding for the entity.
// Action buttons for that exact entity disable while this is true.
func (s *Session) InFlight(kind EntityKind, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight[entityKey{kind, id}]
}

// begin atomically sets the in-flight flag, rejecting a duplicate
// invocation before any suspension point.
func (s *Session) begin(key entityKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[key] {
		return fmt.Errorf("%w: %s %d", ErrBusy, key.kind, key.id)
	}
	s.inflight[key] = true
	return nil
}

func (s *Session) end(key entityKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}

// CreateGoal submits a new goal and refetches the full goal collection
// on success.
func (s *Session) CreateGoal(ctx context.Context, in api.GoalCreate) (*api.Goal, error) {
	key := entityKey{KindGoal, 0}
	if err := s.begin(key); err != nil {
		return nil, err
	}
	defer s.end(key)

	goal, err := s.backend.CreateGoal(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.Refresh(ctx); err != nil {
		return goal, err
	}
	return goal, nil
}

// DeleteGoal removes a goal and refetches the full goal collection on
// success. The caller is responsible for any confirmation gate.
func (s *Session) DeleteGoal(ctx context.Context, goalID int64) error {
	key := entityKey{KindGoal, goalID}
	if err := s.begin(key); err != nil {
		return err
	}
	defer s.end(key)

	if err := s.backend.DeleteGoal(ctx, goalID); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// TaskActions returns the actions the cached task currently offers.
func (s *Session) TaskActions(taskID int64) []lifecycle.Action {
	task, ok := s.findTask(taskID)
	if !ok {
		return nil
	}
	return lifecycle.Actions(task.Status)
}

// ApplyTaskAction runs a lifecycle action on a task. Illegal actions
// are rejected locally and never reach the backend. On success the
// whole goal/task collection is refetched; this coarse scope is the
// existing contract, deliberately asymmetric with subtasks.
func (s *Session) ApplyTaskAction(ctx context.Context, taskID int64, action lifecycle.Action) error {
	task, ok := s.findTask(taskID)
	if !ok {
		return fmt.Errorf("%w: task %d", ErrUnknownEntity, taskID)
	}
	next, err := lifecycle.Apply(task.Status, action)
	if err != nil {
		return err
	}

	key := entityKey{KindTask, taskID}
	if err := s.begin(key); err != nil {
		return err
	}
	defer s.end(key)

	if _, err := s.backend.UpdateTaskStatus(ctx, taskID, next); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// SubTaskActions returns the actions the cached subtask currently
// offers.
func (s *Session) SubTaskActions(subtaskID int64) []lifecycle.Action {
	sub, _, ok := s.findSubTask(subtaskID)
	if !ok {
		return nil
	}
	return lifecycle.Actions(sub.Status)
}

// ApplySubTaskAction runs a lifecycle action on a subtask. On success
// only the owning task's subtask collection is refetched.
func (s *Session) ApplySubTaskAction(ctx context.Context, subtaskID int64, action lifecycle.Action) error {
	sub, taskID, ok := s.findSubTask(subtaskID)
	if !ok {
		return fmt.Errorf("%w: subtask %d", ErrUnknownEntity, subtaskID)
	}
	next, err := lifecycle.Apply(sub.Status, action)
	if err != nil {
		return err
	}

	key := entityKey{KindSubTask, subtaskID}
	if err := s.begin(key); err != nil {
		return err
	}
	defer s.end(key)

	if _, err := s.backend.UpdateSubTaskStatus(ctx, subtaskID, next); err != nil {
		return err
	}
	return s.InvalidateSubTasks(ctx, taskID)
}

func (s *Session) findTask(taskID int64) (api.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ts := range s.tasks {
		for _, t := range ts {
			if t.ID == taskID {
				return t, true
			}
		}
	}
	return api.Task{}, false
}

func (s *Session) findSubTask(subtaskID int64) (api.SubTask, int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for taskID, subs := range s.subtasks {
		for _, sub := range subs {
			if sub.ID == subtaskID {
				return sub, taskID, true
			}
		}
	}
	return api.SubTask{}, 0, false
}
