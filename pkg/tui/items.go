package tui

import (
	"fmt"

	"github.com/hanzalatafzeel/path-craft/pkg/api"
	"github.com/hanzalatafzeel/path-craft/pkg/session"
)

// RowKind says what a flattened list row represents.
type RowKind int

const (
	RowGoal RowKind = iota
	RowTask
	RowSubTask
	RowLoading // placeholder while a task's subtasks are being fetched
)

// Row is one visible line in the plan list: a goal, a task under an
// expanded goal, or a subtask under an expanded task.
type Row struct {
	Kind  RowKind
	Depth int
	Title string

	Goal    *api.Goal
	Task    *api.Task
	SubTask *api.SubTask

	HasChildren bool
	IsExpanded  bool
}

// EntityID returns the row's entity id for in-flight lookups.
func (r Row) EntityID() int64 {
	switch r.Kind {
	case RowGoal:
		return r.Goal.ID
	case RowTask:
		return r.Task.ID
	case RowSubTask:
		return r.SubTask.ID
	}
	return 0
}

// EntityKind maps the row to the session's in-flight key space.
func (r Row) EntityKind() session.EntityKind {
	switch r.Kind {
	case RowGoal:
		return session.KindGoal
	case RowTask:
		return session.KindTask
	default:
		return session.KindSubTask
	}
}

// Status returns the row's lifecycle status. Goal rows have their own
// enum and report empty here.
func (r Row) Status() api.Status {
	switch r.Kind {
	case RowTask:
		return r.Task.Status
	case RowSubTask:
		return r.SubTask.Status
	}
	return ""
}

// BuildRows flattens the cached goal tree into visible rows. Goal
// expansion is view-local; task expansion and the subtask cache live in
// the session so they survive data refreshes.
func BuildRows(s *session.Session, expandedGoals map[int64]bool) []Row {
	var rows []Row

	goals := s.Goals()
	for i := range goals {
		g := &goals[i]
		tasks := s.Tasks(g.ID)
		rows = append(rows, Row{
			Kind:        RowGoal,
			Title:       g.Name,
			Goal:        g,
			HasChildren: len(tasks) > 0,
			IsExpanded:  expandedGoals[g.ID],
		})
		if !expandedGoals[g.ID] {
			continue
		}

		for j := range tasks {
			t := &tasks[j]
			expanded := s.IsExpanded(t.ID)
			rows = append(rows, Row{
				Kind:        RowTask,
				Depth:       1,
				Title:       fmt.Sprintf("W%d  %s", t.WeekNumber, t.Title),
				Task:        t,
				HasChildren: true, // subtasks load lazily; assume present
				IsExpanded:  expanded,
			})
			if !expanded {
				continue
			}

			subs, loaded := s.SubTasks(t.ID)
			if !loaded {
				rows = append(rows, Row{Kind: RowLoading, Depth: 2, Title: "loading subtasks…", Task: t})
				continue
			}
			for k := range subs {
				sub := &subs[k]
				rows = append(rows, Row{
					Kind:    RowSubTask,
					Depth:   2,
					Title:   sub.Description,
					SubTask: sub,
					Task:    t,
				})
			}
		}
	}

	return rows
}
