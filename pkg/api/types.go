package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// Time is a timestamp as the backend serializes it. The server emits
// naive datetimes with no timezone offset, which plain time.Time
// decoding rejects, so parsing tries RFC 3339 first and falls back to
// the offset-less form, interpreted as UTC.
type Time struct {
	time.Time
}

const naiveTimeLayout = "2006-01-02T15:04:05"

// NewTime wraps a time.Time for use in wire structs.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		parsed, err = time.Parse(naiveTimeLayout, s)
	}
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// Status is the lifecycle state shared by tasks and subtasks.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// GoalStatus represents the overall state of a goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
	GoalCancelled GoalStatus = "cancelled"
)

// Goal is a top-level learning objective spanning a number of weeks.
type Goal struct {
	ID          int64      `json:"id"`
	Name        string     `json:"goal_name"`
	Description string     `json:"description"`
	Weeks       int        `json:"weeks"`
	Status      GoalStatus `json:"status"`
	CreatedAt   Time       `json:"created_at"`
}

// Task is one weekly unit of work under a goal.
type Task struct {
	ID            int64  `json:"id"`
	GoalID        int64  `json:"goal_id"`
	WeekNumber    int    `json:"week_number"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ScheduledDate Time   `json:"scheduled_date"`
	Status        Status `json:"status"`
}

// SubTask is one daily unit of work under a task.
type SubTask struct {
	ID            int64  `json:"id"`
	TaskID        int64  `json:"task_id"`
	Description   string `json:"description"`
	ScheduledDate Time   `json:"scheduled_date"`
	Status        Status `json:"status"`
}

// GoalCreate is the request body for creating or updating a goal.
type GoalCreate struct {
	Name        string `json:"goal_name"`
	Description string `json:"description,omitempty"`
	Weeks       int    `json:"weeks"`
}

// User is the authenticated account as reported by the backend.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsActive bool   `json:"is_active"`
}

// DashboardStats is the pre-aggregated dashboard payload. The client
// never recomputes these numbers locally.
type DashboardStats struct {
	TotalGoals      int     `json:"total_goals"`
	ActiveGoals     int     `json:"active_goals"`
	CompletedGoals  int     `json:"completed_goals"`
	TotalTasks      int     `json:"total_tasks"`
	CompletedTasks  int     `json:"completed_tasks"`
	PendingTasks    int     `json:"pending_tasks"`
	InProgressTasks int     `json:"in_progress_tasks"`
	CompletionRate  float64 `json:"completion_rate"`
	TodayTasks      int     `json:"today_tasks"`
	TodayCompleted  int     `json:"today_completed"`
}

// IsCompleted returns true if the task has reached its terminal state.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsInProgress returns true if the task has been started.
func (t *Task) IsInProgress() bool {
	return t.Status == StatusInProgress
}

// ParseStatus validates a wire token against the known status set.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return Status(s), true
	}
	return "", false
}
