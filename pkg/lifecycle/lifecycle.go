// Package lifecycle defines the status state machine shared by tasks
// and subtasks. The rule set is a data table so the available actions
// for a status are always derived, never hard-coded per call site.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/hanzalatafzeel/path-craft/pkg/api"
)

// Action is a user-facing operation on a task or subtask.
type Action string

const (
	ActionStart    Action = "start"
	ActionPause    Action = "pause"
	ActionComplete Action = "complete"
)

// ErrUnavailable reports a requested action that the current status
// does not offer. It must be caught before anything reaches the
// backend.
var ErrUnavailable = errors.New("action unavailable for status")

type transition struct {
	from   api.Status
	action Action
	to     api.Status
}

// transitions is the full rule set. completed and cancelled appear in
// no row: they are terminal from the client's perspective (cancelled is
// only ever set by the backend).
var transitions = []transition{
	{api.StatusPending, ActionStart, api.StatusInProgress},
	{api.StatusInProgress, ActionPause, api.StatusPending},
	{api.StatusPending, ActionComplete, api.StatusCompleted},
	{api.StatusInProgress, ActionComplete, api.StatusCompleted},
}

// Actions returns the actions available for a status, in table order.
// Terminal statuses yield an empty set, not an error.
func Actions(status api.Status) []Action {
	var actions []Action
	for _, t := range transitions {
		if t.from == status {
			actions = append(actions, t.action)
		}
	}
	return actions
}

// Available reports whether the action is legal for the status.
func Available(status api.Status, action Action) bool {
	for _, t := range transitions {
		if t.from == status && t.action == action {
			return true
		}
	}
	return false
}

// Apply returns the status that results from performing the action.
func Apply(status api.Status, action Action) (api.Status, error) {
	for _, t := range transitions {
		if t.from == status && t.action == action {
			return t.to, nil
		}
	}
	return status, fmt.Errorf("%w: %s on %s", ErrUnavailable, action, status)
}

// IsTerminal reports whether no action can leave the status.
func IsTerminal(status api.Status) bool {
	return len(Actions(status)) == 0
}
