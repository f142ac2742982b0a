package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanzalatafzeel/path-craft/pkg/api"
)

func TestActionsPerStatus(t *testing.T) {
	tests := []struct {
		status api.Status
		want   []Action
	}{
		{api.StatusPending, []Action{ActionStart, ActionComplete}},
		{api.StatusInProgress, []Action{ActionPause, ActionComplete}},
		{api.StatusCompleted, nil},
		{api.StatusCancelled, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, Actions(tt.status))
		})
	}
}

func TestStartPauseRoundTrip(t *testing.T) {
	started, err := Apply(api.StatusPending, ActionStart)
	require.NoError(t, err)
	assert.Equal(t, api.StatusInProgress, started)

	paused, err := Apply(started, ActionPause)
	require.NoError(t, err)
	assert.Equal(t, api.StatusPending, paused)
}

func TestCompleteFromEitherState(t *testing.T) {
	done, err := Apply(api.StatusPending, ActionComplete)
	require.NoError(t, err)
	assert.Equal(t, api.StatusCompleted, done)

	done, err = Apply(api.StatusInProgress, ActionComplete)
	require.NoError(t, err)
	assert.Equal(t, api.StatusCompleted, done)
}

func TestTerminalStatesRejectEveryAction(t *testing.T) {
	for _, status := range []api.Status{api.StatusCompleted, api.StatusCancelled} {
		for _, action := range []Action{ActionStart, ActionPause, ActionComplete} {
			got, err := Apply(status, action)
			assert.ErrorIs(t, err, ErrUnavailable)
			assert.Equal(t, status, got, "terminal status must not change")
		}
		assert.True(t, IsTerminal(status))
	}
}

func TestAvailableMatchesTable(t *testing.T) {
	assert.True(t, Available(api.StatusPending, ActionStart))
	assert.True(t, Available(api.StatusInProgress, ActionPause))
	assert.False(t, Available(api.StatusPending, ActionPause))
	assert.False(t, Available(api.StatusInProgress, ActionStart))
	assert.False(t, Available(api.StatusCompleted, ActionComplete))
}
