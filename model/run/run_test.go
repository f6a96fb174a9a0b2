package run

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Transitions(t *testing.T) {
	testCases := []struct {
		name     string
		apply    func(r *Run) error
		expected Status
	}{
		{name: "success", apply: func(r *Run) error { return r.Succeed(`{}`) }, expected: StatusSuccess},
		{name: "failed", apply: func(r *Run) error { return r.Fail(`{}`, errors.New("boom")) }, expected: StatusFailed},
		{name: "interrupted", apply: func(r *Run) error { return r.Interrupt(`{}`, nil) }, expected: StatusInterrupted},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := New("r1", "d1", "s1", 1, nil)
			assert.Equal(t, StatusPending, r.Status)
			assert.True(t, errors.Is(tc.apply(r), ErrInvalidTransition), "terminal transition from PENDING must fail")

			require.NoError(t, r.Start())
			assert.NotNil(t, r.StartedAt)
			assert.True(t, errors.Is(r.Start(), ErrInvalidTransition))

			require.NoError(t, tc.apply(r))
			assert.Equal(t, tc.expected, r.Status)
			assert.True(t, r.Status.IsTerminal())
			assert.NotNil(t, r.CompletedAt)
			assert.True(t, errors.Is(tc.apply(r), ErrInvalidTransition))
		})
	}
}

func TestRun_FailKeepsMessage(t *testing.T) {
	r := New("r1", "d1", "s1", 1, nil)
	require.NoError(t, r.Start())
	require.NoError(t, r.Fail(`{"status":"FAILED"}`, errors.New("node a failed")))
	assert.Equal(t, "node a failed", r.Error)
	assert.Equal(t, `{"status":"FAILED"}`, r.ResultJSON)
}

func TestRun_Abort(t *testing.T) {
	r := New("r1", "d1", "s1", 1, nil)
	require.NoError(t, r.Abort(`{"status":"INTERRUPTED"}`, errors.New("engine shutting down")))
	assert.Equal(t, StatusInterrupted, r.Status)
	assert.Equal(t, "engine shutting down", r.Error)
	assert.NotNil(t, r.CompletedAt)
	assert.Nil(t, r.StartedAt)

	started := New("r2", "d1", "s1", 1, nil)
	require.NoError(t, started.Start())
	assert.True(t, errors.Is(started.Abort(`{}`, nil), ErrInvalidTransition))
}
