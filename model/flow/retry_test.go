package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRetryPolicy(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expectMax int
		expectErr bool
		enabled   bool
	}{
		{name: "empty", raw: "", expectMax: 0},
		{name: "blank", raw: "  ", expectMax: 0},
		{name: "positive", raw: `{"maxRetries":3}`, expectMax: 3, enabled: true},
		{name: "zero", raw: `{"maxRetries":0}`, expectMax: 0},
		{name: "negative", raw: `{"maxRetries":-2}`, expectMax: -2},
		{name: "invalid", raw: `{maxRetries`, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			policy, err := ParseRetryPolicy(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				assert.False(t, policy.Enabled())
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expectMax, policy.MaxRetries)
			assert.Equal(t, tc.enabled, policy.Enabled())
		})
	}
}

func TestRetryPolicy_AllowsAndBackoff(t *testing.T) {
	policy := &RetryPolicy{MaxRetries: 2}
	assert.True(t, policy.Allows(0))
	assert.True(t, policy.Allows(1))
	assert.False(t, policy.Allows(2))

	assert.Equal(t, time.Duration(0), policy.Backoff(0, time.Second))
	assert.Equal(t, time.Second, policy.Backoff(1, time.Second))
	assert.Equal(t, 3*time.Second, policy.Backoff(3, time.Second))

	var disabled *RetryPolicy
	assert.False(t, disabled.Allows(0))
}
