package flow

import (
	"fmt"
	"strings"
	"time"

	"github.com/viant/flowcore/internal/xjson"
)

// RetryPolicy controls per-node retries. A non-positive MaxRetries disables
// retrying.
type RetryPolicy struct {
	MaxRetries int `json:"maxRetries"`
}

// ParseRetryPolicy decodes a retry policy document. An empty document yields
// a disabled policy.
func ParseRetryPolicy(raw string) (*RetryPolicy, error) {
	ret := &RetryPolicy{}
	if strings.TrimSpace(raw) == "" {
		return ret, nil
	}
	if err := xjson.Unmarshal([]byte(raw), ret); err != nil {
		return &RetryPolicy{}, fmt.Errorf("invalid retry policy %q: %w", raw, err)
	}
	return ret, nil
}

// Enabled reports whether any retry is allowed.
func (p *RetryPolicy) Enabled() bool {
	return p != nil && p.MaxRetries > 0
}

// Allows reports whether another attempt may follow retryCount retries.
func (p *RetryPolicy) Allows(retryCount int) bool {
	return p.Enabled() && retryCount < p.MaxRetries
}

// Backoff returns the linear delay before the retryCount-th retry.
func (p *RetryPolicy) Backoff(retryCount int, base time.Duration) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	return base * time.Duration(retryCount)
}
