package engine

import (
	"fmt"
	"time"
)

// Config represents engine configuration
type Config struct {
	// WorkerCount is the number of runs executed concurrently.
	WorkerCount int
	// QueueBuffer bounds the number of runs waiting for a worker.
	QueueBuffer int
	// DefaultTimeout applies when Execute receives a non-positive timeout.
	DefaultTimeout time.Duration
	// RetryBaseDelay is multiplied by the retry count to get the backoff.
	RetryBaseDelay time.Duration
	// CancelGrace is how long a cancelled caller waits for the run to unwind
	// before a partial result is returned without it.
	CancelGrace time.Duration
	// Parallel runs independent nodes concurrently.
	Parallel bool
	// MaxParallel bounds concurrent nodes of a run in parallel mode; zero
	// means unbounded.
	MaxParallel int
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		WorkerCount:    10,
		QueueBuffer:    100,
		DefaultTimeout: 30 * time.Minute,
		RetryBaseDelay: time.Second,
		CancelGrace:    5 * time.Second,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.WorkerCount <= 0:
		return fmt.Errorf("engine: worker count must be > 0")
	case c.DefaultTimeout <= 0:
		return fmt.Errorf("engine: default timeout must be > 0")
	case c.RetryBaseDelay < 0:
		return fmt.Errorf("engine: retry base delay must be >= 0")
	case c.CancelGrace < 0:
		return fmt.Errorf("engine: cancel grace must be >= 0")
	case c.MaxParallel < 0:
		return fmt.Errorf("engine: max parallel must be >= 0")
	}
	return nil
}
