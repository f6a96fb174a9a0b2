// Package execution holds per-run mutable state shared by the engine and the
// node executors of a single run.
package execution

import (
	"sort"
	"sync"
	"time"

	"github.com/viant/flowcore/internal/clock"
	"github.com/viant/flowcore/model/snapshot"
)

// Context is the state of one run. It is safe for concurrent use.
type Context struct {
	RunID     string
	Snapshot  *snapshot.Snapshot
	Document  *snapshot.Document
	Input     map[string]interface{}
	StartedAt time.Time

	mu      sync.RWMutex
	results map[string]interface{}
	order   []string
	retries map[string]int
	metrics map[string]time.Duration
}

// New creates an execution context. A nil input is replaced by an empty map.
func New(runID string, snap *snapshot.Snapshot, doc *snapshot.Document, input map[string]interface{}) *Context {
	if input == nil {
		input = map[string]interface{}{}
	}
	return &Context{
		RunID:     runID,
		Snapshot:  snap,
		Document:  doc,
		Input:     input,
		StartedAt: clock.Now(),
		results:   map[string]interface{}{},
		retries:   map[string]int{},
		metrics:   map[string]time.Duration{},
	}
}

// IsNodeExecuted reports whether key has a recorded result.
func (c *Context) IsNodeExecuted(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.results[key]
	return ok
}

// UnmetDependencies returns the keys in dependencies without a result.
func (c *Context) UnmetDependencies(dependencies []string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var ret []string
	for _, key := range dependencies {
		if _, ok := c.results[key]; !ok {
			ret = append(ret, key)
		}
	}
	return ret
}

// SaveResult records the output of key. The first save defines completion
// order; later saves replace the output only.
func (c *Context) SaveResult(key string, output interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.results[key]; !ok {
		c.order = append(c.order, key)
	}
	c.results[key] = output
}

// Result returns the output of key.
func (c *Context) Result(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ret, ok := c.results[key]
	return ret, ok
}

// IncrementRetry increments and returns the retry counter of key.
func (c *Context) IncrementRetry(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retries[key]++
	return c.retries[key]
}

// RetryCount returns the retry counter of key.
func (c *Context) RetryCount(key string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.retries[key]
}

// RecordMetric records the elapsed time of key.
func (c *Context) RecordMetric(key string, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics[key] = elapsed
}

// Results returns a copy of all node outputs.
func (c *Context) Results() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ret := make(map[string]interface{}, len(c.results))
	for k, v := range c.results {
		ret[k] = v
	}
	return ret
}

// ExecutedNodes returns node keys in completion order.
func (c *Context) ExecutedNodes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.order...)
}

// Summary is a point-in-time copy of the run state.
type Summary struct {
	NodeResults   map[string]interface{}
	Metrics       map[string]int64
	RetryCounts   map[string]int
	ExecutedNodes []string
	Duration      time.Duration
}

// Summary returns a copy of outputs, metrics (ms) and retry counters.
func (c *Context) Summary() *Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ret := &Summary{
		NodeResults:   make(map[string]interface{}, len(c.results)),
		Metrics:       make(map[string]int64, len(c.metrics)),
		RetryCounts:   make(map[string]int, len(c.retries)),
		ExecutedNodes: append([]string{}, c.order...),
		Duration:      clock.Since(c.StartedAt),
	}
	for k, v := range c.results {
		ret.NodeResults[k] = v
	}
	for k, v := range c.metrics {
		ret.Metrics[k] = v.Milliseconds()
	}
	for k, v := range c.retries {
		ret.RetryCounts[k] = v
	}
	return ret
}

// MetricKeys returns the keys with recorded metrics, sorted.
func (s *Summary) MetricKeys() []string {
	ret := make([]string, 0, len(s.Metrics))
	for k := range s.Metrics {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
