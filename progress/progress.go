package progress

import (
	"context"
	"sync"
	"time"

	"github.com/viant/flowcore/internal/clock"
)

// Delta represents an incremental counter change. Fields are signed.
type Delta struct {
	Total     int
	Completed int
	Failed    int
	Retried   int
	Running   int
}

// Progress keeps aggregated node counters of a run. It is safe for concurrent
// use.
type Progress struct {
	RunID        string
	DefinitionID string
	StartedAt    time.Time

	TotalNodes     int
	CompletedNodes int
	FailedNodes    int
	RetriedNodes   int
	RunningNodes   int

	mu       sync.Mutex
	onChange func(Progress)
}

// Update applies the supplied delta. The onChange callback, if any, receives
// a copy outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.TotalNodes += d.Total
	p.CompletedNodes += d.Completed
	p.FailedNodes += d.Failed
	p.RetriedNodes += d.Retried
	p.RunningNodes += d.Running
	snapshot := p.copyLocked()
	cb := p.onChange
	p.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.copyLocked()
}

func (p *Progress) copyLocked() Progress {
	return Progress{
		RunID:          p.RunID,
		DefinitionID:   p.DefinitionID,
		StartedAt:      p.StartedAt,
		TotalNodes:     p.TotalNodes,
		CompletedNodes: p.CompletedNodes,
		FailedNodes:    p.FailedNodes,
		RetriedNodes:   p.RetriedNodes,
		RunningNodes:   p.RunningNodes,
	}
}

// Percent returns completed nodes as a share of total nodes.
func (p *Progress) Percent() float64 {
	if p.TotalNodes == 0 {
		return 0
	}
	return float64(p.CompletedNodes) * 100 / float64(p.TotalNodes)
}

// OnChange registers a callback invoked after every Update. Passing nil
// disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = cb
	p.mu.Unlock()
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a tracker, embeds it in a derived context and
// returns both.
func WithNewTracker(ctx context.Context, runID, definitionID string, onChange func(Progress)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{
		RunID:        runID,
		DefinitionID: definitionID,
		StartedAt:    clock.Now(),
		onChange:     onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx applies the delta to the tracker carried by ctx, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
