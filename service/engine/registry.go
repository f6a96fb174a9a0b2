package engine

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/viant/flowcore/model/run"
	"github.com/viant/flowcore/model/snapshot"
	"github.com/viant/flowcore/runtime/execution"
)

// handle is the in-flight state of one run.
type handle struct {
	run      *run.Run
	snapshot *snapshot.Snapshot
	doc      *snapshot.Document
	ec       *execution.Context
	ctx      context.Context
	cancel   context.CancelCauseFunc
	sequence atomic.Int64
	done     chan struct{}
	result   *run.Result
	err      error
}

func (h *handle) complete(result *run.Result, err error) {
	h.result = result
	h.err = err
	close(h.done)
}

// runRegistry maps run ids to in-flight handles.
type runRegistry struct {
	runs sync.Map
}

func (r *runRegistry) register(h *handle) {
	r.runs.Store(h.run.ID, h)
}

func (r *runRegistry) lookup(runID string) (*handle, bool) {
	value, ok := r.runs.Load(runID)
	if !ok {
		return nil, false
	}
	return value.(*handle), true
}

func (r *runRegistry) remove(runID string) {
	r.runs.Delete(runID)
}

func (r *runRegistry) cancel(runID string, cause error) bool {
	h, ok := r.lookup(runID)
	if !ok {
		return false
	}
	h.cancel(cause)
	return true
}

func (r *runRegistry) each(fn func(h *handle)) {
	r.runs.Range(func(_, value any) bool {
		fn(value.(*handle))
		return true
	})
}

func (r *runRegistry) ids() []string {
	var ret []string
	r.each(func(h *handle) { ret = append(ret, h.run.ID) })
	sort.Strings(ret)
	return ret
}
