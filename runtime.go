package flowcore

import (
	"context"
	"errors"
	"time"

	"github.com/viant/flowcore/model/run"
	"github.com/viant/flowcore/service/dao"
	"github.com/viant/flowcore/service/engine"
	"github.com/viant/flowcore/service/event"
	"github.com/viant/flowcore/service/executor"
)

// Runtime executes published snapshots.
type Runtime struct {
	service   *Service
	engine    *engine.Service
	executors *executor.Registry
	listener  *event.Listener[run.Log]
}

type executeOptions struct {
	timeout time.Duration
}

// ExecuteOption customises a single execution.
type ExecuteOption func(o *executeOptions)

// WithTimeout bounds the run; it ends INTERRUPTED when the timeout expires.
func WithTimeout(timeout time.Duration) ExecuteOption {
	return func(o *executeOptions) {
		o.timeout = timeout
	}
}

// Start starts the worker pool and the run event listener, if any.
func (r *Runtime) Start(ctx context.Context) error {
	if r.listener != nil {
		r.listener.Start(ctx)
	}
	return r.engine.Start(ctx)
}

// Shutdown interrupts active runs and stops the workers.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.engine.Shutdown()
	if r.listener != nil {
		r.listener.Stop()
	}
	return nil
}

// Execute runs the latest snapshot of a definition and waits for its result.
func (r *Runtime) Execute(ctx context.Context, definitionID string, input map[string]interface{}, options ...ExecuteOption) (*run.Result, error) {
	snap, err := r.service.LatestSnapshot(ctx, definitionID)
	if err != nil {
		return nil, err
	}
	return r.engine.Execute(ctx, snap, input, executeTimeout(options))
}

// ExecuteSnapshot runs a specific snapshot.
func (r *Runtime) ExecuteSnapshot(ctx context.Context, snapshotID string, input map[string]interface{}, options ...ExecuteOption) (*run.Result, error) {
	snap, err := r.service.Snapshot(ctx, snapshotID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, &engine.SnapshotUnavailableError{Err: err}
		}
		return nil, err
	}
	return r.engine.Execute(ctx, snap, input, executeTimeout(options))
}

func executeTimeout(options []ExecuteOption) time.Duration {
	opts := &executeOptions{}
	for _, option := range options {
		option(opts)
	}
	return opts.timeout
}

// Stop interrupts an in-flight run.
func (r *Runtime) Stop(runID string) error {
	return r.engine.Stop(runID)
}

// Active returns in-flight run ids.
func (r *Runtime) Active() []string {
	return r.engine.Active()
}

// Run loads a run record.
func (r *Runtime) Run(ctx context.Context, runID string) (*run.Run, error) {
	return r.engine.Run(ctx, runID)
}

// Runs lists run records, e.g. by "definitionId" or "status".
func (r *Runtime) Runs(ctx context.Context, parameters ...*dao.Parameter) ([]*run.Run, error) {
	return r.service.stores.Runs.List(ctx, parameters...)
}

// Logs returns the log entries of a run in sequence order.
func (r *Runtime) Logs(ctx context.Context, runID string) ([]*run.Log, error) {
	return r.engine.Logs(ctx, runID)
}

// Health reports IsHealthy per registered executor.
func (r *Runtime) Health() map[string]bool {
	return r.executors.Health()
}
