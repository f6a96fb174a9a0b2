package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/viant/flowcore/internal/idgen"
	"github.com/viant/flowcore/internal/logger"
	"github.com/viant/flowcore/model/run"
	"github.com/viant/flowcore/model/snapshot"
	"github.com/viant/flowcore/progress"
	"github.com/viant/flowcore/runtime/execution"
	"github.com/viant/flowcore/service/dao"
	"github.com/viant/flowcore/service/event"
	"github.com/viant/flowcore/service/executor"
	"github.com/viant/flowcore/service/messaging"
	"github.com/viant/flowcore/service/messaging/memory"
)

// Job is the queue payload handed to a worker.
type Job struct {
	handle *handle
}

// RunID returns the id of the queued run.
func (j *Job) RunID() string {
	if j == nil || j.handle == nil {
		return ""
	}
	return j.handle.run.ID
}

// Service executes snapshots on a fixed pool of workers.
type Service struct {
	config     Config
	executors  *executor.Registry
	runDAO     dao.Service[string, run.Run]
	logDAO     dao.Service[string, run.Log]
	queue      messaging.Queue[Job]
	logger     hclog.Logger
	onProgress func(progress.Progress)
	events     *event.Publisher[run.Log]

	runs     runRegistry
	mu       sync.Mutex
	started  bool
	workers  []*worker
	workerWg sync.WaitGroup
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates an engine.
func New(executors *executor.Registry, options ...Option) (*Service, error) {
	s := &Service{
		config:    DefaultConfig(),
		executors: executors,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.executors == nil {
		return nil, fmt.Errorf("executor registry is required")
	}
	if s.runDAO == nil {
		return nil, fmt.Errorf("runDAO service is required")
	}
	if s.logDAO == nil {
		return nil, fmt.Errorf("logDAO service is required")
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if s.queue == nil {
		s.queue = memory.NewQueue[Job](memory.Config{QueueBuffer: s.config.QueueBuffer, DeadLetter: false})
	}
	s.logger = logger.OrDefault(s.logger).Named("engine")
	return s, nil
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.config
}

// Start launches the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{id: i, service: s, ctx: workerCtx, cancelFn: cancel}
		s.workers = append(s.workers, w)
		s.workerWg.Add(1)
		go w.run()
	}
	s.started = true
	s.logger.Info("engine started", "workers", s.config.WorkerCount, "parallel", s.config.Parallel)
	return nil
}

// Shutdown interrupts active runs and waits for the workers to exit.
func (s *Service) Shutdown() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	workers := s.workers
	s.workers = nil
	s.mu.Unlock()

	s.runs.each(func(h *handle) {
		h.cancel(&InterruptedError{RunID: h.run.ID, Cause: ErrShutdown})
	})
	for _, w := range workers {
		w.cancelFn()
	}
	s.workerWg.Wait()
	s.drain()
	s.interruptPending()
	s.logger.Info("engine stopped")
}

// drain acknowledges jobs no worker picked up; their handles are settled by
// interruptPending.
func (s *Service) drain() {
	sized, ok := s.queue.(interface{ Size() int })
	if !ok {
		return
	}
	for sized.Size() > 0 {
		msg, err := s.queue.Consume(context.Background())
		if err != nil || msg == nil {
			return
		}
		_ = msg.Ack()
	}
}

// interruptPending closes runs that were scheduled but never started. No
// worker is running at this point.
func (s *Service) interruptPending() {
	s.runs.each(func(h *handle) {
		s.runs.remove(h.run.ID)
		if h.run.Status != run.StatusPending {
			return
		}
		cause := context.Cause(h.ctx)
		if cause == nil {
			cause = &InterruptedError{RunID: h.run.ID, Cause: ErrShutdown}
		}
		result := s.newResult(h, run.StatusInterrupted, cause)
		resultJSON, err := result.JSON()
		if err != nil {
			s.logger.Warn("failed to encode result", "run_id", h.run.ID, "error", err)
		}
		log := s.logger.With("run_id", h.run.ID, "definition_id", h.run.DefinitionID)
		if err := h.run.Abort(resultJSON, cause); err != nil {
			log.Warn("failed to abort run", "error", err)
		}
		s.saveRun(context.Background(), h.run, log)
		h.complete(result, cause)
	})
}

func (s *Service) isStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (w *worker) run() {
	defer w.service.workerWg.Done()
	for {
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, messaging.ErrClosed) {
				return
			}
			w.service.logger.Warn("consume failed", "worker", w.id, "error", err)
			select {
			case <-w.ctx.Done():
				return
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		if msg == nil {
			continue
		}
		w.service.process(msg)
	}
}

func (s *Service) process(msg messaging.Message[Job]) {
	job := msg.T()
	if job == nil || job.handle == nil {
		_ = msg.Ack()
		return
	}
	h := job.handle
	result, err := s.execute(h)
	s.runs.remove(h.run.ID)
	h.complete(result, err)
	// the terminal state is persisted with the run; failures are not redelivered
	_ = msg.Ack()
}

// Execute runs snap to completion and returns its result document. A
// non-positive timeout selects the configured default. On timeout the run
// is cancelled and a *TimeoutError is returned with the partial result; an
// explicit Stop or caller cancellation yields an *InterruptedError.
func (s *Service) Execute(ctx context.Context, snap *snapshot.Snapshot, input map[string]interface{}, timeout time.Duration) (*run.Result, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	if snap == nil {
		return nil, &SnapshotUnavailableError{}
	}
	doc, err := snap.Content()
	if err != nil {
		return nil, &SnapshotUnavailableError{DefinitionID: snap.DefinitionID, Err: err}
	}
	if timeout <= 0 {
		timeout = s.config.DefaultTimeout
	}
	runInput := make(map[string]interface{}, len(input))
	for k, v := range input {
		runInput[k] = v
	}
	aRun := run.New(idgen.New(), snap.DefinitionID, snap.ID, snap.Version, runInput)
	if err := s.runDAO.Save(ctx, aRun); err != nil {
		return nil, fmt.Errorf("failed to save run %v: %w", aRun.ID, err)
	}

	runCtx, cancel := context.WithCancelCause(context.Background())
	h := &handle{
		run:      aRun,
		snapshot: snap,
		doc:      doc,
		ec:       execution.New(aRun.ID, snap, doc, runInput),
		ctx:      runCtx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	s.runs.register(h)
	if err := s.queue.Publish(ctx, &Job{handle: h}); err != nil {
		s.runs.remove(aRun.ID)
		cancel(err)
		return nil, fmt.Errorf("failed to schedule run %v: %w", aRun.ID, err)
	}
	s.logger.Debug("run scheduled", "run_id", aRun.ID, "definition_id", snap.DefinitionID, "version", snap.Version)
	return s.await(ctx, h, timeout)
}

func (s *Service) await(ctx context.Context, h *handle, timeout time.Duration) (*run.Result, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-h.done:
		return h.result, h.err
	case <-timer.C:
		h.cancel(&TimeoutError{RunID: h.run.ID, Timeout: timeout})
	case <-ctx.Done():
		h.cancel(&InterruptedError{RunID: h.run.ID, Cause: ctx.Err()})
	case <-h.ctx.Done():
	}
	return s.awaitCancelled(h)
}

// awaitCancelled gives a cancelled run CancelGrace to unwind. An executor
// ignoring cancellation leaves the worker busy; the caller then receives a
// result built from the nodes completed so far.
func (s *Service) awaitCancelled(h *handle) (*run.Result, error) {
	grace := time.NewTimer(s.config.CancelGrace)
	defer grace.Stop()
	select {
	case <-h.done:
		return h.result, h.err
	case <-grace.C:
	}
	cause := context.Cause(h.ctx)
	s.runs.remove(h.run.ID)
	s.logger.Warn("run did not stop within grace period", "run_id", h.run.ID, "grace", s.config.CancelGrace)
	return s.newResult(h, run.StatusInterrupted, cause), cause
}

// Stop cancels an in-flight run. The run ends INTERRUPTED and keeps the
// results of nodes completed so far.
func (s *Service) Stop(runID string) error {
	if !s.runs.cancel(runID, &InterruptedError{RunID: runID}) {
		return fmt.Errorf("%w: %v", ErrRunNotFound, runID)
	}
	s.logger.Info("run stop requested", "run_id", runID)
	return nil
}

// Active returns the ids of in-flight runs.
func (s *Service) Active() []string {
	return s.runs.ids()
}

// IsActive reports whether runID is in flight.
func (s *Service) IsActive(runID string) bool {
	_, ok := s.runs.lookup(runID)
	return ok
}

// Run loads a run record.
func (s *Service) Run(ctx context.Context, runID string) (*run.Run, error) {
	return s.runDAO.Load(ctx, runID)
}

// Logs returns the log entries of a run ordered by sequence.
func (s *Service) Logs(ctx context.Context, runID string) ([]*run.Log, error) {
	logs, err := s.logDAO.List(ctx, dao.NewParameter("runId", runID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Sequence < logs[j].Sequence })
	return logs, nil
}
