package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"dario.cat/mergo"
	"github.com/hashicorp/go-hclog"
	"github.com/viant/flowcore/internal/clock"
	"github.com/viant/flowcore/internal/idgen"
	"github.com/viant/flowcore/internal/xjson"
	"github.com/viant/flowcore/model/flow"
	"github.com/viant/flowcore/model/run"
	"github.com/viant/flowcore/model/snapshot"
	"github.com/viant/flowcore/model/types"
	"github.com/viant/flowcore/progress"
	"github.com/viant/flowcore/runtime/execution"
	"github.com/viant/flowcore/service/event"
	"github.com/viant/flowcore/service/executor"
	"github.com/viant/flowcore/tracing"
)

const (
	outputSuffix = "_output"
	// eventTimeout bounds how long a slow event listener may stall a run.
	eventTimeout = time.Second
)

// execute drives one run on a worker and always returns a result document.
func (s *Service) execute(h *handle) (result *run.Result, err error) {
	ctx := execution.WithContext(h.ctx, h.ec)
	ctx, span := tracing.StartSpan(ctx, "flow.run "+h.doc.DefinitionID, "INTERNAL")
	span.WithAttributes(map[string]string{
		"run.id":        h.run.ID,
		"definition.id": h.run.DefinitionID,
		"version":       strconv.Itoa(h.run.Version),
	})
	defer func() { tracing.EndSpan(span, err) }()
	ctx, tracker := progress.WithNewTracker(ctx, h.run.ID, h.run.DefinitionID, s.onProgress)
	tracker.Update(progress.Delta{Total: len(h.doc.ExecutionPlan)})

	log := s.logger.With("run_id", h.run.ID, "definition_id", h.run.DefinitionID)
	if err := h.run.Start(); err != nil {
		return s.newResult(h, run.StatusFailed, err), err
	}
	s.saveRun(ctx, h.run, log)
	inputJSON, _ := xjson.String(h.ec.Input)
	s.appendLog(ctx, h, &run.Log{Event: run.EventFlowStart, Input: inputJSON}, log)
	log.Info("run started", "version", h.run.Version, "nodes", len(h.doc.ExecutionPlan))

	if s.config.Parallel {
		err = s.runParallel(ctx, h)
	} else {
		err = s.runSequential(ctx, h)
	}

	status := run.StatusSuccess
	if err != nil {
		status = run.StatusFailed
		if h.ctx.Err() != nil {
			status = run.StatusInterrupted
			err = context.Cause(h.ctx)
		}
	}
	result = s.newResult(h, status, err)
	resultJSON, jErr := result.JSON()
	if jErr != nil {
		log.Warn("failed to encode result", "error", jErr)
	}
	switch status {
	case run.StatusSuccess:
		_ = h.run.Succeed(resultJSON)
	case run.StatusFailed:
		_ = h.run.Fail(resultJSON, err)
	default:
		_ = h.run.Interrupt(resultJSON, err)
	}
	s.saveRun(ctx, h.run, log)
	flowEnd := &run.Log{Event: run.EventFlowEnd, Output: string(status), DurationMs: result.DurationMs}
	if err != nil {
		flowEnd.Error = err.Error()
	}
	s.appendLog(ctx, h, flowEnd, log)

	if err != nil {
		log.Info("run completed", "status", status, "duration_ms", result.DurationMs, "error", err)
	} else {
		log.Info("run completed", "status", status, "duration_ms", result.DurationMs)
	}
	return result, err
}

func (s *Service) runSequential(ctx context.Context, h *handle) error {
	for _, key := range h.doc.ExecutionPlan {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		if err := s.runNode(ctx, h, key); err != nil {
			return err
		}
	}
	return nil
}

// runNode resolves the node, checks its predecessors and executes it.
func (s *Service) runNode(ctx context.Context, h *handle, key string) error {
	node := h.doc.Node(key)
	if node == nil {
		return &NodeNotFoundError{NodeKey: key}
	}
	if unmet := h.ec.UnmetDependencies(h.doc.Dependencies(key)); len(unmet) > 0 {
		return &DependencyError{NodeKey: key, Missing: unmet}
	}
	exec, ok := s.executors.Lookup(node.TypeCode)
	if !ok {
		return &ExecutorNotFoundError{NodeKey: key, TypeCode: node.TypeCode}
	}
	return s.executeNode(ctx, h, node, exec)
}

func (s *Service) executeNode(ctx context.Context, h *handle, node *snapshot.Node, exec types.Executor) (err error) {
	log := s.logger.With("run_id", h.run.ID, "node_key", node.Key, "type", node.TypeCode)
	ctx, span := tracing.StartSpan(ctx, "flow.node "+node.Key, "INTERNAL")
	span.WithAttributes(map[string]string{"run.id": h.run.ID, "node.key": node.Key, "node.type": node.TypeCode})
	defer func() { tracing.EndSpan(span, err) }()

	policy, pErr := flow.ParseRetryPolicy(node.RetryPolicy)
	if pErr != nil {
		log.Warn("ignoring invalid retry policy", "error", pErr)
	}
	input, err := s.nodeInput(h, node)
	if err != nil {
		return &NodeExecutionError{NodeKey: node.Key, Attempts: 0, Err: err}
	}
	inputJSON, _ := xjson.String(input)

	progress.UpdateCtx(ctx, progress.Delta{Running: 1})
	for {
		attempt := h.ec.RetryCount(node.Key) + 1
		s.appendLog(ctx, h, &run.Log{NodeKey: node.Key, Event: run.EventStart, Attempt: attempt, Input: inputJSON}, log)
		started := clock.Now()
		output, execErr := invoke(ctx, exec, node, input)
		elapsed := clock.Since(started)

		if execErr == nil {
			h.ec.SaveResult(node.Key, output)
			h.ec.RecordMetric(node.Key, elapsed)
			outputJSON, _ := xjson.String(output)
			s.appendLog(ctx, h, &run.Log{NodeKey: node.Key, Event: run.EventSuccess, Attempt: attempt, Output: outputJSON, DurationMs: elapsed.Milliseconds()}, log)
			progress.UpdateCtx(ctx, progress.Delta{Running: -1, Completed: 1})
			log.Debug("node completed", "attempt", attempt, "duration_ms", elapsed.Milliseconds())
			return nil
		}

		s.appendLog(ctx, h, &run.Log{NodeKey: node.Key, Event: run.EventError, Attempt: attempt, Error: execErr.Error(), DurationMs: elapsed.Milliseconds()}, log)
		if ctx.Err() != nil {
			progress.UpdateCtx(ctx, progress.Delta{Running: -1})
			return context.Cause(ctx)
		}
		if !policy.Allows(h.ec.RetryCount(node.Key)) {
			progress.UpdateCtx(ctx, progress.Delta{Running: -1, Failed: 1})
			log.Warn("node failed", "attempt", attempt, "error", execErr)
			return &NodeExecutionError{NodeKey: node.Key, Attempts: attempt, Err: execErr}
		}
		retry := h.ec.IncrementRetry(node.Key)
		delay := policy.Backoff(retry, s.config.RetryBaseDelay)
		log.Warn("retrying node", "attempt", attempt, "retry", retry, "delay", delay, "error", execErr)
		span.AddEvent("retry", map[string]string{"attempt": strconv.Itoa(attempt), "error": execErr.Error()})
		progress.UpdateCtx(ctx, progress.Delta{Retried: 1})
		if err := sleep(ctx, delay); err != nil {
			progress.UpdateCtx(ctx, progress.Delta{Running: -1})
			return context.Cause(ctx)
		}
	}
}

// invoke calls the executor, converting a panic into a node error.
func invoke(ctx context.Context, exec types.Executor, node *snapshot.Node, input map[string]interface{}) (output interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor %v panicked: %v", exec.Name(), r)
		}
	}()
	return exec.Execute(ctx, node, input)
}

// nodeInput merges the run input, each predecessor output under
// "<key>_output" and the run context.
func (s *Service) nodeInput(h *handle, node *snapshot.Node) (map[string]interface{}, error) {
	input := map[string]interface{}{}
	if err := mergo.Merge(&input, h.ec.Input, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge run input: %w", err)
	}
	outputs := map[string]interface{}{}
	for _, dep := range h.doc.Dependencies(node.Key) {
		if output, ok := h.ec.Result(dep); ok {
			outputs[dep+outputSuffix] = output
		}
	}
	if err := mergo.Merge(&input, outputs, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge predecessor outputs: %w", err)
	}
	input[executor.ContextField] = map[string]interface{}{
		"runId":     h.run.ID,
		"nodeKey":   node.Key,
		"timestamp": clock.Now().UnixMilli(),
	}
	return input, nil
}

func (s *Service) newResult(h *handle, status run.Status, err error) *run.Result {
	summary := h.ec.Summary()
	ret := &run.Result{
		Status:        status,
		RunID:         h.run.ID,
		DefinitionID:  h.run.DefinitionID,
		Version:       h.run.Version,
		NodeResults:   summary.NodeResults,
		Metrics:       summary.Metrics,
		RetryCounts:   summary.RetryCounts,
		ExecutedNodes: summary.ExecutedNodes,
		DurationMs:    summary.Duration.Milliseconds(),
		CompletedAt:   clock.Now(),
	}
	if err != nil {
		ret.Error = err.Error()
		ret.FailedNode = failedNode(err)
	}
	return ret
}

// saveRun persists the run; a canceled run context must not prevent the
// terminal state from being written.
func (s *Service) saveRun(ctx context.Context, aRun *run.Run, log hclog.Logger) {
	if err := s.runDAO.Save(context.WithoutCancel(ctx), aRun); err != nil {
		log.Error("failed to save run", "status", aRun.Status, "error", err)
	}
}

// appendLog writes a log entry. Failures are reported and swallowed.
func (s *Service) appendLog(ctx context.Context, h *handle, entry *run.Log, log hclog.Logger) {
	entry.ID = idgen.New()
	entry.RunID = h.run.ID
	entry.Sequence = h.sequence.Add(1)
	entry.CreatedAt = clock.Now()
	if err := s.logDAO.Save(context.WithoutCancel(ctx), entry); err != nil {
		log.Warn("failed to write run log", "event", entry.Event, "error", err)
	}
	if s.events == nil {
		return
	}
	eventCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventTimeout)
	defer cancel()
	anEvent := event.NewEvent(&event.Context{
		RunID:        entry.RunID,
		DefinitionID: h.run.DefinitionID,
		NodeKey:      entry.NodeKey,
		EventType:    string(entry.Event),
	}, *entry)
	if err := s.events.Publish(eventCtx, anEvent); err != nil {
		log.Warn("failed to publish run event", "event", entry.Event, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
