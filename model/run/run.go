// Package run defines a single execution of a snapshot, its log entries and
// the terminal result document.
package run

import (
	"errors"
	"fmt"
	"time"

	"github.com/viant/flowcore/internal/clock"
)

// Status represents run state.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusRunning     Status = "RUNNING"
	StatusSuccess     Status = "SUCCESS"
	StatusFailed      Status = "FAILED"
	StatusInterrupted Status = "INTERRUPTED"
)

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusInterrupted:
		return true
	}
	return false
}

// ErrInvalidTransition is returned by guarded state changes.
var ErrInvalidTransition = errors.New("run: invalid state transition")

// Run is one execution of a snapshot.
type Run struct {
	ID           string                 `json:"id"`
	DefinitionID string                 `json:"definitionId"`
	SnapshotID   string                 `json:"snapshotId"`
	Version      int                    `json:"version"`
	Status       Status                 `json:"status"`
	Input        map[string]interface{} `json:"input,omitempty"`
	ResultJSON   string                 `json:"resultJson,omitempty"`
	Error        string                 `json:"error,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
	StartedAt    *time.Time             `json:"startedAt,omitempty"`
	CompletedAt  *time.Time             `json:"completedAt,omitempty"`
}

// New returns a PENDING run.
func New(id, definitionID, snapshotID string, version int, input map[string]interface{}) *Run {
	return &Run{
		ID:           id,
		DefinitionID: definitionID,
		SnapshotID:   snapshotID,
		Version:      version,
		Status:       StatusPending,
		Input:        input,
		CreatedAt:    clock.Now(),
	}
}

// Start moves PENDING to RUNNING.
func (r *Run) Start() error {
	if err := r.expect(StatusPending, StatusRunning); err != nil {
		return err
	}
	now := clock.Now()
	r.Status = StatusRunning
	r.StartedAt = &now
	return nil
}

// Succeed moves RUNNING to SUCCESS.
func (r *Run) Succeed(resultJSON string) error {
	return r.complete(StatusSuccess, resultJSON, "")
}

// Fail moves RUNNING to FAILED.
func (r *Run) Fail(resultJSON string, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return r.complete(StatusFailed, resultJSON, message)
}

// Interrupt moves RUNNING to INTERRUPTED.
func (r *Run) Interrupt(resultJSON string, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return r.complete(StatusInterrupted, resultJSON, message)
}

// Abort moves a PENDING run that never started to INTERRUPTED.
func (r *Run) Abort(resultJSON string, cause error) error {
	if err := r.expect(StatusPending, StatusInterrupted); err != nil {
		return err
	}
	now := clock.Now()
	r.Status = StatusInterrupted
	r.ResultJSON = resultJSON
	if cause != nil {
		r.Error = cause.Error()
	}
	r.CompletedAt = &now
	return nil
}

func (r *Run) complete(status Status, resultJSON, message string) error {
	if err := r.expect(StatusRunning, status); err != nil {
		return err
	}
	now := clock.Now()
	r.Status = status
	r.ResultJSON = resultJSON
	r.Error = message
	r.CompletedAt = &now
	return nil
}

func (r *Run) expect(from, to Status) error {
	if r.Status != from {
		return fmt.Errorf("%w: %v -> %v (run %v)", ErrInvalidTransition, r.Status, to, r.ID)
	}
	return nil
}

// Attributes returns filterable fields.
func (r *Run) Attributes() map[string]interface{} {
	return map[string]interface{}{
		"definitionId": r.DefinitionID,
		"status":       string(r.Status),
	}
}
