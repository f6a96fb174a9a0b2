package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrRunNotFound is returned by Stop for an unknown or finished run.
	ErrRunNotFound = errors.New("engine: run not found")
	// ErrNotStarted is returned by Execute before Start.
	ErrNotStarted = errors.New("engine: not started")
	// ErrShutdown is the cause of runs interrupted by Shutdown.
	ErrShutdown = errors.New("engine: shutting down")
)

// Error codes.
const (
	CodeSnapshotUnavailable = "SNAPSHOT_UNAVAILABLE"
	CodeNodeNotFound        = "NODE_NOT_FOUND"
	CodeExecutorNotFound    = "EXECUTOR_NOT_FOUND"
	CodeDependency          = "DEPENDENCY_NOT_MET"
	CodeExecution           = "EXECUTION_ERROR"
	CodeTimeout             = "TIMEOUT"
	CodeInterrupted         = "INTERRUPTED"
)

// SnapshotUnavailableError reports a definition without a published snapshot.
type SnapshotUnavailableError struct {
	DefinitionID string
	Err          error
}

func (e *SnapshotUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no snapshot available for definition %v: %v", e.DefinitionID, e.Err)
	}
	return fmt.Sprintf("no snapshot available for definition %v", e.DefinitionID)
}

func (e *SnapshotUnavailableError) Unwrap() error { return e.Err }
func (e *SnapshotUnavailableError) Code() string  { return CodeSnapshotUnavailable }

// NodeNotFoundError reports a plan entry missing from the node table.
type NodeNotFoundError struct {
	NodeKey string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %v not found in snapshot", e.NodeKey)
}
func (e *NodeNotFoundError) Code() string { return CodeNodeNotFound }
func (e *NodeNotFoundError) Node() string { return e.NodeKey }

// ExecutorNotFoundError reports a node type without an executor.
type ExecutorNotFoundError struct {
	NodeKey  string
	TypeCode string
}

func (e *ExecutorNotFoundError) Error() string {
	return fmt.Sprintf("no executor for node %v of type %v", e.NodeKey, e.TypeCode)
}
func (e *ExecutorNotFoundError) Code() string { return CodeExecutorNotFound }
func (e *ExecutorNotFoundError) Node() string { return e.NodeKey }

// DependencyError reports a node reached before its predecessors completed,
// which means the execution plan disagrees with the dependency graph.
type DependencyError struct {
	NodeKey string
	Missing []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("node %v reached with unmet dependencies [%v]", e.NodeKey, strings.Join(e.Missing, ", "))
}
func (e *DependencyError) Code() string { return CodeDependency }
func (e *DependencyError) Node() string { return e.NodeKey }

// NodeExecutionError reports a node that failed after its retry policy was
// exhausted.
type NodeExecutionError struct {
	NodeKey  string
	Attempts int
	Err      error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %v failed after %d attempt(s): %v", e.NodeKey, e.Attempts, e.Err)
}
func (e *NodeExecutionError) Unwrap() error   { return e.Err }
func (e *NodeExecutionError) Code() string    { return CodeExecution }
func (e *NodeExecutionError) Node() string    { return e.NodeKey }
func (e *NodeExecutionError) Retryable() bool { return true }

// TimeoutError reports a run that exceeded the caller's timeout.
type TimeoutError struct {
	RunID   string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("run %v timed out after %v", e.RunID, e.Timeout)
}
func (e *TimeoutError) Code() string { return CodeTimeout }

// InterruptedError reports a run stopped explicitly or by caller
// cancellation.
type InterruptedError struct {
	RunID string
	Cause error
}

func (e *InterruptedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("run %v interrupted: %v", e.RunID, e.Cause)
	}
	return fmt.Sprintf("run %v interrupted", e.RunID)
}
func (e *InterruptedError) Unwrap() error { return e.Cause }
func (e *InterruptedError) Code() string  { return CodeInterrupted }

// IsInterruption reports whether err ends a run as INTERRUPTED.
func IsInterruption(err error) bool {
	var timeoutErr *TimeoutError
	var interruptedErr *InterruptedError
	return errors.As(err, &timeoutErr) || errors.As(err, &interruptedErr)
}

// ErrorCode returns the code of a taxonomy error, or an empty string.
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

func failedNode(err error) string {
	var nodeErr interface{ Node() string }
	if errors.As(err, &nodeErr) {
		return nodeErr.Node()
	}
	return ""
}
