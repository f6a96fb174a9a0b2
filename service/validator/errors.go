package validator

import (
	"errors"
	"fmt"
	"strings"
)

// Validation problem categories.
const (
	ReasonStructure  = "structure"
	ReasonCycle      = "cycle"
	ReasonIsolated   = "isolated"
	ReasonStart      = "start"
	ReasonEnd        = "end"
	ReasonNodeConfig = "node_config"
	ReasonEdgeConfig = "edge_config"
	ReasonReachable  = "unreachable"
)

// ValidationError reports a graph problem. It is never retried.
type ValidationError struct {
	Reason  string
	NodeKey string
	Nodes   []string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed")
	if e.NodeKey != "" {
		sb.WriteString(fmt.Sprintf(" at node %q", e.NodeKey))
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if len(e.Nodes) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(e.Nodes, ", "))
		sb.WriteString("]")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsCycle reports whether err reports a cycle.
func IsCycle(err error) bool {
	var target *ValidationError
	return errors.As(err, &target) && target.Reason == ReasonCycle
}

func newError(reason, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}
