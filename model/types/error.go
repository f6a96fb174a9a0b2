package types

import "fmt"

// ConfigValidationError reports an invalid node or edge configuration.
type ConfigValidationError struct {
	TypeCode string
	Reason   string
	Err      error
}

func (e *ConfigValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %v config: %v: %v", e.TypeCode, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %v config: %v", e.TypeCode, e.Reason)
}

func (e *ConfigValidationError) Unwrap() error { return e.Err }

// NewConfigValidationError returns a *ConfigValidationError.
func NewConfigValidationError(typeCode, reason string, err error) error {
	return &ConfigValidationError{TypeCode: typeCode, Reason: reason, Err: err}
}
