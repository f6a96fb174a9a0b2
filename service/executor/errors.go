package executor

import "errors"

var (
	ErrDuplicateType = errors.New("executor: node type claimed by more than one executor")
	ErrNoTypes       = errors.New("executor: executor supports no node types")
	ErrDuplicateName = errors.New("executor: executor name registered more than once")
)
