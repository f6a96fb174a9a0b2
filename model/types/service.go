package types

import (
	"context"

	"github.com/viant/flowcore/model/snapshot"
)

// Executor runs nodes of the types it supports.
//
// Execute receives the node description and its assembled input. The context
// carries cancellation and the run's execution context.
type Executor interface {
	Name() string
	SupportedTypes() []string
	Execute(ctx context.Context, node *snapshot.Node, input map[string]interface{}) (interface{}, error)
	IsHealthy() bool
}
