package executor

import (
	"context"
	"fmt"
	"sort"

	"github.com/viant/flowcore/model/snapshot"
	"github.com/viant/flowcore/model/types"
)

// Listener is invoked once a node executor returns, with or without error.
type Listener func(node *snapshot.Node, input map[string]interface{}, output interface{}, err error)

// Option customises the registry.
type Option func(*Registry)

// WithListener installs a listener invoked after every execution.
func WithListener(l Listener) Option {
	return func(r *Registry) {
		r.listener = l
	}
}

// Registry maps node type codes to executors. It is built once and never
// modified.
type Registry struct {
	byType    map[string]types.Executor
	executors []types.Executor
	listener  Listener
}

// New builds a registry. A type code claimed by two executors, or two
// executors sharing a name, is an error.
func New(executors []types.Executor, options ...Option) (*Registry, error) {
	ret := &Registry{byType: map[string]types.Executor{}}
	for _, option := range options {
		option(ret)
	}
	names := map[string]bool{}
	for _, exec := range executors {
		if exec == nil {
			continue
		}
		if names[exec.Name()] {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateName, exec.Name())
		}
		names[exec.Name()] = true
		supported := exec.SupportedTypes()
		if len(supported) == 0 {
			return nil, fmt.Errorf("%w: %v", ErrNoTypes, exec.Name())
		}
		if ret.listener != nil {
			exec = &observed{Executor: exec, listener: ret.listener}
		}
		for _, code := range supported {
			if prev, ok := ret.byType[code]; ok {
				return nil, fmt.Errorf("%w: %v by %v and %v", ErrDuplicateType, code, prev.Name(), exec.Name())
			}
			ret.byType[code] = exec
		}
		ret.executors = append(ret.executors, exec)
	}
	return ret, nil
}

// Lookup returns the executor for a node type code.
func (r *Registry) Lookup(typeCode string) (types.Executor, bool) {
	ret, ok := r.byType[typeCode]
	return ret, ok
}

// Types returns the supported type codes, sorted.
func (r *Registry) Types() []string {
	ret := make([]string, 0, len(r.byType))
	for code := range r.byType {
		ret = append(ret, code)
	}
	sort.Strings(ret)
	return ret
}

// Health reports IsHealthy per executor name.
func (r *Registry) Health() map[string]bool {
	ret := make(map[string]bool, len(r.executors))
	for _, exec := range r.executors {
		ret[exec.Name()] = exec.IsHealthy()
	}
	return ret
}

type observed struct {
	types.Executor
	listener Listener
}

func (o *observed) Execute(ctx context.Context, node *snapshot.Node, input map[string]interface{}) (interface{}, error) {
	output, err := o.Executor.Execute(ctx, node, input)
	o.listener(node, input, output, err)
	return output, err
}
