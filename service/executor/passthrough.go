package executor

import (
	"context"

	"github.com/viant/flowcore/model/snapshot"
	"github.com/viant/flowcore/model/types"
)

// ContextField is the reserved input field carrying run metadata.
const ContextField = "_context"

// Passthrough returns its input, without the reserved context block, as the
// node output. It serves START, END and TASK nodes that carry no logic of
// their own.
type Passthrough struct {
	name  string
	types []string
}

// NewPassthrough creates a pass-through executor for the given type codes;
// with none it serves START, END and TASK.
func NewPassthrough(typeCodes ...string) *Passthrough {
	if len(typeCodes) == 0 {
		typeCodes = []string{types.TypeStart, types.TypeEnd, types.TypeTask}
	}
	return &Passthrough{name: "passthrough", types: typeCodes}
}

// Named returns a copy registered under name.
func (p *Passthrough) Named(name string) *Passthrough {
	return &Passthrough{name: name, types: p.types}
}

func (p *Passthrough) Name() string {
	if p.name == "" {
		return "passthrough"
	}
	return p.name
}

func (p *Passthrough) SupportedTypes() []string { return append([]string{}, p.types...) }

func (p *Passthrough) IsHealthy() bool { return true }

func (p *Passthrough) Execute(ctx context.Context, _ *snapshot.Node, input map[string]interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	output := make(map[string]interface{}, len(input))
	for k, v := range input {
		if k == ContextField {
			continue
		}
		output[k] = v
	}
	return output, nil
}
