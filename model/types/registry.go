// Package types defines node types, their configuration validators and the
// executor plugin contract.
package types

import (
	"strings"

	"github.com/viant/flowcore/internal/xjson"
)

// Kind groups node types by role.
type Kind string

const (
	KindStart   Kind = "start"
	KindEnd     Kind = "end"
	KindTask    Kind = "task"
	KindControl Kind = "control"
	KindLLM     Kind = "llm"
)

// Built-in type codes.
const (
	TypeStart     = "START"
	TypeEnd       = "END"
	TypeTask      = "TASK"
	TypeCondition = "CONDITION"
	TypeParallel  = "PARALLEL"
	TypeLLM       = "LLM"
)

// Validator checks a JSON configuration document.
type Validator func(config string) error

// NodeType describes a registered node type.
type NodeType struct {
	Code     string
	Kind     Kind
	Parallel bool
	// Config validates node configJson; nil accepts any JSON object.
	Config Validator
	// Edge validates configJson of edges leaving nodes of this type; nil
	// accepts any JSON object.
	Edge Validator
}

// Registry is an immutable set of node types.
type Registry struct {
	types map[string]*NodeType
}

// NewRegistry returns a registry of the supplied types. Later duplicates
// replace earlier ones.
func NewRegistry(nodeTypes ...*NodeType) *Registry {
	ret := &Registry{types: make(map[string]*NodeType, len(nodeTypes))}
	for _, nodeType := range nodeTypes {
		if nodeType == nil || nodeType.Code == "" {
			continue
		}
		ret.types[nodeType.Code] = nodeType
	}
	return ret
}

// DefaultRegistry returns START, END, TASK, CONDITION, PARALLEL and LLM.
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultTypes()...)
}

// DefaultTypes returns the built-in node types.
func DefaultTypes() []*NodeType {
	return []*NodeType{
		{Code: TypeStart, Kind: KindStart},
		{Code: TypeEnd, Kind: KindEnd},
		{Code: TypeTask, Kind: KindTask},
		{Code: TypeCondition, Kind: KindControl, Config: RequireFields(TypeCondition, "expression")},
		{Code: TypeParallel, Kind: KindControl, Parallel: true},
		{Code: TypeLLM, Kind: KindLLM, Config: RequireFields(TypeLLM, "prompt")},
	}
}

// Lookup returns the node type for code.
func (r *Registry) Lookup(code string) (*NodeType, bool) {
	ret, ok := r.types[code]
	return ret, ok
}

// IsValidNodeType reports whether code is registered.
func (r *Registry) IsValidNodeType(code string) bool {
	_, ok := r.types[code]
	return ok
}

// Codes returns all registered type codes.
func (r *Registry) Codes() []string {
	ret := make([]string, 0, len(r.types))
	for code := range r.types {
		ret = append(ret, code)
	}
	return ret
}

func (r *Registry) is(code string, kind Kind) bool {
	nodeType, ok := r.types[code]
	return ok && nodeType.Kind == kind
}

func (r *Registry) IsStart(code string) bool   { return r.is(code, KindStart) }
func (r *Registry) IsEnd(code string) bool     { return r.is(code, KindEnd) }
func (r *Registry) IsControl(code string) bool { return r.is(code, KindControl) }
func (r *Registry) IsLLM(code string) bool     { return r.is(code, KindLLM) }

// IsParallel reports whether code is the parallel type.
func (r *Registry) IsParallel(code string) bool {
	nodeType, ok := r.types[code]
	return ok && nodeType.Parallel
}

// RequiresConfig reports whether nodes of this type must carry configuration
// before publishing.
func (r *Registry) RequiresConfig(code string) bool {
	return r.IsControl(code) || r.IsLLM(code)
}

// ValidateNodeConfig validates a node configuration document.
func (r *Registry) ValidateNodeConfig(code, config string) error {
	nodeType, ok := r.types[code]
	if !ok {
		return NewConfigValidationError(code, "unknown node type", nil)
	}
	if err := objectOrEmpty(code, config); err != nil {
		return err
	}
	if nodeType.Config == nil {
		return nil
	}
	return nodeType.Config(config)
}

// ValidateEdgeConfig validates the configuration of an edge leaving a node of
// type sourceCode.
func (r *Registry) ValidateEdgeConfig(sourceCode, config string) error {
	if err := objectOrEmpty(sourceCode, config); err != nil {
		return err
	}
	nodeType, ok := r.types[sourceCode]
	if !ok || nodeType.Edge == nil {
		return nil
	}
	return nodeType.Edge(config)
}

func objectOrEmpty(code, config string) error {
	if strings.TrimSpace(config) == "" {
		return nil
	}
	var doc map[string]interface{}
	if err := xjson.Unmarshal([]byte(config), &doc); err != nil {
		return NewConfigValidationError(code, "expected JSON object", err)
	}
	return nil
}

// RequireFields returns a validator that accepts an empty config and
// otherwise requires every named field to be present and non-empty.
func RequireFields(code string, fields ...string) Validator {
	return func(config string) error {
		if strings.TrimSpace(config) == "" {
			return nil
		}
		var doc map[string]interface{}
		if err := xjson.Unmarshal([]byte(config), &doc); err != nil {
			return NewConfigValidationError(code, "expected JSON object", err)
		}
		for _, field := range fields {
			value, ok := doc[field]
			if !ok || value == nil || value == "" {
				return NewConfigValidationError(code, "missing "+field, nil)
			}
		}
		return nil
	}
}
