// Package validator checks flow graphs before they are stored or published.
// All checks are pure; repeated validation of a valid graph always succeeds.
package validator

import (
	"strings"

	"github.com/viant/flowcore/model/flow"
	"github.com/viant/flowcore/model/types"
)

// Service validates graphs against a node type registry.
type Service struct {
	registry *types.Registry
}

// New creates a validator.
func New(registry *types.Registry) *Service {
	if registry == nil {
		registry = types.DefaultRegistry()
	}
	return &Service{registry: registry}
}

// Registry returns the node type registry.
func (s *Service) Registry() *types.Registry {
	return s.registry
}

// Validate runs the structural, topology, node and edge configuration checks
// in order, returning the first problem found.
func (s *Service) Validate(graph *flow.Graph) error {
	if graph == nil {
		return newError(ReasonStructure, "graph is empty")
	}
	checks := []func(*flow.Graph) error{
		s.checkStructure,
		s.checkTopology,
		s.checkNodeConfig,
		s.checkEdgeConfig,
	}
	for _, check := range checks {
		if err := check(graph); err != nil {
			return err
		}
	}
	return nil
}

// ValidateForPublish runs Validate followed by the publish-only rules: START
// and END exist, every node is reachable from START, control and LLM nodes
// carry configuration.
func (s *Service) ValidateForPublish(graph *flow.Graph) error {
	if err := s.Validate(graph); err != nil {
		return err
	}
	return s.checkPublish(graph)
}

func (s *Service) checkStructure(graph *flow.Graph) error {
	seen := make(map[string]bool, len(graph.Nodes))
	for i, node := range graph.Nodes {
		if node == nil {
			return newError(ReasonStructure, "node[%d] is nil", i)
		}
		if strings.TrimSpace(node.Key) == "" {
			return newError(ReasonStructure, "node[%d] has empty key", i)
		}
		if seen[node.Key] {
			err := newError(ReasonStructure, "duplicate node key")
			err.NodeKey = node.Key
			return err
		}
		seen[node.Key] = true
		if !s.registry.IsValidNodeType(node.TypeCode) {
			err := newError(ReasonStructure, "unknown node type %q", node.TypeCode)
			err.NodeKey = node.Key
			return err
		}
		if _, perr := flow.ParseRetryPolicy(node.RetryPolicy); perr != nil {
			err := newError(ReasonStructure, "invalid retry policy")
			err.NodeKey = node.Key
			err.Err = perr
			return err
		}
	}
	for i, edge := range graph.Edges {
		if edge == nil {
			return newError(ReasonStructure, "edge[%d] is nil", i)
		}
		if !seen[edge.Source] {
			return newError(ReasonStructure, "edge[%d] references unknown source %q", i, edge.Source)
		}
		if !seen[edge.Target] {
			return newError(ReasonStructure, "edge[%d] references unknown target %q", i, edge.Target)
		}
	}
	return nil
}

func (s *Service) checkNodeConfig(graph *flow.Graph) error {
	for _, node := range graph.Nodes {
		if cerr := s.registry.ValidateNodeConfig(node.TypeCode, node.Config); cerr != nil {
			err := newError(ReasonNodeConfig, "invalid node configuration")
			err.NodeKey = node.Key
			err.Err = cerr
			return err
		}
	}
	return nil
}

func (s *Service) checkEdgeConfig(graph *flow.Graph) error {
	index := graph.NodeIndex()
	for _, edge := range graph.Edges {
		source := index[edge.Source]
		if cerr := s.registry.ValidateEdgeConfig(source.TypeCode, edge.Config); cerr != nil {
			err := newError(ReasonEdgeConfig, "invalid configuration of edge %v->%v", edge.Source, edge.Target)
			err.NodeKey = edge.Source
			err.Err = cerr
			return err
		}
	}
	return nil
}
