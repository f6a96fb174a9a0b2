// Package builder compiles validated definitions into immutable snapshots.
package builder

import (
	"fmt"

	"github.com/viant/flowcore/internal/clock"
	"github.com/viant/flowcore/internal/idgen"
	"github.com/viant/flowcore/model/flow"
	"github.com/viant/flowcore/model/snapshot"
	"github.com/viant/flowcore/model/types"
	"github.com/viant/flowcore/service/validator"
)

// Service builds snapshots.
type Service struct {
	registry *types.Registry
}

// New creates a builder.
func New(registry *types.Registry) *Service {
	if registry == nil {
		registry = types.DefaultRegistry()
	}
	return &Service{registry: registry}
}

// Document compiles the graph of a definition at the given version.
func (s *Service) Document(definition *flow.Definition, version int) (*snapshot.Document, error) {
	if definition == nil || definition.Graph == nil {
		return nil, fmt.Errorf("builder: definition is empty")
	}
	graph := definition.Graph
	plan, err := ExecutionPlan(graph)
	if err != nil {
		return nil, err
	}
	nodes := make(map[string]*snapshot.Node, len(graph.Nodes))
	for _, node := range graph.Nodes {
		nodes[node.Key] = &snapshot.Node{
			Key:         node.Key,
			TypeCode:    node.TypeCode,
			Name:        node.Name,
			Config:      node.Config,
			RetryPolicy: node.RetryPolicy,
		}
	}
	return &snapshot.Document{
		DefinitionID:    definition.ID,
		DefinitionName:  definition.Name,
		Version:         version,
		Nodes:           nodes,
		ExecutionPlan:   plan,
		DependencyGraph: DependencyGraph(graph),
		Metadata:        s.metadata(graph),
	}, nil
}

// Build compiles and serializes a snapshot for the given version.
func (s *Service) Build(definition *flow.Definition, version int) (*snapshot.Snapshot, error) {
	doc, err := s.Document(definition, version)
	if err != nil {
		return nil, err
	}
	data, err := snapshot.Encode(doc)
	if err != nil {
		return nil, err
	}
	return &snapshot.Snapshot{
		ID:           idgen.Snapshot(definition.ID, version),
		DefinitionID: definition.ID,
		Version:      version,
		Document:     string(data),
		CreatedAt:    clock.Now(),
	}, nil
}

// ExecutionPlan returns a topological order using Kahn's algorithm. Ties are
// broken by node declaration order and then by edge order.
func ExecutionPlan(graph *flow.Graph) ([]string, error) {
	inDegree := graph.InDegree()
	adjacency := graph.Adjacency()
	queue := make([]string, 0, len(graph.Nodes))
	for _, node := range graph.Nodes {
		if inDegree[node.Key] == 0 {
			queue = append(queue, node.Key)
		}
	}
	plan := make([]string, 0, len(graph.Nodes))
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		plan = append(plan, key)
		for _, next := range adjacency[key] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if len(plan) != len(graph.Nodes) {
		var pending []string
		for _, node := range graph.Nodes {
			if inDegree[node.Key] > 0 {
				pending = append(pending, node.Key)
			}
		}
		return nil, &validator.ValidationError{Reason: validator.ReasonCycle, Message: "graph contains a cycle", Nodes: pending}
	}
	return plan, nil
}

// DependencyGraph maps each target to its predecessors, in edge order.
func DependencyGraph(graph *flow.Graph) map[string][]string {
	ret := make(map[string][]string)
	for _, edge := range graph.Edges {
		ret[edge.Target] = append(ret[edge.Target], edge.Source)
	}
	return ret
}

func (s *Service) metadata(graph *flow.Graph) *snapshot.Metadata {
	ret := &snapshot.Metadata{
		NodeCount: len(graph.Nodes),
		EdgeCount: len(graph.Edges),
	}
	control := 0
	for _, node := range graph.Nodes {
		switch {
		case s.registry.IsStart(node.TypeCode):
			ret.StartNode = node.Key
		case s.registry.IsEnd(node.TypeCode):
			ret.EndNodes = append(ret.EndNodes, node.Key)
		}
		if s.registry.IsControl(node.TypeCode) {
			control++
		}
		if s.registry.IsParallel(node.TypeCode) {
			ret.Parallel = true
		}
	}
	ret.ComplexityScore = ret.NodeCount + ret.EdgeCount + 2*control
	return ret
}
