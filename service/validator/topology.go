package validator

import (
	"sort"
	"strings"

	"github.com/viant/flowcore/model/flow"
)

func (s *Service) checkTopology(graph *flow.Graph) error {
	if err := detectCycle(graph); err != nil {
		return err
	}
	if err := s.checkIsolated(graph); err != nil {
		return err
	}
	return s.checkSpecialNodes(graph)
}

// detectCycle runs a white/grey/black DFS; a back edge to a grey node aborts
// with a single error listing the nodes on the cycle.
func detectCycle(graph *flow.Graph) error {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	adjacency := graph.Adjacency()
	colour := make(map[string]int, len(graph.Nodes))
	var path []string
	var cycle []string

	var visit func(key string) bool
	visit = func(key string) bool {
		colour[key] = grey
		path = append(path, key)
		for _, next := range adjacency[key] {
			switch colour[next] {
			case grey:
				for i := len(path) - 1; i >= 0; i-- {
					if path[i] == next {
						cycle = append(append([]string{}, path[i:]...), next)
						break
					}
				}
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		colour[key] = black
		return false
	}

	for _, node := range graph.Nodes {
		if colour[node.Key] != white {
			continue
		}
		if visit(node.Key) {
			err := newError(ReasonCycle, "graph contains a cycle")
			err.Nodes = cycle
			return err
		}
	}
	return nil
}

func (s *Service) checkIsolated(graph *flow.Graph) error {
	incident := make(map[string]bool, len(graph.Nodes))
	for _, edge := range graph.Edges {
		incident[edge.Source] = true
		incident[edge.Target] = true
	}
	var isolated []string
	for _, node := range graph.Nodes {
		if s.registry.IsStart(node.TypeCode) || s.registry.IsEnd(node.TypeCode) {
			continue
		}
		if !incident[node.Key] {
			isolated = append(isolated, node.Key)
		}
	}
	if len(isolated) > 0 {
		err := newError(ReasonIsolated, "isolated nodes")
		err.Nodes = isolated
		return err
	}
	return nil
}

func (s *Service) checkSpecialNodes(graph *flow.Graph) error {
	inDegree := graph.InDegree()
	outDegree := graph.OutDegree()
	var starts, ends []string
	for _, node := range graph.Nodes {
		switch {
		case s.registry.IsStart(node.TypeCode):
			starts = append(starts, node.Key)
		case s.registry.IsEnd(node.TypeCode):
			ends = append(ends, node.Key)
		}
	}
	if len(starts) > 1 {
		err := newError(ReasonStart, "more than one START node")
		err.Nodes = starts
		return err
	}
	for _, key := range starts {
		if inDegree[key] > 0 {
			err := newError(ReasonStart, "START node must not have incoming edges")
			err.NodeKey = key
			return err
		}
	}
	if len(ends) == 0 {
		return newError(ReasonEnd, "at least one END node is required")
	}
	for _, key := range ends {
		if outDegree[key] > 0 {
			err := newError(ReasonEnd, "END node must not have outgoing edges")
			err.NodeKey = key
			return err
		}
	}
	return nil
}

func (s *Service) checkPublish(graph *flow.Graph) error {
	var start string
	hasEnd := false
	for _, node := range graph.Nodes {
		if s.registry.IsStart(node.TypeCode) {
			start = node.Key
		}
		if s.registry.IsEnd(node.TypeCode) {
			hasEnd = true
		}
	}
	if start == "" {
		return newError(ReasonStart, "a START node is required to publish")
	}
	if !hasEnd {
		return newError(ReasonEnd, "an END node is required to publish")
	}
	if unreachable := unreachableFrom(graph, start); len(unreachable) > 0 {
		err := newError(ReasonReachable, "nodes are not reachable from START")
		err.Nodes = unreachable
		return err
	}
	for _, node := range graph.Nodes {
		if s.registry.RequiresConfig(node.TypeCode) && isBlank(node.Config) {
			err := newError(ReasonNodeConfig, "%v node requires configuration", node.TypeCode)
			err.NodeKey = node.Key
			return err
		}
	}
	return nil
}

// unreachableFrom runs a BFS over forward edges and returns the keys never
// visited, sorted.
func unreachableFrom(graph *flow.Graph, start string) []string {
	adjacency := graph.Adjacency()
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[key] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	var ret []string
	for _, node := range graph.Nodes {
		if !visited[node.Key] {
			ret = append(ret, node.Key)
		}
	}
	sort.Strings(ret)
	return ret
}

func isBlank(config string) bool {
	switch strings.TrimSpace(config) {
	case "", "{}", "null":
		return true
	}
	return false
}
