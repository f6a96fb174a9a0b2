package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/flowcore/model/flow"
	"github.com/viant/flowcore/model/types"
)

func node(key, typeCode string) *flow.Node {
	return &flow.Node{Key: key, TypeCode: typeCode}
}

func edge(source, target string) *flow.Edge {
	return &flow.Edge{Source: source, Target: target}
}

func linear() *flow.Graph {
	return &flow.Graph{
		Nodes: []*flow.Node{node("start", types.TypeStart), node("a", types.TypeTask), node("end", types.TypeEnd)},
		Edges: []*flow.Edge{edge("start", "a"), edge("a", "end")},
	}
}

func TestService_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		graph       *flow.Graph
		expectErr   bool
		expectCause string
		expectNode  string
	}{
		{name: "linear", graph: linear()},
		{
			name: "diamond",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("s", "START"), node("a", "TASK"), node("b", "TASK"), node("e", "END")},
				Edges: []*flow.Edge{edge("s", "a"), edge("s", "b"), edge("a", "e"), edge("b", "e")},
			},
		},
		{
			name:        "duplicate key",
			graph:       &flow.Graph{Nodes: []*flow.Node{node("s", "START"), node("s", "TASK"), node("e", "END")}},
			expectErr:   true,
			expectCause: ReasonStructure,
			expectNode:  "s",
		},
		{
			name:        "empty key",
			graph:       &flow.Graph{Nodes: []*flow.Node{node("", "TASK")}},
			expectErr:   true,
			expectCause: ReasonStructure,
		},
		{
			name: "unknown edge target",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("s", "START"), node("e", "END")},
				Edges: []*flow.Edge{edge("s", "x")},
			},
			expectErr:   true,
			expectCause: ReasonStructure,
		},
		{
			name:        "unknown type",
			graph:       &flow.Graph{Nodes: []*flow.Node{node("s", "HTTP")}},
			expectErr:   true,
			expectCause: ReasonStructure,
			expectNode:  "s",
		},
		{
			name: "invalid retry policy",
			graph: &flow.Graph{
				Nodes: []*flow.Node{{Key: "a", TypeCode: "TASK", RetryPolicy: "{"}},
			},
			expectErr:   true,
			expectCause: ReasonStructure,
			expectNode:  "a",
		},
		{
			name: "cycle",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("s", "START"), node("a", "TASK"), node("b", "TASK"), node("e", "END")},
				Edges: []*flow.Edge{edge("s", "a"), edge("a", "b"), edge("b", "a"), edge("b", "e")},
			},
			expectErr:   true,
			expectCause: ReasonCycle,
		},
		{
			name: "self loop",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("s", "START"), node("a", "TASK"), node("e", "END")},
				Edges: []*flow.Edge{edge("s", "a"), edge("a", "a"), edge("a", "e")},
			},
			expectErr:   true,
			expectCause: ReasonCycle,
		},
		{
			name: "isolated task",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("s", "START"), node("a", "TASK"), node("lonely", "TASK"), node("e", "END")},
				Edges: []*flow.Edge{edge("s", "a"), edge("a", "e")},
			},
			expectErr:   true,
			expectCause: ReasonIsolated,
		},
		{
			name: "two starts",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("s1", "START"), node("s2", "START"), node("e", "END")},
				Edges: []*flow.Edge{edge("s1", "e"), edge("s2", "e")},
			},
			expectErr:   true,
			expectCause: ReasonStart,
		},
		{
			name: "no end",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("s", "START"), node("a", "TASK")},
				Edges: []*flow.Edge{edge("s", "a")},
			},
			expectErr:   true,
			expectCause: ReasonEnd,
		},
		{
			// B -> START -> A has no cycle; it is rejected because START takes an incoming edge
			name: "start with incoming edge is not a cycle",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("START", "START"), node("A", "TASK"), node("B", "TASK")},
				Edges: []*flow.Edge{edge("START", "A"), edge("B", "START")},
			},
			expectErr:   true,
			expectCause: ReasonStart,
			expectNode:  "START",
		},
		{
			name: "end with outgoing edge",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("s", "START"), node("e", "END"), node("a", "TASK")},
				Edges: []*flow.Edge{edge("s", "e"), edge("e", "a")},
			},
			expectErr:   true,
			expectCause: ReasonEnd,
			expectNode:  "e",
		},
		{
			name: "node config wrapped with key",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("s", "START"), {Key: "c", TypeCode: "CONDITION", Config: `{"x":1}`}, node("e", "END")},
				Edges: []*flow.Edge{edge("s", "c"), edge("c", "e")},
			},
			expectErr:   true,
			expectCause: ReasonNodeConfig,
			expectNode:  "c",
		},
		{
			name: "edge config not an object",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("s", "START"), node("e", "END")},
				Edges: []*flow.Edge{{Source: "s", Target: "e", Config: `[1,2]`}},
			},
			expectErr:   true,
			expectCause: ReasonEdgeConfig,
			expectNode:  "s",
		},
	}

	srv := New(types.DefaultRegistry())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := srv.Validate(tc.graph)
			if !tc.expectErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), err.Error())
			assert.Equal(t, tc.expectCause, validationErr.Reason, err.Error())
			if tc.expectNode != "" {
				assert.Equal(t, tc.expectNode, validationErr.NodeKey)
			}
		})
	}
}

func TestService_ValidateForPublish(t *testing.T) {
	testCases := []struct {
		name        string
		graph       *flow.Graph
		expectCause string
	}{
		{name: "linear", graph: linear()},
		{
			name: "end unreachable",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("START", "START"), node("A", "TASK"), node("END", "END")},
				Edges: []*flow.Edge{edge("START", "A")},
			},
			expectCause: ReasonReachable,
		},
		{
			name: "no start",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("a", "TASK"), node("e", "END")},
				Edges: []*flow.Edge{edge("a", "e")},
			},
			expectCause: ReasonStart,
		},
		{
			name: "control without config",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("s", "START"), node("p", "PARALLEL"), node("e", "END")},
				Edges: []*flow.Edge{edge("s", "p"), edge("p", "e")},
			},
			expectCause: ReasonNodeConfig,
		},
		{
			name: "llm with empty object",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("s", "START"), {Key: "l", TypeCode: "LLM", Config: "{}"}, node("e", "END")},
				Edges: []*flow.Edge{edge("s", "l"), edge("l", "e")},
			},
			expectCause: ReasonNodeConfig,
		},
		{
			name: "control with config",
			graph: &flow.Graph{
				Nodes: []*flow.Node{node("s", "START"), {Key: "p", TypeCode: "PARALLEL", Config: `{"branches":2}`}, node("e", "END")},
				Edges: []*flow.Edge{edge("s", "p"), edge("p", "e")},
			},
		},
	}
	srv := New(nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := srv.ValidateForPublish(tc.graph)
			if tc.expectCause == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tc.expectCause, validationErr.Reason, err.Error())
		})
	}
}

func TestService_EndUnreachableMessage(t *testing.T) {
	graph := &flow.Graph{
		Nodes: []*flow.Node{node("START", "START"), node("A", "TASK"), node("END", "END")},
		Edges: []*flow.Edge{edge("START", "A")},
	}
	err := New(nil).ValidateForPublish(graph)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not reachable")
	assert.Contains(t, err.Error(), "END")
}

func TestService_CycleReportsPath(t *testing.T) {
	graph := &flow.Graph{
		Nodes: []*flow.Node{node("s", "START"), node("a", "TASK"), node("b", "TASK"), node("c", "TASK"), node("e", "END")},
		Edges: []*flow.Edge{edge("s", "a"), edge("a", "b"), edge("b", "c"), edge("c", "a"), edge("c", "e")},
	}
	err := New(nil).Validate(graph)
	assert.True(t, IsCycle(err))
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, []string{"a", "b", "c", "a"}, validationErr.Nodes)
}

func TestService_Idempotent(t *testing.T) {
	graph := linear()
	before := graph.Clone()
	srv := New(nil)
	for i := 0; i < 3; i++ {
		assert.NoError(t, srv.ValidateForPublish(graph))
	}
	assert.Equal(t, before, graph)
}
