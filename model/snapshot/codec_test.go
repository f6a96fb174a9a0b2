package snapshot

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	doc := &Document{
		DefinitionID: "orders",
		Version:      3,
		Nodes: map[string]*Node{
			"start": {Key: "start", TypeCode: "START"},
			"a":     {Key: "a", TypeCode: "TASK", Name: "A", Config: `{"x":1}`, RetryPolicy: `{"maxRetries":2}`},
			"end":   {Key: "end", TypeCode: "END"},
		},
		ExecutionPlan:   []string{"start", "a", "end"},
		DependencyGraph: map[string][]string{"a": {"start"}, "end": {"a"}},
		Metadata:        &Metadata{NodeCount: 3, EdgeCount: 2, ComplexityScore: 5, StartNode: "start", EndNodes: []string{"end"}},
	}
	data, err := Encode(doc)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	if diff := cmp.Diff(doc, decoded); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}

	again, err := Encode(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestCodec_Format(t *testing.T) {
	doc := &Document{
		DefinitionID:    "d",
		Version:         1,
		Nodes:           map[string]*Node{"s": {TypeCode: "START", Config: `{}`}},
		ExecutionPlan:   []string{"s"},
		DependencyGraph: map[string][]string{},
		Metadata:        &Metadata{NodeCount: 1},
	}
	data, err := Encode(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"definitionId":"d",
		"version":1,
		"nodes":{"s":{"typeCode":"START","configJson":"{}"}},
		"executionPlan":["s"],
		"dependencyGraph":{},
		"metadata":{"nodeCount":1,"edgeCount":0,"parallel":false,"complexityScore":0}
	}`, string(data))
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)
	_, err = Decode([]byte("{"))
	assert.Error(t, err)
}

func TestDocument_Dependents(t *testing.T) {
	doc := &Document{
		ExecutionPlan:   []string{"s", "a", "b", "e"},
		DependencyGraph: map[string][]string{"a": {"s"}, "b": {"s"}, "e": {"a", "b"}},
	}
	assert.Equal(t, map[string][]string{"s": {"a", "b"}, "a": {"e"}, "b": {"e"}}, doc.Dependents())
}
