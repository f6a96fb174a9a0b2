// Package snapshot defines the immutable execution artifact produced when a
// flow definition is published.
package snapshot

import (
	"time"
)

// Node is the executable description of a single node.
type Node struct {
	Key         string `json:"-"`
	TypeCode    string `json:"typeCode"`
	Name        string `json:"name,omitempty"`
	Config      string `json:"configJson,omitempty"`
	RetryPolicy string `json:"retryPolicyJson,omitempty"`
}

// Metadata summarises the compiled graph.
type Metadata struct {
	NodeCount       int      `json:"nodeCount"`
	EdgeCount       int      `json:"edgeCount"`
	Parallel        bool     `json:"parallel"`
	ComplexityScore int      `json:"complexityScore"`
	StartNode       string   `json:"startNode,omitempty"`
	EndNodes        []string `json:"endNodes,omitempty"`
}

// Document is the self-contained content of a snapshot.
type Document struct {
	DefinitionID    string              `json:"definitionId"`
	DefinitionName  string              `json:"definitionName,omitempty"`
	Version         int                 `json:"version"`
	Nodes           map[string]*Node    `json:"nodes"`
	ExecutionPlan   []string            `json:"executionPlan"`
	DependencyGraph map[string][]string `json:"dependencyGraph"`
	Metadata        *Metadata           `json:"metadata"`
}

// Node returns the node for key, or nil.
func (d *Document) Node(key string) *Node {
	if d == nil || d.Nodes == nil {
		return nil
	}
	return d.Nodes[key]
}

// Dependencies returns the predecessors of key.
func (d *Document) Dependencies(key string) []string {
	if d == nil || d.DependencyGraph == nil {
		return nil
	}
	return d.DependencyGraph[key]
}

// Dependents returns the reverse of the dependency graph (source -> targets),
// preserving execution plan order for determinism.
func (d *Document) Dependents() map[string][]string {
	ret := make(map[string][]string)
	for _, target := range d.ExecutionPlan {
		for _, source := range d.DependencyGraph[target] {
			ret[source] = append(ret[source], target)
		}
	}
	return ret
}

// Snapshot is an immutable, stored execution artifact. Document holds the
// serialized Document.
type Snapshot struct {
	ID           string    `json:"id"`
	DefinitionID string    `json:"definitionId"`
	Version      int       `json:"version"`
	Document     string    `json:"document"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Content decodes the stored document.
func (s *Snapshot) Content() (*Document, error) {
	return Decode([]byte(s.Document))
}

// Attributes returns filterable fields.
func (s *Snapshot) Attributes() map[string]interface{} {
	return map[string]interface{}{
		"definitionId": s.DefinitionID,
		"version":      s.Version,
	}
}
