package flow

// Node is a single step of a flow definition.
type Node struct {
	Key         string `json:"key"`
	TypeCode    string `json:"typeCode"`
	Name        string `json:"name,omitempty"`
	Config      string `json:"configJson,omitempty"`
	RetryPolicy string `json:"retryPolicyJson,omitempty"`
}

// Edge connects two nodes by key.
type Edge struct {
	Source string `json:"sourceKey"`
	Target string `json:"targetKey"`
	Config string `json:"configJson,omitempty"`
}

// Graph is the node/edge set subject to validation and compilation.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// NodeIndex returns nodes keyed by their key. Duplicated keys keep the first
// occurrence.
func (g *Graph) NodeIndex() map[string]*Node {
	ret := make(map[string]*Node, len(g.Nodes))
	for _, node := range g.Nodes {
		if node == nil {
			continue
		}
		if _, ok := ret[node.Key]; !ok {
			ret[node.Key] = node
		}
	}
	return ret
}

// Adjacency returns forward adjacency (source -> targets) in edge order.
func (g *Graph) Adjacency() map[string][]string {
	ret := make(map[string][]string, len(g.Nodes))
	for _, edge := range g.Edges {
		ret[edge.Source] = append(ret[edge.Source], edge.Target)
	}
	return ret
}

// InDegree returns the number of incoming edges per node key.
func (g *Graph) InDegree() map[string]int {
	ret := make(map[string]int, len(g.Nodes))
	for _, node := range g.Nodes {
		ret[node.Key] = 0
	}
	for _, edge := range g.Edges {
		ret[edge.Target]++
	}
	return ret
}

// OutDegree returns the number of outgoing edges per node key.
func (g *Graph) OutDegree() map[string]int {
	ret := make(map[string]int, len(g.Nodes))
	for _, node := range g.Nodes {
		ret[node.Key] = 0
	}
	for _, edge := range g.Edges {
		ret[edge.Source]++
	}
	return ret
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	ret := &Graph{
		Nodes: make([]*Node, 0, len(g.Nodes)),
		Edges: make([]*Edge, 0, len(g.Edges)),
	}
	for _, node := range g.Nodes {
		if node == nil {
			continue
		}
		n := *node
		ret.Nodes = append(ret.Nodes, &n)
	}
	for _, edge := range g.Edges {
		if edge == nil {
			continue
		}
		e := *edge
		ret.Edges = append(ret.Edges, &e)
	}
	return ret
}
