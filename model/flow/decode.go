package flow

import (
	"fmt"

	"github.com/viant/flowcore/internal/xjson"
	"gopkg.in/yaml.v3"
)

type yamlDefinition struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Nodes       []*yamlNode `yaml:"nodes"`
	Edges       []*yamlEdge `yaml:"edges"`
}

type yamlNode struct {
	Key        string      `yaml:"key"`
	Type       string      `yaml:"type"`
	Name       string      `yaml:"name"`
	Config     interface{} `yaml:"config"`
	ConfigJSON string      `yaml:"configJson"`
	Retry      interface{} `yaml:"retry"`
	RetryJSON  string      `yaml:"retryPolicyJson"`
}

type yamlEdge struct {
	From       string      `yaml:"from"`
	To         string      `yaml:"to"`
	Config     interface{} `yaml:"config"`
	ConfigJSON string      `yaml:"configJson"`
}

// DecodeYAML parses a definition file. Node and edge configuration may be
// given either as YAML mappings (config, retry) or as raw JSON text
// (configJson, retryPolicyJson).
func DecodeYAML(data []byte) (*Definition, error) {
	doc := &yamlDefinition{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode definition: %w", err)
	}
	graph := &Graph{}
	for i, n := range doc.Nodes {
		if n == nil {
			return nil, fmt.Errorf("node[%d] is empty", i)
		}
		config, err := jsonText(n.Config, n.ConfigJSON)
		if err != nil {
			return nil, fmt.Errorf("node %q config: %w", n.Key, err)
		}
		retry, err := jsonText(n.Retry, n.RetryJSON)
		if err != nil {
			return nil, fmt.Errorf("node %q retry: %w", n.Key, err)
		}
		graph.Nodes = append(graph.Nodes, &Node{Key: n.Key, TypeCode: n.Type, Name: n.Name, Config: config, RetryPolicy: retry})
	}
	for i, e := range doc.Edges {
		if e == nil {
			return nil, fmt.Errorf("edge[%d] is empty", i)
		}
		config, err := jsonText(e.Config, e.ConfigJSON)
		if err != nil {
			return nil, fmt.Errorf("edge %v->%v config: %w", e.From, e.To, err)
		}
		graph.Edges = append(graph.Edges, &Edge{Source: e.From, Target: e.To, Config: config})
	}
	ret := NewDefinition(doc.ID, doc.Name, graph)
	ret.Description = doc.Description
	return ret, nil
}

func jsonText(structured interface{}, raw string) (string, error) {
	if raw != "" {
		return raw, nil
	}
	if structured == nil {
		return "", nil
	}
	data, err := xjson.Marshal(structured)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
