package snapshot

import (
	"errors"
	"fmt"

	"github.com/viant/flowcore/internal/xjson"
)

// ErrEmptyDocument is returned when decoding an empty document.
var ErrEmptyDocument = errors.New("snapshot: empty document")

// Encode serializes a document.
func Encode(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, ErrEmptyDocument
	}
	data, err := xjson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("snapshot: failed to encode document %v@%v: %w", doc.DefinitionID, doc.Version, err)
	}
	return data, nil
}

// Decode parses a document and restores node keys.
func Decode(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	doc := &Document{}
	if err := xjson.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("snapshot: failed to decode document: %w", err)
	}
	for key, node := range doc.Nodes {
		if node != nil {
			node.Key = key
		}
	}
	if doc.DependencyGraph == nil {
		doc.DependencyGraph = map[string][]string{}
	}
	return doc, nil
}
