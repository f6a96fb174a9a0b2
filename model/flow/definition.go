package flow

import (
	"errors"
	"fmt"
	"time"

	"github.com/viant/flowcore/internal/clock"
)

// State represents definition lifecycle state.
type State string

const (
	StateDraft     State = "DRAFT"
	StatePublished State = "PUBLISHED"
)

var (
	// ErrNotDraft is returned when a mutation targets a published definition.
	ErrNotDraft = errors.New("flow: definition is not a draft")
	// ErrNotPublished is returned when forking a definition that was never published.
	ErrNotPublished = errors.New("flow: definition is not published")
)

// Definition is a versioned, named container of a node/edge set.
type Definition struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Version     int        `json:"version"`
	State       State      `json:"state"`
	Graph       *Graph     `json:"graph"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// NewDefinition returns a DRAFT definition at version 0.
func NewDefinition(id, name string, graph *Graph) *Definition {
	now := clock.Now()
	if graph == nil {
		graph = &Graph{}
	}
	return &Definition{
		ID:        id,
		Name:      name,
		State:     StateDraft,
		Graph:     graph,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsDraft reports whether the definition is still mutable.
func (d *Definition) IsDraft() bool {
	return d.State == StateDraft
}

// Replace swaps the node/edge set of a draft.
func (d *Definition) Replace(graph *Graph) error {
	if !d.IsDraft() {
		return fmt.Errorf("%w: %s", ErrNotDraft, d.ID)
	}
	if graph == nil {
		graph = &Graph{}
	}
	d.Graph = graph
	d.UpdatedAt = clock.Now()
	return nil
}

// Publish freezes the definition and increments its version.
func (d *Definition) Publish() error {
	if !d.IsDraft() {
		return fmt.Errorf("%w: %s", ErrNotDraft, d.ID)
	}
	now := clock.Now()
	d.Version++
	d.State = StatePublished
	d.PublishedAt = &now
	d.UpdatedAt = now
	return nil
}

// NextVersion returns the version the next Publish would produce.
func (d *Definition) NextVersion() int {
	return d.Version + 1
}

// Fork turns a published definition back into a draft, keeping its content.
// Snapshots of earlier versions are unaffected.
func (d *Definition) Fork() error {
	if d.State != StatePublished {
		return fmt.Errorf("%w: %s", ErrNotPublished, d.ID)
	}
	d.State = StateDraft
	d.Graph = d.Graph.Clone()
	d.UpdatedAt = clock.Now()
	return nil
}

// Attributes returns filterable fields.
func (d *Definition) Attributes() map[string]interface{} {
	return map[string]interface{}{
		"name":  d.Name,
		"state": string(d.State),
	}
}
