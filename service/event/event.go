// Package event streams typed events over a messaging queue to a listener.
package event

import (
	"time"

	"github.com/viant/flowcore/internal/clock"
)

// Context identifies the source of an event.
type Context struct {
	RunID        string `json:"runId"`
	DefinitionID string `json:"definitionId,omitempty"`
	NodeKey      string `json:"nodeKey,omitempty"`
	EventType    string `json:"eventType"`
}

type Event[T any] struct {
	Context   *Context  `json:"context"`
	CreatedAt time.Time `json:"createdAt"`
	Data      T         `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Data:      data,
	}
}
