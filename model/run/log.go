package run

import "time"

// Event classifies a log entry.
type Event string

const (
	EventFlowStart Event = "FLOW_START"
	EventStart     Event = "START"
	EventSuccess   Event = "SUCCESS"
	EventError     Event = "ERROR"
	EventFlowEnd   Event = "FLOW_END"
)

// Log is an append-only record of a run or node event.
type Log struct {
	ID         string    `json:"id"`
	RunID      string    `json:"runId"`
	Sequence   int64     `json:"sequence"`
	NodeKey    string    `json:"nodeKey,omitempty"`
	Event      Event     `json:"event"`
	Attempt    int       `json:"attempt,omitempty"`
	Input      string    `json:"input,omitempty"`
	Output     string    `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"durationMs,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Attributes returns filterable fields.
func (l *Log) Attributes() map[string]interface{} {
	return map[string]interface{}{
		"runId":   l.RunID,
		"nodeKey": l.NodeKey,
		"event":   string(l.Event),
	}
}
