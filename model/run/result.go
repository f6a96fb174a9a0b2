package run

import (
	"time"

	"github.com/viant/flowcore/internal/xjson"
)

// Result is the terminal payload of a run, produced for every terminal state.
type Result struct {
	Status        Status                 `json:"status"`
	RunID         string                 `json:"runId"`
	DefinitionID  string                 `json:"definitionId,omitempty"`
	Version       int                    `json:"version,omitempty"`
	NodeResults   map[string]interface{} `json:"nodeResults"`
	Metrics       map[string]int64       `json:"metrics,omitempty"`
	RetryCounts   map[string]int         `json:"retryCounts,omitempty"`
	ExecutedNodes []string               `json:"executedNodes,omitempty"`
	Error         string                 `json:"error,omitempty"`
	FailedNode    string                 `json:"failedNode,omitempty"`
	DurationMs    int64                  `json:"durationMs"`
	CompletedAt   time.Time              `json:"completedAt"`
}

// JSON encodes the result.
func (r *Result) JSON() (string, error) {
	return xjson.String(r)
}

// Output returns a node result.
func (r *Result) Output(nodeKey string) (interface{}, bool) {
	if r == nil || r.NodeResults == nil {
		return nil, false
	}
	v, ok := r.NodeResults[nodeKey]
	return v, ok
}
