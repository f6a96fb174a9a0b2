package progress

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress(t *testing.T) {
	var observed []Progress
	var mu sync.Mutex
	ctx, tracker := WithNewTracker(context.Background(), "r1", "d1", func(p Progress) {
		mu.Lock()
		observed = append(observed, p)
		mu.Unlock()
	})

	UpdateCtx(ctx, Delta{Total: 4})
	UpdateCtx(ctx, Delta{Running: 1})
	UpdateCtx(ctx, Delta{Running: -1, Completed: 1})
	UpdateCtx(ctx, Delta{Retried: 1})

	snapshot := tracker.Snapshot()
	assert.Equal(t, 4, snapshot.TotalNodes)
	assert.Equal(t, 1, snapshot.CompletedNodes)
	assert.Equal(t, 0, snapshot.RunningNodes)
	assert.Equal(t, 1, snapshot.RetriedNodes)
	assert.Equal(t, 25.0, snapshot.Percent())
	assert.Len(t, observed, 4)

	UpdateCtx(context.Background(), Delta{Total: 1})
	var nilTracker *Progress
	nilTracker.Update(Delta{Total: 1})
	assert.Equal(t, Progress{}, nilTracker.Snapshot())
}
