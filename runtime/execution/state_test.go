package execution

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContext_Results(t *testing.T) {
	ec := New("r1", nil, nil, nil)
	assert.NotNil(t, ec.Input)
	assert.False(t, ec.IsNodeExecuted("a"))

	ec.SaveResult("a", map[string]interface{}{"v": 1})
	ec.SaveResult("b", "ok")
	ec.SaveResult("a", "replaced")

	assert.True(t, ec.IsNodeExecuted("a"))
	out, ok := ec.Result("a")
	assert.True(t, ok)
	assert.Equal(t, "replaced", out)
	assert.Equal(t, []string{"a", "b"}, ec.ExecutedNodes())
	assert.Equal(t, []string{"c"}, ec.UnmetDependencies([]string{"a", "c"}))
	assert.Nil(t, ec.UnmetDependencies([]string{"a", "b"}))
}

func TestContext_RetriesAndMetrics(t *testing.T) {
	ec := New("r1", nil, nil, map[string]interface{}{"x": 1})
	assert.Equal(t, 0, ec.RetryCount("a"))
	assert.Equal(t, 1, ec.IncrementRetry("a"))
	assert.Equal(t, 2, ec.IncrementRetry("a"))
	ec.RecordMetric("a", 1500*time.Millisecond)
	ec.SaveResult("a", 1)

	summary := ec.Summary()
	assert.Equal(t, map[string]int{"a": 2}, summary.RetryCounts)
	assert.Equal(t, map[string]int64{"a": 1500}, summary.Metrics)
	assert.Equal(t, map[string]interface{}{"a": 1}, summary.NodeResults)
	assert.Equal(t, []string{"a"}, summary.MetricKeys())

	summary.NodeResults["b"] = 2
	_, ok := ec.Result("b")
	assert.False(t, ok, "summary must be a copy")
}

func TestContext_Concurrent(t *testing.T) {
	ec := New("r1", nil, nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("n%d", i)
			ec.SaveResult(key, i)
			ec.IncrementRetry("shared")
			ec.RecordMetric(key, time.Millisecond)
			_ = ec.Summary()
		}(i)
	}
	wg.Wait()
	assert.Len(t, ec.Results(), 50)
	assert.Equal(t, 50, ec.RetryCount("shared"))
}

func TestFromContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	ec := New("r1", nil, nil, nil)
	ctx := WithContext(context.Background(), ec)
	assert.Same(t, ec, FromContext(ctx))
}
