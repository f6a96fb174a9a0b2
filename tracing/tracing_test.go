package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "span_test.txt")
	require.NoError(t, Init("flowcore", "0.0.1", fname))

	ctx, span := StartSpan(context.Background(), "flow.run test", "INTERNAL")
	span.WithAttributes(map[string]string{"run.id": "r1"})
	_, child := StartSpan(ctx, "flow.node a", "INTERNAL")
	child.AddEvent("retry", map[string]string{"attempt": "2"})
	EndSpan(child, errors.New("boom"))
	EndSpan(span, nil)

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Contains(t, string(data), "flow.node a")
}

func TestNilSpan(t *testing.T) {
	var span *Span
	assert.Nil(t, span.WithAttributes(map[string]string{"k": "v"}))
	span.AddEvent("x", nil)
	EndSpan(span, nil)
}
