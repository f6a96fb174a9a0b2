package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/flowcore/service/messaging"
)

type testPayload struct {
	ID    string
	Count int
}

func TestQueue(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &testPayload{ID: "test-1", Count: 1}))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, "test-1", message.T().ID)

	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack())
	assert.Error(t, message.Nack(nil))
}

func TestQueue_DeadLetter(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx := context.Background()
	require.NoError(t, queue.Publish(ctx, &testPayload{ID: "dlq"}))
	message, err := queue.Consume(ctx)
	require.NoError(t, err)

	cause := errors.New("run failed")
	require.NoError(t, message.Nack(cause))
	letters := queue.DeadLetters()
	require.Len(t, letters, 1)
	assert.Equal(t, "dlq", letters[0].T().ID)
	assert.Equal(t, cause, letters[0].Err())
}

func TestQueue_Concurrency(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx := context.Background()
	concurrency := 10
	perProducer := 10

	var wg sync.WaitGroup
	var consumed int
	var mu sync.Mutex
	for i := 0; i < concurrency; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				message, err := queue.Consume(ctx)
				if !assert.NoError(t, err) {
					return
				}
				assert.NoError(t, message.Ack())
				mu.Lock()
				consumed++
				mu.Unlock()
			}
		}()
		go func(producer int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				assert.NoError(t, queue.Publish(ctx, &testPayload{ID: fmt.Sprintf("p%d-m%d", producer, j)}))
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("test timed out")
	}
	assert.Equal(t, concurrency*perProducer, consumed)
	assert.Equal(t, 0, queue.Size())
}

func TestQueue_ContextAndClose(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, queue.Publish(cancelled, &testPayload{ID: "x"}))

	timeout, cancelTimeout := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelTimeout()
	_, err := queue.Consume(timeout)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	queue.Close()
	queue.Close()
	_, err = queue.Consume(context.Background())
	assert.True(t, errors.Is(err, messaging.ErrClosed))
	assert.True(t, errors.Is(queue.Publish(context.Background(), &testPayload{}), messaging.ErrClosed))
}
