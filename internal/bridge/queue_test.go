package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineQueue_FIFO(t *testing.T) {
	q := newLineQueue()
	for _, s := range []string{"a", "", "c"} {
		require.True(t, q.Enqueue(s))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "", "c"} {
		got, err := q.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 0, q.Len())
}

func TestLineQueue_DequeueBlocksUntilEnqueue(t *testing.T) {
	q := newLineQueue()
	got := make(chan string, 1)

	go func() {
		line, err := q.Dequeue()
		if err == nil {
			got <- line
		}
	}()

	select {
	case <-got:
		t.Fatal("Dequeue returned before anything was enqueued")
	case <-time.After(20 * time.Millisecond):
	}

	q.Enqueue("late")
	select {
	case line := <-got:
		assert.Equal(t, "late", line)
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not wake up")
	}
}

func TestLineQueue_CloseDrainsThenErrors(t *testing.T) {
	q := newLineQueue()
	q.Enqueue("left")
	q.Close()
	q.Close()

	assert.True(t, q.Closed())
	assert.False(t, q.Enqueue("rejected"))

	line, err := q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, "left", line)

	_, err = q.Dequeue()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLineQueue_CloseWakesAllWaiters(t *testing.T) {
	q := newLineQueue()
	var wg sync.WaitGroup
	errs := make(chan error, 3)

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := q.Dequeue()
			errs <- err
		}()
	}

	time.Sleep(10 * time.Millisecond)
	q.Close()
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.ErrorIs(t, err, ErrClosed)
	}
}

func TestLineQueue_DequeueContextCancelled(t *testing.T) {
	q := newLineQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.DequeueContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The queue is still usable afterwards.
	q.Enqueue("x")
	line, err := q.DequeueContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", line)
}

func TestLineQueue_DequeueContextPrefersQueuedLine(t *testing.T) {
	q := newLineQueue()
	q.Enqueue("ready")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	line, err := q.DequeueContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ready", line)
}

func TestLineQueue_TryDequeue(t *testing.T) {
	q := newLineQueue()
	_, ok := q.TryDequeue()
	assert.False(t, ok)

	q.Enqueue("one")
	line, ok := q.TryDequeue()
	assert.True(t, ok)
	assert.Equal(t, "one", line)
}

func TestLineQueue_ConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	q := newLineQueue()
	const producers, perProducer = 4, 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(string(rune('a'+p)) + string(rune(i)))
			}
		}(p)
	}
	wg.Wait()

	last := map[byte]rune{}
	for i := 0; i < producers*perProducer; i++ {
		line, ok := q.TryDequeue()
		require.True(t, ok)
		runes := []rune(line)
		p, n := byte(runes[0]), runes[1]
		if prev, seen := last[p]; seen {
			assert.Greater(t, n, prev)
		}
		last[p] = n
	}
}
