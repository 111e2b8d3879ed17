package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"separation-service/ddd/domain/entity"
	"separation-service/ddd/infrastructure/queue"
)

func TestMemoryJobQueue_EnqueueDequeue(t *testing.T) {
	q := queue.NewMemoryJobQueue(2)
	defer q.Close()

	job := entity.NewSeparationJob("song.mp3")
	require.NoError(t, q.Enqueue(context.Background(), job))
	assert.Equal(t, 1, q.Size())

	got, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, job.JobID(), got.JobID())
	assert.Equal(t, 0, q.Size())
}

func TestMemoryJobQueue_FullQueueRejectsWithoutBlocking(t *testing.T) {
	q := queue.NewMemoryJobQueue(1)
	defer q.Close()

	require.NoError(t, q.Enqueue(context.Background(), entity.NewSeparationJob("a.mp3")))

	err := q.Enqueue(context.Background(), entity.NewSeparationJob("b.mp3"))
	assert.ErrorIs(t, err, queue.ErrQueueFull)
}

func TestMemoryJobQueue_NilJobRejected(t *testing.T) {
	q := queue.NewMemoryJobQueue(1)
	defer q.Close()

	assert.Error(t, q.Enqueue(context.Background(), nil))
}

func TestMemoryJobQueue_DequeueUnblocksOnCancel(t *testing.T) {
	q := queue.NewMemoryJobQueue(1)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryJobQueue_Close(t *testing.T) {
	q := queue.NewMemoryJobQueue(1)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close(), "double close is a no-op")

	assert.Error(t, q.Enqueue(context.Background(), entity.NewSeparationJob("a.mp3")))

	_, err := q.Dequeue(context.Background())
	assert.Error(t, err)
}

func TestKeyGuard_SingleFlightPerKey(t *testing.T) {
	g := queue.NewKeyGuard()

	require.True(t, g.Acquire("song"))
	assert.True(t, g.InFlight("song"))

	// 在途期间重复占用被拒绝
	assert.False(t, g.Acquire("song"))

	// 其他任务键互不影响
	assert.True(t, g.Acquire("clip"))

	g.Release("song")
	assert.False(t, g.InFlight("song"))
	assert.True(t, g.Acquire("song"), "released key can start a fresh run")
}
