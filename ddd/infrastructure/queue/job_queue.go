package queue

import (
	"context"
	"fmt"
	"sync"

	"separation-service/ddd/domain/entity"
)

// JobQueue 分离任务队列接口
type JobQueue interface {
	// Enqueue 入队任务（非阻塞，队列满返回错误）
	Enqueue(ctx context.Context, job *entity.SeparationJobEntity) error

	// Dequeue 出队任务（阻塞）
	Dequeue(ctx context.Context) (*entity.SeparationJobEntity, error)

	// Size 获取队列大小
	Size() int

	// Close 关闭队列
	Close() error
}

// ErrQueueFull 队列已满
var ErrQueueFull = fmt.Errorf("queue is full")

// MemoryJobQueue 基于有界channel的内存任务队列
type MemoryJobQueue struct {
	queue  chan *entity.SeparationJobEntity
	closed bool
	mu     sync.RWMutex
}

// NewMemoryJobQueue 创建内存任务队列
func NewMemoryJobQueue(capacity int) JobQueue {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryJobQueue{
		queue: make(chan *entity.SeparationJobEntity, capacity),
	}
}

// Enqueue 入队任务
func (q *MemoryJobQueue) Enqueue(ctx context.Context, job *entity.SeparationJobEntity) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}

	select {
	case q.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Dequeue 出队任务（阻塞直到有任务或上下文取消）
func (q *MemoryJobQueue) Dequeue(ctx context.Context) (*entity.SeparationJobEntity, error) {
	select {
	case job, ok := <-q.queue:
		if !ok {
			return nil, fmt.Errorf("queue is closed")
		}
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size 获取队列大小
func (q *MemoryJobQueue) Size() int {
	return len(q.queue)
}

// Close 关闭队列
func (q *MemoryJobQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.queue)
	return nil
}
