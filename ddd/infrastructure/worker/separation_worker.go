package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"separation-service/ddd/domain/entity"
	"separation-service/ddd/domain/service"
	"separation-service/ddd/infrastructure/queue"
	"separation-service/pkg/logger"
)

// SeparationWorker 分离任务工作器接口
type SeparationWorker interface {
	// Name 实现task.BackgroundTask
	Name() string

	// Start 启动工作器
	Start(ctx context.Context) error

	// Stop 停止工作器
	Stop() error

	// IsRunning 检查工作器是否运行中
	IsRunning() bool

	// GetStats 获取工作器统计信息
	GetStats() WorkerStats
}

// WorkerStats 工作器统计信息
type WorkerStats struct {
	ProcessedJobs    uint64
	SucceededJobs    uint64
	FailedJobs       uint64
	CurrentlyRunning int
	StartTime        time.Time
	LastJobTime      time.Time
}

// separationWorkerImpl 分离任务工作器实现
type separationWorkerImpl struct {
	id          string
	jobQueue    queue.JobQueue
	pipeline    service.PipelineService
	guard       *queue.KeyGuard
	concurrency int
	running     bool
	cancel      context.CancelFunc
	stats       WorkerStats
	mu          sync.RWMutex
	wg          sync.WaitGroup
}

// NewSeparationWorker 创建分离任务工作器
func NewSeparationWorker(
	id string,
	jobQueue queue.JobQueue,
	pipeline service.PipelineService,
	guard *queue.KeyGuard,
	concurrency int,
) SeparationWorker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &separationWorkerImpl{
		id:          id,
		jobQueue:    jobQueue,
		pipeline:    pipeline,
		guard:       guard,
		concurrency: concurrency,
		stats: WorkerStats{
			StartTime: time.Now(),
		},
	}
}

// Name 实现task.BackgroundTask
func (w *separationWorkerImpl) Name() string { return w.id }

// Start 启动工作器
func (w *separationWorkerImpl) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("worker %s is already running", w.id)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.stats.StartTime = time.Now()

	logger.Infof("starting separation worker worker_id=%s concurrency=%d", w.id, w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(workerCtx, i)
	}

	return nil
}

// Stop 停止工作器，等待在途任务结束。
// 等待期间不能持锁，循环里的统计更新还需要拿锁。
func (w *separationWorkerImpl) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel := w.cancel
	w.mu.Unlock()

	logger.Infof("stopping separation worker worker_id=%s", w.id)
	if cancel != nil {
		cancel()
	}
	w.wg.Wait()

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	logger.Infof("separation worker stopped worker_id=%s", w.id)
	return nil
}

// IsRunning 检查工作器是否运行中
func (w *separationWorkerImpl) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats 获取工作器统计信息
func (w *separationWorkerImpl) GetStats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// workerLoop 工作器主循环
func (w *separationWorkerImpl) workerLoop(ctx context.Context, slot int) {
	defer w.wg.Done()

	logger.Infof("worker loop started worker=%s-%d", w.id, slot)
	defer logger.Infof("worker loop stopped worker=%s-%d", w.id, slot)

	for {
		job, err := w.jobQueue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			logger.Warnf("dequeue failed worker=%s-%d error=%v", w.id, slot, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second): // 避免忙等待
			}
			continue
		}
		if job == nil {
			continue
		}

		w.processJob(ctx, job, slot)
	}
}

// processJob 处理单个任务。管线一旦启动不可取消：外部进程必须跑完，
// 半途终止会留下损坏的半分离产物，这里用独立于请求的上下文执行。
func (w *separationWorkerImpl) processJob(ctx context.Context, job *entity.SeparationJobEntity, slot int) {
	logger.Infof("worker processing job worker=%s-%d job_id=%s job_key=%s", w.id, slot, job.JobID(), job.JobKey())

	w.updateStats(func(stats *WorkerStats) {
		stats.CurrentlyRunning++
		stats.LastJobTime = time.Now()
	})
	defer w.updateStats(func(stats *WorkerStats) {
		stats.CurrentlyRunning--
		stats.ProcessedJobs++
	})
	if w.guard != nil {
		defer w.guard.Release(job.JobKey())
	}

	err := w.pipeline.Process(context.WithoutCancel(ctx), job)
	if err != nil {
		logger.Errorf("worker job failed worker=%s-%d job_id=%s error=%v", w.id, slot, job.JobID(), err)
		w.updateStats(func(stats *WorkerStats) { stats.FailedJobs++ })
		return
	}
	w.updateStats(func(stats *WorkerStats) { stats.SucceededJobs++ })
}

// updateStats 更新统计信息
func (w *separationWorkerImpl) updateStats(updateFunc func(*WorkerStats)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	updateFunc(&w.stats)
}
