package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"separation-service/pkg/logger"
)

// Scheduler 延迟删除调度器。注册即忘：定时器不持久化，进程重启后
// 未触发的删除会丢失。删除失败只记录日志，从不向任务传播。
type Scheduler struct {
	mu      sync.Mutex
	nextID  int
	pending map[int]*time.Timer
	stopped bool
}

// NewScheduler 创建清理调度器
func NewScheduler() *Scheduler {
	return &Scheduler{pending: make(map[int]*time.Timer)}
}

// ScheduleDeletion 延迟删除单个文件
func (s *Scheduler) ScheduleDeletion(path string, delay time.Duration) {
	s.schedule(path, delay, func() {
		if err := os.Remove(path); err != nil {
			logger.Warnf("scheduled file deletion failed path=%s error=%v", path, err)
			return
		}
		logger.Infof("scheduled file deleted path=%s", path)
	})
}

// ScheduleDirectoryDeletion 延迟删除整个目录
func (s *Scheduler) ScheduleDirectoryDeletion(path string, delay time.Duration) {
	s.schedule(path, delay, func() {
		if err := os.RemoveAll(path); err != nil {
			logger.Warnf("scheduled directory deletion failed path=%s error=%v", path, err)
			return
		}
		logger.Infof("scheduled directory deleted path=%s", path)
	})
}

func (s *Scheduler) schedule(path string, delay time.Duration, fire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		logger.Warnf("cleanup scheduler stopped, dropping deletion path=%s", path)
		return
	}

	id := s.nextID
	s.nextID++
	s.pending[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		fire()
	})
	logger.Infof("deletion scheduled path=%s delay=%s", path, delay)
}

// PendingCount 当前等待触发的删除数
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// SweepStale 删除目录下修改时间早于窗口的条目，弥补重启丢失的定时器
func (s *Scheduler) SweepStale(dirs []string, olderThan time.Duration) {
	cutoff := time.Now().Add(-olderThan)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				logger.Warnf("stale artifact sweep failed path=%s error=%v", path, err)
				continue
			}
			logger.Infof("stale artifact swept path=%s", path)
		}
	}
}

// Name 实现task.BackgroundTask
func (s *Scheduler) Name() string { return "cleanup-scheduler" }

// Start 实现task.BackgroundTask，调度器本身无常驻循环
func (s *Scheduler) Start(ctx context.Context) error { return nil }

// Stop 取消所有未触发的定时器
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
	return nil
}
