package queue

import "sync"

// KeyGuard 任务键级别的single-flight守卫。
// 同一文件名的末分片重复投递在前一条管线在途期间会被拒绝。
type KeyGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewKeyGuard 创建任务键守卫
func NewKeyGuard() *KeyGuard {
	return &KeyGuard{inflight: make(map[string]struct{})}
}

// Acquire 占用任务键，已被占用时返回false
func (g *KeyGuard) Acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inflight[key]; ok {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

// Release 释放任务键
func (g *KeyGuard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, key)
}

// InFlight 任务键是否在途
func (g *KeyGuard) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inflight[key]
	return ok
}
