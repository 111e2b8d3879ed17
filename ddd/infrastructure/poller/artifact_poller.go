package poller

import (
	"context"
	"os"
	"time"

	"separation-service/pkg/logger"
)

// ArtifactPoller 通过反复探测文件系统让失联客户端得知任务完成。
// 它与管线之间没有任何通道，只认产物是否存在。
type ArtifactPoller struct {
	maxAttempts int
	interval    time.Duration
}

// NewArtifactPoller 创建完成轮询器
func NewArtifactPoller(maxAttempts int, interval time.Duration) *ArtifactPoller {
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &ArtifactPoller{maxAttempts: maxAttempts, interval: interval}
}

// AwaitArtifact 在次数预算内等待目标产物出现。
// 预算耗尽返回found=false且无错误——慢任务超时是正常结果；
// 上下文取消（客户端断连）立即停止探测并返回ctx错误。
func (p *ArtifactPoller) AwaitArtifact(ctx context.Context, path string) (bool, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempts := 0; attempts < p.maxAttempts; {
		select {
		case <-ctx.Done():
			logger.Debugf("artifact polling cancelled path=%s attempts=%d", path, attempts)
			return false, ctx.Err()
		case <-ticker.C:
			attempts++
			if _, err := os.Stat(path); err == nil {
				logger.Infof("artifact found path=%s attempts=%d", path, attempts)
				return true, nil
			}
			logger.Debugf("artifact not found yet path=%s attempts=%d/%d", path, attempts, p.maxAttempts)
		}
	}
	logger.Infof("artifact polling budget exhausted path=%s attempts=%d", path, p.maxAttempts)
	return false, nil
}
