package app

import (
	"context"
	"errors"
	"io"

	"separation-service/ddd/application/cqe"
	"separation-service/ddd/application/dto"
	"separation-service/ddd/domain/entity"
	"separation-service/ddd/domain/vo"
	"separation-service/ddd/infrastructure/poller"
	"separation-service/ddd/infrastructure/queue"
	"separation-service/ddd/infrastructure/upload"
	"separation-service/pkg/config"
	"separation-service/pkg/errno"
	"separation-service/pkg/logger"
)

// SeparationApp 分离应用服务接口
type SeparationApp interface {
	// HandleChunk 接收一个上传分片；末分片会触发管线启动
	HandleChunk(ctx context.Context, req *cqe.ChunkUploadCqe, data io.Reader) (*dto.ChunkUploadDTO, error)
	// AwaitStatus 有界轮询等待任务最终产物出现
	AwaitStatus(ctx context.Context, req *cqe.StatusQueryCqe) (*dto.JobStatusDTO, error)
}

type separationAppImpl struct {
	assembler *upload.ChunkAssembler
	jobQueue  queue.JobQueue
	guard     *queue.KeyGuard
	poller    *poller.ArtifactPoller
	layout    vo.PathLayout
}

// NewSeparationApp 创建分离应用服务
func NewSeparationApp(
	assembler *upload.ChunkAssembler,
	jobQueue queue.JobQueue,
	guard *queue.KeyGuard,
	artifactPoller *poller.ArtifactPoller,
	cfg *config.Config,
) SeparationApp {
	return &separationAppImpl{
		assembler: assembler,
		jobQueue:  jobQueue,
		guard:     guard,
		poller:    artifactPoller,
		layout:    vo.NewPathLayout(cfg.Upload.Dir, cfg.Separation.OutputDir),
	}
}

// HandleChunk 接收一个上传分片
func (a *separationAppImpl) HandleChunk(ctx context.Context, req *cqe.ChunkUploadCqe, data io.Reader) (*dto.ChunkUploadDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	jobKey := vo.JobKey(req.FileName)
	if req.ChunkID == req.TotalChunks && a.guard != nil && a.guard.InFlight(jobKey) {
		// 末分片重复投递：上一条管线还在途，拒绝而不是重复启动
		return nil, errno.ErrJobInFlight
	}

	status, err := a.assembler.AppendChunk(req.FileName, req.ChunkID, req.TotalChunks, data)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrChunkAppend, err)
	}

	if status != upload.AssemblyComplete {
		return &dto.ChunkUploadDTO{Message: "Chunk received successfully", Processing: false}, nil
	}

	if a.guard != nil && !a.guard.Acquire(jobKey) {
		return nil, errno.ErrJobInFlight
	}

	job := entity.NewSeparationJob(req.FileName)
	if err := a.jobQueue.Enqueue(ctx, job); err != nil {
		if a.guard != nil {
			a.guard.Release(jobKey)
		}
		logger.Errorf("job enqueue failed job_key=%s error=%v", jobKey, err)
		if errors.Is(err, queue.ErrQueueFull) {
			return nil, errno.ErrJobQueueFull
		}
		return nil, errno.NewBizError(errno.ErrInternalServer, err)
	}

	logger.Infof("separation job enqueued job_id=%s job_key=%s kind=%s", job.JobID(), job.JobKey(), job.Kind())
	return &dto.ChunkUploadDTO{Message: "File uploaded successfully", Processing: true}, nil
}

// AwaitStatus 有界轮询等待任务产物
func (a *separationAppImpl) AwaitStatus(ctx context.Context, req *cqe.StatusQueryCqe) (*dto.JobStatusDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	found, err := a.poller.AwaitArtifact(ctx, a.layout.PolledArtifactPath(req.ID))
	if err != nil {
		// 客户端断连，无人接收响应
		return nil, err
	}
	if found {
		return &dto.JobStatusDTO{Message: "File found", IsProcessed: true}, nil
	}
	return &dto.JobStatusDTO{Message: "File not found after timeout", IsProcessed: false}, nil
}
