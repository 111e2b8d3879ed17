package service

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"separation-service/ddd/domain/entity"
	"separation-service/ddd/domain/gateway"
	"separation-service/ddd/domain/port"
	"separation-service/ddd/domain/vo"
	"separation-service/pkg/config"
	"separation-service/pkg/logger"
)

// PipelineService 人声分离管线领域服务。
// 每个任务严格顺序执行各阶段；阶段N的产物经存在性校验后才进入阶段N+1。
type PipelineService interface {
	// Process 执行一个已完成上传的分离任务，返回的错误与任务终态一致
	Process(ctx context.Context, job *entity.SeparationJobEntity) error
}

type pipelineServiceImpl struct {
	runner  port.StageRunner
	cleanup port.CleanupScheduler
	storage gateway.ArtifactGateway // 可选，未启用时为nil
	cfg     *config.Config
	layout  vo.PathLayout
}

// NewPipelineService 创建分离管线服务
func NewPipelineService(runner port.StageRunner, cleanup port.CleanupScheduler, storage gateway.ArtifactGateway, cfg *config.Config) PipelineService {
	return &pipelineServiceImpl{
		runner:  runner,
		cleanup: cleanup,
		storage: storage,
		cfg:     cfg,
		layout:  vo.NewPathLayout(cfg.Upload.Dir, cfg.Separation.OutputDir),
	}
}

// Process 执行分离管线
func (s *pipelineServiceImpl) Process(ctx context.Context, job *entity.SeparationJobEntity) error {
	logger.Infof("start separation job job_id=%s job_key=%s kind=%s filename=%s",
		job.JobID(), job.JobKey(), job.Kind(), job.Filename())

	uploadPath := s.layout.UploadPath(job.Filename())
	if err := verifyFile(uploadPath); err != nil {
		return s.fail(job, vo.FailureInputMissing, fmt.Errorf("uploaded file not found: %w", err))
	}

	audioPath := uploadPath
	if job.Kind().IsVideo() {
		extracted, err := s.extractAudio(ctx, job, uploadPath)
		if err != nil {
			return err
		}
		audioPath = extracted
	}

	if err := s.separate(ctx, job, audioPath); err != nil {
		return err
	}

	if job.Kind().IsVideo() {
		if err := s.merge(ctx, job, uploadPath, audioPath); err != nil {
			return err
		}
	}

	return s.finalize(ctx, job, uploadPath, audioPath)
}

// extractAudio 视频路径第一阶段：抽取音轨为独立音频文件
func (s *pipelineServiceImpl) extractAudio(ctx context.Context, job *entity.SeparationJobEntity, uploadPath string) (string, error) {
	if err := job.Advance(vo.StageExtracting); err != nil {
		return "", err
	}

	extractedPath := s.layout.ExtractedAudioPath(job.Filename())
	cmd := buildExtractCommand(s.cfg, uploadPath, extractedPath)
	if err := s.runStage(ctx, job, cmd); err != nil {
		// 原始上传保留在原地，便于排查或重试
		return "", s.fail(job, vo.FailureExtractionFailed, err)
	}
	if err := verifyFile(extractedPath); err != nil {
		return "", s.fail(job, vo.FailureOutputMissing, fmt.Errorf("extracted audio absent after reported success: %w", err))
	}

	job.AddArtifact(vo.Artifact{Path: extractedPath, Stage: vo.StageExtracting, Retention: vo.RetentionIntermediate})
	logger.Infof("audio extracted job_key=%s path=%s", job.JobKey(), extractedPath)
	return extractedPath, nil
}

// separate 分离阶段：调用外部模型进程，校验两条音轨均已落盘
func (s *pipelineServiceImpl) separate(ctx context.Context, job *entity.SeparationJobEntity, audioPath string) error {
	if err := job.Advance(vo.StageSeparating); err != nil {
		return err
	}

	cmd := buildSeparateCommand(s.cfg, audioPath, s.cfg.Separation.OutputDir)
	if err := s.runStage(ctx, job, cmd); err != nil {
		return s.fail(job, vo.FailureSeparationFailed, err)
	}

	vocals := s.layout.VocalsPath(audioPath)
	accompaniment := s.layout.AccompanimentPath(audioPath)
	if err := verifyFile(vocals); err != nil {
		return s.fail(job, vo.FailureOutputMissing, fmt.Errorf("vocals track absent after reported success: %w", err))
	}
	if err := verifyFile(accompaniment); err != nil {
		return s.fail(job, vo.FailureOutputMissing, fmt.Errorf("accompaniment track absent after reported success: %w", err))
	}

	// 分离目录在两条路径上都保留到窗口期满：音频路径它就是最终产物，
	// 视频路径等合成完成后与最终视频一并清理
	job.AddArtifact(vo.Artifact{Path: s.layout.SeparationDir(audioPath), Stage: vo.StageSeparating, Retention: vo.RetentionFinal, IsDir: true})
	logger.Infof("separation completed job_key=%s vocals=%s", job.JobKey(), vocals)
	return nil
}

// merge 合成阶段：仅使用人声轨与原视频合成，伴奏轨弃用
func (s *pipelineServiceImpl) merge(ctx context.Context, job *entity.SeparationJobEntity, uploadPath, audioPath string) error {
	if err := job.Advance(vo.StageMerging); err != nil {
		return err
	}

	vocals := s.layout.VocalsPath(audioPath)
	mergedPath := s.layout.MergedVideoPath(job.Filename())
	cmd := buildMergeCommand(s.cfg, uploadPath, vocals, mergedPath)
	if err := s.runStage(ctx, job, cmd); err != nil {
		return s.fail(job, vo.FailureMergeFailed, err)
	}
	// 合成工具的退出码不完全可信，产物缺失或为空按失败处理
	if err := verifyFile(mergedPath); err != nil {
		return s.fail(job, vo.FailureOutputMissing, fmt.Errorf("merged output absent after reported success: %w", err))
	}

	job.AddArtifact(vo.Artifact{Path: mergedPath, Stage: vo.StageMerging, Retention: vo.RetentionFinal})
	logger.Infof("merge completed job_key=%s output=%s", job.JobKey(), mergedPath)
	return nil
}

// finalize 收尾：成功路径立即删除中间产物，最终产物进入保留窗口
func (s *pipelineServiceImpl) finalize(ctx context.Context, job *entity.SeparationJobEntity, uploadPath, audioPath string) error {
	if err := job.Advance(vo.StageFinalizing); err != nil {
		return err
	}

	if job.Kind().IsVideo() {
		// 抽取音频和原始视频已无用处
		removeFile(job.JobKey(), audioPath)
		removeFile(job.JobKey(), uploadPath)
	} else {
		removeFile(job.JobKey(), uploadPath)
	}

	retention := s.cfg.Cleanup.RetentionWindow
	for _, a := range job.ArtifactsByRetention(vo.RetentionFinal) {
		if a.IsDir {
			s.cleanup.ScheduleDirectoryDeletion(a.Path, retention)
		} else {
			s.cleanup.ScheduleDeletion(a.Path, retention)
		}
	}

	s.offloadFinalArtifact(ctx, job)

	if err := job.Succeed(); err != nil {
		return err
	}
	logger.Infof("separation job succeeded job_id=%s job_key=%s", job.JobID(), job.JobKey())
	return nil
}

// offloadFinalArtifact 可选地将最终产物上传到对象存储，失败仅告警
func (s *pipelineServiceImpl) offloadFinalArtifact(ctx context.Context, job *entity.SeparationJobEntity) {
	if s.storage == nil {
		return
	}
	var final string
	if job.Kind().IsVideo() {
		final = s.layout.MergedVideoPath(job.Filename())
	} else {
		final = s.layout.PolledArtifactPath(job.JobKey())
	}
	objectKey := filepath.Join(job.JobKey(), filepath.Base(final))
	contentType := mime.TypeByExtension(filepath.Ext(final))
	url, err := s.storage.UploadFinalArtifact(ctx, final, objectKey, contentType)
	if err != nil {
		logger.Warnf("final artifact offload failed job_key=%s error=%v", job.JobKey(), err)
		return
	}
	logger.Infof("final artifact offloaded job_key=%s url=%s", job.JobKey(), url)
}

// runStage 执行一次外部进程调用，非零退出码与spawn失败都视作阶段失败
func (s *pipelineServiceImpl) runStage(ctx context.Context, job *entity.SeparationJobEntity, cmd vo.StageCommand) error {
	runCtx := ctx
	if timeout := s.cfg.Separation.StageTimeout; timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.Infof("run stage job_key=%s stage=%s command=%s", job.JobKey(), cmd.Stage, cmd.String())
	outcome, err := s.runner.Run(runCtx, cmd)
	if err != nil {
		return fmt.Errorf("stage %s: %w", cmd.Stage, err)
	}
	if !outcome.Succeeded() {
		tail := outcome.TailString()
		if tail != "" {
			logger.Errorf("stage failed job_key=%s stage=%s exit_code=%d tail_stderr=%s",
				job.JobKey(), cmd.Stage, outcome.ExitCode, tail)
		}
		return fmt.Errorf("stage %s exited with code %d", cmd.Stage, outcome.ExitCode)
	}
	return nil
}

// fail 统一失败出口：落终态并把原因透传给调用方
func (s *pipelineServiceImpl) fail(job *entity.SeparationJobEntity, reason vo.FailureReason, cause error) error {
	if err := job.Fail(reason, cause.Error()); err != nil {
		logger.Warnf("mark job failed error job_id=%s error=%v", job.JobID(), err)
	}
	logger.Errorf("separation job failed job_id=%s job_key=%s stage_reason=%s error=%v",
		job.JobID(), job.JobKey(), reason, cause)
	return fmt.Errorf("%s: %w", reason, cause)
}

// verifyFile 存在且非空才算产物已交付
func verifyFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	return nil
}

// removeFile 即时删除，失败仅记录（清理不在成败关键路径上）
func removeFile(jobKey, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	if err := os.Remove(path); err != nil {
		logger.Warnf("remove intermediate failed job_key=%s path=%s error=%v", jobKey, path, err)
		return
	}
	logger.Infof("removed intermediate job_key=%s path=%s", jobKey, path)
}
