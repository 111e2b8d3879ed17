package entity

import (
	"time"

	"github.com/google/uuid"

	"separation-service/ddd/domain/vo"
)

// SeparationJobEntity 人声分离任务实体
type SeparationJobEntity struct {
	jobID        string           // 内部任务ID
	jobKey       string           // 文件名推导的任务键
	filename     string           // 原始上传文件名
	kind         vo.MediaKind     // 媒体类型
	stage        vo.JobStage      // 当前阶段
	artifacts    []vo.Artifact    // 已落盘产物
	failure      vo.FailureReason // 失败原因
	errorMessage string           // 错误信息
	createdAt    time.Time        // 创建时间
	updatedAt    time.Time        // 更新时间
	startedAt    *time.Time       // 管线启动时间
	completedAt  *time.Time       // 终态时间
}

// NewSeparationJob 由完成上传的文件创建分离任务
func NewSeparationJob(filename string) *SeparationJobEntity {
	now := time.Now()
	return &SeparationJobEntity{
		jobID:     uuid.New().String(),
		jobKey:    vo.JobKey(filename),
		filename:  filename,
		kind:      vo.DetectMediaKind(filename),
		stage:     vo.StageUploading,
		artifacts: make([]vo.Artifact, 0, 4),
		createdAt: now,
		updatedAt: now,
	}
}

// Getters
func (j *SeparationJobEntity) JobID() string             { return j.jobID }
func (j *SeparationJobEntity) JobKey() string            { return j.jobKey }
func (j *SeparationJobEntity) Filename() string          { return j.filename }
func (j *SeparationJobEntity) Kind() vo.MediaKind        { return j.kind }
func (j *SeparationJobEntity) Stage() vo.JobStage        { return j.stage }
func (j *SeparationJobEntity) Artifacts() []vo.Artifact  { return j.artifacts }
func (j *SeparationJobEntity) Failure() vo.FailureReason { return j.failure }
func (j *SeparationJobEntity) ErrorMessage() string      { return j.errorMessage }
func (j *SeparationJobEntity) CreatedAt() time.Time      { return j.createdAt }
func (j *SeparationJobEntity) UpdatedAt() time.Time      { return j.updatedAt }
func (j *SeparationJobEntity) StartedAt() *time.Time     { return j.startedAt }
func (j *SeparationJobEntity) CompletedAt() *time.Time   { return j.completedAt }

// IsTerminal 是否处于终态
func (j *SeparationJobEntity) IsTerminal() bool { return j.stage.IsTerminal() }

// IsSucceeded 是否成功结束
func (j *SeparationJobEntity) IsSucceeded() bool { return j.stage == vo.StageSucceeded }

// IsFailed 是否失败结束
func (j *SeparationJobEntity) IsFailed() bool { return j.stage == vo.StageFailed }

// Advance 推进到目标阶段
func (j *SeparationJobEntity) Advance(target vo.JobStage) error {
	if !j.stage.CanTransitionTo(target) {
		return NewDomainError("cannot transition from " + j.stage.String() + " to " + target.String())
	}
	now := time.Now()
	if j.stage == vo.StageUploading {
		j.startedAt = &now
	}
	j.stage = target
	j.updatedAt = now
	return nil
}

// Succeed 标记成功
func (j *SeparationJobEntity) Succeed() error {
	if err := j.Advance(vo.StageSucceeded); err != nil {
		return err
	}
	now := time.Now()
	j.completedAt = &now
	return nil
}

// Fail 标记失败，附带阶段归类的原因
func (j *SeparationJobEntity) Fail(reason vo.FailureReason, message string) error {
	if j.stage.IsTerminal() {
		return NewDomainError("cannot fail job in terminal stage: " + j.stage.String())
	}
	now := time.Now()
	j.stage = vo.StageFailed
	j.failure = reason
	j.errorMessage = message
	j.completedAt = &now
	j.updatedAt = now
	return nil
}

// AddArtifact 登记一个已确认落盘的产物
func (j *SeparationJobEntity) AddArtifact(a vo.Artifact) {
	j.artifacts = append(j.artifacts, a)
	j.updatedAt = time.Now()
}

// ArtifactsByRetention 按保留策略过滤产物
func (j *SeparationJobEntity) ArtifactsByRetention(class vo.RetentionClass) []vo.Artifact {
	out := make([]vo.Artifact, 0, len(j.artifacts))
	for _, a := range j.artifacts {
		if a.Retention == class {
			out = append(out, a)
		}
	}
	return out
}

// DomainError 领域错误
type DomainError struct {
	message string
}

func NewDomainError(message string) *DomainError {
	return &DomainError{message: message}
}

func (e *DomainError) Error() string {
	return e.message
}
