package vo

// JobStage 分离任务阶段
type JobStage string

const (
	// StageUploading 分片接收中
	StageUploading JobStage = "uploading"
	// StageExtracting 音频抽取中（仅视频）
	StageExtracting JobStage = "extracting"
	// StageSeparating 人声分离中
	StageSeparating JobStage = "separating"
	// StageMerging 音视频合成中（仅视频）
	StageMerging JobStage = "merging"
	// StageFinalizing 收尾处理中
	StageFinalizing JobStage = "finalizing"
	// StageSucceeded 已成功
	StageSucceeded JobStage = "succeeded"
	// StageFailed 已失败
	StageFailed JobStage = "failed"
)

// IsValid 检查阶段是否有效
func (s JobStage) IsValid() bool {
	switch s {
	case StageUploading, StageExtracting, StageSeparating,
		StageMerging, StageFinalizing, StageSucceeded, StageFailed:
		return true
	default:
		return false
	}
}

// String 返回阶段字符串
func (s JobStage) String() string {
	return string(s)
}

// IsTerminal 检查是否为最终阶段
func (s JobStage) IsTerminal() bool {
	return s == StageSucceeded || s == StageFailed
}

// CanTransitionTo 检查是否可以转换到目标阶段
func (s JobStage) CanTransitionTo(target JobStage) bool {
	if target == StageFailed {
		// 任意非终态都可以失败
		return !s.IsTerminal()
	}
	switch s {
	case StageUploading:
		return target == StageExtracting || target == StageSeparating
	case StageExtracting:
		return target == StageSeparating
	case StageSeparating:
		return target == StageMerging || target == StageFinalizing
	case StageMerging:
		return target == StageFinalizing
	case StageFinalizing:
		return target == StageSucceeded
	case StageSucceeded, StageFailed:
		return false // 最终状态不能转换
	default:
		return false
	}
}
