package vo

// FailureReason 任务失败原因，按阶段归类
type FailureReason string

const (
	// FailureNone 未失败
	FailureNone FailureReason = ""
	// FailureInputMissing 上传文件缺失或不可读
	FailureInputMissing FailureReason = "InputMissing"
	// FailureExtractionFailed 音频抽取失败
	FailureExtractionFailed FailureReason = "ExtractionFailed"
	// FailureSeparationFailed 人声分离失败
	FailureSeparationFailed FailureReason = "SeparationFailed"
	// FailureMergeFailed 音视频合成失败
	FailureMergeFailed FailureReason = "MergeFailed"
	// FailureOutputMissing 协作进程报告成功但承诺的产物不存在
	FailureOutputMissing FailureReason = "OutputMissing"
)

// String 返回原因字符串
func (r FailureReason) String() string {
	return string(r)
}
