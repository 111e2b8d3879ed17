package vo

import (
	"path/filepath"
	"strings"
)

// 分离模型在输出目录下的固定产物文件名（协作进程契约）
const (
	VocalsFileName        = "vocals.wav"
	AccompanimentFileName = "accompaniment.wav"
)

// PathLayout 任务相关路径的确定性推导。
// 阶段之间通过文件系统交接产物，所有预期位置必须是输入的纯函数。
type PathLayout struct {
	UploadDir string
	OutputDir string
}

// NewPathLayout 创建路径布局
func NewPathLayout(uploadDir, outputDir string) PathLayout {
	return PathLayout{UploadDir: uploadDir, OutputDir: outputDir}
}

// JobKey 由上传文件名推导任务键（去扩展名）
func JobKey(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// UploadPath 原始上传文件路径
func (l PathLayout) UploadPath(filename string) string {
	return filepath.Join(l.UploadDir, filename)
}

// ExtractedAudioPath 视频抽取出的音频路径
func (l PathLayout) ExtractedAudioPath(filename string) string {
	return filepath.Join(l.UploadDir, JobKey(filename)+"_extracted.mp3")
}

// SeparationDir 分离模型针对某个音频输入的输出目录：
// <output>/<音频文件basename去扩展名>/
func (l PathLayout) SeparationDir(audioPath string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(l.OutputDir, base)
}

// VocalsPath 人声轨路径
func (l PathLayout) VocalsPath(audioPath string) string {
	return filepath.Join(l.SeparationDir(audioPath), VocalsFileName)
}

// AccompanimentPath 伴奏轨路径
func (l PathLayout) AccompanimentPath(audioPath string) string {
	return filepath.Join(l.SeparationDir(audioPath), AccompanimentFileName)
}

// MergedVideoPath 合成后最终视频路径
func (l PathLayout) MergedVideoPath(filename string) string {
	return filepath.Join(l.OutputDir, JobKey(filename)+"_vocals_only.mp4")
}

// PolledArtifactPath 轮询接口按任务键探测的产物路径：<output>/<key>/vocals.wav
func (l PathLayout) PolledArtifactPath(jobKey string) string {
	return filepath.Join(l.OutputDir, jobKey, VocalsFileName)
}
