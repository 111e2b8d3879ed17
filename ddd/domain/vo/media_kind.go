package vo

import (
	"path/filepath"
	"strings"
)

// MediaKind 上传媒体类型，由文件扩展名推断
type MediaKind string

const (
	// MediaKindAudio 纯音频输入，仅执行分离
	MediaKindAudio MediaKind = "audio"
	// MediaKindVideo 视频输入，执行抽取、分离、合成全流程
	MediaKindVideo MediaKind = "video"
)

// DetectMediaKind 由文件名后缀推断媒体类型，.mp4视作视频，其余按音频处理
func DetectMediaKind(filename string) MediaKind {
	if strings.EqualFold(filepath.Ext(filename), ".mp4") {
		return MediaKindVideo
	}
	return MediaKindAudio
}

// IsVideo 是否为视频输入
func (k MediaKind) IsVideo() bool {
	return k == MediaKindVideo
}

// String 返回类型字符串
func (k MediaKind) String() string {
	return string(k)
}
