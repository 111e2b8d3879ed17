package vo_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"separation-service/ddd/domain/vo"
)

func TestJobKey(t *testing.T) {
	assert.Equal(t, "song", vo.JobKey("song.mp3"))
	assert.Equal(t, "clip", vo.JobKey("clip.mp4"))
	assert.Equal(t, "noext", vo.JobKey("noext"))
	assert.Equal(t, "a.b", vo.JobKey("a.b.wav"))
}

func TestPathLayout_VideoDerivation(t *testing.T) {
	layout := vo.NewPathLayout("/data/uploads", "/data/output")

	assert.Equal(t, filepath.Join("/data/uploads", "clip.mp4"), layout.UploadPath("clip.mp4"))

	extracted := layout.ExtractedAudioPath("clip.mp4")
	assert.Equal(t, filepath.Join("/data/uploads", "clip_extracted.mp3"), extracted)

	// 分离输出目录取音频文件 basename 去扩展名
	dir := layout.SeparationDir(extracted)
	assert.Equal(t, filepath.Join("/data/output", "clip_extracted"), dir)
	assert.Equal(t, filepath.Join(dir, "vocals.wav"), layout.VocalsPath(extracted))
	assert.Equal(t, filepath.Join(dir, "accompaniment.wav"), layout.AccompanimentPath(extracted))

	assert.Equal(t, filepath.Join("/data/output", "clip_vocals_only.mp4"), layout.MergedVideoPath("clip.mp4"))
}

func TestPathLayout_AudioDerivation(t *testing.T) {
	layout := vo.NewPathLayout("/u", "/o")

	upload := layout.UploadPath("song.mp3")
	dir := layout.SeparationDir(upload)
	assert.Equal(t, filepath.Join("/o", "song"), dir)
	assert.Equal(t, filepath.Join("/o", "song", "vocals.wav"), layout.VocalsPath(upload))
}

func TestPathLayout_PolledArtifactPath(t *testing.T) {
	layout := vo.NewPathLayout("/u", "/o")
	assert.Equal(t, filepath.Join("/o", "song", "vocals.wav"), layout.PolledArtifactPath("song"))

	// 轮询位置与分离输出位置对音频任务必须一致
	assert.Equal(t, layout.VocalsPath(layout.UploadPath("song.mp3")), layout.PolledArtifactPath(vo.JobKey("song.mp3")))
}

func TestDetectMediaKind(t *testing.T) {
	assert.Equal(t, vo.MediaKindVideo, vo.DetectMediaKind("clip.mp4"))
	assert.Equal(t, vo.MediaKindVideo, vo.DetectMediaKind("CLIP.MP4"))
	assert.Equal(t, vo.MediaKindAudio, vo.DetectMediaKind("song.mp3"))
	assert.Equal(t, vo.MediaKindAudio, vo.DetectMediaKind("song.wav"))
	assert.Equal(t, vo.MediaKindAudio, vo.DetectMediaKind("noext"))

	assert.True(t, vo.DetectMediaKind("a.mp4").IsVideo())
	assert.False(t, vo.DetectMediaKind("a.flac").IsVideo())
}

func TestStageOutcome(t *testing.T) {
	ok := vo.StageOutcome{ExitCode: 0}
	assert.True(t, ok.Succeeded())

	bad := vo.StageOutcome{ExitCode: 1, StderrTail: []string{"boom", "bang"}}
	assert.False(t, bad.Succeeded())
	assert.Contains(t, bad.TailString(), "boom")
	assert.Contains(t, bad.TailString(), "bang")
}
