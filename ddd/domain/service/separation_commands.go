package service

import (
	"separation-service/ddd/domain/vo"
	"separation-service/pkg/config"
)

// buildExtractCommand 构造音频抽取命令：去视频流，固定质量档输出音频
func buildExtractCommand(cfg *config.Config, videoPath, audioPath string) vo.StageCommand {
	ff := cfg.Separation.FFmpeg
	return vo.StageCommand{
		Stage:  vo.StageExtracting,
		Binary: ff.BinaryPath,
		Args: []string{
			"-i", videoPath,
			"-vn",
			"-acodec", ff.ExtractCodec,
			"-b:a", ff.ExtractRate,
			"-y",
			audioPath,
		},
	}
}

// buildSeparateCommand 构造分离模型命令。模型进程在输出目录下
// 按输入音频basename建子目录，产出人声轨和伴奏轨两个文件。
func buildSeparateCommand(cfg *config.Config, audioPath, outputDir string) vo.StageCommand {
	sp := cfg.Separation.Spleeter
	return vo.StageCommand{
		Stage:  vo.StageSeparating,
		Binary: sp.PythonPath,
		Args: []string{
			"-m", "spleeter",
			"separate",
			"-p", sp.Model,
			"-o", outputDir,
			audioPath,
		},
	}
}

// buildMergeCommand 构造合成命令：视频流原样拷贝，音频流整体替换为
// 给定输入，时长取两路中较短者。
func buildMergeCommand(cfg *config.Config, videoPath, audioPath, outputPath string) vo.StageCommand {
	ff := cfg.Separation.FFmpeg
	return vo.StageCommand{
		Stage:  vo.StageMerging,
		Binary: ff.BinaryPath,
		Args: []string{
			"-i", videoPath,
			"-i", audioPath,
			"-c:v", "copy",
			"-c:a", ff.MergeCodec,
			"-b:a", ff.MergeRate,
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-shortest",
			"-y",
			outputPath,
		},
	}
}
