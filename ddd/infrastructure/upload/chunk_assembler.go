package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"separation-service/pkg/logger"
)

// AssemblyStatus 分片落盘后的装配状态
type AssemblyStatus int

const (
	// AssemblyPartial 还有后续分片
	AssemblyPartial AssemblyStatus = iota
	// AssemblyComplete 末分片已写入，文件装配完成
	AssemblyComplete
)

// ChunkAssembler 把分片按到达顺序追加到同一个目标文件。
// 只做追加，不回写不去重；分片按声明序号有序到达由调用方保证。
type ChunkAssembler struct {
	uploadDir string
}

// NewChunkAssembler 创建分片装配器
func NewChunkAssembler(uploadDir string) *ChunkAssembler {
	return &ChunkAssembler{uploadDir: uploadDir}
}

// AppendChunk 追加一个分片，chunkIndex为1起始。
// 末分片（chunkIndex == totalChunks）写入后返回AssemblyComplete。
func (a *ChunkAssembler) AppendChunk(filename string, chunkIndex, totalChunks int, data io.Reader) (AssemblyStatus, error) {
	if chunkIndex < 1 || totalChunks < 1 || chunkIndex > totalChunks {
		return AssemblyPartial, fmt.Errorf("chunk index %d out of declared range 1..%d", chunkIndex, totalChunks)
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		return AssemblyPartial, fmt.Errorf("create upload dir: %w", err)
	}

	target := filepath.Join(a.uploadDir, filename)
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return AssemblyPartial, fmt.Errorf("open upload target: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, data)
	if err != nil {
		return AssemblyPartial, fmt.Errorf("append chunk: %w", err)
	}

	if chunkIndex == totalChunks {
		logger.Infof("all chunks received filename=%s total_chunks=%d", filename, totalChunks)
		return AssemblyComplete, nil
	}
	logger.Debugf("chunk received filename=%s chunk=%d/%d bytes=%d", filename, chunkIndex, totalChunks, written)
	return AssemblyPartial, nil
}
