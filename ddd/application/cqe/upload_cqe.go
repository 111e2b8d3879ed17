package cqe

import (
	"strings"

	"separation-service/pkg/errno"
)

// ChunkUploadCqe 分片上传命令
type ChunkUploadCqe struct {
	// FileName 客户端声明的文件名，取自File-Name请求头
	FileName string
	// ChunkID 1起始的分片序号
	ChunkID int `form:"chunkId" binding:"required"`
	// TotalChunks 声明的分片总数
	TotalChunks int `form:"totalChunks" binding:"required"`
}

// Validate 校验上传参数
func (c *ChunkUploadCqe) Validate() error {
	name := strings.TrimSpace(c.FileName)
	if name == "" {
		return errno.ErrMissingParam
	}
	// 文件名直接充当磁盘路径成分，拒绝路径穿越
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return errno.ErrFileNameIllegal
	}
	if c.ChunkID < 1 || c.TotalChunks < 1 || c.ChunkID > c.TotalChunks {
		return errno.ErrChunkIndexRange
	}
	return nil
}

// StatusQueryCqe 任务状态查询
type StatusQueryCqe struct {
	// ID 任务键（文件名去扩展名）
	ID string `form:"id"`
}

// Validate 校验查询参数
func (c *StatusQueryCqe) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errno.ErrJobKeyRequired
	}
	if strings.ContainsAny(c.ID, "/\\") || strings.Contains(c.ID, "..") {
		return errno.ErrFileNameIllegal
	}
	return nil
}
