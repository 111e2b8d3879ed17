package dto

// ChunkUploadDTO 分片上传响应
type ChunkUploadDTO struct {
	Message    string `json:"message"`
	Processing bool   `json:"processing"`
}

// JobStatusDTO 任务状态轮询响应
type JobStatusDTO struct {
	Message     string `json:"message"`
	IsProcessed bool   `json:"isProcessed"`
}
