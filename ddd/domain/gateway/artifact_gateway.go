package gateway

import "context"

// ArtifactGateway 最终产物外部存储网关
type ArtifactGateway interface {
	// UploadFinalArtifact 上传最终产物，返回可访问的对象路径
	UploadFinalArtifact(ctx context.Context, localPath, objectKey, contentType string) (string, error)
}
