package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"

	"separation-service/ddd/domain/gateway"
	"separation-service/internal/resource"
	"separation-service/pkg/config"
	"separation-service/pkg/logger"
)

// MinioArtifactStorage MinIO最终产物存储实现
type MinioArtifactStorage struct {
	minioResource *resource.MinioResource
	publicBase    string
}

// NewMinioArtifactStorage 创建MinIO存储实例
func NewMinioArtifactStorage(minioResource *resource.MinioResource, cfg *config.Config) gateway.ArtifactGateway {
	publicBase := ""
	if cfg != nil {
		publicBase = strings.TrimSpace(cfg.Storage.PublicBase)
	}
	return &MinioArtifactStorage{
		minioResource: minioResource,
		publicBase:    publicBase,
	}
}

// UploadFinalArtifact 上传最终产物，返回可访问的对象路径
func (s *MinioArtifactStorage) UploadFinalArtifact(ctx context.Context, localPath, objectKey, contentType string) (string, error) {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	file, err := os.Open(localPath)
	if err != nil {
		logger.Error("Failed to open local artifact", map[string]interface{}{
			"local_path": localPath,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("open local artifact failed: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("get artifact info failed: %w", err)
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(objectKey))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = client.PutObject(ctx, bucketName, objectKey, file, fileInfo.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Error("Failed to upload final artifact to MinIO", map[string]interface{}{
			"local_path": localPath,
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("upload final artifact to minio failed: %w", err)
	}

	logger.Info("Final artifact uploaded", map[string]interface{}{
		"local_path": localPath,
		"object_key": objectKey,
		"size":       fileInfo.Size(),
	})

	return s.buildArtifactURL(objectKey), nil
}

// buildArtifactURL 拼接对外可访问URL，未配置public_base时返回对象键
func (s *MinioArtifactStorage) buildArtifactURL(objectKey string) string {
	key := strings.TrimLeft(objectKey, "/")
	if s.publicBase == "" {
		return key
	}
	base := s.publicBase
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return strings.TrimRight(base, "/") + "/" + key
}
