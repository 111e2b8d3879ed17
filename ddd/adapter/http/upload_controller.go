package http

import (
	"github.com/gin-gonic/gin"

	"separation-service/ddd/application/app"
	"separation-service/ddd/application/cqe"
	"separation-service/pkg/errno"
	"separation-service/pkg/restapi"
)

// UploadController 分片上传控制器
type UploadController struct {
	separationApp app.SeparationApp
}

// NewUploadController 创建分片上传控制器
func NewUploadController(separationApp app.SeparationApp) *UploadController {
	return &UploadController{separationApp: separationApp}
}

// UploadChunk 接收一个multipart分片；文件名由File-Name请求头声明
func (c *UploadController) UploadChunk(ctx *gin.Context) {
	var req cqe.ChunkUploadCqe
	if err := ctx.ShouldBind(&req); err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	req.FileName = ctx.GetHeader("File-Name")

	fileHeader, err := ctx.FormFile("chunk")
	if err != nil {
		restapi.Failed(ctx, errno.ErrChunkMissing)
		return
	}

	chunk, err := fileHeader.Open()
	if err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrChunkAppend, err))
		return
	}
	defer chunk.Close()

	resp, err := c.separationApp.HandleChunk(ctx.Request.Context(), &req, chunk)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, resp)
}
