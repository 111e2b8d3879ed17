package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"separation-service/ddd/application/app"
	"separation-service/ddd/application/cqe"
	"separation-service/pkg/restapi"
)

// StatusController 任务状态轮询控制器
type StatusController struct {
	separationApp app.SeparationApp
}

// NewStatusController 创建任务状态控制器
func NewStatusController(separationApp app.SeparationApp) *StatusController {
	return &StatusController{separationApp: separationApp}
}

// PollStatus 有界等待任务产物出现。请求上下文随客户端断连取消，
// 轮询器随之停止探测，此时不再写任何响应。
func (c *StatusController) PollStatus(ctx *gin.Context) {
	req := cqe.StatusQueryCqe{ID: ctx.Query("id")}

	resp, err := c.separationApp.AwaitStatus(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ctx.Request.Context().Err()) && ctx.Request.Context().Err() != nil {
			// 客户端已断开，socket后面没有人
			return
		}
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, resp)
}
