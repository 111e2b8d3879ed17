package http

import (
	"github.com/gin-gonic/gin"

	"separation-service/ddd/application/app"
)

// Router 路由配置
type Router struct {
	separationApp app.SeparationApp
}

// NewRouter 创建路由配置
func NewRouter(separationApp app.SeparationApp) *Router {
	return &Router{separationApp: separationApp}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes(engine *gin.Engine) {
	uploadController := NewUploadController(r.separationApp)
	statusController := NewStatusController(r.separationApp)

	// API v1 路由组
	v1 := engine.Group("/api/v1")
	{
		uploads := v1.Group("/uploads")
		{
			uploads.POST("/chunk", uploadController.UploadChunk) // 接收分片
		}

		v1.GET("/status", statusController.PollStatus) // 轮询任务状态
	}

	// 健康检查路由
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "separation-service",
			"version": "1.0.0",
		})
	})
}

// SetupMiddleware 设置中间件
func (r *Router) SetupMiddleware(engine *gin.Engine) {
	// CORS中间件
	engine.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, File-Name")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// 请求日志中间件
	engine.Use(gin.Logger())

	// 恢复中间件
	engine.Use(gin.Recovery())
}
