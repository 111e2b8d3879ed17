package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"

	adapterhttp "separation-service/ddd/adapter/http"
	app "separation-service/ddd/application/app"
	"separation-service/ddd/domain/gateway"
	"separation-service/ddd/domain/service"
	"separation-service/ddd/infrastructure/cleanup"
	"separation-service/ddd/infrastructure/executor"
	"separation-service/ddd/infrastructure/poller"
	"separation-service/ddd/infrastructure/queue"
	"separation-service/ddd/infrastructure/storage"
	"separation-service/ddd/infrastructure/upload"
	"separation-service/ddd/infrastructure/worker"
	"separation-service/internal/resource"
	"separation-service/pkg/config"
	"separation-service/pkg/logger"
	"separation-service/pkg/middleware"
	"separation-service/pkg/task"
)

func Run() {
	// 先使用标准输出确保能看到日志
	fmt.Println("[STARTUP] Starting separation service...")

	// 加载配置
	fmt.Println("[STARTUP] Loading config file...")
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	// 设置全局配置（必须在资源初始化之前）
	config.SetGlobalConfig(cfg)
	fmt.Printf("[STARTUP] Config file loaded: %s\n", cfgPath)

	// 立即初始化日志服务（确保所有后续组件都能使用正确的日志器）
	fmt.Println("[STARTUP] Initializing logger...")
	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	fmt.Println("[STARTUP] Logger initialized")

	logger.Debug("Logger initialized", map[string]interface{}{
		"level":  cfg.Log.Level,
		"format": cfg.Log.Format,
		"output": cfg.Log.Output,
	})

	logger.Infof("Separation service starting version=%s", "1.0.0")

	// 检查外部协作进程是否可用，缺ffmpeg直接在启动阶段失败
	ffmpegBin := cfg.Separation.FFmpeg.BinaryPath
	if strings.TrimSpace(ffmpegBin) == "" {
		ffmpegBin = "ffmpeg"
	}
	if _, err := exec.LookPath(ffmpegBin); err != nil {
		logger.Fatal(fmt.Sprintf("FFmpeg binary not found, please install or set separation.ffmpeg.binary_path binary=%s error=%s", ffmpegBin, err.Error()))
	}
	pythonBin := cfg.Separation.Spleeter.PythonPath
	if _, err := exec.LookPath(pythonBin); err != nil {
		logger.Warnf("Spleeter python binary not found, separation stages will fail binary=%s error=%v", pythonBin, err)
	}

	// 准备上传和输出目录
	for _, dir := range []string{cfg.Upload.Dir, cfg.Separation.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal(fmt.Sprintf("Failed to create working directory dir=%s error=%v", dir, err))
		}
	}

	// 初始化清理调度器
	cleanupScheduler := cleanup.NewScheduler()
	if cfg.Cleanup.SweepOnStart {
		// 进程重启会丢失未触发的删除定时器，启动时清掉过期残留
		cleanupScheduler.SweepStale([]string{cfg.Upload.Dir, cfg.Separation.OutputDir}, cfg.Cleanup.RetentionWindow)
	}

	// 可选初始化对象存储
	var artifactGateway gateway.ArtifactGateway
	if cfg.Storage.Enabled {
		logger.Infof("Initializing MinIO artifact storage endpoint=%s", cfg.Storage.Minio.Endpoint)
		minioResource := resource.DefaultMinioResource()
		minioResource.MustOpen()
		defer minioResource.Close()
		artifactGateway = storage.NewMinioArtifactStorage(minioResource, cfg)
	}

	// 初始化分离管线组件
	logger.Infof("Initializing separation pipeline components...")
	stageRunner := executor.NewCommandExecutor()
	pipelineService := service.NewPipelineService(stageRunner, cleanupScheduler, artifactGateway, cfg)

	jobQueue := queue.NewMemoryJobQueue(cfg.Worker.QueueCapacity)
	keyGuard := queue.NewKeyGuard()
	separationWorker := worker.NewSeparationWorker(cfg.Worker.WorkerID, jobQueue, pipelineService, keyGuard, cfg.Worker.Concurrency)

	task.Register(cleanupScheduler)
	task.Register(separationWorker)
	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	logger.Infof("Background tasks started worker_id=%s concurrency=%d queue_capacity=%d",
		cfg.Worker.WorkerID, cfg.Worker.Concurrency, cfg.Worker.QueueCapacity)

	// 初始化应用服务
	chunkAssembler := upload.NewChunkAssembler(cfg.Upload.Dir)
	artifactPoller := poller.NewArtifactPoller(cfg.Polling.MaxAttempts, cfg.Polling.Interval)
	separationApp := app.NewSeparationApp(chunkAssembler, jobQueue, keyGuard, artifactPoller, cfg)
	logger.Infof("Separation components initialized")

	// 创建Gin引擎
	logger.Infof("Creating HTTP routes...")
	if strings.EqualFold(cfg.Server.Mode, "release") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestContextMiddleware())

	httpRouter := adapterhttp.NewRouter(separationApp)
	httpRouter.SetupMiddleware(router)
	httpRouter.SetupRoutes(router)
	logger.Infof("Routes registered")

	// 启动HTTP服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
		// 写超时必须覆盖轮询接口的整个等待预算
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()

	logger.Infof("HTTP server started address=%s service=%s health_url=%s", addr, "separation-service",
		fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port))

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownGracePeriod)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server forced to shutdown error=%v", err)
	}

	// 关闭后台任务：队列不再接收新任务，在途管线跑完为止
	_ = jobQueue.Close()
	task.StopAll()

	logger.Infof("Server exited safely")

	// 关闭日志服务
	logger.Infof("Closing logger...")
	if logService != nil {
		logService.Close()
	}

	fmt.Println("[SHUTDOWN] Separation service exited safely")
}

// resolveConfigPath 根据环境选择配置文件，支持CONFIG_PATH覆盖、CONFIG_ENV区分环境
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config_prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
