package config

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Separation SeparationConfig `mapstructure:"separation"`
	Polling    PollingConfig    `mapstructure:"polling"`
	Cleanup    CleanupConfig    `mapstructure:"cleanup"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Storage    StorageConfig    `mapstructure:"storage"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// UploadConfig 分片上传配置
type UploadConfig struct {
	Dir string `mapstructure:"dir"`
}

// SeparationConfig 人声分离管线配置
type SeparationConfig struct {
	OutputDir    string         `mapstructure:"output_dir"`
	StageTimeout time.Duration  `mapstructure:"stage_timeout"`
	FFmpeg       FFmpegConfig   `mapstructure:"ffmpeg"`
	Spleeter     SpleeterConfig `mapstructure:"spleeter"`
}

// FFmpegConfig FFmpeg相关配置
type FFmpegConfig struct {
	BinaryPath   string `mapstructure:"binary_path"`
	ExtractCodec string `mapstructure:"extract_codec"`
	ExtractRate  string `mapstructure:"extract_bitrate"`
	MergeCodec   string `mapstructure:"merge_audio_codec"`
	MergeRate    string `mapstructure:"merge_audio_bitrate"`
}

// SpleeterConfig 分离模型进程配置
type SpleeterConfig struct {
	PythonPath string `mapstructure:"python_path"`
	Model      string `mapstructure:"model"`
}

// PollingConfig 状态轮询配置
type PollingConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Interval    time.Duration `mapstructure:"interval"`
}

// CleanupConfig 产物清理配置
type CleanupConfig struct {
	RetentionWindow time.Duration `mapstructure:"retention_window"`
	SweepOnStart    bool          `mapstructure:"sweep_on_start"`
}

// WorkerConfig Worker相关配置
type WorkerConfig struct {
	WorkerID            string        `mapstructure:"worker_id"`
	Concurrency         int           `mapstructure:"concurrency"`
	QueueCapacity       int           `mapstructure:"queue_capacity"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

// StorageConfig 最终产物外部存储配置（可选）
type StorageConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Minio   MinioConfig `mapstructure:"minio"`
	// PublicBase 用于拼接最终产物可访问URL
	PublicBase string `mapstructure:"public_base"`
}

// MinioConfig MinIO配置
type MinioConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8084)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "90s")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("upload.dir", "uploads")
	viper.SetDefault("separation.output_dir", "output")
	viper.SetDefault("separation.ffmpeg.binary_path", "ffmpeg")
	viper.SetDefault("separation.ffmpeg.extract_codec", "libmp3lame")
	viper.SetDefault("separation.ffmpeg.extract_bitrate", "320k")
	viper.SetDefault("separation.ffmpeg.merge_audio_codec", "aac")
	viper.SetDefault("separation.ffmpeg.merge_audio_bitrate", "192k")
	viper.SetDefault("separation.spleeter.python_path", "python3")
	viper.SetDefault("separation.spleeter.model", "spleeter:2stems-16kHz")
	viper.SetDefault("polling.max_attempts", 60)
	viper.SetDefault("polling.interval", "1s")
	viper.SetDefault("cleanup.retention_window", "10m")
	viper.SetDefault("cleanup.sweep_on_start", false)
	viper.SetDefault("worker.worker_id", "separation-worker")
	viper.SetDefault("worker.concurrency", 2)
	viper.SetDefault("worker.queue_capacity", 100)
	viper.SetDefault("worker.shutdown_grace_period", "30s")
	viper.SetDefault("storage.enabled", false)

	// 设置环境变量前缀
	viper.SetEnvPrefix("SEPARATION")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	// 解析配置
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	return &config, nil
}

// normalize 修正非法或缺省的配置项
func (c *Config) normalize() {
	if c.Worker.Concurrency <= 0 {
		c.Worker.Concurrency = 1
	}
	if c.Worker.QueueCapacity <= 0 {
		c.Worker.QueueCapacity = 100
	}
	if c.Polling.MaxAttempts <= 0 {
		c.Polling.MaxAttempts = 60
	}
	if c.Polling.Interval <= 0 {
		c.Polling.Interval = time.Second
	}
	if c.Cleanup.RetentionWindow <= 0 {
		c.Cleanup.RetentionWindow = 10 * time.Minute
	}
	if strings.TrimSpace(c.Separation.FFmpeg.BinaryPath) == "" {
		c.Separation.FFmpeg.BinaryPath = "ffmpeg"
	}
	if strings.TrimSpace(c.Separation.Spleeter.PythonPath) == "" {
		c.Separation.Spleeter.PythonPath = "python3"
	}
	c.Upload.Dir = filepath.Clean(c.Upload.Dir)
	c.Separation.OutputDir = filepath.Clean(c.Separation.OutputDir)
}

var (
	globalConfig *Config
	globalMu     sync.RWMutex
)

// SetGlobalConfig 设置全局配置
func SetGlobalConfig(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig 获取全局配置
func GetGlobalConfig() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}
