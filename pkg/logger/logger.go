package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"separation-service/pkg/config"
)

// Logger 封装logrus，统一日志出口
type Logger struct {
	entry *logrus.Logger
	file  *os.File
}

// NewLogger 根据配置创建日志器
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()

	level := logrus.InfoLevel
	if cfg != nil {
		if parsed, err := logrus.ParseLevel(strings.ToLower(cfg.Log.Level)); err == nil {
			level = parsed
		}
	}
	l.SetLevel(level)

	if cfg != nil && strings.EqualFold(cfg.Log.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05.000"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	logger := &Logger{entry: l}

	var out io.Writer = os.Stdout
	if cfg != nil {
		switch strings.ToLower(cfg.Log.Output) {
		case "", "stdout":
		case "stderr":
			out = os.Stderr
		default:
			// 输出到文件，打开失败时退回stdout
			f, err := os.OpenFile(cfg.Log.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				out = f
				logger.file = f
			}
		}
	}
	l.SetOutput(out)

	return logger
}

// Close 释放日志文件句柄
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) { l.log(logrus.DebugLevel, msg, fields) }
func (l *Logger) Info(msg string, fields ...map[string]interface{})  { l.log(logrus.InfoLevel, msg, fields) }
func (l *Logger) Warn(msg string, fields ...map[string]interface{})  { l.log(logrus.WarnLevel, msg, fields) }
func (l *Logger) Error(msg string, fields ...map[string]interface{}) { l.log(logrus.ErrorLevel, msg, fields) }

func (l *Logger) log(level logrus.Level, msg string, fields []map[string]interface{}) {
	if len(fields) == 0 {
		l.entry.Log(level, msg)
		return
	}
	merged := logrus.Fields{}
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	l.entry.WithFields(merged).Log(level, msg)
}

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// SetGlobalLogger 设置全局日志器
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

func global() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewLogger(nil)
	}
	return globalLogger
}

// Debug 输出调试日志
func Debug(msg string, fields ...map[string]interface{}) { global().Debug(msg, fields...) }

// Info 输出信息日志
func Info(msg string, fields ...map[string]interface{}) { global().Info(msg, fields...) }

// Warn 输出警告日志
func Warn(msg string, fields ...map[string]interface{}) { global().Warn(msg, fields...) }

// Error 输出错误日志
func Error(msg string, fields ...map[string]interface{}) { global().Error(msg, fields...) }

// Debugf 格式化调试日志
func Debugf(format string, args ...interface{}) { global().entry.Debugf(format, args...) }

// Infof 格式化信息日志
func Infof(format string, args ...interface{}) { global().entry.Infof(format, args...) }

// Warnf 格式化警告日志
func Warnf(format string, args ...interface{}) { global().entry.Warnf(format, args...) }

// Errorf 格式化错误日志
func Errorf(format string, args ...interface{}) { global().entry.Errorf(format, args...) }

// Fatal 输出致命错误并退出进程
func Fatal(msg string) { global().entry.Fatal(msg) }
