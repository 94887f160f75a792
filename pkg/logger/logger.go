package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerContextKey struct{}

const (
	VersionKey   = "version"
	TimeStampKey = "timestamp"
	MessageKey   = "message"
)

// Version 写入每条日志，构建时通过 ldflags 覆盖
var Version = "dev"

var (
	once sync.Once

	// globalZapLogger 用于 Sync
	globalZapLogger *zap.Logger
	globalLogger    *logr.Logger

	noopLogger = logr.Discard()
)

// Get 初始化全局日志，只有第一次调用生效
// logLevel 为 zapcore.Level：-1 debug，0 info
// logr 的 V(n) 对应 zap 的 -n 级别，因此 debug 级别下 V(1) 可见
func Get(logLevel int8) *logr.Logger {
	once.Do(func() {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderCfg.TimeKey = TimeStampKey
		encoderCfg.MessageKey = MessageKey

		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.Lock(os.Stderr),
			zap.NewAtomicLevelAt(zapcore.Level(logLevel)),
		).With([]zapcore.Field{zap.String(VersionKey, Version)})

		globalZapLogger = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))

		l := zapr.NewLogger(globalZapLogger)
		globalLogger = &l
	})
	if globalLogger == nil {
		return &noopLogger
	}
	return globalLogger
}

// WithLogger 将日志放入 context
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if existing, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok && existing == log {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext 取出 context 中的日志，没有则返回全局日志，全局未初始化时返回空日志
func FromContext(ctx context.Context) *logr.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		return log
	}
	if globalLogger != nil {
		return globalLogger
	}
	return &noopLogger
}

// Sync 刷新缓冲，忽略 stderr 为终端或管道时的常见错误
func Sync() {
	if globalZapLogger == nil {
		return
	}
	if err := globalZapLogger.Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "WARNING: failed to sync logger: %v\n", err)
	}
}

func isIgnorableSyncError(err error) bool {
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EBADF) {
		return true
	}
	return strings.Contains(err.Error(), "The handle is invalid")
}
