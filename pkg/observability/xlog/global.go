package xlog

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// 全局 Logger，定位于 CLI 与测试等简单场景；库代码通过 Option 显式注入 Logger。
var globalLogger atomic.Pointer[LoggerWithLevel]

func fallbackLogger() LoggerWithLevel {
	levelVar := new(slog.LevelVar)
	return &xlogger{
		handler:  &EnrichHandler{base: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar})},
		levelVar: levelVar,
		errors:   new(atomic.Uint64),
	}
}

// Default 返回全局 Logger，首次调用时惰性创建（stderr、Info、text、enrich）。
func Default() LoggerWithLevel {
	if l := globalLogger.Load(); l != nil {
		return *l
	}
	l := fallbackLogger()
	if globalLogger.CompareAndSwap(nil, &l) {
		return l
	}
	return *globalLogger.Load()
}

// SetDefault 替换全局 Logger，nil 被忽略。
func SetDefault(l LoggerWithLevel) {
	if l == nil {
		return
	}
	globalLogger.Store(&l)
}

// ResetDefault 重置全局 Logger（仅用于测试）。
func ResetDefault() {
	globalLogger.Store(nil)
}

// Debug 使用全局 Logger 记录 Debug 级别日志
func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().Debug(ctx, msg, attrs...)
}

// Info 使用全局 Logger 记录 Info 级别日志
func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().Info(ctx, msg, attrs...)
}

// Warn 使用全局 Logger 记录 Warn 级别日志
func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().Warn(ctx, msg, attrs...)
}

// Error 使用全局 Logger 记录 Error 级别日志
func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().Error(ctx, msg, attrs...)
}
