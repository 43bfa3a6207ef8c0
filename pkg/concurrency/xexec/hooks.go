package xexec

import (
	"context"
	"log/slog"
	"time"

	"github.com/phray/xtask/pkg/observability/xlog"
)

// Hooks 是任务生命周期回调，在 worker 上以恢复后的环境上下文调用。
//
// 任一字段可为 nil。回调的 panic 被恢复并记录，不影响任务收尾。
type Hooks struct {
	// OnBefore 在工作函数执行前调用。
	OnBefore func(ctx context.Context, desc string)
	// OnError 在工作函数失败后、错误记录前调用。
	OnError func(ctx context.Context, desc string, err *TaskError)
	// OnEnd 在收尾阶段调用，err 为 nil 表示成功。
	OnEnd func(ctx context.Context, desc string, err error, elapsed time.Duration)
}

type hookChain []Hooks

func (c hookChain) before(ctx context.Context, logger xlog.Logger, desc string) {
	for _, h := range c {
		if h.OnBefore != nil {
			safeHook(ctx, logger, "before", func() { h.OnBefore(ctx, desc) })
		}
	}
}

func (c hookChain) onError(ctx context.Context, logger xlog.Logger, desc string, err *TaskError) {
	for _, h := range c {
		if h.OnError != nil {
			safeHook(ctx, logger, "error", func() { h.OnError(ctx, desc, err) })
		}
	}
}

func (c hookChain) end(ctx context.Context, logger xlog.Logger, desc string, err error, elapsed time.Duration) {
	for _, h := range c {
		if h.OnEnd != nil {
			safeHook(ctx, logger, "end", func() { h.OnEnd(ctx, desc, err, elapsed) })
		}
	}
}

func safeHook(ctx context.Context, logger xlog.Logger, stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "xexec: hook panic recovered",
				slog.String("stage", stage), slog.Any("panic", r))
		}
	}()
	fn()
}
