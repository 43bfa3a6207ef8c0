package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/phray/xtask/pkg/observability/xlog"
)

// Group 并发运行多个服务：任一服务返回错误或 Cancel 被调用时，其余服务的 ctx 被取消。
//
// Go、GoNamed、Cancel 可并发调用；Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group，返回的 ctx 在任一服务失败或 Cancel 后结束。nil ctx 视为 Background。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{eg: eg, ctx: egCtx, causeCtx: causeCtx, cancel: cancel, opts: options}, egCtx
}

// Go 启动一个服务。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoNamed 与 Go 相同，额外记录服务的启停日志。
func (g *Group) GoNamed(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		attrs := []slog.Attr{slog.String("group", g.opts.name), slog.String("service", name)}
		g.opts.logger.Debug(g.ctx, "xrun: service starting", attrs...)
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.opts.logger.Warn(g.ctx, "xrun: service exited with error", append(attrs, xlog.Err(err))...)
		} else {
			g.opts.logger.Debug(g.ctx, "xrun: service stopped", attrs...)
		}
		return err
	})
}

// Cancel 取消所有服务，cause 由 Wait 返回。cause 不应包装 context.Canceled。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 ctx。
func (g *Group) Context() context.Context {
	return g.ctx
}

// Wait 等待全部服务退出。
//
// Group 被取消（Cancel 或父 ctx 结束）引起的 context.Canceled 被过滤；
// 显式的取消原因（如 *SignalError）总会返回，即使所有服务都返回 nil。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	cause := g.cause()
	switch {
	case errors.Is(err, context.Canceled) && g.causeCtx.Err() != nil:
		return cause
	case err == nil:
		return cause
	default:
		return err
	}
}

func (g *Group) cause() error {
	if g.causeCtx.Err() == nil {
		return nil
	}
	if c := context.Cause(g.causeCtx); c != nil && !errors.Is(c, context.Canceled) {
		return c
	}
	return nil
}

// DefaultSignals 返回 Run 默认监听的信号：SIGHUP、SIGINT、SIGTERM、SIGQUIT。
func DefaultSignals() []os.Signal {
	return []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}
}

type sigChanKey struct{}

// injectedSignals 返回测试通过 ctx 注入的信号通道，生产环境为 nil。
func injectedSignals(ctx context.Context) <-chan os.Signal {
	c, _ := ctx.Value(sigChanKey{}).(<-chan os.Signal)
	return c
}

// Run 运行服务并监听退出信号。收到信号时返回 *SignalError。
func Run(ctx context.Context, opts []Option, services ...Service) error {
	g, _ := NewGroup(ctx, opts...)
	if !g.opts.noSignalHandler {
		signals := g.opts.signals
		if len(signals) == 0 {
			signals = DefaultSignals()
		}
		g.Go(func(ctx context.Context) error {
			ch := make(chan os.Signal, 1)
			signal.Notify(ch, signals...)
			defer signal.Stop(ch)

			var sig os.Signal
			select {
			case sig = <-ch:
			case sig = <-injectedSignals(ctx):
			case <-ctx.Done():
				return ctx.Err()
			}
			g.opts.logger.Info(ctx, "xrun: received signal",
				slog.String("group", g.opts.name),
				slog.String("signal", sig.String()))
			g.Cancel(&SignalError{Signal: sig})
			return nil
		})
	}
	for _, svc := range services {
		if svc == nil {
			g.Go(func(context.Context) error { return ErrNilService })
			continue
		}
		g.GoNamed(serviceName(svc), svc.Run)
	}
	return g.Wait()
}
