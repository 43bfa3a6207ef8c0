package xrun

import (
	"context"
	"time"
)

// Service 是可由 Run 管理的长期服务，Run 应在 ctx 结束后返回。
type Service interface {
	Run(ctx context.Context) error
}

// ServiceFunc 把函数适配为 Service。
type ServiceFunc func(ctx context.Context) error

// Run 调用 f。
func (f ServiceFunc) Run(ctx context.Context) error { return f(ctx) }

type namedService struct {
	name string
	Service
}

// Named 为服务命名，名称出现在生命周期日志中。
func Named(name string, svc Service) Service {
	if svc == nil {
		return nil
	}
	return namedService{name: name, Service: svc}
}

func serviceName(svc Service) string {
	if n, ok := svc.(namedService); ok {
		return n.name
	}
	return "service"
}

// Ticker 每隔 interval 调用一次 fn，immediate 为 true 时启动即调用一次。
// fn 返回错误时服务退出。
func Ticker(interval time.Duration, immediate bool, fn func(ctx context.Context) error) ServiceFunc {
	return func(ctx context.Context) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		if fn == nil {
			return ErrNilFunc
		}
		if immediate {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx); err != nil {
				return err
			}
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := fn(ctx); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// WaitForDone 阻塞到 ctx 结束。
func WaitForDone() ServiceFunc {
	return func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
}

// Shutdowner 是可以在限定时间内关闭的资源，例如 worker pool 注册表。
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// ShutdownOnDone 返回一个服务：ctx 结束后以 timeout 为上限关闭 s。
// timeout <= 0 表示不限时。关闭成功时返回 nil。
func ShutdownOnDone(s Shutdowner, timeout time.Duration) ServiceFunc {
	return func(ctx context.Context) error {
		if s == nil {
			return ErrNilService
		}
		<-ctx.Done()
		sctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(sctx, timeout)
			defer cancel()
		}
		return s.Shutdown(sctx)
	}
}
