package xexec

import (
	"time"

	"github.com/phray/xtask/pkg/observability/xlog"
	"github.com/phray/xtask/pkg/observability/xmetrics"
)

// DefaultCollectTimeout 是 Collect 未指定超时时使用的等待上限。
const DefaultCollectTimeout = 30 * time.Second

// Option 配置 Dispatcher。
type Option func(*Dispatcher)

// WithLogger 设置日志记录器，nil 被忽略。
func WithLogger(l xlog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithObserver 设置观测器，nil 被忽略。
func WithObserver(o xmetrics.Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithHooks 设置对所有任务生效的生命周期回调。
func WithHooks(h Hooks) Option {
	return func(d *Dispatcher) { d.hooks = h }
}

// WithCatalog 设置 RunNamed / CollectNamed 使用的配置表，nil 被忽略。
func WithCatalog(c *Catalog) Option {
	return func(d *Dispatcher) {
		if c != nil {
			d.catalog = c
		}
	}
}

// WithDefaultTimeout 设置 Collect 在 timeout <= 0 时使用的超时，非正值被忽略。
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.defaultTimeout = timeout
		}
	}
}
