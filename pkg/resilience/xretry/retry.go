package xretry

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v5"
)

type (
	// Option 是 retry-go 的配置选项类型
	Option = retry.Option
	// OnRetryFunc 重试回调，n 从 0 开始
	OnRetryFunc = retry.OnRetryFunc
	// Error 是 retry-go 累积的错误列表
	Error = retry.Error
)

var (
	// Attempts 设置总尝试次数（包含首次），0 表示无限重试。
	Attempts = retry.Attempts
	// Delay 设置基础重试间隔
	Delay = retry.Delay
	// MaxDelay 设置最大重试间隔
	MaxDelay = retry.MaxDelay
	// MaxJitter 设置最大抖动
	MaxJitter = retry.MaxJitter
	// DelayType 设置延迟类型
	DelayType = retry.DelayType
	// OnRetry 设置重试回调
	OnRetry = retry.OnRetry
	// RetryIf 设置重试条件，覆盖默认判定
	RetryIf = retry.RetryIf
	// LastErrorOnly 只返回最后一次的错误
	LastErrorOnly = retry.LastErrorOnly

	// FixedDelay 固定延迟
	FixedDelay = retry.FixedDelay
	// BackOffDelay 指数退避延迟
	BackOffDelay = retry.BackOffDelay

	// Unrecoverable 将错误标记为不可恢复
	Unrecoverable = retry.Unrecoverable
	// IsRecoverable 检查错误是否可恢复
	IsRecoverable = retry.IsRecoverable
)

// Do 执行带重试的操作。
//
// 默认 RetryIf 跳过 Unrecoverable 和 IsRetryable 为 false 的错误，opts 追加在后可覆盖。
func Do(ctx context.Context, fn func() error, opts ...Option) error {
	if ctx == nil {
		return ErrNilContext
	}
	if fn == nil {
		return ErrNilFunc
	}
	return retry.New(defaultOpts(ctx, opts)...).Do(fn)
}

// DoWithData 执行带重试的操作（有返回值）。
func DoWithData[T any](ctx context.Context, fn func() (T, error), opts ...Option) (T, error) {
	if ctx == nil {
		var zero T
		return zero, ErrNilContext
	}
	if fn == nil {
		var zero T
		return zero, ErrNilFunc
	}
	return retry.NewWithData[T](defaultOpts(ctx, opts)...).Do(fn)
}

func defaultOpts(ctx context.Context, opts []Option) []Option {
	all := make([]Option, 0, len(opts)+2)
	all = append(all, retry.Context(ctx), RetryIf(func(err error) bool {
		return IsRecoverable(err) && IsRetryable(err)
	}))
	return append(all, opts...)
}

// Policy 是面向配置的重试参数。
type Policy struct {
	// Attempts 总尝试次数（包含首次），小于等于 1 表示不重试。
	Attempts uint
	// Delay 基础间隔
	Delay time.Duration
	// MaxDelay 指数退避上限，为 0 时使用固定间隔。
	MaxDelay time.Duration
	// OnRetry 每次失败后的回调
	OnRetry OnRetryFunc
}

// Enabled 报告策略是否需要重试。
func (p Policy) Enabled() bool {
	return p.Attempts > 1
}

// Options 转换为 retry-go 选项。只保留最后一次错误，便于上层按错误类型判断。
func (p Policy) Options() []Option {
	opts := []Option{
		Attempts(max(p.Attempts, 1)),
		Delay(p.Delay),
		LastErrorOnly(true),
	}
	if p.MaxDelay > 0 {
		opts = append(opts, DelayType(BackOffDelay), MaxDelay(p.MaxDelay))
	} else {
		opts = append(opts, DelayType(FixedDelay))
	}
	if p.OnRetry != nil {
		opts = append(opts, OnRetry(p.OnRetry))
	}
	return opts
}
