package xexec

import "context"

// Step 是 FanOut 的一个并行步骤，通常各自填充 resp 的不同字段。
type Step[Req, Resp any] struct {
	Name string
	Fn   func(ctx context.Context, req Req, resp Resp) error
}

// FanOut 把同一请求并行交给多个步骤处理，等待全部完成。
//
// desc 为空返回 ErrEmptyDesc，steps 为空返回 ErrEmptySteps；Fn 为 nil 的步骤被跳过。
// 步骤名为空时使用 desc。失败语义与 RunBatch 相同。
func FanOut[Req, Resp any](ctx context.Context, d *Dispatcher, spec PoolSpec, desc string,
	req Req, resp Resp, steps ...Step[Req, Resp]) error {
	if desc == "" {
		return ErrEmptyDesc
	}
	if len(steps) == 0 {
		return ErrEmptySteps
	}
	if d == nil {
		return ErrNilRegistry
	}
	jobs := make([]Job, 0, len(steps))
	for _, s := range steps {
		if s.Fn == nil {
			continue
		}
		name := s.Name
		if name == "" {
			name = desc
		}
		fn := s.Fn
		jobs = append(jobs, NewRunnable(ctx, name, func(ctx context.Context) error {
			return fn(ctx, req, resp)
		}))
	}
	return d.RunBatch(ctx, jobs, spec, desc)
}
