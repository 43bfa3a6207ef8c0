package xmetrics

import (
	"context"
	"strconv"
)

// Kind 区分跨度在任务编排中的位置。
//
// RunBatch 与 Collect 在提交方各产生一个 KindProducer 跨度，批次内每个任务在 worker 上
// 产生一个 KindConsumer 跨度。未指定时为 KindInternal。
type Kind int

const (
	KindInternal Kind = iota
	KindProducer
	KindConsumer
)

var kindNames = [...]string{
	KindInternal: "internal",
	KindProducer: "producer",
	KindConsumer: "consumer",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Status 是跨度结束时写入指标的状态标签。
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Attr 是跨度属性，Value 支持 string、bool、int、int64 与 time.Duration，其余类型按 fmt.Sprint 输出。
type Attr struct {
	Key   string
	Value any
}

// SpanOptions 描述一次观测：Component 通常是包名（如 xexec），Operation 是 batch、task 或 collect。
type SpanOptions struct {
	Component string
	Operation string
	Kind      Kind
	Attrs     []Attr
}

// Name 返回跨度名 "component.operation"，空段记为 unknown。
func (o SpanOptions) Name() string {
	return nonEmpty(o.Component) + "." + nonEmpty(o.Operation)
}

// Result 是跨度的结束结果。
type Result struct {
	Status Status
	Err    error
	Attrs  []Attr
}

// status 返回显式状态，未设置时按 Err 推导。
func (r Result) status() Status {
	switch {
	case r.Status != "":
		return r.Status
	case r.Err != nil:
		return StatusError
	default:
		return StatusOK
	}
}

// Span 由 Observer.Start 返回，End 只应调用一次。
type Span interface {
	End(result Result)
}

// Observer 为批次、任务与收集创建跨度。实现必须并发安全，任务跨度在 worker goroutine 上开始与结束。
type Observer interface {
	Start(ctx context.Context, opts SpanOptions) (context.Context, Span)
}

// NoopObserver 不产生任何观测数据，是 xexec 的默认值。
type NoopObserver struct{}

func (NoopObserver) Start(ctx context.Context, _ SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, NoopSpan{}
}

// NoopSpan 忽略结束结果。
type NoopSpan struct{}

func (NoopSpan) End(Result) {}

// Start 用 observer 开始一个跨度，返回值保证非 nil：observer 为 nil、返回 nil context 或 nil Span 时
// 分别退回到原 ctx 与 NoopSpan。
func Start(ctx context.Context, observer Observer, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if observer == nil {
		return ctx, NoopSpan{}
	}
	next, span := observer.Start(ctx, opts)
	if next == nil {
		next = ctx
	}
	if span == nil {
		span = NoopSpan{}
	}
	return next, span
}
