package xctx

import (
	"context"
	"maps"
)

// Snapshot 是某一时刻环境上下文的不可变拷贝。
//
// 零值表示空快照，可以安全 Install。
type Snapshot struct {
	traceID    string
	spanID     string
	requestID  string
	traceFlags string
	fields     map[string]string
}

// Capture 从 ctx 拷贝当前环境上下文。ctx 为 nil 时返回空快照。
func Capture(ctx context.Context) Snapshot {
	if ctx == nil {
		return Snapshot{}
	}
	s := Snapshot{
		traceID:    TraceID(ctx),
		spanID:     SpanID(ctx),
		requestID:  RequestID(ctx),
		traceFlags: TraceFlags(ctx),
	}
	if m := fieldMap(ctx); len(m) > 0 {
		s.fields = maps.Clone(m)
	}
	return s
}

// IsEmpty 报告快照是否不含任何信息。
func (s Snapshot) IsEmpty() bool {
	return s.traceID == "" && s.spanID == "" && s.requestID == "" &&
		s.traceFlags == "" && len(s.fields) == 0
}

// TraceID 返回快照中的 trace ID。
func (s Snapshot) TraceID() string { return s.traceID }

// SpanID 返回快照中的 span ID。
func (s Snapshot) SpanID() string { return s.spanID }

// RequestID 返回快照中的 request ID。
func (s Snapshot) RequestID() string { return s.requestID }

// Field 读取快照中的自由字段。
func (s Snapshot) Field(key string) (string, bool) {
	v, ok := s.fields[key]
	return v, ok
}

// Fields 返回自由字段的拷贝。
func (s Snapshot) Fields() map[string]string {
	if len(s.fields) == 0 {
		return nil
	}
	return maps.Clone(s.fields)
}

// Equal 报告两个快照内容是否相同。
func (s Snapshot) Equal(o Snapshot) bool {
	return s.traceID == o.traceID && s.spanID == o.spanID &&
		s.requestID == o.requestID && s.traceFlags == o.traceFlags &&
		maps.Equal(s.fields, o.fields)
}

// Install 在 parent 之上安装快照，返回安装后的 context 和释放函数。
//
// parent 为 nil 时使用 context.Background()。释放函数幂等，调用后返回的
// context 进入 Done 状态（Err 为 context.Canceled），代表环境上下文已清除。
func (s Snapshot) Install(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx := parent
	if s.traceID != "" {
		ctx = context.WithValue(ctx, keyTraceID, s.traceID)
	}
	if s.spanID != "" {
		ctx = context.WithValue(ctx, keySpanID, s.spanID)
	}
	if s.requestID != "" {
		ctx = context.WithValue(ctx, keyRequestID, s.requestID)
	}
	if s.traceFlags != "" {
		ctx = context.WithValue(ctx, keyTraceFlags, s.traceFlags)
	}
	if len(s.fields) > 0 {
		// 快照自身保持不可变，安装时再拷贝一次
		ctx = context.WithValue(ctx, keyFields, maps.Clone(s.fields))
	}
	return context.WithCancel(ctx)
}
