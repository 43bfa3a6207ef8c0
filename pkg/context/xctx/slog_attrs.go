package xctx

import (
	"context"
	"log/slog"
)

// AppendTraceAttrs 将 context 中的追踪信息追加到现有切片，只追加非空字段。
func AppendTraceAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if v := TraceID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyTraceID, v))
	}
	if v := SpanID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeySpanID, v))
	}
	if v := RequestID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyRequestID, v))
	}
	if v := TraceFlags(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyTraceFlags, v))
	}
	return attrs
}

// TraceAttrs 从 context 提取追踪信息，全部为空时返回 nil。
func TraceAttrs(ctx context.Context) []slog.Attr {
	attrs := AppendTraceAttrs(make([]slog.Attr, 0, traceFieldCount), ctx)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

// AppendFieldAttrs 将自由字段按 key 排序后追加到切片，保证日志输出顺序稳定。
func AppendFieldAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	m := fieldMap(ctx)
	if len(m) == 0 {
		return attrs
	}
	for _, k := range sortedKeys(m) {
		attrs = append(attrs, slog.String(k, m[k]))
	}
	return attrs
}
