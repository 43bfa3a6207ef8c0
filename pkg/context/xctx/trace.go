package xctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

const (
	// TraceIDSize W3C 规范: 128-bit (16 bytes) -> 32 hex chars
	TraceIDSize = 16

	// SpanIDSize W3C 规范: 64-bit (8 bytes) -> 16 hex chars
	SpanIDSize = 8
)

// Trace Key 常量，遵循 OpenTelemetry 语义约定（下划线分隔）
const (
	KeyTraceID    = "trace_id"
	KeySpanID     = "span_id"
	KeyRequestID  = "request_id"
	KeyTraceFlags = "trace_flags"

	traceFieldCount = 4
)

const (
	keyTraceID    = contextKey("xctx:trace_id")
	keySpanID     = contextKey("xctx:span_id")
	keyRequestID  = contextKey("xctx:request_id")
	keyTraceFlags = contextKey("xctx:trace_flags")
)

func withString(ctx context.Context, key contextKey, v string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, key, v), nil
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// WithTraceID 将 trace ID 注入 context。ctx 为 nil 时返回 ErrNilContext。
func WithTraceID(ctx context.Context, traceID string) (context.Context, error) {
	return withString(ctx, keyTraceID, traceID)
}

// TraceID 从 context 提取 trace ID，不存在返回空字符串
func TraceID(ctx context.Context) string {
	return stringValue(ctx, keyTraceID)
}

// WithSpanID 将 span ID 注入 context。ctx 为 nil 时返回 ErrNilContext。
func WithSpanID(ctx context.Context, spanID string) (context.Context, error) {
	return withString(ctx, keySpanID, spanID)
}

// SpanID 从 context 提取 span ID，不存在返回空字符串
func SpanID(ctx context.Context) string {
	return stringValue(ctx, keySpanID)
}

// WithRequestID 将 request ID 注入 context。ctx 为 nil 时返回 ErrNilContext。
func WithRequestID(ctx context.Context, requestID string) (context.Context, error) {
	return withString(ctx, keyRequestID, requestID)
}

// RequestID 从 context 提取 request ID，不存在返回空字符串
func RequestID(ctx context.Context) string {
	return stringValue(ctx, keyRequestID)
}

// WithTraceFlags 将 trace flags 注入 context
//
// 格式: 2位十六进制字符串（如 "01" 表示已采样，"00" 表示未采样）
func WithTraceFlags(ctx context.Context, flags string) (context.Context, error) {
	return withString(ctx, keyTraceFlags, flags)
}

// TraceFlags 从 context 提取 trace flags，不存在返回空字符串
func TraceFlags(ctx context.Context) string {
	return stringValue(ctx, keyTraceFlags)
}

// RequireTraceID 从 context 获取 trace ID，不存在则返回 ErrMissingTraceID。
func RequireTraceID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := TraceID(ctx)
	if v == "" {
		return "", ErrMissingTraceID
	}
	return v, nil
}

// RequireSpanID 从 context 获取 span ID，不存在则返回 ErrMissingSpanID。
func RequireSpanID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := SpanID(ctx)
	if v == "" {
		return "", ErrMissingSpanID
	}
	return v, nil
}

// RequireRequestID 从 context 获取 request ID，不存在则返回 ErrMissingRequestID。
func RequireRequestID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := RequestID(ctx)
	if v == "" {
		return "", ErrMissingRequestID
	}
	return v, nil
}

func isAllZeros(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

func randomHex(size int) string {
	buf := make([]byte, size)
	for {
		if _, err := rand.Read(buf); err != nil {
			panic("xctx: crypto/rand.Read failed: " + err.Error())
		}
		// W3C 规范禁止全零 ID
		if !isAllZeros(buf) {
			return hex.EncodeToString(buf)
		}
	}
}

// GenerateTraceID 生成符合 W3C Trace Context 规范的 TraceID（32 位小写十六进制）。
//
// 熵源不可用时 panic，与 OpenTelemetry SDK 的策略一致。
func GenerateTraceID() string {
	return randomHex(TraceIDSize)
}

// GenerateSpanID 生成符合 W3C Trace Context 规范的 SpanID（16 位小写十六进制）。
func GenerateSpanID() string {
	return randomHex(SpanIDSize)
}

// EnsureTraceID 确保 context 中存在 TraceID：已有则原样返回，否则生成并注入。
func EnsureTraceID(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if TraceID(ctx) != "" {
		return ctx, nil
	}
	return WithTraceID(ctx, GenerateTraceID())
}

// EnsureSpanID 确保 context 中存在 SpanID。
func EnsureSpanID(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if SpanID(ctx) != "" {
		return ctx, nil
	}
	return WithSpanID(ctx, GenerateSpanID())
}

// EnsureTrace 同时确保 TraceID 与 SpanID 存在，用于批次/请求入口。
func EnsureTrace(ctx context.Context) (context.Context, error) {
	ctx, err := EnsureTraceID(ctx)
	if err != nil {
		return nil, err
	}
	return EnsureSpanID(ctx)
}
