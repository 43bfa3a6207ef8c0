package xctx

import "errors"

// 设计决策: contextKey 使用 string 而非 int+iota，包私有类型已避免与其他包冲突，
// 字符串值在调试时可读性更高。
type contextKey string

var (
	// ErrNilContext 表示传入的 context 为 nil。
	ErrNilContext = errors.New("xctx: nil context")

	// ErrMissingTraceID trace_id 缺失
	ErrMissingTraceID = errors.New("xctx: missing trace_id")

	// ErrMissingSpanID span_id 缺失
	ErrMissingSpanID = errors.New("xctx: missing span_id")

	// ErrMissingRequestID request_id 缺失
	ErrMissingRequestID = errors.New("xctx: missing request_id")

	// ErrEmptyFieldKey 自由字段的 key 为空
	ErrEmptyFieldKey = errors.New("xctx: empty field key")
)
