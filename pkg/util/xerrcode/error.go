package xerrcode

import "fmt"

// Error 携带错误码的业务错误。
type Error struct {
	code  Code
	msg   string
	cause error
}

var _ Coder = (*Error)(nil)

// New 创建业务错误。args 为空时 format 原样作为消息。
func New(code Code, format string, args ...any) *Error {
	return &Error{code: code, msg: sprintf(format, args)}
}

// Wrap 创建包装 cause 的业务错误。format 为空时使用错误码描述。
func Wrap(code Code, cause error, format string, args ...any) *Error {
	msg := sprintf(format, args)
	if msg == "" {
		msg = code.Message
	}
	return &Error{code: code, msg: msg, cause: cause}
}

func sprintf(format string, args []any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// Error 实现 error 接口。
func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%s] %s", e.code.Value, e.msg)
	}
	return fmt.Sprintf("[%s] %s: %v", e.code.Value, e.msg, e.cause)
}

// Code 返回错误码。
func (e *Error) Code() Code {
	return e.code
}

// Message 返回不含错误码和 cause 的消息。
func (e *Error) Message() string {
	return e.msg
}

// Unwrap 返回底层错误。
func (e *Error) Unwrap() error {
	return e.cause
}
