package xerrcode

import "errors"

// Code 错误码。
type Code struct {
	// Value 三位数字编码。
	Value string
	// Message 将传递到外部的错误描述。
	Message string
}

// String 返回 "code(message)" 形式。
func (c Code) String() string {
	return c.Value + "(" + c.Message + ")"
}

// IsZero 报告是否为零值错误码。
func (c Code) IsZero() bool {
	return c.Value == ""
}

var (
	// Success 成功
	Success = Code{Value: "000", Message: "成功"}
	// IllegalArgument 参数不正确
	IllegalArgument = Code{Value: "001", Message: "参数不正确"}
	// Timeout 执行超时
	Timeout = Code{Value: "096", Message: "执行超时"}
	// AsyncExec 异步任务执行异常
	AsyncExec = Code{Value: "097", Message: "异步任务执行异常"}
	// ProgramError 程序错误
	ProgramError = Code{Value: "098", Message: "程序错误"}
	// UnknownException 未知异常
	UnknownException = Code{Value: "999", Message: "未知异常"}
)

// Coder 由携带错误码的错误实现。
type Coder interface {
	error
	Code() Code
}

// CodeOf 返回错误链上第一个 Coder 的错误码。
//
// err 为 nil 时返回 Success；链上没有 Coder 时返回 UnknownException。
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return UnknownException
}

// HasCode 报告 err 是否携带错误码。
func HasCode(err error) bool {
	var c Coder
	return errors.As(err, &c)
}
