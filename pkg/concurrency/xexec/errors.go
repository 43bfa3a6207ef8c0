package xexec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phray/xtask/pkg/util/xerrcode"
)

var (
	// ErrNilRegistry 表示创建 Dispatcher 时 registry 为 nil。
	ErrNilRegistry = xerrcode.New(xerrcode.IllegalArgument, "xexec: nil registry")

	// ErrNilCollector 表示 Collect 的 collector 为 nil。
	ErrNilCollector = xerrcode.New(xerrcode.IllegalArgument, "xexec: nil collector")

	// ErrTaskReused 表示任务已经提交过。
	ErrTaskReused = xerrcode.New(xerrcode.ProgramError, "xexec: task already submitted")

	// ErrNilHandle 表示在 nil Handle 上取结果。
	ErrNilHandle = xerrcode.New(xerrcode.IllegalArgument, "xexec: nil handle")

	// ErrEmptySteps 表示 FanOut 的步骤列表为空。
	ErrEmptySteps = xerrcode.New(xerrcode.IllegalArgument, "xexec: empty steps")

	// ErrEmptyDesc 表示 FanOut 的业务描述为空。
	ErrEmptyDesc = xerrcode.New(xerrcode.IllegalArgument, "xexec: empty description")

	// ErrUnknownPool 表示 Catalog 中没有对应 key 的 PoolSpec。
	ErrUnknownPool = xerrcode.New(xerrcode.IllegalArgument, "xexec: unknown pool")

	// ErrRegistryClosed 表示 Registry 已经 Shutdown。
	ErrRegistryClosed = xerrcode.New(xerrcode.ProgramError, "xexec: registry closed")

	errNilWork = errors.New("xexec: nil work function")

	errAbnormalExit = errors.New("xexec: task exited without result")
)

// ConfigError 表示非法的 PoolSpec，创建 pool 时快速失败，不重试。
type ConfigError struct {
	Key    string
	Field  string
	Value  any
	Reason string
	Cause  error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("xexec: invalid pool spec %q: %s=%v", e.Key, e.Field, e.Value)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// Code 返回 IllegalArgument。
func (e *ConfigError) Code() xerrcode.Code { return xerrcode.IllegalArgument }

// TaskError 表示工作单元在 Running 阶段的故障。
type TaskError struct {
	Desc  string
	Cause error
	code  xerrcode.Code
}

func newTaskError(desc string, cause error) *TaskError {
	code := xerrcode.AsyncExec
	if xerrcode.HasCode(cause) {
		code = xerrcode.CodeOf(cause)
	}
	return &TaskError{Desc: desc, Cause: cause, code: code}
}

func newPanicError(desc string, r any, stack []byte) *TaskError {
	ue := &UnknownError{Desc: desc, Value: r, Stack: string(stack)}
	if err, ok := r.(error); ok {
		ue.Cause = err
	}
	return &TaskError{Desc: desc, Cause: ue, code: xerrcode.UnknownException}
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("xexec: task %q failed: %v", e.Desc, e.Cause)
}

func (e *TaskError) Unwrap() error { return e.Cause }

// Code 返回原因携带的错误码；原因无码时为 AsyncExec，panic 为 UnknownException。
func (e *TaskError) Code() xerrcode.Code { return e.code }

// ExecutionError 是 TaskError 在调用方被重新抛出时的包装。
type ExecutionError struct {
	Desc  string
	Cause *TaskError
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("xexec: %q execution failed [%s]: %v", e.Desc, e.Code().Value, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// Code 返回被包装任务的错误码。
func (e *ExecutionError) Code() xerrcode.Code {
	if e.Cause == nil {
		return xerrcode.ProgramError
	}
	return e.Cause.Code()
}

// TimeoutError 表示屏障或句柄等待超过了期限。
//
// errors.Is(err, context.DeadlineExceeded) 为 true。
type TimeoutError struct {
	Desc    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("xexec: %q timed out after %s", e.Desc, e.Timeout)
}

// Code 返回 Timeout。
func (e *TimeoutError) Code() xerrcode.Code { return xerrcode.Timeout }

func (e *TimeoutError) Is(target error) bool {
	return target == context.DeadlineExceeded
}

// UnknownError 包装无法识别的故障，保留原始调用栈（若有）。
type UnknownError struct {
	Desc  string
	Value any
	Cause error
	Stack string
}

func (e *UnknownError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("xexec: %q unknown fault: %v", e.Desc, e.Cause)
	}
	return fmt.Sprintf("xexec: %q unknown fault: %v", e.Desc, e.Value)
}

func (e *UnknownError) Unwrap() error { return e.Cause }

// Code 返回 UnknownException。
func (e *UnknownError) Code() xerrcode.Code { return xerrcode.UnknownException }

// raise 把记录的 TaskError 转换为返回给调用方的错误。
//
// 原因携带错误码（UnknownError 除外）时原样返回，否则包装为 ExecutionError。
func raise(te *TaskError, desc string) error {
	if te == nil {
		return nil
	}
	var ue *UnknownError
	if xerrcode.HasCode(te.Cause) && !errors.As(te.Cause, &ue) {
		return te.Cause
	}
	return &ExecutionError{Desc: desc, Cause: te}
}
