package xretry

import (
	"errors"

	"github.com/phray/xtask/pkg/util/xerrcode"
)

var (
	// ErrNilContext 表示 context 参数为 nil。
	ErrNilContext = errors.New("xretry: nil context")
	// ErrNilFunc 表示待执行函数为 nil。
	ErrNilFunc = errors.New("xretry: nil function")
)

// RetryableError 可重试错误接口
type RetryableError interface {
	error
	Retryable() bool
}

// PermanentError 永久性错误（不应重试）
type PermanentError struct {
	Err error
}

// NewPermanentError 创建永久性错误
func NewPermanentError(err error) *PermanentError {
	return &PermanentError{Err: err}
}

func (e *PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error { return e.Err }

// Retryable 总是返回 false。
func (e *PermanentError) Retryable() bool { return false }

// IsRetryable 检查错误是否可重试，nil 视为成功返回 false。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	if xerrcode.HasCode(err) && xerrcode.CodeOf(err) == xerrcode.IllegalArgument {
		return false
	}
	return true
}
