package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phray/xtask/pkg/util/xerrcode"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
	exitTimeout = 3
)

// usageError 表示参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// exitCode 把命令错误映射为退出码并输出错误信息。
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "参数错误: %v\n", ue)
		return exitUsage
	}
	if isCLIUsageError(err) {
		fmt.Fprintf(stderr, "参数错误: %v\n", err)
		return exitUsage
	}
	fmt.Fprintf(stderr, "错误: %v\n", err)
	if xerrcode.CodeOf(err) == xerrcode.Timeout {
		return exitTimeout
	}
	return exitFailure
}

// isCLIUsageError 识别 urfave/cli 的 flag 解析错误。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, s := range []string{
		"flag provided but not defined",
		"invalid value",
		"Required flag",
		"Required flags",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
