// xtaskctl 是 xtask 任务编排的运维命令行工具。
//
// 用法:
//
//	xtaskctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config     配置文件路径（YAML/JSON），为空时只有内置 COMMON pool
//	    --log-level  覆盖配置中的日志级别
//
// 命令:
//
//	pools      列出 pool 配置表
//	validate   校验配置文件
//	run        在指定 pool 上执行一批合成任务并输出 pool 指标
//	serve      周期性执行合成批次，监视配置文件热更新 pool 配置表，收到信号后退出
//
// 退出码:
//
//	0: 成功
//	1: 执行失败（批次中有任务失败、配置加载失败等）
//	2: 参数错误
//	3: 等待超时
//
// 示例:
//
//	xtaskctl pools
//	xtaskctl -c xtask.yaml run --pool IO --tasks 1000 --work 5ms
//	xtaskctl run --mode collect --tasks 50 --timeout 2s
//	xtaskctl -c xtask.yaml serve --interval 10s
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// 版本信息，可通过 -ldflags "-X main.Version=..." 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime)
}
