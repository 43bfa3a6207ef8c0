// Package xctx 提供环境上下文（ambient context）的存取、快照与跨 goroutine 传递。
//
// 环境上下文是提交方持有的、需要随任务一起传播到 worker 的键值信息，
// 典型内容是分布式追踪标识。xctx 将其分为两类：
//
// 追踪信息（Trace）：
//   - trace_id    : 追踪标识（W3C 规范，128-bit）
//   - span_id     : 跨度标识（W3C 规范，64-bit）
//   - request_id  : 请求标识
//   - trace_flags : 追踪标志（W3C 规范，采样决策）
//
// 自由字段（Fields）：任意 string → string 键值，语义上对应日志 MDC。
//
// # 命名约定
//
//	WithXxx(ctx, value)    - 注入：将 value 写入 context
//	Xxx(ctx)               - 读取：缺失时返回零值
//	RequireXxx(ctx)        - 强制读取：缺失时返回错误
//	EnsureXxx(ctx)         - 确保存在：若已存在则返回，否则自动生成
//
// # 快照
//
// [Capture] 在提交方 goroutine 上把当前环境上下文拷贝为不可变的 [Snapshot]；
// [Snapshot.Install] 在执行方基于新的根 context 安装快照，并返回释放函数。
// 释放函数必须在所有退出路径上调用（通常 defer），调用后安装出的 context 进入 Done 状态，
// 表示该环境上下文已从执行方清除。
//
// 快照与提交方 context 之间没有共享的可变状态：提交方后续的 WithField 不影响已捕获的快照，
// 执行方对安装出的 context 做的修改也不会回流。
//
// # 校验策略
//
// xctx 是纯粹的存取层，不校验字段格式（如 trace_id 长度/hex 格式）。
package xctx
