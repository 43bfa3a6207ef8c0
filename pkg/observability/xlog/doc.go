// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、文件轮转）
//   - 自动从 context 注入 xctx 追踪字段与自由字段（EnrichHandler，默认启用）
//   - 动态级别调整
//   - 全局 Logger 便利函数
//
// # 创建 Logger
//
// Builder 采用 first-error-wins：遇到第一个配置错误后，Build 返回该错误。
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/xtask.log", xlog.Rotation{MaxSizeMB: 100, MaxBackups: 3}).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// # 环境上下文
//
// worker 在执行任务时安装提交方捕获的 xctx 快照，EnrichHandler 从 context 中读取
// trace_id / span_id / request_id / trace_flags 以及全部自由字段（按 key 排序）写入日志，
// 因此任务内的日志与提交方的日志可以按 trace_id 串联。
//
// # 注意事项
//
//   - 对启用 enrich 的 logger 调用 WithGroup 后，注入字段会被归入该 group
//   - Build 返回的 cleanup 负责关闭轮转文件，可重复调用
package xlog
