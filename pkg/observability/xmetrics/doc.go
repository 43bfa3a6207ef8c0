// Package xmetrics 提供统一的可观测性接口（metrics + tracing）。
//
// 调用方只依赖 Observer / Span 接口，默认实现基于 OpenTelemetry。
//
//	obs, _ := xmetrics.NewOTelObserver()
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xexec",
//		Operation: "task",
//		Kind:      xmetrics.KindConsumer,
//	})
//	defer func() { span.End(xmetrics.Result{Err: err}) }()
//
// # 指标命名
//
// 操作指标（属性 component / operation / status）：
//   - xtask.operation.total
//   - xtask.operation.duration
//
// Pool 指标（属性 pool，由 [RegisterPoolGauges] 注册的异步 gauge）：
//   - xtask.pool.workers / xtask.pool.active / xtask.pool.queued
//   - xtask.pool.caller_runs（累计值）
//
// # 追踪续接
//
// ctx 中没有 OTel span 但携带 xctx 的 trace_id / span_id 时，Start 以其作为远程父级，
// 因此 worker 上安装的环境上下文快照能把任务 span 挂到提交方的链路上。
// 新 span 创建后其标识会同步回 xctx，任务内日志输出的 span_id 即任务 span。
package xmetrics
