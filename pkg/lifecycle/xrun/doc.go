// Package xrun 基于 errgroup 管理进程内长期服务的并发运行与协调退出。
//
// [Group] 中任一服务返回错误或调用 Cancel 时，其余服务的 ctx 被取消；
// Wait 返回第一个错误或显式的取消原因。
//
// [Run] 额外监听退出信号（默认 [DefaultSignals]），收到信号时返回 [*SignalError]：
//
//	err := xrun.Run(ctx, nil,
//	    xrun.Named("reload", watcher),
//	    xrun.Named("pools", xrun.ShutdownOnDone(registry, 10*time.Second)),
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 正常退出
//	}
//
// 辅助服务：[Ticker] 周期执行、[WaitForDone] 占位、[ShutdownOnDone] 退出时关闭资源。
package xrun
