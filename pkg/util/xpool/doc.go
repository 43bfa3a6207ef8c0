// Package xpool 提供有界的、可伸缩的任务执行器。
//
// Pool 的调度模型：
//   - 运行中的 worker 少于 Core 时，直接启动新 worker 执行任务
//   - 否则任务进入容量为 QueueCapacity 的有界队列
//   - 队列已满且 worker 少于 Max 时，启动额外 worker
//   - 仍无法接收时，按饱和策略（[Policy]）处理
//
// 饱和策略：
//   - CallerRuns: 在提交方 goroutine 上同步执行任务，提交方因此可能阻塞
//   - Abort: 拒绝任务，Execute 返回包装了 ErrRejected 的错误
//   - Discard: 静默丢弃新任务
//   - DiscardOldest: 淘汰队列中最早的任务后重试入队
//
// 被丢弃或淘汰的任务若实现了 [Dropper]，会收到 Drop 回调，
// 使提交方能够完成收尾（例如释放等待中的屏障）。
//
// # 注意事项
//
//   - 所有 worker（包括 Core 以内的）空闲超过 KeepAlive 后退出，之后的提交会重新启动 worker；
//     KeepAlive 为 0 表示 worker 永不因空闲退出
//   - QueueCapacity 为 0 时队列为同步移交：只有空闲 worker 正在等待时入队才会成功
//   - worker 以 "<名称>_<序号>" 命名，序号在同一 Pool 内单调递增
//   - 任务 panic 会被恢复并记录日志，不会终止 worker
//   - Shutdown 之后 Execute 返回 ErrPoolStopped；Shutdown 会等待队列中已有任务执行完毕
//   - Shutdown 不可在任务内调用，否则会死锁
//
// # 设计选择说明
//
// 设计决策: New 返回 *Pool 而非接口。执行器只有一种实现，
// 返回具体类型更简洁；调用方需要抽象时可以自行定义只含 Execute 的接口。
package xpool
