// Package xexec 提供进程内的任务编排：把一批工作单元提交到按需创建的共享 worker pool，
// 等待全部完成（可带超时），并把至多一个代表性错误返回给调用方。
//
// # 组成
//
//   - [PoolSpec] / [Catalog]：具名 pool 配置表，内置 [Common]
//   - [Registry]：按 PoolSpec.Key 惰性创建并复用 pool，并发首次访问只会创建一个
//   - [Task]：任务信封，携带描述、工作函数与创建时捕获的环境上下文快照
//   - [Latch] / [ErrorBox] / [Handle]：批次屏障、首个错误槽、单任务结果句柄
//   - [Dispatcher]：三种提交模式 RunBatch / [Submit] / [Collect]
//   - [Collector]：由调用方提供的结果累加器
//
// # 任务生命周期
//
//	Created → ContextRestored → Running → Succeeded | Failed → Finalized
//
// worker 在执行前把快照安装到新的根 context 上；工作函数的错误或 panic 被就地恢复，
// 记录到批次的 ErrorBox（先写者胜）；无论成败都会进入 Finalized：
// 释放环境上下文、完成 Handle、对屏障恰好递减一次。
//
// # 错误
//
// 所有错误类型实现 Code() xerrcode.Code：
//   - [ConfigError]：PoolSpec 非法
//   - [TaskError]：工作单元失败（只在 worker 侧记录）
//   - [ExecutionError]：在调用方重新抛出时对 TaskError 的包装
//   - [TimeoutError]：屏障或句柄等待超时
//   - [UnknownError]：无法识别的故障（非 error 的 panic、调用方等待被中断）
//
// 重新抛出规则：记录的原因本身携带错误码时原样返回，否则包装为 ExecutionError。
//
// # 注意事项
//
//   - 超时只中止调用方的等待，不会取消已经在运行的任务；迟到的结果与错误被丢弃
//   - 批次内多个任务同时失败时只保证可见其中一个，哪一个不作保证
//   - Collect 按提交顺序驱动 Collector；一旦观察到批次错误立即返回，
//     尚未折叠进 Collector 的成功结果随之丢失
//   - CallerRuns 策略下提交方 goroutine 可能同步执行部分任务
//   - 同一个 Task 只能提交一次，重复提交返回 ErrTaskReused
package xexec
