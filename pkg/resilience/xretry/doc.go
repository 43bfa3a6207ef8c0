// Package xretry 是 [avast/retry-go/v5] 的薄包装。
//
// 提供两层入口：
//   - [Do] / [DoWithData]：直接使用 retry-go 的 Option，默认跳过不可重试错误
//   - [Policy]：面向配置的重试参数（次数、固定或指数延迟），由 Policy.Options 转换为 Option
//
// # 可重试判定
//
// [IsRetryable] 的规则：
//   - 实现 RetryableError 的错误按 Retryable() 判定（PermanentError 为 false）
//   - 携带 xerrcode.IllegalArgument 错误码的错误不可重试：参数错误重试也不会成功
//   - 其他错误默认可重试
//
// 调用方传入 RetryIf 会覆盖默认判定。
//
// [avast/retry-go/v5]: https://github.com/avast/retry-go
package xretry
