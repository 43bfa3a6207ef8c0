// Package xerrcode 提供稳定的错误码目录和带错误码的错误类型。
//
// 错误码为 (code, message) 二元组，code 为三位数字字符串，message 为对外展示的描述。
// 对外暴露的失败统一通过 [CodeOf] 归类，未识别的错误归为 [UnknownException]。
//
// # 错误码列表
//
//	000 Success           成功
//	001 IllegalArgument   参数不正确
//	096 Timeout           执行超时
//	097 AsyncExec         异步任务执行异常
//	098 ProgramError      程序错误
//	999 UnknownException  未知异常
//
// # 使用方式
//
//	err := xerrcode.New(xerrcode.IllegalArgument, "desc %q is empty", desc)
//	if xerrcode.CodeOf(err) == xerrcode.IllegalArgument {
//	    // ...
//	}
package xerrcode
