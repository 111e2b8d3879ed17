package vo

import "strings"

// StageCommand 一次外部进程调用
type StageCommand struct {
	// Stage 归属阶段，用于日志标记
	Stage JobStage
	// Binary 可执行文件路径
	Binary string
	// Args 命令行参数
	Args []string
	// Dir 工作目录，空则继承进程
	Dir string
}

// String 拼接完整命令行，仅用于日志
func (c StageCommand) String() string {
	return c.Binary + " " + strings.Join(c.Args, " ")
}

// StageOutcome 外部进程执行结果
type StageOutcome struct {
	ExitCode   int
	StderrTail []string
}

// Succeeded 退出码为0视作成功
func (o StageOutcome) Succeeded() bool {
	return o.ExitCode == 0
}

// TailString 返回stderr尾部文本，用于失败诊断
func (o StageOutcome) TailString() string {
	return strings.Join(o.StderrTail, "\n")
}
