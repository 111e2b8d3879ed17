package executor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"separation-service/ddd/domain/port"
	"separation-service/ddd/domain/vo"
	"separation-service/pkg/logger"
)

// stderr环形缓冲容量与失败时上报的尾部行数
const (
	stderrCaptureLines = 200
	stderrTailLines    = 50
)

// CommandExecutor implements port.StageRunner over os/exec. Both output streams
// are scanned line by line into the logger; stderr additionally feeds a bounded
// ring buffer whose tail is surfaced on failure.
type CommandExecutor struct{}

// NewCommandExecutor 创建外部进程执行器
func NewCommandExecutor() port.StageRunner {
	return &CommandExecutor{}
}

// Run 启动外部进程并等待退出。非零退出码通过outcome返回；
// spawn失败和上下文取消通过error返回。
func (e *CommandExecutor) Run(ctx context.Context, stageCmd vo.StageCommand) (vo.StageOutcome, error) {
	cmd := exec.Command(stageCmd.Binary, stageCmd.Args...)
	if stageCmd.Dir != "" {
		cmd.Dir = stageCmd.Dir
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return vo.StageOutcome{}, fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return vo.StageOutcome{}, fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return vo.StageOutcome{}, fmt.Errorf("start %s: %w", stageCmd.Binary, err)
	}

	capture := make([]string, 0, stderrCaptureLines)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.scanLines(stdout, stageCmd.Stage, "stdout", nil)
	}()
	go func() {
		defer wg.Done()
		e.scanLines(stderr, stageCmd.Stage, "stderr", &capture)
	}()

	done := make(chan error, 1)
	go func() {
		wg.Wait()
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
		return vo.StageOutcome{}, ctx.Err()
	case err := <-done:
		outcome := vo.StageOutcome{StderrTail: tail(capture, stderrTailLines)}
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				outcome.ExitCode = exitErr.ExitCode()
				return outcome, nil
			}
			return outcome, err
		}
		return outcome, nil
	}
}

// scanLines 逐行转发进程输出到日志；capture非nil时维护stderr环形缓冲
func (e *CommandExecutor) scanLines(r io.Reader, stage vo.JobStage, stream string, capture *[]string) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		logger.Debugf("stage output stage=%s stream=%s line=%s", stage, stream, line)
		if capture != nil {
			b := *capture
			if len(b) >= stderrCaptureLines {
				b = b[1:]
			}
			b = append(b, line)
			*capture = b
		}
	}
}

func tail(lines []string, n int) []string {
	if len(lines) > n {
		return lines[len(lines)-n:]
	}
	return lines
}
