package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/phray/xtask/pkg/concurrency/xexec"
	"github.com/phray/xtask/pkg/context/xctx"
)

// synthetic 描述一批合成任务：每个任务耗时 work，第 failEvery 的倍数个任务失败。
type synthetic struct {
	mode      string
	tasks     int
	work      time.Duration
	failEvery int
	retries   uint
	timeout   time.Duration
}

func syntheticFromFlags(cmd *cli.Command) (synthetic, error) {
	s := synthetic{
		mode:      cmd.String("mode"),
		tasks:     cmd.Int("tasks"),
		work:      cmd.Duration("work"),
		failEvery: cmd.Int("fail-every"),
		retries:   cmd.Uint("retries"),
		timeout:   cmd.Duration("timeout"),
	}
	switch {
	case s.mode != "batch" && s.mode != "collect":
		return s, usageErrorf("--mode 只能是 batch 或 collect，得到 %q", s.mode)
	case s.tasks <= 0:
		return s, usageErrorf("--tasks 必须为正数")
	case s.work < 0:
		return s, usageErrorf("--work 不能为负数")
	case s.failEvery < 0:
		return s, usageErrorf("--fail-every 不能为负数")
	}
	return s, nil
}

func (s synthetic) fn(i int) func(ctx context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		if s.work > 0 {
			timer := time.NewTimer(s.work)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
		if s.failEvery > 0 && (i+1)%s.failEvery == 0 {
			return 0, fmt.Errorf("synthetic failure #%d", i)
		}
		return 1, nil
	}
}

// run 执行一批合成任务，返回成功任务数（batch 模式为任务总数）。
func (s synthetic) run(ctx context.Context, d *xexec.Dispatcher, spec xexec.PoolSpec) (int, error) {
	ctx, err := xctx.EnsureTrace(ctx)
	if err != nil {
		return 0, err
	}
	var opts []xexec.TaskOption
	if s.retries > 1 {
		opts = append(opts, xexec.WithRetry(s.retries, time.Millisecond))
	}
	tasks := make([]*xexec.Task[int], s.tasks)
	for i := range tasks {
		tasks[i] = xexec.NewTask(ctx, fmt.Sprintf("synthetic-%d", i), s.fn(i), opts...)
	}

	if s.mode == "collect" {
		return xexec.Collect[int, int](ctx, d, tasks, &xexec.CountCollector[int]{}, s.timeout, spec, "synthetic")
	}
	jobs := make([]xexec.Job, len(tasks))
	for i, t := range tasks {
		jobs[i] = t
	}
	if err := d.RunBatch(ctx, jobs, spec, "synthetic"); err != nil {
		return 0, err
	}
	return len(tasks), nil
}
