package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/phray/xtask/pkg/concurrency/xexec"
	"github.com/phray/xtask/pkg/config/xconf"
	"github.com/phray/xtask/pkg/lifecycle/xrun"
	"github.com/phray/xtask/pkg/observability/xlog"
	"github.com/phray/xtask/pkg/observability/xmetrics"
)

const defaultShutdownTimeout = 10 * time.Second

// app 持有命令的输出目标，便于测试注入。
type app struct {
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	return exitCode(a.command().Run(ctx, args), stderr)
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "xtaskctl",
		Usage:     "xtask 任务编排运维工具",
		Version:   versionString(),
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（.yaml/.yml/.json）",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "覆盖配置中的日志级别（debug/info/warn/error）",
			},
		},
		Commands: []*cli.Command{
			a.poolsCommand(),
			a.validateCommand(),
			a.runCommand(),
			a.serveCommand(),
		},
		// 退出码由 run 统一映射，禁止 cli 直接 os.Exit
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func (a *app) poolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "pools",
		Usage: "列出 pool 配置表",
		Action: func(_ context.Context, cmd *cli.Command) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			cat, err := s.Catalog()
			if err != nil {
				return err
			}
			return a.printSpecs(cat.Specs())
		},
	}
}

func (a *app) validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "校验配置文件",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.String("config") == "" {
				return usageErrorf("validate 需要 --config")
			}
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			timeout, _ := s.DefaultTimeout()
			fmt.Fprintf(a.stdout, "ok: %d pool(s), default timeout %s\n", len(s.Pools), timeout)
			return nil
		},
	}
}

func (a *app) runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "在指定 pool 上执行一批合成任务",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pool", Aliases: []string{"p"}, Usage: "pool key", Value: xexec.Common.Key},
			&cli.IntFlag{Name: "tasks", Aliases: []string{"n"}, Usage: "任务数量", Value: 100},
			&cli.DurationFlag{Name: "work", Usage: "每个任务的耗时", Value: 10 * time.Millisecond},
			&cli.IntFlag{Name: "fail-every", Usage: "每 N 个任务失败一个，0 表示不失败"},
			&cli.UintFlag{Name: "retries", Usage: "失败任务的总尝试次数，<=1 不重试"},
			&cli.StringFlag{Name: "mode", Usage: "batch 或 collect", Value: "batch"},
			&cli.DurationFlag{Name: "timeout", Usage: "collect 模式的等待超时，0 使用配置默认值"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			job, err := syntheticFromFlags(cmd)
			if err != nil {
				return err
			}
			env, err := a.setup(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			spec, ok := env.catalog.Lookup(cmd.String("pool"))
			if !ok {
				return usageErrorf("未知 pool %q（可用: %s）", cmd.String("pool"), strings.Join(env.catalog.Keys(), ", "))
			}

			start := time.Now()
			res, runErr := job.run(ctx, env.dispatcher, spec)
			fmt.Fprintf(a.stdout, "%s: %d task(s) on %s in %s, result=%d\n",
				job.mode, job.tasks, spec.Key, time.Since(start).Round(time.Millisecond), res)
			if err := a.printStats(env.registry); err != nil {
				return err
			}
			ops, err := env.telemetry.operations(context.WithoutCancel(ctx))
			if err != nil {
				return err
			}
			if err := printOperations(a.stdout, ops); err != nil {
				return err
			}
			return runErr
		},
	}
}

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "周期性执行合成批次并监视配置文件，收到 SIGINT/SIGTERM 后退出",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pool", Aliases: []string{"p"}, Usage: "pool key", Value: xexec.Common.Key},
			&cli.IntFlag{Name: "tasks", Aliases: []string{"n"}, Usage: "每批任务数量", Value: 100},
			&cli.DurationFlag{Name: "work", Usage: "每个任务的耗时", Value: 10 * time.Millisecond},
			&cli.DurationFlag{Name: "interval", Usage: "批次间隔", Value: 10 * time.Second},
			&cli.DurationFlag{Name: "shutdown-timeout", Usage: "退出时等待 pool 排空的上限", Value: defaultShutdownTimeout},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Duration("interval") <= 0 {
				return usageErrorf("--interval 必须为正数")
			}
			if cmd.Int("tasks") <= 0 {
				return usageErrorf("--tasks 必须为正数")
			}
			env, err := a.setup(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			job := synthetic{mode: "batch", tasks: cmd.Int("tasks"), work: cmd.Duration("work")}
			key := cmd.String("pool")
			services := []xrun.Service{
				xrun.Named("synthetic", xrun.Ticker(cmd.Duration("interval"), true, func(ctx context.Context) error {
					spec, ok := env.catalog.Lookup(key)
					if !ok {
						env.logger.Warn(ctx, "xtaskctl: pool not in catalog", xlog.Pool(key))
						return nil
					}
					if _, err := job.run(ctx, env.dispatcher, spec); err != nil {
						env.logger.Warn(ctx, "xtaskctl: synthetic batch failed", xlog.Pool(key), xlog.Err(err))
					}
					return nil
				})),
				xrun.Named("pools", xrun.ShutdownOnDone(env.registry, cmd.Duration("shutdown-timeout"))),
			}
			if w := env.watch(); w != nil {
				services = append(services, xrun.Named("reload", w))
			}

			err = xrun.Run(ctx, []xrun.Option{xrun.WithLogger(env.logger), xrun.WithName("xtaskctl")}, services...)
			if err == nil || errors.Is(err, xrun.ErrSignal) {
				return nil
			}
			return err
		},
	}
}

func loadSettings(cmd *cli.Command) (xconf.Settings, error) {
	if path := cmd.String("config"); path != "" {
		return xconf.Load(path)
	}
	return xconf.LoadBytes(nil, xconf.FormatYAML)
}

// env 是一次命令执行所需的运行时对象。
type env struct {
	path       string
	logger     xlog.Logger
	catalog    *xexec.Catalog
	registry   *xexec.Registry
	dispatcher *xexec.Dispatcher
	telemetry  *telemetry
	cleanup    func() error
}

func (a *app) setup(cmd *cli.Command) (*env, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		s.Log.Level = lvl
	}
	b := s.Log.Builder()
	if s.Log.File == "" {
		b = b.SetOutput(a.stderr)
	}
	logger, cleanup, err := b.Build()
	if err != nil {
		return nil, usageErrorf("日志配置: %v", err)
	}

	cat, err := s.Catalog()
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	timeout, err := s.DefaultTimeout()
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	tel := newTelemetry()
	observer, err := tel.observer()
	if err != nil {
		_ = cleanup()
		return nil, err
	}

	poolLogger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	reg := xexec.NewRegistry(xexec.WithRegistryLogger(logger), xexec.WithPoolLogger(poolLogger))
	d, err := xexec.New(reg,
		xexec.WithLogger(logger),
		xexec.WithObserver(observer),
		xexec.WithCatalog(cat),
		xexec.WithDefaultTimeout(timeout))
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	if err := reg.RegisterGauges(xmetrics.WithMeterProvider(tel.meters)); err != nil {
		_ = cleanup()
		return nil, err
	}
	return &env{
		path:       cmd.String("config"),
		logger:     logger,
		catalog:    cat,
		registry:   reg,
		dispatcher: d,
		telemetry:  tel,
		cleanup:    cleanup,
	}, nil
}

func (e *env) close() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := e.registry.Shutdown(ctx); err != nil {
		e.logger.Warn(ctx, "xtaskctl: registry shutdown", xlog.Err(err))
	}
	if err := e.telemetry.shutdown(ctx); err != nil {
		e.logger.Warn(ctx, "xtaskctl: telemetry shutdown", xlog.Err(err))
	}
	_ = e.cleanup()
}

// watch 返回热更新 pool 配置表的服务。未指定配置文件时返回 nil。
//
// 已创建的 pool 不受影响，新配置只作用于之后首次使用的 key。
func (e *env) watch() xrun.Service {
	if e.path == "" {
		return nil
	}
	cfg, err := xconf.New(e.path)
	if err != nil {
		e.logger.Warn(context.Background(), "xtaskctl: config watch disabled", xlog.Err(err))
		return nil
	}
	return xrun.ServiceFunc(func(ctx context.Context) error {
		w, err := xconf.Watch(cfg, func(s xconf.Settings, err error) {
			if err == nil {
				var specs []xexec.PoolSpec
				if specs, err = s.PoolSpecs(); err == nil {
					if len(specs) == 0 {
						specs = []xexec.PoolSpec{xexec.Common}
					}
					err = e.catalog.Replace(specs)
				}
			}
			if err != nil {
				e.logger.Warn(ctx, "xtaskctl: config reload rejected", xlog.Err(err))
				return
			}
			e.logger.Info(ctx, "xtaskctl: pool catalog reloaded", xlog.Count(int64(e.catalog.Len())))
		})
		if err != nil {
			return err
		}
		w.StartAsync()
		<-ctx.Done()
		return w.Stop()
	})
}

func (a *app) printSpecs(specs []xexec.PoolSpec) error {
	table := tablewriter.NewWriter(a.stdout)
	table.Header("Key", "Desc", "Core", "Max", "Queue", "Keep Alive", "Policy")
	for _, s := range specs {
		if err := table.Append(s.Key, s.Desc, s.CoreSize, s.MaxSize, s.QueueCapacity, s.KeepAlive.String(), s.Policy.String()); err != nil {
			return err
		}
	}
	return table.Render()
}

func (a *app) printStats(reg *xexec.Registry) error {
	table := tablewriter.NewWriter(a.stdout)
	table.Header("Pool", "Workers", "Active", "Queued", "Completed", "Caller Runs", "Rejected", "Discarded", "Panics")
	for _, s := range reg.Stats() {
		if err := table.Append(s.Name, s.Workers, s.Active, s.Queued, s.Completed, s.CallerRuns, s.Rejected, s.Discarded, s.Panics); err != nil {
			return err
		}
	}
	return table.Render()
}
