package xconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 是 Watch 的默认防抖时间。
const DefaultDebounce = 100 * time.Millisecond

// WatchCallback 在文件变更并重载后调用。err 非 nil 时 s 为零值，旧配置继续生效。
type WatchCallback func(s Settings, err error)

// WatchOption 配置 Watcher。
type WatchOption func(*Watcher)

// WithDebounce 设置防抖时间，非正值被忽略。
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher 监视配置文件并在变更时重载。
type Watcher struct {
	cfg      *Config
	fs       *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	running bool
	timer   *time.Timer
	// fire 保证 Stop 返回后不再有回调在执行。
	fire sync.WaitGroup
}

// Watch 为文件配置创建 Watcher，需调用 Start 或 StartAsync 开始监视。
//
// 监视的是文件所在目录，编辑器先删除再创建或写临时文件再 rename 都能被捕获。
func Watch(cfg *Config, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if cfg == nil || cfg.path == "" {
		return nil, ErrNotWatchable
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}
	dir := filepath.Dir(cfg.path)
	if err := fsw.Add(dir); err != nil {
		return nil, errors.Join(fmt.Errorf("xconf: watch directory %s: %w", dir, err), fsw.Close())
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		cfg:      cfg,
		fs:       fsw,
		callback: callback,
		debounce: DefaultDebounce,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Start 阻塞运行监视循环，直到 Stop。
func (w *Watcher) Start() {
	if !w.markRunning() {
		return
	}
	w.run()
}

// StartAsync 在后台 goroutine 中运行监视循环。
func (w *Watcher) StartAsync() {
	if !w.markRunning() {
		return
	}
	go w.run()
}

func (w *Watcher) markRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.ctx.Err() != nil {
		return false
	}
	w.running = true
	return true
}

// Stop 停止监视并等待监视循环与进行中的回调退出。不可在回调中调用。
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.ctx.Err() != nil {
		w.mu.Unlock()
		return nil
	}
	w.cancel()
	if w.timer != nil && w.timer.Stop() {
		w.fire.Done()
	}
	w.timer = nil
	running := w.running
	w.mu.Unlock()

	err := w.fs.Close()
	if running {
		<-w.done
	}
	w.fire.Wait()
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	name := filepath.Base(w.cfg.path)
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) == name && (ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)) {
				w.schedule()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.notify(Settings{}, fmt.Errorf("xconf: watch error: %w", err))
		}
	}
}

// schedule 重置防抖定时器，定时器触发时重载。
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx.Err() != nil {
		return
	}
	if w.timer != nil && w.timer.Stop() {
		w.fire.Done()
	}
	w.fire.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.fire.Done()
		if w.ctx.Err() != nil {
			return
		}
		if err := w.cfg.Reload(); err != nil {
			w.notify(Settings{}, err)
			return
		}
		w.notify(w.cfg.Settings())
	})
}

func (w *Watcher) notify(s Settings, err error) {
	if w.callback != nil {
		w.callback(s, err)
	}
}
