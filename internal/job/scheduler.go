// 文件路径: internal/job/scheduler.go
// 模块说明: 封装 cron 调度，统一超时与日志；同时保存任务列表，命令行可以按名称手动执行。
package job

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Runnable 表示由调度器触发的后台任务。
type Runnable interface {
	Name() string
	Run(ctx context.Context) error
}

// Entry describes one registered job.
type Entry struct {
	Name string
	Spec string
	Next time.Time
}

// Scheduler 封装 cron，并提供日志与优雅停机。
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	started bool
	jobs    map[string]registered
}

type registered struct {
	spec     string
	id       cron.EntryID
	runnable Runnable
}

const defaultJobTimeout = 2 * time.Minute

// NewScheduler 构建支持秒与自然描述（@every、@daily）的调度器。timeout<=0 时使用默认值。
func NewScheduler(logger *slog.Logger, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser))
	return &Scheduler{
		cron:    c,
		logger:  logger.With("component", "scheduler"),
		timeout: timeout,
		jobs:    make(map[string]registered),
	}
}

// Register 绑定 cron 表达式与任务。任务名必须唯一。
func (s *Scheduler) Register(spec string, runnable Runnable) (cron.EntryID, error) {
	if runnable == nil {
		return 0, fmt.Errorf("scheduler: runnable is required / runnable 不能为空")
	}
	if spec == "" {
		return 0, fmt.Errorf("scheduler: spec is required / spec 不能为空")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[runnable.Name()]; dup {
		return 0, fmt.Errorf("scheduler: job %q already registered / 任务重复注册", runnable.Name())
	}
	entryID, err := s.cron.AddFunc(spec, s.wrap(runnable))
	if err != nil {
		return 0, fmt.Errorf("scheduler: job %q: %w", runnable.Name(), err)
	}
	s.jobs[runnable.Name()] = registered{spec: spec, id: entryID, runnable: runnable}
	s.logger.Info("job registered", "job", runnable.Name(), "spec", spec)
	return entryID, nil
}

// Entries lists registered jobs sorted by name.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.jobs))
	for name, r := range s.jobs {
		out = append(out, Entry{Name: name, Spec: r.spec, Next: s.cron.Entry(r.id).Next})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RunNow executes the named job synchronously with the scheduler timeout.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	r, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("scheduler: unknown job %q / 未知任务", name)
	}
	return s.run(ctx, r.runnable)
}

// Start 启动调度器并执行任务。
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.cron.Start()
	s.started = true
	s.mu.Unlock()
}

// Stop 停止调度器并等待执行中的任务结束。
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return context.Background()
	}
	s.started = false
	return s.cron.Stop()
}

// wrap 包装任务，提供超时与统一日志。
func (s *Scheduler) wrap(runnable Runnable) func() {
	return func() {
		_ = s.run(context.Background(), runnable)
	}
}

func (s *Scheduler) run(parent context.Context, runnable Runnable) error {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()
	start := time.Now()
	if err := runnable.Run(ctx); err != nil {
		s.logger.Error("job failed", "job", runnable.Name(), "error", err, "elapsed", time.Since(start))
		return err
	}
	s.logger.Debug("job completed", "job", runnable.Name(), "elapsed", time.Since(start))
	return nil
}
