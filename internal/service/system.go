// 文件路径: internal/service/system.go
// 模块说明: 系统状态（版本、运行时、主机负载、订单总数），用于后台状态页与 TUI 顶栏。
package service

import (
	"context"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/orderdesk/orderdesk/internal/repository"
)

// SystemService reports process and host health.
type SystemService interface {
	Status(ctx context.Context, scope Scope) (SystemStatus, error)
}

// HostStatFetcher 抽象 gopsutil 调用，测试时可替换。
type HostStatFetcher struct {
	VirtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	LoadAvg       func(ctx context.Context) (*load.AvgStat, error)
}

// DefaultHostStatFetcher uses gopsutil.
func DefaultHostStatFetcher() HostStatFetcher {
	return HostStatFetcher{
		VirtualMemory: mem.VirtualMemoryWithContext,
		LoadAvg:       load.AvgWithContext,
	}
}

// SystemOptions 注入运行时依赖。
type SystemOptions struct {
	Version   string
	StartedAt time.Time
	Store     repository.Store
	Driver    string
	Fetcher   *HostStatFetcher
	Now       func() time.Time
	Hostname  func() (string, error)
}

// SystemStatus 描述状态页返回字段。主机指标不可用时为零值。
type SystemStatus struct {
	Version       string    `json:"version"`
	GoVersion     string    `json:"go_version"`
	Hostname      string    `json:"hostname"`
	Database      string    `json:"database"`
	StartedAt     time.Time `json:"started_at"`
	Uptime        int64     `json:"uptime"`
	Goroutines    int       `json:"goroutines"`
	MemTotal      uint64    `json:"mem_total"`
	MemUsed       uint64    `json:"mem_used"`
	MemPercent    float64   `json:"mem_percent"`
	Load1         float64   `json:"load1"`
	Load5         float64   `json:"load5"`
	Load15        float64   `json:"load15"`
	OrderCount    int64     `json:"order_count"`
	ProductCount  int       `json:"product_count"`
}

type systemService struct {
	version   string
	startedAt time.Time
	store     repository.Store
	driver    string
	fetcher   HostStatFetcher
	now       func() time.Time
	hostname  func() (string, error)
}

// NewSystemService 构建系统状态服务。
func NewSystemService(opts SystemOptions) SystemService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	startedAt := opts.StartedAt
	if startedAt.IsZero() {
		startedAt = now().UTC()
	}
	fetcher := DefaultHostStatFetcher()
	if opts.Fetcher != nil {
		fetcher = *opts.Fetcher
	}
	hostname := opts.Hostname
	if hostname == nil {
		hostname = os.Hostname
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}
	return &systemService{
		version:   version,
		startedAt: startedAt,
		store:     opts.Store,
		driver:    opts.Driver,
		fetcher:   fetcher,
		now:       now,
		hostname:  hostname,
	}
}

func (s *systemService) Status(ctx context.Context, scope Scope) (SystemStatus, error) {
	host, _ := s.hostname()
	uptime := s.now().UTC().Unix() - s.startedAt.Unix()
	if uptime < 0 {
		uptime = 0
	}
	status := SystemStatus{
		Version:    s.version,
		GoVersion:  runtime.Version(),
		Hostname:   host,
		Database:   s.driver,
		StartedAt:  s.startedAt,
		Uptime:     uptime,
		Goroutines: runtime.NumGoroutine(),
	}

	if s.fetcher.VirtualMemory != nil {
		if v, err := s.fetcher.VirtualMemory(ctx); err == nil && v != nil {
			status.MemTotal = v.Total
			status.MemUsed = v.Used
			status.MemPercent = v.UsedPercent
		}
	}
	if s.fetcher.LoadAvg != nil {
		if l, err := s.fetcher.LoadAvg(ctx); err == nil && l != nil {
			status.Load1, status.Load5, status.Load15 = l.Load1, l.Load5, l.Load15
		}
	}

	if s.store != nil && scope.Valid() {
		counts, err := s.store.Orders().CountByStatus(ctx, scope.RestaurantID)
		if err != nil {
			return SystemStatus{}, err
		}
		for _, c := range counts {
			status.OrderCount += c.Count
		}
		products, err := s.store.Products().List(ctx, repository.ProductFilter{RestaurantID: scope.RestaurantID})
		if err != nil {
			return SystemStatus{}, err
		}
		status.ProductCount = len(products)
	}
	return status, nil
}
