package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemStatus(t *testing.T) {
	store, fx := seeded(t)
	started := fixedNow().Add(-90 * time.Second)
	svc := NewSystemService(SystemOptions{
		Version:   "1.2.3",
		StartedAt: started,
		Store:     store,
		Driver:    "memory",
		Now:       fixedNow,
		Hostname:  func() (string, error) { return "kitchen-01", nil },
		Fetcher: &HostStatFetcher{
			VirtualMemory: func(context.Context) (*mem.VirtualMemoryStat, error) {
				return &mem.VirtualMemoryStat{Total: 100, Used: 40, UsedPercent: 40}, nil
			},
			LoadAvg: func(context.Context) (*load.AvgStat, error) {
				return nil, errors.New("unsupported")
			},
		},
	})

	st, err := svc.Status(context.Background(), Scope{RestaurantID: fx.RestaurantID})
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", st.Version)
	assert.Equal(t, "kitchen-01", st.Hostname)
	assert.Equal(t, int64(90), st.Uptime)
	assert.Equal(t, uint64(40), st.MemUsed)
	assert.Zero(t, st.Load1)
	assert.Equal(t, int64(4), st.OrderCount)
	assert.Equal(t, 3, st.ProductCount)
}
