package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/orderdesk/orderdesk/internal/event"
	"github.com/orderdesk/orderdesk/internal/repository/memory"
	"github.com/orderdesk/orderdesk/internal/repository/repotest"
	"github.com/orderdesk/orderdesk/internal/security"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.StatusChanged
}

func (p *recordingPublisher) Publish(_ context.Context, ev event.StatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) all() []event.StatusChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.StatusChanged(nil), p.events...)
}

type recordingAudit struct {
	mu     sync.Mutex
	events []security.Event
}

func (a *recordingAudit) Record(_ context.Context, ev security.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *recordingAudit) kinds() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Kind)
	}
	return out
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls map[int64]int
}

func (c *countingInvalidator) Invalidate(_ context.Context, restaurantID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[int64]int{}
	}
	c.calls[restaurantID]++
}

func (c *countingInvalidator) count(restaurantID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[restaurantID]
}

func fixedNow() time.Time { return time.Unix(1_700_000_000, 0) }

func seeded(t *testing.T) (*memory.Store, repotest.Fixture) {
	t.Helper()
	store := memory.NewStore()
	return store, repotest.Seed(t, store)
}
