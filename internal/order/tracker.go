package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Action names a tracker transition.
type Action string

const (
	ActionAdvance Action = "advance"
	ActionRetreat Action = "retreat"
	ActionReject  Action = "reject"
)

// ParseAction 解析外部传入的动作名称。
func ParseAction(raw string) (Action, error) {
	switch a := Action(raw); a {
	case ActionAdvance, ActionRetreat, ActionReject:
		return a, nil
	default:
		return "", fmt.Errorf("unknown order action %q / 未知的订单动作", raw)
	}
}

// StatusWriter persists a single order's status. Implementations must update
// exactly the row identified by orderID.
type StatusWriter interface {
	UpdateStatus(ctx context.Context, orderID int64, status Stage) error
}

// StatusWriterFunc 允许用普通函数实现 StatusWriter。
type StatusWriterFunc func(ctx context.Context, orderID int64, status Stage) error

// UpdateStatus implements StatusWriter.
func (f StatusWriterFunc) UpdateStatus(ctx context.Context, orderID int64, status Stage) error {
	return f(ctx, orderID, status)
}

// Transition 描述一次状态变化（或未发生的变化）。
type Transition struct {
	OrderID int64
	Action  Action
	From    Stage
	To      Stage
	// Changed is false when the tracker was already at the bound and issued no update.
	Changed bool
}

// Observer receives the outcome of every attempted write.
type Observer interface {
	TransitionApplied(ctx context.Context, t Transition)
	TransitionFailed(ctx context.Context, t Transition, err error)
}

type nopObserver struct{}

func (nopObserver) TransitionApplied(context.Context, Transition) {}

func (nopObserver) TransitionFailed(context.Context, Transition, error) {}

// Tracker holds one order's local progress and moves it only after the
// StatusWriter accepted the new value.
type Tracker struct {
	mu       sync.Mutex
	orderID  int64
	progress Progress
	// current is the status as stored, which may be a value outside Stages.
	current  Stage
	writer   StatusWriter
	observer Observer
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithObserver 设置写入结果的观察者。
func WithObserver(o Observer) TrackerOption {
	return func(t *Tracker) {
		if o != nil {
			t.observer = o
		}
	}
}

// NewTracker 以存储中的原始状态初始化追踪器。
func NewTracker(orderID int64, status string, writer StatusWriter, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		orderID:  orderID,
		progress: ProgressOf(status),
		writer:   writer,
		observer: nopObserver{},
	}
	t.current = Stage(strings.TrimSpace(status))
	if t.current == "" {
		t.current = t.progress.Stage()
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OrderID returns the tracked order id.
func (t *Tracker) OrderID() int64 { return t.orderID }

// Progress 返回当前本地进度的快照。
func (t *Tracker) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// Stage 返回当前阶段。
func (t *Tracker) Stage() Stage {
	return t.Progress().Stage()
}

// Advance moves one stage forward. At the last stage it returns an unchanged
// transition without touching the writer.
func (t *Tracker) Advance(ctx context.Context) (Transition, error) {
	return t.step(ctx, ActionAdvance, Progress.Next, 1)
}

// Retreat moves one stage backward. At the first stage it is a no-op.
func (t *Tracker) Retreat(ctx context.Context) (Transition, error) {
	return t.step(ctx, ActionRetreat, Progress.Prev, -1)
}

// Reject persists Recusado regardless of the current stage.
func (t *Tracker) Reject(ctx context.Context) (Transition, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr := Transition{OrderID: t.orderID, Action: ActionReject, From: t.current, To: StageRejected}
	if err := t.write(ctx, tr); err != nil {
		return tr, err
	}
	t.progress = Progress{Index: t.progress.Index, Rejected: true}
	t.current = StageRejected
	tr.Changed = true
	t.observer.TransitionApplied(ctx, tr)
	return tr, nil
}

// Apply dispatches by action name.
func (t *Tracker) Apply(ctx context.Context, action Action) (Transition, error) {
	switch action {
	case ActionAdvance:
		return t.Advance(ctx)
	case ActionRetreat:
		return t.Retreat(ctx)
	case ActionReject:
		return t.Reject(ctx)
	default:
		return Transition{OrderID: t.orderID, Action: action}, fmt.Errorf("unknown order action %q / 未知的订单动作", action)
	}
}

func (t *Tracker) step(ctx context.Context, action Action, target func(Progress) (Stage, bool), delta int) (Transition, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	from := t.current
	tr := Transition{OrderID: t.orderID, Action: action, From: from, To: from}
	if t.progress.Rejected {
		return tr, ErrRejected
	}
	next, ok := target(t.progress)
	if !ok {
		return tr, nil
	}
	tr.To = next
	if err := t.write(ctx, tr); err != nil {
		return tr, err
	}
	t.progress = Progress{Index: t.progress.clamped() + delta}
	t.current = next
	tr.Changed = true
	t.observer.TransitionApplied(ctx, tr)
	return tr, nil
}

func (t *Tracker) write(ctx context.Context, tr Transition) error {
	if t.writer == nil {
		err := errors.New("order status writer not configured / 未配置订单状态写入器")
		t.observer.TransitionFailed(ctx, tr, err)
		return err
	}
	if err := t.writer.UpdateStatus(ctx, tr.OrderID, tr.To); err != nil {
		wrapped := fmt.Errorf("persist order %d status %q: %w", tr.OrderID, tr.To, err)
		t.observer.TransitionFailed(ctx, tr, wrapped)
		return wrapped
	}
	return nil
}
