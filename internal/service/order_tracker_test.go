package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/order"
	"github.com/orderdesk/orderdesk/internal/repository/memory"
	"github.com/orderdesk/orderdesk/internal/repository/repotest"
	"github.com/orderdesk/orderdesk/internal/security"
	"github.com/orderdesk/orderdesk/internal/support/logging"
)

type trackerFixture struct {
	store       *memory.Store
	fx          repotest.Fixture
	scope       Scope
	svc         OrderTrackerService
	publisher   *recordingPublisher
	audit       *recordingAudit
	invalidator *countingInvalidator
}

func newTrackerFixture(t *testing.T) trackerFixture {
	t.Helper()
	store, fx := seeded(t)
	f := trackerFixture{
		store:       store,
		fx:          fx,
		scope:       Scope{RestaurantID: fx.RestaurantID, AdminID: 1, Email: "chef@example.com"},
		publisher:   &recordingPublisher{},
		audit:       &recordingAudit{},
		invalidator: &countingInvalidator{},
	}
	svc, err := NewOrderTrackerService(OrderTrackerOptions{
		Store:       store,
		Publisher:   f.publisher,
		Invalidator: f.invalidator,
		Audit:       f.audit,
		Metrics:     NewMetrics(nil, "test"),
		Logger:      logging.Discard(),
		Now:         fixedNow,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f trackerFixture) status(t *testing.T, id int64) string {
	t.Helper()
	o, err := f.store.Orders().FindByID(context.Background(), id)
	require.NoError(t, err)
	return o.Status
}

func TestAdvancePersistsAndNotifies(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()
	id := f.fx.OrderIDs[0] // Confirmado

	res, err := f.svc.Advance(ctx, f.scope, id)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Confirmado", res.From)
	assert.Equal(t, "Em Preparo", res.To)
	assert.Equal(t, 60, res.Percent)
	assert.Equal(t, "Em Preparo", f.status(t, id))

	events, err := f.store.StatusEvents().ListByOrder(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "chef@example.com", events[0].Actor)
	assert.Equal(t, fixedNow().Unix(), events[0].CreatedAt)

	published := f.publisher.all()
	require.Len(t, published, 1)
	assert.Equal(t, events[0].ID, published[0].EventID)
	assert.Equal(t, f.fx.RestaurantID, published[0].RestaurantID)
	assert.Equal(t, 1, f.invalidator.count(f.fx.RestaurantID))
	assert.Equal(t, []string{security.KindOrderTransition}, f.audit.kinds())
}

func TestRejectKeepsUnknownStoredStatusInHistory(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()
	id := f.fx.OrderIDs[2]
	require.NoError(t, f.store.Orders().UpdateStatus(ctx, id, "Cancelado", 1))

	res, err := f.svc.Reject(ctx, f.scope, id)
	require.NoError(t, err)
	assert.Equal(t, "Cancelado", res.From)
	assert.Equal(t, "Recusado", res.To)

	events, err := f.store.StatusEvents().ListByOrder(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Cancelado", events[0].FromStatus)

	published := f.publisher.all()
	require.Len(t, published, 1)
	assert.Equal(t, "Cancelado", published[0].From)
}

func TestRetreatFromConfirmedPersistsPending(t *testing.T) {
	f := newTrackerFixture(t)
	res, err := f.svc.Retreat(context.Background(), f.scope, f.fx.OrderIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "Pendente", res.To)
	assert.Equal(t, "Pendente", f.status(t, f.fx.OrderIDs[0]))
}

func TestAdvanceAtLastStageIsNoop(t *testing.T) {
	f := newTrackerFixture(t)
	id := f.fx.OrderIDs[1] // Entregue

	res, err := f.svc.Advance(context.Background(), f.scope, id)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, "Entregue", res.To)
	assert.Empty(t, f.publisher.all())
	assert.Zero(t, f.invalidator.count(f.fx.RestaurantID))

	events, err := f.store.StatusEvents().ListByOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRejectThenAdvanceIsConflict(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()
	id := f.fx.OrderIDs[2] // Pendente

	res, err := f.svc.Reject(ctx, f.scope, id)
	require.NoError(t, err)
	assert.True(t, res.Rejected)
	assert.Equal(t, "Recusado", f.status(t, id))

	_, err = f.svc.Advance(ctx, f.scope, id)
	assert.ErrorIs(t, err, ErrRejected)
	_, err = f.svc.Retreat(ctx, f.scope, id)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, "Recusado", f.status(t, id))
}

func TestForeignOrderIsNotFound(t *testing.T) {
	f := newTrackerFixture(t)
	_, err := f.svc.Advance(context.Background(), f.scope, f.fx.ForeignOrder)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Reject(context.Background(), f.scope, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Advance(context.Background(), Scope{}, f.fx.OrderIDs[0])
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestStoreFailureLeavesOrderUnchanged(t *testing.T) {
	f := newTrackerFixture(t)
	id := f.fx.OrderIDs[0]
	f.store.SetFailUpdates(errors.New("connection reset"))

	_, err := f.svc.Advance(context.Background(), f.scope, id)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUpdate)
	assert.Contains(t, err.Error(), "connection reset")

	f.store.SetFailUpdates(nil)
	assert.Equal(t, "Confirmado", f.status(t, id))
	assert.Empty(t, f.publisher.all())
	assert.Equal(t, []string{security.KindOrderWriteFailed}, f.audit.kinds())
}

func TestApplyRejectsUnknownAction(t *testing.T) {
	f := newTrackerFixture(t)
	_, err := f.svc.Apply(context.Background(), f.scope, f.fx.OrderIDs[0], order.Action("teleport"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConcurrentAdvancesNeverOvershoot(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()
	id := f.fx.OrderIDs[2] // Pendente

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Advance(ctx, f.scope, id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	events, err := f.store.StatusEvents().ListByOrder(ctx, id)
	require.NoError(t, err)
	stage, ok := order.ParseStage(f.status(t, id))
	require.True(t, ok)
	assert.Equal(t, len(events), stage.Index(), "every persisted step has exactly one history entry")
	assert.LessOrEqual(t, len(events), len(order.Stages)-1)
}
