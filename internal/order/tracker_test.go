package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	calls []Stage
	ids   []int64
	err   error
}

func (w *recordingWriter) UpdateStatus(_ context.Context, orderID int64, status Stage) error {
	w.ids = append(w.ids, orderID)
	w.calls = append(w.calls, status)
	return w.err
}

type recordingObserver struct {
	applied []Transition
	failed  []error
}

func (o *recordingObserver) TransitionApplied(_ context.Context, t Transition) {
	o.applied = append(o.applied, t)
}

func (o *recordingObserver) TransitionFailed(_ context.Context, _ Transition, err error) {
	o.failed = append(o.failed, err)
}

func TestProgressOf(t *testing.T) {
	cases := map[string]Progress{
		"Pendente":   {Index: 0},
		"Confirmado": {Index: 1},
		"Em Preparo": {Index: 2},
		"A Caminho":  {Index: 3},
		"Entregue":   {Index: 4},
		"Recusado":   {Rejected: true},
		"bogus":      {Index: 0},
		"":           {Index: 0},
	}
	for status, want := range cases {
		assert.Equal(t, want, ProgressOf(status), status)
	}
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 20, ProgressOf("Pendente").Percent())
	assert.Equal(t, 60, ProgressOf("Em Preparo").Percent())
	assert.Equal(t, 100, ProgressOf("Entregue").Percent())
	assert.Equal(t, 0, ProgressOf("Recusado").Percent())
}

func TestRetreatPersistsPreviousStage(t *testing.T) {
	w := &recordingWriter{}
	tr := NewTracker(42, "Em Preparo", w)

	got, err := tr.Retreat(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Changed)
	assert.Equal(t, StageConfirmed, got.To)
	assert.Equal(t, []Stage{StageConfirmed}, w.calls)
	assert.Equal(t, []int64{42}, w.ids)
	assert.Equal(t, 1, tr.Progress().Index)
}

func TestAdvanceWalksEveryStageAndStops(t *testing.T) {
	w := &recordingWriter{}
	tr := NewTracker(7, "Pendente", w)
	ctx := context.Background()

	visited := []Stage{tr.Stage()}
	for i := 0; i < 5; i++ {
		_, err := tr.Advance(ctx)
		require.NoError(t, err)
		visited = append(visited, tr.Stage())
	}

	assert.Equal(t, []Stage{
		StagePending, StageConfirmed, StagePreparing, StageOnTheWay, StageDelivered, StageDelivered,
	}, visited)
	assert.Len(t, w.calls, 4, "the fifth advance must not issue an update")
	assert.True(t, tr.Progress().AtEnd())
}

func TestRetreatAtFirstStageIsNoop(t *testing.T) {
	w := &recordingWriter{}
	tr := NewTracker(1, "Pendente", w)

	got, err := tr.Retreat(context.Background())
	require.NoError(t, err)
	assert.False(t, got.Changed)
	assert.Empty(t, w.calls)
	assert.Equal(t, StagePending, tr.Stage())
}

func TestRejectFromAnyStage(t *testing.T) {
	for _, st := range Stages {
		w := &recordingWriter{}
		tr := NewTracker(3, string(st), w)
		got, err := tr.Reject(context.Background())
		require.NoError(t, err)
		assert.Equal(t, StageRejected, got.To)
		assert.Equal(t, st, got.From)
		assert.Equal(t, []Stage{StageRejected}, w.calls)
		assert.Equal(t, StageRejected, tr.Stage())
	}
}

func TestUnknownStoredStatusIsReportedAsFrom(t *testing.T) {
	w := &recordingWriter{}
	obs := &recordingObserver{}
	tr := NewTracker(4, " Cancelado ", w, WithObserver(obs))
	assert.Equal(t, StagePending, tr.Stage())

	got, err := tr.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stage("Cancelado"), got.From)
	assert.Equal(t, StageConfirmed, got.To)

	got, err = tr.Reject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StageConfirmed, got.From)

	other := NewTracker(5, "Cancelado", &recordingWriter{})
	got, err = other.Reject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stage("Cancelado"), got.From)
	assert.Equal(t, StageRejected, got.To)
	require.Len(t, obs.applied, 2)
	assert.Equal(t, Stage("Cancelado"), obs.applied[0].From)
}

func TestTransitionsAfterRejectFail(t *testing.T) {
	w := &recordingWriter{}
	tr := NewTracker(3, "Recusado", w)

	_, err := tr.Advance(context.Background())
	assert.ErrorIs(t, err, ErrRejected)
	_, err = tr.Retreat(context.Background())
	assert.ErrorIs(t, err, ErrRejected)
	assert.Empty(t, w.calls)
}

func TestFailedWriteKeepsLocalState(t *testing.T) {
	boom := errors.New("store unavailable")
	w := &recordingWriter{err: boom}
	obs := &recordingObserver{}
	tr := NewTracker(9, "Confirmado", w, WithObserver(obs))

	_, err := tr.Advance(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StageConfirmed, tr.Stage())
	assert.Len(t, obs.failed, 1)
	assert.Empty(t, obs.applied)

	_, err = tr.Reject(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StageConfirmed, tr.Stage())
	assert.Len(t, obs.failed, 2)
}

func TestApplyDispatches(t *testing.T) {
	w := &recordingWriter{}
	tr := NewTracker(5, "A Caminho", w)

	got, err := tr.Apply(context.Background(), ActionAdvance)
	require.NoError(t, err)
	assert.Equal(t, StageDelivered, got.To)

	_, err = tr.Apply(context.Background(), Action("explode"))
	assert.Error(t, err)
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("reject")
	require.NoError(t, err)
	assert.Equal(t, ActionReject, a)

	_, err = ParseAction("cancel")
	assert.Error(t, err)
}
