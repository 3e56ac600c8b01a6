package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fast(max uint64) Config {
	return Config{MaxRetries: max, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond, Multiplier: 1.5}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	calls := 0
	var retried []uint64
	err := Do(context.Background(), fast(5), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, func(attempt uint64, _ time.Duration, _ error) {
		retried = append(retried, attempt)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []uint64{1, 2}, retried)
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	boom := errors.New("down")
	err := Do(context.Background(), fast(2), func(context.Context) error {
		calls++
		return boom
	}, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanent(t *testing.T) {
	calls := 0
	boom := errors.New("bad credentials")
	err := Do(context.Background(), fast(5), func(context.Context) error {
		calls++
		return Permanent(boom)
	}, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestDoHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, fast(5), func(context.Context) error { return nil }, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
