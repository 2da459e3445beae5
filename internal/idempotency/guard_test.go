package idempotency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acp-checkout-gateway/internal/kv"
	"acp-checkout-gateway/internal/security"
)

func TestGuard_Run_EmptyKeyBypassesGuard(t *testing.T) {
	g := New(kv.NewMemory(), time.Hour, nil)
	var calls int32

	result, err := g.Run(context.Background(), "", func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "value", nil
	})
	require.NoError(t, err)
	assert.False(t, result.Reused)
	assert.Equal(t, "value", result.Value)

	_, err = g.Run(context.Background(), "", func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "value2", nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGuard_Run_SecondCallReplaysCachedResult(t *testing.T) {
	g := New(kv.NewMemory(), time.Hour, nil)
	var calls int32
	compute := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "computed-once", nil
	}

	first, err := g.Run(context.Background(), "key-1", compute)
	require.NoError(t, err)
	assert.False(t, first.Reused)

	second, err := g.Run(context.Background(), "key-1", compute)
	require.NoError(t, err)
	assert.True(t, second.Reused)
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGuard_Run_EncryptsCachedValueAtRest(t *testing.T) {
	store := kv.NewMemory()
	encryptor := security.NewEncryptor("guard-secret")
	g := New(store, time.Hour, encryptor)

	_, err := g.Run(context.Background(), "key-1", func(ctx context.Context) (string, error) {
		return "plaintext-result", nil
	})
	require.NoError(t, err)

	raw, ok, err := store.Get(context.Background(), "key-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, "plaintext-result", raw)

	result, err := g.Run(context.Background(), "key-1", func(ctx context.Context) (string, error) {
		t.Fatal("compute should not re-run for a cached key")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "plaintext-result", result.Value)
}

func TestGuard_Run_ComputeErrorMarksKeyFailed(t *testing.T) {
	g := New(kv.NewMemory(), time.Hour, nil)
	sentinelErr := errors.New("boom")

	_, err := g.Run(context.Background(), "key-1", func(ctx context.Context) (string, error) {
		return "", sentinelErr
	})
	assert.ErrorIs(t, err, sentinelErr)

	_, err = g.Run(context.Background(), "key-1", func(ctx context.Context) (string, error) {
		t.Fatal("compute should not re-run for a failed key")
		return "", nil
	})
	assert.ErrorIs(t, err, ErrPreviouslyFailed)
}

func TestGuard_Run_ConcurrentRetriesSingleFlightToOneCompute(t *testing.T) {
	original := backoffSchedule
	backoffSchedule = []time.Duration{5 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 80 * time.Millisecond}
	defer func() { backoffSchedule = original }()

	g := New(kv.NewMemory(), time.Hour, nil)
	var calls int32

	const racers = 10
	var wg sync.WaitGroup
	results := make([]Result, racers)
	errs := make([]error, racers)

	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start.Wait()
			results[i], errs[i] = g.Run(context.Background(), "race-key", func(ctx context.Context) (string, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(30 * time.Millisecond)
				return "single-flight-result", nil
			})
		}(i)
	}
	start.Done()
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for i := 0; i < racers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "single-flight-result", results[i].Value)
	}
}
