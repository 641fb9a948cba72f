package infra

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"employee-directory/middleware/ratelimit/domain"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func newTestStore(limit int, window time.Duration, opts ...StoreOption) (*SlidingWindowStore, *clock.Mock) {
	mock := clock.NewMock()
	mock.Set(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	opts = append([]StoreOption{WithClock(mock)}, opts...)
	return NewSlidingWindowStore(limit, window, opts...), mock
}

func TestStore_AdmitsUpToLimitThenRejects(t *testing.T) {
	s, _ := newTestStore(20, time.Minute)

	for i := 0; i < 20; i++ {
		dec, err := s.Check("org1")
		require.NoError(t, err)
		require.True(t, dec.Allowed, "call %d should be admitted", i+1)
		require.Equal(t, 20-(i+1), dec.Remaining)
	}

	dec, err := s.Check("org1")
	require.NoError(t, err)
	require.False(t, dec.Allowed)
	require.Equal(t, time.Minute, dec.RetryAfter)
}

func TestStore_RejectLeavesWindowUnchanged(t *testing.T) {
	s, mock := newTestStore(2, time.Minute)

	_, _ = s.Check("org1")
	mock.Add(10 * time.Second)
	_, _ = s.Check("org1")
	resetBefore := s.ResetAt("org1")

	for i := 0; i < 5; i++ {
		dec, err := s.Check("org1")
		require.NoError(t, err)
		require.False(t, dec.Allowed)
	}

	require.Equal(t, 0, s.Remaining("org1"))
	require.Equal(t, resetBefore, s.ResetAt("org1"))
}

func TestStore_AdmitsAgainAfterOldestLeavesWindow(t *testing.T) {
	s, mock := newTestStore(3, time.Minute)
	start := mock.Now()

	for i := 0; i < 3; i++ {
		dec, _ := s.Check("org1")
		require.True(t, dec.Allowed)
	}
	dec, _ := s.Check("org1")
	require.False(t, dec.Allowed)

	// exatamente na borda o timestamp ainda conta (now-t <= window)
	mock.Set(start.Add(time.Minute))
	dec, _ = s.Check("org1")
	require.False(t, dec.Allowed)

	mock.Set(start.Add(time.Minute + time.Nanosecond))
	dec, _ = s.Check("org1")
	require.True(t, dec.Allowed)
}

func TestStore_TenantsAreIndependent(t *testing.T) {
	s, _ := newTestStore(1, time.Minute)

	dec, _ := s.Check("org1")
	require.True(t, dec.Allowed)
	dec, _ = s.Check("org1")
	require.False(t, dec.Allowed)

	dec, _ = s.Check("org2")
	require.True(t, dec.Allowed)
}

func TestStore_EmptyKeyIsAnError(t *testing.T) {
	s, _ := newTestStore(1, time.Minute)

	dec, err := s.Check("")
	require.ErrorIs(t, err, ErrEmptyKey)
	require.False(t, dec.Allowed)
	require.Equal(t, 0, s.Len())
}

func TestStore_ConcurrentChecksNeverOverAdmit(t *testing.T) {
	const limit = 20
	s, _ := newTestStore(limit, time.Minute, WithShards(4))

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dec, err := s.Check("org1")
			if err == nil && dec.Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(limit), admitted.Load())
}

// Para qualquer admissão em t, o número de admissões em [t-window, t] nunca
// passa do limite.
func TestStore_TrailingWindowNeverExceedsLimit(t *testing.T) {
	const limit = 5
	const win = 10 * time.Second
	s, mock := newTestStore(limit, win, WithShards(2))

	rng := rand.New(rand.NewPCG(42, 7))
	keys := []domain.Key{"org1", "org2", "org3"}
	admitted := map[domain.Key][]time.Time{}

	for i := 0; i < 5000; i++ {
		mock.Add(time.Duration(rng.IntN(1500)) * time.Millisecond)
		k := keys[rng.IntN(len(keys))]
		dec, err := s.Check(k)
		require.NoError(t, err)
		if dec.Allowed {
			admitted[k] = append(admitted[k], mock.Now())
		}
	}

	for k, times := range admitted {
		require.NotEmpty(t, times, string(k))
		for i, at := range times {
			n := 0
			for j := i; j >= 0 && at.Sub(times[j]) <= win; j-- {
				n++
			}
			require.LessOrEqual(t, n, limit, "key %s at %s", k, at)
		}
	}
}

func TestStore_SweepRemovesOnlyFullyExpiredTenants(t *testing.T) {
	s, mock := newTestStore(5, time.Minute)

	_, _ = s.Check("old")
	mock.Add(30 * time.Second)
	_, _ = s.Check("mixed")
	mock.Add(40 * time.Second)
	_, _ = s.Check("mixed")
	_, _ = s.Check("fresh")

	// "old" tem 70s, "mixed" tem um de 40s e um de 0s
	removed := s.Sweep()
	require.Equal(t, 1, removed)
	require.Equal(t, 2, s.Len())
	require.Equal(t, 3, s.Remaining("mixed"))
	require.Equal(t, 4, s.Remaining("fresh"))

	mock.Add(2 * time.Minute)
	require.Equal(t, 2, s.Sweep())
	require.Equal(t, 0, s.Len())
}

func TestStore_SweepHookReceivesRemovedCount(t *testing.T) {
	var got []int
	s, mock := newTestStore(5, time.Minute, WithSweepHook(func(n int) { got = append(got, n) }))

	_, _ = s.Check("a")
	_, _ = s.Check("b")
	s.Sweep()
	mock.Add(2 * time.Minute)
	s.Sweep()

	require.Equal(t, []int{0, 2}, got)
}

func TestStore_HighWaterMarkTriggersSweep(t *testing.T) {
	s, mock := newTestStore(5, time.Minute, WithMaxEntries(2))

	_, _ = s.Check("a")
	_, _ = s.Check("b")
	require.Equal(t, 2, s.Len())

	mock.Add(2 * time.Minute)
	_, _ = s.Check("c")

	require.Equal(t, 1, s.Len())
	require.Equal(t, 5, s.Remaining("a"))
}

func TestStore_RemainingDropsEmptyWindow(t *testing.T) {
	s, mock := newTestStore(3, time.Minute)

	_, _ = s.Check("org1")
	require.Equal(t, 2, s.Remaining("org1"))
	require.Equal(t, 1, s.Len())

	mock.Add(61 * time.Second)
	require.Equal(t, 3, s.Remaining("org1"))
	require.Equal(t, 0, s.Len())
}

func TestStore_ResetAtTracksOldestTimestamp(t *testing.T) {
	s, mock := newTestStore(3, time.Minute)
	start := mock.Now()

	require.Equal(t, start, s.ResetAt("org1"))

	_, _ = s.Check("org1")
	mock.Add(5 * time.Second)
	_, _ = s.Check("org1")

	require.Equal(t, start.Add(time.Minute), s.ResetAt("org1"))
}

func TestStore_ResetClearsState(t *testing.T) {
	s, _ := newTestStore(1, time.Minute)

	_, _ = s.Check("org1")
	_, _ = s.Check("org2")

	s.Reset("org1")
	dec, _ := s.Check("org1")
	require.True(t, dec.Allowed)

	s.ResetAll()
	require.Equal(t, 0, s.Len())
	dec, _ = s.Check("org2")
	require.True(t, dec.Allowed)
}

func TestStore_JanitorSweepsOnTick(t *testing.T) {
	s, mock := newTestStore(2, time.Minute, WithCleanupEvery(30*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartJanitor(ctx)

	_, _ = s.Check("org1")
	require.Equal(t, 1, s.Len())

	mock.Add(90 * time.Second)
	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}

// panicClock entra em pânico na primeira leitura de Now.
type panicClock struct {
	*clock.Mock
	armed atomic.Bool
}

func (c *panicClock) Now() time.Time {
	if c.armed.CompareAndSwap(true, false) {
		panic("clock failure")
	}
	return c.Mock.Now()
}

func TestStore_PanicInsideCheckReleasesShard(t *testing.T) {
	c := &panicClock{Mock: clock.NewMock()}
	c.armed.Store(true)
	s := NewSlidingWindowStore(2, time.Minute, WithClock(c), WithShards(1))

	require.Panics(t, func() { _, _ = s.Check("org1") })

	done := make(chan domain.Decision, 1)
	go func() {
		dec, _ := s.Check("org1")
		done <- dec
	}()
	select {
	case dec := <-done:
		require.True(t, dec.Allowed)
		require.Equal(t, 1, dec.Remaining)
	case <-time.After(time.Second):
		t.Fatal("shard mutex still held after a panic in Check")
	}
	require.Zero(t, s.Sweep())
	require.Equal(t, 1, s.Len())
}
