package syncer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedReplacesSnapshot(t *testing.T) {
	var n atomic.Int32
	f := NewFeed("counter", 10*time.Millisecond, func(context.Context) ([]int, error) {
		k := int(n.Add(1))
		out := make([]int, k)
		for i := range out {
			out[i] = k
		}
		return out, nil
	})

	var updates atomic.Int32
	f.OnUpdate = func([]int) { updates.Add(1) }

	f.Activate(context.Background())
	defer f.Deactivate()
	require.True(t, f.Active())

	require.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)
	v, updated, err := f.Snapshot()
	require.NoError(t, err)
	assert.False(t, updated.IsZero())
	for _, x := range v {
		assert.Equal(t, len(v), x, "snapshot must come from a single fetch")
	}
	assert.GreaterOrEqual(t, updates.Load(), int32(2))
}

func TestFeedDiscardsResultAfterDeactivate(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	f := NewFeed("slow", 10*time.Millisecond, func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 1, nil
		}
		<-release
		return 99, nil
	})

	f.Activate(context.Background())
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	f.Deactivate()
	assert.False(t, f.Active())
	close(release)
	time.Sleep(30 * time.Millisecond)

	v, _, _ := f.Snapshot()
	assert.Equal(t, 1, v)
}

func TestFeedDiscardsResultAfterReactivate(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	f := NewFeed("slow", time.Hour, func(context.Context) (int, error) {
		switch calls.Add(1) {
		case 1:
			<-release
			return 1, nil
		default:
			return 2, nil
		}
	})

	f.Activate(context.Background())
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	f.Activate(context.Background())
	require.Eventually(t, func() bool {
		v, _, _ := f.Snapshot()
		return v == 2
	}, time.Second, time.Millisecond)

	close(release)
	time.Sleep(20 * time.Millisecond)
	v, _, _ := f.Snapshot()
	assert.Equal(t, 2, v, "stale fetch from the first activation must not win")
	f.Deactivate()
}

func TestFeedKeepsLastValueOnError(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	f := NewFeed("flaky", 10*time.Millisecond, func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "ok", nil
		}
		return "", boom
	})
	f.Activate(context.Background())
	defer f.Deactivate()

	require.Eventually(t, func() bool {
		_, _, err := f.Snapshot()
		return err != nil
	}, time.Second, 5*time.Millisecond)
	v, _, err := f.Snapshot()
	assert.Equal(t, "ok", v)
	assert.ErrorIs(t, err, boom)
}

func TestPoller(t *testing.T) {
	var a, b atomic.Int32
	fa := NewFeed("a", 10*time.Millisecond, func(context.Context) (int32, error) { return a.Add(1), nil })
	fb := NewFeed("b", 10*time.Millisecond, func(context.Context) (int32, error) { return b.Add(1), nil })
	p := NewPoller(fa)
	p.Add(fb)

	assert.False(t, p.Activate(context.Background(), "missing"))
	require.True(t, p.Activate(context.Background(), "a"))
	require.Eventually(t, func() bool { return a.Load() > 0 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, b.Load())

	p.Deactivate("a")
	assert.False(t, fa.Active())

	p.Activate(context.Background(), "b")
	p.Stop()
	assert.False(t, fb.Active())
}
