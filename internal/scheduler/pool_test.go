// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package scheduler

import (
	"bytes"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/pluginkit/internal/clock"
)

func newPool(t *testing.T, size int64) (*Pool, *clock.FakeClock) {
	t.Helper()
	fake := clock.Fake(epoch)
	p := NewPool(fake, size, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	t.Cleanup(p.Close)
	return p, fake
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestPool_RunNow(t *testing.T) {
	p, _ := newPool(t, 2)
	ran := make(chan struct{})

	p.RunNow(func() { close(ran) })

	waitFor(t, ran)
}

func TestPool_BoundsConcurrency(t *testing.T) {
	p, _ := newPool(t, 2)
	release := make(chan struct{})
	var running, peak atomic.Int32

	for range 6 {
		p.RunNow(func() {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			<-release
			running.Add(-1)
		})
	}

	require.Eventually(t, func() bool { return running.Load() == 2 }, time.Second, time.Millisecond)
	close(release)
	p.Close()

	assert.Equal(t, int32(2), peak.Load())
}

func TestPool_RunDelayed(t *testing.T) {
	p, fake := newPool(t, 1)
	ran := make(chan struct{})

	p.RunDelayed(func() { close(ran) }, time.Second)
	assert.Equal(t, 1, p.Pending())

	fake.Advance(999 * time.Millisecond)
	select {
	case <-ran:
		t.Fatal("ran before delay elapsed")
	default:
	}

	fake.Advance(time.Millisecond)
	waitFor(t, ran)
	assert.Equal(t, 0, p.Pending())
}

func TestPool_RunDelayedZeroRunsImmediately(t *testing.T) {
	p, _ := newPool(t, 1)
	ran := make(chan struct{})

	p.RunDelayed(func() { close(ran) }, 0)

	waitFor(t, ran)
	assert.Equal(t, 0, p.Pending())
}

func TestPool_RunAtFixedRate(t *testing.T) {
	p, fake := newPool(t, 1)
	runs := make(chan struct{}, 10)

	p.RunAtFixedRate(func() { runs <- struct{}{} }, 100*time.Millisecond, time.Second)

	fake.Advance(100 * time.Millisecond)
	waitFor(t, runs)

	fake.Advance(time.Second)
	waitFor(t, runs)

	fake.Advance(time.Second)
	waitFor(t, runs)

	assert.Equal(t, 1, p.Pending(), "next run stays armed")
}

func TestPool_RunAtFixedRateNonPositivePeriodRunsOnce(t *testing.T) {
	p, fake := newPool(t, 1)
	var count atomic.Int32
	ran := make(chan struct{}, 10)

	p.RunAtFixedRate(func() { count.Add(1); ran <- struct{}{} }, time.Second, 0)
	fake.Advance(time.Second)
	waitFor(t, ran)

	fake.Advance(time.Hour)
	p.Close()
	assert.Equal(t, int32(1), count.Load())
}

func TestPool_CloseCancelsTimers(t *testing.T) {
	p, fake := newPool(t, 1)
	var count atomic.Int32

	p.RunDelayed(func() { count.Add(1) }, time.Second)
	p.RunAtFixedRate(func() { count.Add(1) }, time.Second, time.Second)
	p.Close()

	fake.Advance(time.Hour)
	assert.Zero(t, count.Load())
	assert.Equal(t, 0, p.Pending())

	p.RunNow(func() { count.Add(1) })
	p.RunDelayed(func() { count.Add(1) }, time.Second)
	fake.Advance(time.Hour)
	assert.Zero(t, count.Load(), "submissions after Close are dropped")

	assert.NotPanics(t, p.Close, "Close is idempotent")
}

func TestPool_PanicIsRecovered(t *testing.T) {
	p, _ := newPool(t, 1)
	ran := make(chan struct{})

	p.RunNow(func() { panic("boom") })
	p.RunNow(func() { close(ran) })

	waitFor(t, ran)
}

func TestNewPool_Defaults(t *testing.T) {
	p := NewPool(nil, 0, nil)
	defer p.Close()

	ran := make(chan struct{})
	p.RunNow(func() { close(ran) })
	waitFor(t, ran)
}
