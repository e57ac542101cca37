// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/holomush/pluginkit/internal/clock"
)

// DefaultPoolSize bounds concurrently running background tasks.
const DefaultPoolSize = 8

// Pool runs background tasks with bounded concurrency. It implements
// AsyncScheduler. Call Close to stop pending timers and wait for running
// tasks.
type Pool struct {
	clock  clock.Clock
	logger *slog.Logger
	sem    *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
	nextID uint64
	timers map[uint64]*clock.Timer
}

// NewPool creates a pool running at most size tasks at once. A size below
// one uses DefaultPoolSize.
func NewPool(clk clock.Clock, size int64, logger *slog.Logger) *Pool {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if size < 1 {
		size = DefaultPoolSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		clock:  clk,
		logger: logger,
		sem:    semaphore.NewWeighted(size),
		ctx:    ctx,
		cancel: cancel,
		timers: make(map[uint64]*clock.Timer),
	}
}

// RunNow runs task on a background goroutine once a slot is free.
func (p *Pool) RunNow(task Task) {
	if task == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		runTask(p.logger, "pool", task)
	}()
}

// RunDelayed runs task once delay has elapsed.
func (p *Pool) RunDelayed(task Task, delay time.Duration) {
	if task == nil {
		return
	}
	p.after(delay, func() { p.RunNow(task) })
}

// RunAtFixedRate runs task after delay and then every period. Each run is
// started when its period elapses, regardless of whether the previous run
// has finished. A non-positive period runs task once.
func (p *Pool) RunAtFixedRate(task Task, delay, period time.Duration) {
	if task == nil {
		return
	}
	if period <= 0 {
		p.RunDelayed(task, delay)
		return
	}
	var fire func()
	fire = func() {
		p.RunNow(task)
		p.after(period, fire)
	}
	p.after(delay, fire)
}

// after arms a timer that calls fn unless the pool has closed.
func (p *Pool) after(d time.Duration, fn func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.nextID++
	id := p.nextID
	p.mu.Unlock()

	fired := false
	t := p.clock.AfterFunc(d, func() {
		p.mu.Lock()
		fired = true
		delete(p.timers, id)
		closed := p.closed
		p.mu.Unlock()
		if !closed {
			fn()
		}
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.closed:
		t.Stop()
	case !fired:
		p.timers[id] = t
	}
}

// Pending returns the number of armed timers.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.timers)
}

// Close cancels armed timers and queued tasks, then waits for running
// tasks to finish. Submissions after Close are dropped.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	timers := p.timers
	p.timers = make(map[uint64]*clock.Timer)
	p.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
	p.cancel()
	p.wg.Wait()
}
