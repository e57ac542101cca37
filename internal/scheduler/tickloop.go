// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package scheduler

import (
	"container/heap"
	"context"
	"log/slog"
	"sync"

	"github.com/holomush/pluginkit/internal/clock"
)

// TickLoop is an in-process main thread. Each Tick advances the counter
// and runs every task due at or before it, in due order and then
// submission order. Tasks run on the goroutine calling Tick.
type TickLoop struct {
	clock  clock.Clock
	logger *slog.Logger
	name   string

	mu    sync.Mutex
	tick  int64
	seq   uint64
	queue taskQueue
}

// NewTickLoop creates a loop. name labels panics in logs and metrics.
func NewTickLoop(clk clock.Clock, name string, logger *slog.Logger) *TickLoop {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TickLoop{clock: clk, logger: logger, name: name}
}

// Schedule runs task once, delay ticks from now. Delays below one run on
// the next tick.
func (l *TickLoop) Schedule(task Task, delay int64) {
	l.push(task, delay, 0)
}

// ScheduleRepeating runs task delay ticks from now and then every period
// ticks. Delays and periods below one are raised to one.
func (l *TickLoop) ScheduleRepeating(task Task, delay, period int64) {
	l.push(task, delay, max(period, 1))
}

func (l *TickLoop) push(task Task, delay, period int64) {
	if task == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	heap.Push(&l.queue, &scheduled{
		due:    l.tick + max(delay, 1),
		seq:    l.seq,
		period: period,
		task:   task,
	})
}

// Tick advances one tick and runs the tasks now due. Tasks scheduled by a
// running task are never due in the same tick.
func (l *TickLoop) Tick() {
	l.mu.Lock()
	l.tick++
	now := l.tick
	var due []*scheduled
	for l.queue.Len() > 0 && l.queue[0].due <= now {
		due = append(due, heap.Pop(&l.queue).(*scheduled))
	}
	l.mu.Unlock()

	for _, s := range due {
		runTask(l.logger, l.name, s.task)
		if s.period > 0 {
			l.mu.Lock()
			l.seq++
			s.due = now + s.period
			s.seq = l.seq
			heap.Push(&l.queue, s)
			l.mu.Unlock()
		}
	}
}

// Run ticks every TickDuration until ctx is cancelled.
func (l *TickLoop) Run(ctx context.Context) {
	ticker := l.clock.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Tick()
		}
	}
}

// CurrentTick returns the number of ticks run so far.
func (l *TickLoop) CurrentTick() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tick
}

// Pending returns the number of queued tasks, counting each repeating
// task once.
func (l *TickLoop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.Len()
}

// runTask runs task, logging and counting a panic instead of propagating it.
func runTask(logger *slog.Logger, executor string, task Task) {
	defer func() {
		if p := recover(); p != nil {
			TaskPanics.WithLabelValues(executor).Inc()
			logger.Error("scheduled task panicked", "executor", executor, "panic", p)
		}
	}()
	task()
}

type scheduled struct {
	due    int64
	seq    uint64
	period int64
	task   Task
}

// taskQueue is a min-heap ordered by due tick, then submission sequence.
type taskQueue []*scheduled

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(*scheduled)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return s
}
