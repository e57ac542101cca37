// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package scheduler

// LocalHost is a TickHost backed by an in-process TickLoop and Pool.
// Async variants count their delays on the loop and then hand the task to
// the pool, so tick units mean the same thing on both paths.
type LocalHost struct {
	loop *TickLoop
	pool *Pool
}

// NewLocalHost composes loop and pool into a TickHost.
func NewLocalHost(loop *TickLoop, pool *Pool) *LocalHost {
	return &LocalHost{loop: loop, pool: pool}
}

// RunTask runs task on the next tick.
func (h *LocalHost) RunTask(task Task) { h.loop.Schedule(task, 0) }

// RunTaskAsync runs task on the pool.
func (h *LocalHost) RunTaskAsync(task Task) { h.pool.RunNow(task) }

// RunTaskLater runs task after delay ticks.
func (h *LocalHost) RunTaskLater(task Task, delay int64) { h.loop.Schedule(task, delay) }

// RunTaskLaterAsync runs task on the pool after delay ticks.
func (h *LocalHost) RunTaskLaterAsync(task Task, delay int64) {
	h.loop.Schedule(h.handOff(task), delay)
}

// RunTaskTimer runs task every period ticks after delay ticks.
func (h *LocalHost) RunTaskTimer(task Task, delay, period int64) {
	h.loop.ScheduleRepeating(task, delay, period)
}

// RunTaskTimerAsync runs task on the pool every period ticks after delay ticks.
func (h *LocalHost) RunTaskTimerAsync(task Task, delay, period int64) {
	h.loop.ScheduleRepeating(h.handOff(task), delay, period)
}

func (h *LocalHost) handOff(task Task) Task {
	if task == nil {
		return nil
	}
	return func() { h.pool.RunNow(task) }
}

// LocalRegionHost is a RegionHost backed by an in-process TickLoop acting
// as the global region and a Pool acting as the async scheduler.
type LocalRegionHost struct {
	global globalRegion
	pool   *Pool
}

// NewLocalRegionHost composes loop and pool into a RegionHost.
func NewLocalRegionHost(loop *TickLoop, pool *Pool) *LocalRegionHost {
	return &LocalRegionHost{global: globalRegion{loop: loop}, pool: pool}
}

// GlobalRegion returns the tick-based cross-region scheduler.
func (h *LocalRegionHost) GlobalRegion() GlobalRegionScheduler { return h.global }

// Async returns the wall-clock background scheduler.
func (h *LocalRegionHost) Async() AsyncScheduler { return h.pool }

type globalRegion struct {
	loop *TickLoop
}

func (g globalRegion) Run(task Task) { g.loop.Schedule(task, 0) }

func (g globalRegion) RunDelayed(task Task, delay int64) { g.loop.Schedule(task, delay) }

func (g globalRegion) RunAtFixedRate(task Task, delay, period int64) {
	g.loop.ScheduleRepeating(task, delay, period)
}

var (
	_ TickHost              = (*LocalHost)(nil)
	_ RegionHost            = (*LocalRegionHost)(nil)
	_ GlobalRegionScheduler = globalRegion{}
	_ AsyncScheduler        = (*Pool)(nil)
)
