// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package scheduler runs plugin work on whichever concurrency model the
// host provides.
//
// Two host models exist. A tick host runs a single main thread that
// advances one tick at a time and offers a separate background pool. A
// region host partitions state across threads; cross-region work goes to a
// global coordinator measured in ticks, and background work goes to an
// async pool measured in wall-clock time. Scheduler probes the host once
// and exposes the same six operations for both.
package scheduler

import (
	"time"

	"github.com/samber/oops"
)

// MillisPerTick is the length of one host tick.
const MillisPerTick = 50

// TickDuration is MillisPerTick as a time.Duration.
const TickDuration = MillisPerTick * time.Millisecond

// TicksToDuration converts a tick count to wall-clock time. Negative
// counts convert to zero.
func TicksToDuration(ticks int64) time.Duration {
	if ticks <= 0 {
		return 0
	}
	return time.Duration(ticks) * TickDuration
}

// Task is a unit of scheduled work.
type Task func()

// Kind identifies the host concurrency model.
type Kind int

// Host concurrency models.
const (
	SingleThreadPerTick Kind = iota
	RegionPartitioned
)

// String returns the metric label for k.
func (k Kind) String() string {
	switch k {
	case SingleThreadPerTick:
		return "tick"
	case RegionPartitioned:
		return "region"
	default:
		return "unknown"
	}
}

// TickHost schedules work against a single main thread. All delays and
// periods are in ticks.
type TickHost interface {
	RunTask(task Task)
	RunTaskAsync(task Task)
	RunTaskLater(task Task, delay int64)
	RunTaskLaterAsync(task Task, delay int64)
	RunTaskTimer(task Task, delay, period int64)
	RunTaskTimerAsync(task Task, delay, period int64)
}

// GlobalRegionScheduler coordinates work across regions, in ticks.
type GlobalRegionScheduler interface {
	Run(task Task)
	RunDelayed(task Task, delay int64)
	RunAtFixedRate(task Task, delay, period int64)
}

// AsyncScheduler runs background work, in wall-clock time.
type AsyncScheduler interface {
	RunNow(task Task)
	RunDelayed(task Task, delay time.Duration)
	RunAtFixedRate(task Task, delay, period time.Duration)
}

// RegionHost exposes the schedulers of a region-partitioned host.
type RegionHost interface {
	GlobalRegion() GlobalRegionScheduler
	Async() AsyncScheduler
}

// Detect reports which concurrency model host provides. A host offering
// both is treated as region-partitioned, since region hosts keep the
// tick API only for compatibility.
func Detect(host any) (Kind, error) {
	switch host.(type) {
	case RegionHost:
		return RegionPartitioned, nil
	case TickHost:
		return SingleThreadPerTick, nil
	default:
		return 0, oops.In("scheduler").
			Code("UNSUPPORTED_HOST").
			With("host_type", typeName(host)).
			Errorf("host provides neither a tick nor a region scheduler")
	}
}

// Scheduler submits work to the detected host model. The model is probed
// once in New and never changes. Submissions are fire-and-forget; nil
// tasks are ignored and negative tick counts are treated as zero.
type Scheduler struct {
	kind   Kind
	tick   TickHost
	region RegionHost
}

// New probes host and returns a Scheduler bound to it.
func New(host any) (*Scheduler, error) {
	kind, err := Detect(host)
	if err != nil {
		return nil, err
	}
	s := &Scheduler{kind: kind}
	switch kind {
	case RegionPartitioned:
		s.region = host.(RegionHost)
	default:
		s.tick = host.(TickHost)
	}
	return s, nil
}

// Kind returns the detected host model.
func (s *Scheduler) Kind() Kind { return s.kind }

// RunNow runs task on the next main tick, or via the global region.
func (s *Scheduler) RunNow(task Task) {
	if task == nil {
		return
	}
	recordSubmission(s.kind, OpRunNow)
	if s.region != nil {
		s.region.GlobalRegion().Run(task)
		return
	}
	s.tick.RunTask(task)
}

// RunNowAsync runs task on the background pool.
func (s *Scheduler) RunNowAsync(task Task) {
	if task == nil {
		return
	}
	recordSubmission(s.kind, OpRunNowAsync)
	if s.region != nil {
		s.region.Async().RunNow(task)
		return
	}
	s.tick.RunTaskAsync(task)
}

// RunLater runs task after delay ticks on the main thread or global region.
func (s *Scheduler) RunLater(task Task, delay int64) {
	if task == nil {
		return
	}
	delay = max(delay, 0)
	recordSubmission(s.kind, OpRunLater)
	if s.region != nil {
		s.region.GlobalRegion().RunDelayed(task, delay)
		return
	}
	s.tick.RunTaskLater(task, delay)
}

// RunLaterAsync runs task on the background pool after delay ticks. On a
// region host the delay is converted to wall-clock time.
func (s *Scheduler) RunLaterAsync(task Task, delay int64) {
	if task == nil {
		return
	}
	delay = max(delay, 0)
	recordSubmission(s.kind, OpRunLaterAsync)
	if s.region != nil {
		s.region.Async().RunDelayed(task, TicksToDuration(delay))
		return
	}
	s.tick.RunTaskLaterAsync(task, delay)
}

// RunTimer runs task every period ticks after delay ticks, on the main
// thread or global region.
func (s *Scheduler) RunTimer(task Task, delay, period int64) {
	if task == nil {
		return
	}
	delay, period = max(delay, 0), max(period, 0)
	recordSubmission(s.kind, OpRunTimer)
	if s.region != nil {
		s.region.GlobalRegion().RunAtFixedRate(task, delay, period)
		return
	}
	s.tick.RunTaskTimer(task, delay, period)
}

// RunTimerAsync runs task on the background pool every period ticks after
// delay ticks. On a region host both are converted to wall-clock time.
func (s *Scheduler) RunTimerAsync(task Task, delay, period int64) {
	if task == nil {
		return
	}
	delay, period = max(delay, 0), max(period, 0)
	recordSubmission(s.kind, OpRunTimerAsync)
	if s.region != nil {
		s.region.Async().RunAtFixedRate(task, TicksToDuration(delay), TicksToDuration(period))
		return
	}
	s.tick.RunTaskTimerAsync(task, delay, period)
}
