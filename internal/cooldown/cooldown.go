// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package cooldown tracks which subjects are temporarily blocked from
// repeating an action. Only membership is tracked, not time remaining.
package cooldown

import (
	"sync"

	"github.com/holomush/pluginkit/internal/scheduler"
)

// Scheduler runs a task after a delay in ticks.
// *scheduler.Scheduler satisfies it.
type Scheduler interface {
	RunLater(task scheduler.Task, delay int64)
}

// Set is a concurrency-safe set of subjects on cooldown. Each Add
// schedules a removal; a removal only takes effect if the subject has not
// been removed and re-added since, so a stale timer never cuts a newer
// cooldown short.
type Set[T comparable] struct {
	sched Scheduler

	mu      sync.Mutex
	entries map[T]uint64 // subject → generation of its current cooldown
	gen     uint64
}

// New creates an empty Set that schedules removals on sched.
func New[T comparable](sched Scheduler) *Set[T] {
	return &Set[T]{sched: sched, entries: make(map[T]uint64)}
}

// Add puts subject on cooldown for ticks. Adding a subject already on
// cooldown restarts it.
func (s *Set[T]) Add(subject T, ticks int64) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.entries[subject] = gen
	s.mu.Unlock()

	s.sched.RunLater(func() { s.expire(subject, gen) }, ticks)
}

func (s *Set[T]) expire(subject T, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries[subject] == gen {
		delete(s.entries, subject)
	}
}

// IsOnCooldown reports whether subject is on cooldown.
func (s *Set[T]) IsOnCooldown(subject T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[subject]
	return ok
}

// Remove ends subject's cooldown immediately.
func (s *Set[T]) Remove(subject T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, subject)
}

// Clear ends every cooldown. Pending removals become no-ops.
func (s *Set[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
}

// Len returns the number of subjects on cooldown.
func (s *Set[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
