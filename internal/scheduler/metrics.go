// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package scheduler

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels for submission metrics.
const (
	OpRunNow        = "run_now"
	OpRunNowAsync   = "run_now_async"
	OpRunLater      = "run_later"
	OpRunLaterAsync = "run_later_async"
	OpRunTimer      = "run_timer"
	OpRunTimerAsync = "run_timer_async"
)

// TasksSubmitted counts Scheduler submissions by backend and operation.
// Use RegisterMetrics to register this with a Prometheus registry.
var TasksSubmitted = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pluginkit_scheduler_tasks_submitted_total",
		Help: "Total number of tasks submitted to the scheduler",
	},
	[]string{"backend", "operation"},
)

// TaskPanics counts scheduled tasks that panicked.
// Use RegisterMetrics to register this with a Prometheus registry.
var TaskPanics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pluginkit_scheduler_task_panics_total",
		Help: "Total number of scheduled tasks that panicked",
	},
	[]string{"executor"},
)

// RegisterMetrics registers scheduler metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(TasksSubmitted)
	reg.MustRegister(TaskPanics)
}

func recordSubmission(kind Kind, op string) {
	TasksSubmitted.WithLabelValues(kind.String(), op).Inc()
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
