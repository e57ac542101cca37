// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for command execution metrics.
const (
	StatusSuccess          = "success"
	StatusRejected         = "rejected"
	StatusError            = "error"
	StatusInvalidArgs      = "invalid_args"
	StatusNotFound         = "not_found"
	StatusPermissionDenied = "permission_denied"
	StatusRateLimited      = "rate_limited"
	StatusNoConstraint     = "no_constraint"
)

// unknownCommandLabel replaces unregistered tokens in metric labels so
// arbitrary user input cannot inflate label cardinality.
const unknownCommandLabel = "unknown"

// CommandExecutions is the counter for command executions.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandExecutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pluginkit_command_executions_total",
		Help: "Total number of command executions",
	},
	[]string{"command", "source", "status"},
)

// CommandDuration is the histogram for command execution duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "pluginkit_command_duration_seconds",
		Help:    "Command execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"command", "source"},
)

// CommandCompletions is the counter for completion handler invocations.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandCompletions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pluginkit_command_completions_total",
		Help: "Total number of completion handler invocations",
	},
	[]string{"command", "status"},
)

// RegisterMetrics registers command package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CommandExecutions)
	reg.MustRegister(CommandDuration)
	reg.MustRegister(CommandCompletions)
}

// RecordCommandExecution increments the command execution counter.
func RecordCommandExecution(command, source, status string) {
	CommandExecutions.WithLabelValues(command, source, status).Inc()
}

// RecordCommandDuration records the duration of a command execution.
func RecordCommandDuration(command, source string, duration time.Duration) {
	CommandDuration.WithLabelValues(command, source).Observe(duration.Seconds())
}

// RecordCompletion increments the completion counter.
func RecordCompletion(command, status string) {
	CommandCompletions.WithLabelValues(command, status).Inc()
}
