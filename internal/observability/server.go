// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package observability serves Prometheus metrics and health checks.
package observability

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
)

// ReadinessChecker returns whether the host is ready to accept commands.
type ReadinessChecker func() bool

// Registrar registers a component's collectors, e.g. command.RegisterMetrics.
type Registrar func(prometheus.Registerer)

// Metrics contains the demo host's own Prometheus metrics.
type Metrics struct {
	LinesTotal     *prometheus.CounterVec
	PluginsEnabled prometheus.Gauge
}

// Line results for LinesTotal.
const (
	LineDispatched = "dispatched"
	LineUnknown    = "unknown"
	LineBlank      = "blank"
)

// NewMetrics creates and registers the host metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LinesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pluginkit_console_lines_total",
				Help: "Total number of console lines read by routing result",
			},
			[]string{"result"},
		),
		PluginsEnabled: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pluginkit_plugins_enabled",
				Help: "Number of currently enabled plugins",
			},
		),
	}

	reg.MustRegister(m.LinesTotal)
	reg.MustRegister(m.PluginsEnabled)

	return m
}

// Server exposes the host metrics registry and the health checks over HTTP.
type Server struct {
	addr     string
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	ready    ReadinessChecker

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	done     chan struct{}
}

// NewServer builds a server for addr ("127.0.0.1:0" picks a free port).
// The registry is private to the server and already holds the Go and
// process collectors plus the host metrics; each registrar adds its own.
// A nil ready checker reports ready.
func NewServer(addr string, logger *slog.Logger, ready ReadinessChecker, registrars ...Registrar) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := NewMetrics(registry)
	for _, register := range registrars {
		register(registry)
	}

	return &Server{
		addr:     addr,
		logger:   logger.With("component", "observability"),
		registry: registry,
		metrics:  metrics,
		ready:    ready,
	}
}

// Metrics returns the host metrics.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler routes /metrics, /healthz/liveness and /healthz/readiness.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz/liveness", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, "alive")
	})
	mux.HandleFunc("/healthz/readiness", func(w http.ResponseWriter, _ *http.Request) {
		if s.ready != nil && !s.ready() {
			writeHealth(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		writeHealth(w, http.StatusOK, "ready")
	})
	return mux
}

func writeHealth(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body + "\n"))
}

// Start listens on the configured address and serves in the background.
// Serve failures after Start returns are logged.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return oops.In("observability").With("addr", s.addr).Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return oops.In("observability").With("addr", s.addr).Wrapf(err, "listen")
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	done := make(chan struct{})
	s.srv, s.listener, s.done = srv, listener, done

	go func() {
		defer close(done)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped unexpectedly", "error", err)
		}
	}()
	s.logger.Info("metrics server listening", "addr", listener.Addr().String())
	return nil
}

// Stop shuts the server down and waits for the serve loop to exit.
// Stopping a server that is not running is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.srv, s.done
	s.srv, s.listener, s.done = nil, nil, nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	if err := srv.Shutdown(ctx); err != nil {
		return oops.In("observability").Wrapf(err, "shutdown")
	}
	<-done
	return nil
}

// Addr returns the bound address, or "" when the server is not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
