// Copyright 2026 The RequestKit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics exposes Prometheus instrumentation for RequestKit
// clients.
//
// A Collector's methods match the client's hook signatures, so it can
// be wired by hand through requestkit.Client.BeforeRequest and
// friends, or installed wholesale with Bind:
//
//	reg := prometheus.NewRegistry()
//	col := metrics.NewCollector(reg)
//	col.Bind(client)
//	http.Handle("/metrics", col.Handler())
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ersinkoc/RequestKit"
	"github.com/ersinkoc/RequestKit/httperr"
	"github.com/ersinkoc/RequestKit/request"
)

// Collector holds the client-side request metrics: attempt and
// response counters, terminal failure and retry counters, and a
// response duration histogram. A nil *Collector is valid and records
// nothing, so instrumentation can be compiled in unconditionally.
type Collector struct {
	gatherer  prometheus.Gatherer
	requests  *prometheus.CounterVec
	responses *prometheus.CounterVec
	failures  *prometheus.CounterVec
	retries   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewCollector creates the metric vectors and registers them with reg.
// A nil reg registers with a fresh private registry, which Handler
// serves. NewCollector panics if reg already holds metrics under the
// same names.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "requestkit_requests_total",
		Help: "Total request attempts sent, including retries",
	}, []string{"method"})

	responses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "requestkit_responses_total",
		Help: "Total responses received",
	}, []string{"method", "status_class"})

	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "requestkit_failures_total",
		Help: "Total calls that ended in a terminal failure",
	}, []string{"kind"})

	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "requestkit_retries_total",
		Help: "Total retries granted by the retry policy",
	}, []string{"method"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "requestkit_request_duration_seconds",
		Help:    "Response duration per attempt",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status_class"})

	reg.MustRegister(requests, responses, failures, retries, duration)

	gatherer, _ := reg.(prometheus.Gatherer)
	return &Collector{
		gatherer:  gatherer,
		requests:  requests,
		responses: responses,
		failures:  failures,
		retries:   retries,
		duration:  duration,
	}
}

// Handler serves the collector's registry in the Prometheus exposition
// format. When the collector was registered somewhere it cannot gather
// from, the handler answers 503.
func (m *Collector) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// BeforeRequest counts one attempt. It matches the signature of
// requestkit.Client.BeforeRequest.
func (m *Collector) BeforeRequest(d *request.Descriptor) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method(d)).Inc()
}

// AfterResponse counts one received response and observes its
// duration. It matches the signature of
// requestkit.Client.AfterResponse.
func (m *Collector) AfterResponse(env *request.Envelope) {
	if m == nil {
		return
	}
	class := statusClass(env.Status)
	m.responses.WithLabelValues(method(env.Descriptor), class).Inc()
	m.duration.WithLabelValues(method(env.Descriptor), class).Observe(env.Duration.Seconds())
}

// OnError counts one terminal failure by kind. It matches the
// signature of requestkit.Client.OnError.
func (m *Collector) OnError(err *httperr.Error) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(string(err.Kind)).Inc()
}

// OnRetry counts one granted retry. It matches the signature of
// retry.Policy.OnRetry.
func (m *Collector) OnRetry(attempt int, err *httperr.Error, d *request.Descriptor) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(method(d)).Inc()
}

// Bind installs the collector on c by rewriting its hooks in place.
// Hooks already set on the client keep firing after the collector has
// counted. When the client carries a retry policy, its OnRetry is
// chained the same way; a client without one counts no retries.
func (m *Collector) Bind(c *requestkit.Client) {
	before := c.BeforeRequest
	c.BeforeRequest = func(d *request.Descriptor) {
		m.BeforeRequest(d)
		if before != nil {
			before(d)
		}
	}

	after := c.AfterResponse
	c.AfterResponse = func(env *request.Envelope) {
		m.AfterResponse(env)
		if after != nil {
			after(env)
		}
	}

	onError := c.OnError
	c.OnError = func(err *httperr.Error) {
		m.OnError(err)
		if onError != nil {
			onError(err)
		}
	}

	if c.Retry != nil {
		onRetry := c.Retry.OnRetry
		c.Retry.OnRetry = func(attempt int, err *httperr.Error, d *request.Descriptor) {
			m.OnRetry(attempt, err, d)
			if onRetry != nil {
				onRetry(attempt, err, d)
			}
		}
	}
}

func method(d *request.Descriptor) string {
	if d == nil || d.Method == "" {
		return "GET"
	}
	return d.Method
}

func statusClass(status int) string {
	if status <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dxx", status/100)
}
