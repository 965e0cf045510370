// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package metrics - Prometheus counters for engine outcomes
//
// all methods are safe on a nil *Metrics, which records nothing
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bitmark-inc/provenanced/fault"
)

const namespace = "provenanced"

// Metrics - the engine's collectors held in a private registry
type Metrics struct {
	registry *prometheus.Registry

	// records accepted by Create
	Created prometheus.Counter

	// final verification decisions by status
	Outcome *prometheus.CounterVec

	// completed ownership transfers
	Transfers prometheus.Counter

	// refused requests by operation and fault text
	Refused *prometheus.CounterVec

	// duration of each engine operation
	Latency *prometheus.HistogramVec
}

// New - create and register all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_created_total",
			Help:      "Total records created",
		}),

		Outcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_outcomes_total",
			Help:      "Total verification decisions by resulting status",
		}, []string{"status"}),

		Transfers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ownership_transfers_total",
			Help:      "Total ownership transfers",
		}),

		Refused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refused_requests_total",
			Help:      "Total refused requests by operation and reason",
		}, []string{"operation", "reason"}),

		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of engine operations including ledger access",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"operation"}),
	}

	m.registry.MustRegister(m.Created, m.Outcome, m.Transfers, m.Refused, m.Latency)
	return m
}

// IncrementCreated - count a created record
func (m *Metrics) IncrementCreated() {
	if nil != m {
		m.Created.Inc()
	}
}

// IncrementOutcome - count a verification decision
func (m *Metrics) IncrementOutcome(status string) {
	if nil != m {
		m.Outcome.WithLabelValues(status).Inc()
	}
}

// IncrementTransfers - count an ownership transfer
func (m *Metrics) IncrementTransfers() {
	if nil != m {
		m.Transfers.Inc()
	}
}

// label for errors from outside the fault taxonomy
const otherReason = "ledger"

// IncrementRefused - count a refused request
//
// only fault errors are labelled with their text, anything else
// (e.g. a database I/O error) is counted as otherReason
func (m *Metrics) IncrementRefused(operation string, err error) {
	if nil != m && nil != err {
		m.Refused.WithLabelValues(operation, reason(err)).Inc()
	}
}

func reason(err error) string {
	switch err.(type) {
	case fault.ExistsError, fault.InvalidError, fault.LengthError,
		fault.NotFoundError, fault.ProcessError, fault.RecordError:
		return err.Error()
	default:
		return otherReason
	}
}

// ObserveLatency - record the time since start for an operation
func (m *Metrics) ObserveLatency(operation string, start time.Time) {
	if nil != m {
		m.Latency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// RegisterGauge - expose a value sampled at scrape time
func (m *Metrics) RegisterGauge(name string, help string, f func() float64) error {
	if nil == m {
		return nil
	}
	return m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, f))
}

// Handler - HTTP handler serving the registry
func (m *Metrics) Handler() http.Handler {
	if nil == m {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
