/*
 * metrics.go, part of gopbsa.
 *
 * Copyright 2024 Raul Mera  <rmeraa{at}academicos(dot)uta(dot)cl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package metrics keeps counters and timings of a run and writes them in the
// Prometheus text format, so a node exporter (or a person) can pick them up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gopbsa"

// Recorder is what the pipeline reports to. Both *Metrics and Nop implement it.
type Recorder interface {
	FrameDone()
	FrameFailed(stage string)
	Observe(stage string, d time.Duration)
	SetPending(n int)
}

// Metrics holds the collectors of one run in their own registry.
type Metrics struct {
	registry *prometheus.Registry
	done     prometheus.Counter
	failed   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	pending  prometheus.Gauge
}

// New returns the collectors for the run with the given id.
func New(run string) *Metrics {
	labels := prometheus.Labels{"run": run}
	M := &Metrics{registry: prometheus.NewRegistry()}
	M.done = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "frames_processed_total",
		Help: "Frames whose energies were computed.", ConstLabels: labels,
	})
	M.failed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "frames_failed_total",
		Help: "Frames that failed, by stage.", ConstLabels: labels,
	}, []string{"stage"})
	M.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "stage_duration_seconds",
		Help:        "Time spent per frame in each stage (mm, mesh, solver).",
		ConstLabels: labels,
		Buckets:     prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"stage"})
	M.pending = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "frames_pending",
		Help: "Selected frames not yet processed.", ConstLabels: labels,
	})
	M.registry.MustRegister(M.done, M.failed, M.duration, M.pending)
	return M
}

// FrameDone counts a finished frame.
func (M *Metrics) FrameDone() {
	M.done.Inc()
	M.pending.Dec()
}

func (M *Metrics) FrameFailed(stage string) { M.failed.WithLabelValues(stage).Inc() }
func (M *Metrics) SetPending(n int)         { M.pending.Set(float64(n)) }

// Observe records that stage took d on some frame.
func (M *Metrics) Observe(stage string, d time.Duration) {
	M.duration.WithLabelValues(stage).Observe(d.Seconds())
}

// Registry returns the registry holding the collectors.
func (M *Metrics) Registry() *prometheus.Registry { return M.registry }

// WriteFile writes the current values to fname in the Prometheus text format.
// The file is written to a temporary name and then renamed.
func (M *Metrics) WriteFile(fname string) error {
	return prometheus.WriteToTextfile(fname, M.registry)
}

type nop struct{}

func (nop) FrameDone()                    {}
func (nop) FrameFailed(string)            {}
func (nop) Observe(string, time.Duration) {}
func (nop) SetPending(int)                {}

// Nop returns a Recorder that does nothing.
func Nop() Recorder { return nop{} }
