package serve

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"cpuleaf/internal/cpus"
	"cpuleaf/internal/leaf1"
	"cpuleaf/internal/source"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promMetricPrefix = "cpuleaf_"

// exporter keeps the gauges in step with the registers read from src.
type exporter struct {
	src leaf1.Source

	mu   sync.Mutex
	last leaf1.Snapshot
	read bool

	feature   *prometheus.GaugeVec
	register  *prometheus.GaugeVec
	version   *prometheus.GaugeVec
	apicID    prometheus.Gauge
	refreshed prometheus.Gauge
	failures  prometheus.Counter
}

func newExporter(src leaf1.Source, reg prometheus.Registerer) (*exporter, error) {
	e := &exporter{
		src: src,
		feature: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: promMetricPrefix + "feature",
				Help: "1 when the leaf 1 feature flag is set, 0 otherwise",
			},
			[]string{"feature", "register", "bit"},
		),
		register: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: promMetricPrefix + "register",
				Help: "Raw leaf 1 register value",
			},
			[]string{"register"},
		),
		version: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: promMetricPrefix + "version_info",
				Help: "Processor version decoded from EAX, always 1",
			},
			[]string{"family", "model", "stepping", "signature", "microarchitecture"},
		),
		apicID: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: promMetricPrefix + "local_apic_id",
			Help: "Local APIC ID of the processor that answered the query",
		}),
		refreshed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: promMetricPrefix + "last_refresh_timestamp_seconds",
			Help: "Time the registers were last read",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: promMetricPrefix + "refresh_errors_total",
			Help: "Number of failed register reads",
		}),
	}
	for _, c := range []prometheus.Collector{e.feature, e.register, e.version, e.apicID, e.refreshed, e.failures} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register Prometheus metric: %w", err)
		}
	}
	return e, nil
}

// refresh reads the registers and updates the gauges. On failure the gauges
// keep their previous values.
func (e *exporter) refresh() error {
	s, err := e.src.Snapshot()
	if err != nil {
		e.failures.Inc()
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshed.SetToCurrentTime()
	if e.read && s == e.last {
		return nil
	}
	if e.read {
		slog.Info("registers changed", slog.String("source", source.Describe(e.src)), slog.String("registers", source.Static(s).String()))
	}
	e.last, e.read = s, true
	e.update(leaf1.Identify(s))
	return nil
}

func (e *exporter) update(result leaf1.Result) {
	flags := result.Features.Map()
	for _, f := range leaf1.Features() {
		if f.Name == leaf1.Reserved {
			continue
		}
		value := 0.0
		if flags[f.Name] {
			value = 1
		}
		e.feature.WithLabelValues(f.Name, f.Register.String(), strconv.Itoa(int(f.Bit))).Set(value)
	}
	e.register.WithLabelValues("eax").Set(float64(result.Registers.A))
	e.register.WithLabelValues("ebx").Set(float64(result.Registers.B))
	e.register.WithLabelValues("ecx").Set(float64(result.Registers.C))
	e.register.WithLabelValues("edx").Set(float64(result.Registers.D))

	v := result.Version
	uarch := ""
	if cpu, err := cpus.LookupVersion(v); err == nil {
		uarch = cpu.MicroArchitecture
	}
	e.version.Reset()
	e.version.WithLabelValues(
		strconv.Itoa(int(v.DisplayFamily)),
		strconv.Itoa(int(v.EffectiveModel)),
		strconv.Itoa(int(v.SteppingID)),
		fmt.Sprintf("0x%04x", v.Signature),
		uarch,
	).Set(1)
	e.apicID.Set(float64(result.Additional.LocalAPICID))
}

func newHandler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}
