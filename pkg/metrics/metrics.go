// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package metrics exposes bridge counters to Prometheus.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the bridge metrics. A nil *Collector is valid and
// records nothing, so callers never need to check for one.
type Collector struct {
	gatherer prometheus.Gatherer

	FramesSent        prometheus.Counter
	LineErrors        prometheus.Counter
	ParseErrors       prometheus.Counter
	ChecksumErrors    prometheus.Counter
	InputReports      prometheus.Counter
	DroppedSnapshots  prometheus.Counter
	ButtonEdges       *prometheus.CounterVec
	DiscoveryAttempts *prometheus.CounterVec

	DisplayFound prometheus.Gauge
	Throttle     prometheus.Gauge
}

// NewCollector registers the bridge metrics against reg, defaulting to the
// global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	counters := []struct {
		dst  *prometheus.Counter
		name string
		help string
	}{
		{&c.FramesSent, "kspio_frames_sent_total", "Telemetry and handshake frames written to the display link."},
		{&c.LineErrors, "kspio_line_errors_total", "Panel lines abandoned because of a read error or overflow."},
		{&c.ParseErrors, "kspio_parse_errors_total", "Panel lines that failed to parse."},
		{&c.ChecksumErrors, "kspio_checksum_errors_total", "Received frames discarded for a checksum mismatch."},
		{&c.InputReports, "kspio_input_reports_total", "Panel reports parsed and queued."},
		{&c.DroppedSnapshots, "kspio_dropped_snapshots_total", "Input snapshots dropped because the queue was full."},
	}
	for _, ct := range counters {
		*ct.dst, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: ct.name,
			Help: ct.help,
		}), ct.name)
		if err != nil {
			return nil, err
		}
	}

	c.ButtonEdges, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kspio_button_edges_total",
		Help: "Button transitions dispatched, labeled by direction.",
	}, []string{"direction"}), "kspio_button_edges_total")
	if err != nil {
		return nil, err
	}

	c.DiscoveryAttempts, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kspio_discovery_attempts_total",
		Help: "Display handshakes attempted, labeled by result (found, silent, open_failed).",
	}, []string{"result"}), "kspio_discovery_attempts_total")
	if err != nil {
		return nil, err
	}

	c.DisplayFound, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kspio_display_found",
		Help: "1 when a display answered the handshake, else 0.",
	}), "kspio_display_found")
	if err != nil {
		return nil, err
	}

	c.Throttle, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kspio_main_throttle",
		Help: "Main throttle last written by the panel.",
	}), "kspio_main_throttle")
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// FrameSent counts one frame written to the display.
func (c *Collector) FrameSent() {
	if c == nil {
		return
	}
	c.FramesSent.Inc()
}

// LineError counts one abandoned panel line.
func (c *Collector) LineError() {
	if c == nil {
		return
	}
	c.LineErrors.Inc()
}

// ParseError counts one malformed panel line.
func (c *Collector) ParseError() {
	if c == nil {
		return
	}
	c.ParseErrors.Inc()
}

// ChecksumError counts one discarded frame.
func (c *Collector) ChecksumError() {
	if c == nil {
		return
	}
	c.ChecksumErrors.Inc()
}

// InputReport counts one queued panel report.
func (c *Collector) InputReport() {
	if c == nil {
		return
	}
	c.InputReports.Inc()
}

// SnapshotDropped counts one snapshot evicted from a full queue.
func (c *Collector) SnapshotDropped() {
	if c == nil {
		return
	}
	c.DroppedSnapshots.Inc()
}

// Edge counts one dispatched button transition.
func (c *Collector) Edge(down bool) {
	if c == nil {
		return
	}
	direction := "up"
	if down {
		direction = "down"
	}
	c.ButtonEdges.WithLabelValues(direction).Inc()
}

// DiscoveryAttempt counts one handshake attempt with its result.
func (c *Collector) DiscoveryAttempt(result string) {
	if c == nil {
		return
	}
	c.DiscoveryAttempts.WithLabelValues(result).Inc()
}

// SetDisplayFound records whether a display is attached.
func (c *Collector) SetDisplayFound(found bool) {
	if c == nil {
		return
	}
	v := 0.0
	if found {
		v = 1
	}
	c.DisplayFound.Set(v)
}

// SetThrottle records the main throttle value.
func (c *Collector) SetThrottle(v float32) {
	if c == nil {
		return
	}
	c.Throttle.Set(float64(v))
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
