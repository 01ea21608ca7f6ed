// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Thermoquad/kspio/pkg/controls"
	"github.com/Thermoquad/kspio/pkg/logging"
	"github.com/Thermoquad/kspio/pkg/metrics"
	"github.com/Thermoquad/kspio/pkg/serialio"
	"github.com/Thermoquad/kspio/pkg/sim"
)

// Option configures a Session
type Option func(*Session)

// WithOpener replaces the serial port opener
func WithOpener(open Opener) Option {
	return func(s *Session) { s.open = open }
}

// WithLogger sets the session logger
func WithLogger(log logging.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithMetrics sets the metrics collector
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Session) { s.metrics = m }
}

// Session owns both hardware links for one host connection.
//
// The display link carries telemetry frames out. The panel link carries
// input reports in: a receive goroutine parses them and queues whole
// snapshots, which Update applies on the tick goroutine. Update,
// FixedUpdate and FlyByWire must be called from a single goroutine.
type Session struct {
	cfg     Config
	host    sim.Host
	open    Opener
	log     logging.Logger
	metrics *metrics.Collector

	mu          sync.Mutex
	display     Port
	displayName string
	encoder     *serialio.Encoder
	panel       Port
	closed      bool

	statsMu sync.Mutex
	stats   *serialio.Statistics

	queue  *InputQueue
	mapper *controls.Mapper
	wg     sync.WaitGroup
}

// NewSession creates a session driving host. No links are open yet.
func NewSession(host sim.Host, cfg Config, opts ...Option) *Session {
	s := &Session{
		cfg:   cfg,
		host:  host,
		open:  SerialOpener(cfg.ReadTimeout),
		log:   logging.Noop(),
		stats: serialio.NewStatistics(),
		queue: NewInputQueue(cfg.QueueSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mapper = controls.NewMapper(host, cfg.Controls, s.log)
	s.log = s.log.With(logging.String("component", "session"))
	return s
}

// Mapper returns the control mapper
func (s *Session) Mapper() *controls.Mapper {
	return s.mapper
}

// Queue returns the panel snapshot queue
func (s *Session) Queue() *InputQueue {
	return s.queue
}

// Stats returns a copy of the link statistics
func (s *Session) Stats() serialio.Statistics {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.stats.CalculateRates()
	return *s.stats
}

// DisplayFound reports whether a display link is open. Without one the
// session runs panel-only and telemetry is skipped.
func (s *Session) DisplayFound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoder != nil
}

// DisplayPort returns the name of the display port, if any
func (s *Session) DisplayPort() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayName
}

// DiscoverDisplay probes candidates for the display and keeps the first one
// that answers open.
func (s *Session) DiscoverDisplay(ctx context.Context, candidates []string) bool {
	d := NewDiscoverer(s.cfg, s.open, s.log, s.metrics)
	name, ok := d.Discover(ctx, candidates)
	if !ok {
		s.log.Warn(ctx, "no display found", logging.Int("candidates", len(candidates)))
		s.metrics.SetDisplayFound(false)
		return false
	}

	if err := s.OpenDisplay(name); err != nil {
		s.log.Error(ctx, "failed to reopen display", logging.String("port", name), logging.Err(err))
		return false
	}
	return true
}

// OpenDisplay opens the named port as the display link
func (s *Session) OpenDisplay(name string) error {
	port, err := s.open(name, s.cfg.DisplayBaud)
	if err != nil {
		return err
	}
	return s.AttachDisplay(name, port)
}

// AttachDisplay uses an already open port as the display link
func (s *Session) AttachDisplay(name string, port Port) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		port.Close()
		return ErrNotConnected
	}
	if s.display != nil {
		s.display.Close()
	}
	s.display = port
	s.displayName = name
	s.encoder = serialio.NewEncoder(port)
	s.metrics.SetDisplayFound(true)
	return nil
}

// OpenPanel opens the named port as the panel link and starts receiving
func (s *Session) OpenPanel(name string) error {
	port, err := s.open(name, s.cfg.PanelBaud)
	if err != nil {
		return err
	}
	return s.AttachPanel(port)
}

// AttachPanel uses an already open port as the panel link and starts the
// receive goroutine.
func (s *Session) AttachPanel(port Port) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		port.Close()
		return ErrNotConnected
	}
	if s.panel != nil {
		return fmt.Errorf("panel link already attached")
	}
	s.panel = port

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.receive(port)
	}()
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) record(err error) {
	s.statsMu.Lock()
	s.stats.Update(err)
	s.statsMu.Unlock()
}

// receive reads panel lines until the link fails or the session closes.
// Malformed lines are dropped; the last good snapshot stays in effect.
func (s *Session) receive(port Port) {
	ctx := context.Background()
	lines := serialio.NewLineReader(port)
	failures := 0

	for {
		line, err := lines.ReadLine()
		if err != nil {
			s.record(err)
			s.metrics.LineError()

			var readErr *serialio.LineReadError
			if !errors.As(err, &readErr) {
				s.log.Warn(ctx, "panel line dropped", logging.Err(err))
				continue
			}
			if s.isClosed() {
				return
			}
			s.log.Warn(ctx, "panel read failed", logging.Err(err))
			failures++
			if errors.Is(err, io.EOF) || errors.Is(err, ErrConnectionClosed) || failures >= s.cfg.MaxReadErrors {
				s.log.Error(ctx, "panel link lost", logging.Int("failures", failures))
				return
			}
			continue
		}
		failures = 0

		state, err := serialio.ParseInputLine(line)
		s.record(err)
		if err != nil {
			s.metrics.ParseError()
			s.log.Debug(ctx, "malformed panel report", logging.Err(err))
			continue
		}

		s.metrics.InputReport()
		if s.queue.Push(state) {
			s.metrics.SnapshotDropped()
		}
	}
}

// Update applies the newest queued panel snapshot: one action per button
// edge. Nothing is consumed while the host has no active vessel.
func (s *Session) Update() []controls.Edge {
	if _, ok := s.host.ActiveVessel(); !ok {
		return nil
	}

	state, n := s.queue.Latest()
	if n == 0 {
		return nil
	}

	edges := s.mapper.Update(state)
	for _, e := range edges {
		s.metrics.Edge(e.Down)
	}
	return edges
}

// FixedUpdate ramps the throttle for a physics step of dt seconds.
func (s *Session) FixedUpdate(dt float32) {
	if _, ok := s.host.ActiveVessel(); !ok {
		return
	}
	s.metrics.SetThrottle(s.mapper.AdjustThrottle(dt))
}

// FlyByWire writes the joystick into the host's control frame.
func (s *Session) FlyByWire(state *sim.FlightCtrlState) {
	s.mapper.ApplyAxes(state)
}

// SendTelemetry samples the active vessel and writes one telemetry frame to
// the display. It returns false without error when there is no active
// vessel, and ErrNotConnected when there is no display.
func (s *Session) SendTelemetry() (bool, error) {
	v, ok := s.host.ActiveVessel()
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encoder == nil {
		return false, ErrNotConnected
	}

	record := Sample(v)
	if err := s.encoder.WriteTelemetry(&record); err != nil {
		return false, err
	}

	s.metrics.FrameSent()
	s.statsMu.Lock()
	s.stats.RecordSent()
	s.statsMu.Unlock()
	return true, nil
}

// Close closes both links and waits for the receive goroutine.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	var errs []error
	if s.display != nil {
		errs = append(errs, s.display.Close())
		s.display = nil
		s.encoder = nil
	}
	if s.panel != nil {
		errs = append(errs, s.panel.Close())
		s.panel = nil
	}
	s.mu.Unlock()

	s.metrics.SetDisplayFound(false)
	s.wg.Wait()
	return errors.Join(errs...)
}
