// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/Thermoquad/kspio/pkg/logging"
	"github.com/Thermoquad/kspio/pkg/sim"
)

// Runner drives a session from its own clock, for hosts that do not call
// Update, FixedUpdate and FlyByWire themselves.
type Runner struct {
	session *Session
	host    sim.Host
	cfg     Config
	log     logging.Logger

	// OnTick, if set, is called after every control update.
	OnTick func()
}

// NewRunner creates a runner for session
func NewRunner(session *Session, host sim.Host, cfg Config, log logging.Logger) *Runner {
	if log == nil {
		log = logging.Noop()
	}
	return &Runner{
		session: session,
		host:    host,
		cfg:     cfg,
		log:     log.With(logging.String("component", "runner")),
	}
}

// Run ticks until ctx is done. Control updates run every TickInterval and
// telemetry is sent every RefreshInterval.
func (r *Runner) Run(ctx context.Context) error {
	tick := time.NewTicker(r.cfg.TickInterval)
	defer tick.Stop()
	refresh := time.NewTicker(r.cfg.RefreshInterval)
	defer refresh.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil

		case now := <-tick.C:
			dt := float32(now.Sub(last).Seconds())
			last = now
			r.Step(dt)

		case <-refresh.C:
			if _, err := r.session.SendTelemetry(); err != nil && !errors.Is(err, ErrNotConnected) {
				r.log.Warn(ctx, "telemetry send failed", logging.Err(err))
			}
		}
	}
}

// Step performs one control update of dt seconds.
func (r *Runner) Step(dt float32) {
	r.session.Update()
	r.session.FixedUpdate(dt)

	if sink, ok := r.host.(sim.FlightCtrlSink); ok {
		if _, active := r.host.ActiveVessel(); active {
			state := sim.FlightCtrlState{MainThrottle: r.host.MainThrottle()}
			r.session.FlyByWire(&state)
			sink.SendFlightCtrl(state)
		}
	}

	if r.OnTick != nil {
		r.OnTick()
	}
}
