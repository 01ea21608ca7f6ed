// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package bridge connects a simulator host to the panel and its display:
// display discovery, telemetry sampling, the panel receive loop and the
// per-tick control update.
package bridge

import (
	"time"

	"github.com/Thermoquad/kspio/pkg/controls"
	"github.com/Thermoquad/kspio/pkg/serialio"
)

// Config holds the bridge timings and link settings.
type Config struct {
	DisplayBaud int
	PanelBaud   int

	// Discovery: wait SettleDelay after opening a port (the board resets on
	// open), send the handshake, then check ReplyPolls times, PollInterval
	// apart, for a status line.
	SettleDelay  time.Duration
	ReplyPolls   int
	PollInterval time.Duration

	// ReadTimeout bounds a single serial read so receive loops notice Close.
	ReadTimeout time.Duration

	RefreshInterval time.Duration // telemetry send period
	TickInterval    time.Duration // control update period when self-driven

	QueueSize     int // buffered panel snapshots
	MaxReadErrors int // consecutive read failures before the panel link is dropped

	Controls controls.Config
}

// DefaultConfig returns timings matching the reference hardware.
func DefaultConfig() Config {
	return Config{
		DisplayBaud:     serialio.DisplayBaudRate,
		PanelBaud:       serialio.PanelBaudRate,
		SettleDelay:     2500 * time.Millisecond,
		ReplyPolls:      5,
		PollInterval:    200 * time.Millisecond,
		ReadTimeout:     100 * time.Millisecond,
		RefreshInterval: 80 * time.Millisecond,
		TickInterval:    20 * time.Millisecond,
		QueueSize:       8,
		MaxReadErrors:   10,
		Controls:        controls.DefaultConfig(),
	}
}
