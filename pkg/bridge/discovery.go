// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/Thermoquad/kspio/pkg/logging"
	"github.com/Thermoquad/kspio/pkg/metrics"
	"github.com/Thermoquad/kspio/pkg/serialio"
)

// Discovery attempt results, as counted by metrics
const (
	ResultFound      = "found"
	ResultSilent     = "silent"
	ResultOpenFailed = "open_failed"
)

// Discoverer finds the display among candidate serial ports by handshake.
type Discoverer struct {
	cfg     Config
	open    Opener
	log     logging.Logger
	metrics *metrics.Collector
}

// NewDiscoverer creates a discoverer. A nil logger discards output and a nil
// collector records nothing.
func NewDiscoverer(cfg Config, open Opener, log logging.Logger, m *metrics.Collector) *Discoverer {
	if log == nil {
		log = logging.Noop()
	}
	return &Discoverer{
		cfg:     cfg,
		open:    open,
		log:     log.With(logging.String("component", "discovery")),
		metrics: m,
	}
}

// Discover tries each candidate in order and returns the first one whose
// device answers the handshake with a display-present status line. Every
// port it opens is closed before it returns.
func (d *Discoverer) Discover(ctx context.Context, candidates []string) (string, bool) {
	for _, name := range candidates {
		if ctx.Err() != nil {
			return "", false
		}

		found, err := d.Probe(ctx, name)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", false
			}
			d.log.Warn(ctx, "probe failed", logging.String("port", name), logging.Err(err))
			continue
		}
		if found {
			d.log.Info(ctx, "display found", logging.String("port", name))
			return name, true
		}
		d.log.Debug(ctx, "no display reply", logging.String("port", name))
	}
	return "", false
}

// Probe performs the handshake on a single port.
func (d *Discoverer) Probe(ctx context.Context, name string) (bool, error) {
	port, err := d.open(name, d.cfg.DisplayBaud)
	if err != nil {
		d.metrics.DiscoveryAttempt(ResultOpenFailed)
		return false, err
	}
	defer port.Close()

	if err := sleepContext(ctx, d.cfg.SettleDelay); err != nil {
		return false, err
	}

	replies := make(chan serialio.StatusLine, 1)
	go watchStatus(port, replies)

	if err := serialio.NewEncoder(port).WriteHandshake(); err != nil {
		d.metrics.DiscoveryAttempt(ResultSilent)
		return false, err
	}
	d.metrics.FrameSent()

	for i := 0; i < d.cfg.ReplyPolls; i++ {
		select {
		case status := <-replies:
			d.log.Debug(ctx, "status line",
				logging.String("port", name),
				logging.Int("message_id", status.MessageID))
			d.metrics.DiscoveryAttempt(ResultFound)
			return true, nil
		case <-time.After(d.cfg.PollInterval):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	d.metrics.DiscoveryAttempt(ResultSilent)
	return false, nil
}

// watchStatus reads lines until a display-present status line arrives or the
// port is closed.
func watchStatus(port Port, replies chan<- serialio.StatusLine) {
	lines := serialio.NewLineReader(port)
	for {
		line, err := lines.ReadLine()
		if err != nil {
			if errors.Is(err, serialio.ErrLineTooLong) {
				continue
			}
			return
		}

		status, err := serialio.ParseStatusLine(line)
		if err != nil || !status.DisplayFound() {
			continue
		}

		select {
		case replies <- status:
		default:
		}
		return
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
