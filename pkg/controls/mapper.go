// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package controls

import (
	"context"

	"github.com/Thermoquad/kspio/pkg/logging"
	"github.com/Thermoquad/kspio/pkg/serialio"
	"github.com/Thermoquad/kspio/pkg/sim"
)

// Config holds the mapper's fixed configuration.
type Config struct {
	Layout ButtonLayout
	Axes   AxisConfig
}

// DefaultConfig returns the reference panel configuration.
func DefaultConfig() Config {
	return Config{
		Layout: DefaultLayout(),
		Axes:   DefaultAxisConfig(),
	}
}

// Mapper applies panel reports to the simulator. It is driven from the
// simulation tick and is not safe for concurrent use.
type Mapper struct {
	host     sim.Host
	cfg      Config
	table    ActionTable
	detector Detector
	state    serialio.RawInputState
	log      logging.Logger
}

// NewMapper creates a mapper driving host. The initial joystick position is
// the dead zone floor so nothing moves before the first report.
func NewMapper(host sim.Host, cfg Config, log logging.Logger) *Mapper {
	if log == nil {
		log = logging.Noop()
	}
	m := &Mapper{
		host:  host,
		cfg:   cfg,
		table: NewActionTable(cfg.Layout),
		log:   log.With(logging.String("component", "controls")),
	}
	m.state.X = cfg.Axes.X.Min
	m.state.Y = cfg.Axes.Y.Min
	return m
}

// State returns the report the mapper is currently acting on.
func (m *Mapper) State() serialio.RawInputState {
	return m.state
}

// Docking reports whether the mode button selects docking mode.
func (m *Mapper) Docking() bool {
	return m.state.Held(m.cfg.Layout.Mode)
}

// Update takes a new report, dispatches one action per button edge and
// returns the edges.
func (m *Mapper) Update(state serialio.RawInputState) []Edge {
	m.state = state
	edges := m.detector.Update(state.Buttons)
	for _, e := range edges {
		m.Dispatch(e)
	}
	return edges
}

// Dispatch performs the table action for a single edge.
func (m *Mapper) Dispatch(e Edge) {
	if e.Index < 0 || e.Index >= len(m.table) {
		return
	}
	action := m.table[e.Index]
	if action.Kind != ActionNoOp {
		m.log.Debug(context.Background(), "button edge",
			logging.Int("button", e.Index),
			logging.Any("down", e.Down),
			logging.String("action", action.String()))
	}

	switch action.Kind {
	case ActionToggleGroup:
		m.host.SetActionGroup(action.Group, e.Down)
		if action.Recompute {
			m.RecomputeAutopilot()
		}

	case ActionSetUIMode:
		if e.Down {
			m.host.SetUIMode(sim.UIDocking)
		} else {
			m.host.SetUIMode(sim.UIStaging)
		}

	case ActionTriggerStage:
		if e.Down {
			m.host.ActivateNextStage()
		}
		m.host.SetActionGroup(action.Group, e.Down)

	case ActionAdjustTimeWarp:
		if e.Down {
			m.host.SetTimeWarpIndex(m.host.TimeWarpIndex() + action.Step)
		}

	case ActionRecomputeAutopilot:
		m.RecomputeAutopilot()

	case ActionNextCamera:
		if e.Down {
			if cams, ok := m.host.(sim.CameraSwitcher); ok {
				cams.NextCamera()
			}
		}
	}
}

// RecomputeAutopilot selects the autopilot mode from the held axis buttons
// and reconciles the autopilot UI. It does nothing unless SAS is held and
// the vessel has an autopilot.
func (m *Mapper) RecomputeAutopilot() (sim.AutopilotMode, bool) {
	ap := m.host.Autopilot()
	if ap == nil {
		return 0, false
	}

	l := m.cfg.Layout
	if !m.state.Held(l.SAS) {
		return 0, false
	}

	mode := SelectAutopilotMode(
		m.state.Held(l.APApPe),
		m.state.Held(l.APRadial),
		m.state.Held(l.APNormal),
		m.state.Held(l.APTarget),
		m.state.Held(l.APModifier),
	)
	if !ap.SetMode(mode) {
		m.log.Debug(context.Background(), "autopilot refused mode", logging.String("mode", mode.String()))
	}

	if ui := m.host.AutopilotUI(); ui != nil {
		ReconcileAutopilotUI(ap, ui)
	}

	return mode, true
}

// Axes returns the normalised joystick deflection.
func (m *Mapper) Axes() (x, y float32) {
	a := m.cfg.Axes
	x = NormalizeAxis(m.state.X, a.X.Min, a.X.Max, a.Scale)
	y = NormalizeAxis(m.state.Y, a.Y.Min, a.Y.Max, a.Scale)
	return x, y
}

// ApplyAxes writes the joystick into a fly-by-wire control frame.
//
// Docking mode drives translation: X (modifier held) or Z from the x axis,
// Y from the y axis. Staging mode drives roll (modifier held) or yaw from the
// x axis and pitch from the y axis, and only writes non-zero values so other
// input sources keep control of a centred stick.
func (m *Mapper) ApplyAxes(s *sim.FlightCtrlState) {
	x, y := m.Axes()
	modifier := m.state.Held(m.cfg.Layout.Modifier)

	if m.Docking() {
		if modifier {
			s.X = -x
			s.Written |= sim.ChannelX
		} else {
			s.Z = -x
			s.Written |= sim.ChannelZ
		}
		s.Y = y
		s.Written |= sim.ChannelY
		return
	}

	if x != 0 {
		if modifier {
			s.Roll = -x
			s.Written |= sim.ChannelRoll
		} else {
			s.Yaw = -x
			s.Written |= sim.ChannelYaw
		}
	}
	if y != 0 {
		s.Pitch = y
		s.Written |= sim.ChannelPitch
	}
}

// AdjustThrottle ramps the main throttle by ThrottleRate per second while a
// throttle button is held, and zeroes it in docking mode. The result is
// clamped to [-1, 1]; negative throttle is passed through to the simulator.
func (m *Mapper) AdjustThrottle(dt float32) float32 {
	throttle := m.host.MainThrottle()

	if m.Docking() {
		throttle = 0
	} else {
		if m.state.Held(m.cfg.Layout.ThrottleDown) {
			throttle -= ThrottleRate * dt
		}
		if m.state.Held(m.cfg.Layout.ThrottleUp) {
			throttle += ThrottleRate * dt
		}
	}

	throttle = clamp(throttle)
	m.host.SetMainThrottle(throttle)
	return throttle
}
