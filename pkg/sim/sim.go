// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package sim describes the parts of the flight simulator the bridge reads
// and drives. Implementations live elsewhere: hostlink talks to the in-game
// companion plugin, Memory is an in-process stand-in.
package sim

// ActionGroup identifies a vessel action group
type ActionGroup int

// Action groups
const (
	GroupStage ActionGroup = iota
	GroupGear
	GroupLight
	GroupRCS
	GroupSAS
	GroupBrakes
	GroupAbort
	GroupCustom01
	GroupCustom02
	GroupCustom03
	GroupCustom04
	GroupCustom05
	GroupCustom06
	GroupCustom07
	GroupCustom08
	GroupCustom09
	GroupCustom10
)

var actionGroupNames = [...]string{
	"Stage", "Gear", "Light", "RCS", "SAS", "Brakes", "Abort",
	"Custom01", "Custom02", "Custom03", "Custom04", "Custom05",
	"Custom06", "Custom07", "Custom08", "Custom09", "Custom10",
}

func (g ActionGroup) String() string {
	if g >= 0 && int(g) < len(actionGroupNames) {
		return actionGroupNames[g]
	}
	return "Unknown"
}

// CustomGroup returns the n-th custom action group (1-10).
func CustomGroup(n int) ActionGroup {
	return GroupCustom01 + ActionGroup(n-1)
}

// AutopilotMode is an SAS hold mode, numbered as the simulator numbers them
type AutopilotMode int

// Autopilot modes
const (
	StabilityAssist AutopilotMode = iota
	Prograde
	Retrograde
	Normal
	Antinormal
	RadialIn
	RadialOut
	Target
	AntiTarget
	Maneuver
)

// AutopilotModeCount is the number of autopilot modes
const AutopilotModeCount = 10

var autopilotModeNames = [...]string{
	"StabilityAssist", "Prograde", "Retrograde", "Normal", "Antinormal",
	"RadialIn", "RadialOut", "Target", "AntiTarget", "Maneuver",
}

func (m AutopilotMode) String() string {
	if m >= 0 && int(m) < len(autopilotModeNames) {
		return autopilotModeNames[m]
	}
	return "Unknown"
}

// UIMode is the flight UI layout
type UIMode int

// UI modes
const (
	UIStaging UIMode = iota
	UIDocking
)

func (m UIMode) String() string {
	if m == UIDocking {
		return "Docking"
	}
	return "Staging"
}

// ButtonState is the displayed state of an autopilot UI mode button
type ButtonState int

// Button states
const (
	ButtonFalse ButtonState = iota
	ButtonTrue
	ButtonDisabled
)

func (s ButtonState) String() string {
	switch s {
	case ButtonTrue:
		return "True"
	case ButtonDisabled:
		return "Disabled"
	default:
		return "False"
	}
}

// VesselState is the read-only orbital and kinematic state of the active vessel
type VesselState struct {
	ApA           float64 // apoapsis altitude (m)
	PeA           float64 // periapsis altitude (m)
	SemiMajorAxis float64
	SemiMinorAxis float64
	VerticalSpeed float64
	Eccentricity  float64
	Inclination   float64
	GeeForce      float64
	TimeToAp      float64 // seconds
	TimeToPe      float64 // seconds
	TrueAnomaly   float64
	AtmDensity    float64
	Period        float64 // seconds
}

// FlightCtrlChannel is a set of FlightCtrlState axis channels
type FlightCtrlChannel uint8

// Flight control channels
const (
	ChannelX FlightCtrlChannel = 1 << iota
	ChannelY
	ChannelZ
	ChannelPitch
	ChannelYaw
	ChannelRoll
)

// Has reports whether every channel in ch is in c.
func (c FlightCtrlChannel) Has(ch FlightCtrlChannel) bool {
	return c&ch == ch
}

// FlightCtrlState is one frame of fly-by-wire control input. Fields the
// bridge leaves untouched keep the values other input sources wrote.
type FlightCtrlState struct {
	X, Y, Z          float32 // translation
	Pitch, Yaw, Roll float32
	MainThrottle     float32

	// Written marks the axis channels set during this frame. MainThrottle
	// is always set.
	Written FlightCtrlChannel
}

// Autopilot is the vessel's SAS autopilot
type Autopilot interface {
	Mode() AutopilotMode
	SetMode(mode AutopilotMode) bool
	CanSetMode(mode AutopilotMode) bool
}

// AutopilotUI is the on-screen group of autopilot mode buttons. Button n
// corresponds to AutopilotMode(n).
type AutopilotUI interface {
	ButtonCount() int
	ButtonState(n int) ButtonState
	SetButtonState(n int, state ButtonState)
}

// Host is the simulator surface used by the bridge.
type Host interface {
	// ActiveVessel returns the active vessel's state, or false when no
	// vessel is active.
	ActiveVessel() (VesselState, bool)

	SetActionGroup(group ActionGroup, active bool)
	ActivateNextStage()
	SetUIMode(mode UIMode)

	TimeWarpIndex() int
	SetTimeWarpIndex(index int)

	MainThrottle() float32
	SetMainThrottle(value float32)

	// Autopilot and AutopilotUI return nil when unavailable.
	Autopilot() Autopilot
	AutopilotUI() AutopilotUI
}

// CameraSwitcher is implemented by hosts with a hull camera mod installed.
type CameraSwitcher interface {
	NextCamera()
}

// FlightCtrlSink is implemented by hosts that take fly-by-wire frames pushed
// to them rather than calling back into the bridge each physics tick.
type FlightCtrlSink interface {
	SendFlightCtrl(state FlightCtrlState)
}
