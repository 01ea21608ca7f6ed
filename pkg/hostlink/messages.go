// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hostlink

import "github.com/Thermoquad/kspio/pkg/sim"

// AutopilotState is the decoded AUTOPILOT_STATE payload
type AutopilotState struct {
	Present bool
	Mode    sim.AutopilotMode
	Modes   uint64 // bit n set = mode n can be selected
	Buttons []sim.ButtonState
}

// ControlState is the decoded CONTROL_STATE payload
type ControlState struct {
	Throttle  float32
	TimeWarp  int
	UIMode    sim.UIMode
	HasCamera bool
}

// Command payload builders

// NewSetActionGroup builds SET_ACTION_GROUP
func NewSetActionGroup(group sim.ActionGroup, active bool) map[int]interface{} {
	return map[int]interface{}{
		KeyGroup:  uint64(group),
		KeyActive: active,
	}
}

// NewSetUIMode builds SET_UI_MODE
func NewSetUIMode(mode sim.UIMode) map[int]interface{} {
	return map[int]interface{}{KeyMode: uint64(mode)}
}

// NewSetTimeWarp builds SET_TIME_WARP
func NewSetTimeWarp(index int) map[int]interface{} {
	return map[int]interface{}{KeyIndex: uint64(index)}
}

// NewSetAutopilotMode builds SET_AUTOPILOT_MODE
func NewSetAutopilotMode(mode sim.AutopilotMode) map[int]interface{} {
	return map[int]interface{}{KeyMode: uint64(mode)}
}

// NewSetModeButton builds SET_MODE_BUTTON
func NewSetModeButton(button int, state sim.ButtonState) map[int]interface{} {
	return map[int]interface{}{
		KeyButton: uint64(button),
		KeyState:  uint64(state),
	}
}

// NewFlightCtrl builds FLIGHT_CTRL. Only the written axis channels are
// included; the plugin leaves absent channels to other input sources.
func NewFlightCtrl(s sim.FlightCtrlState) map[int]interface{} {
	m := map[int]interface{}{KeyCtrlThrottle: s.MainThrottle}

	channels := []struct {
		ch    sim.FlightCtrlChannel
		key   int
		value float32
	}{
		{sim.ChannelX, KeyCtrlX, s.X},
		{sim.ChannelY, KeyCtrlY, s.Y},
		{sim.ChannelZ, KeyCtrlZ, s.Z},
		{sim.ChannelPitch, KeyCtrlPitch, s.Pitch},
		{sim.ChannelYaw, KeyCtrlYaw, s.Yaw},
		{sim.ChannelRoll, KeyCtrlRoll, s.Roll},
	}
	for _, c := range channels {
		if s.Written.Has(c.ch) {
			m[c.key] = c.value
		}
	}
	return m
}

// State payload builders, used by the plugin side and tests

// NewVesselState builds VESSEL_STATE
func NewVesselState(v sim.VesselState, active bool) map[int]interface{} {
	return map[int]interface{}{
		KeyVesselActive:  active,
		KeyApA:           v.ApA,
		KeyPeA:           v.PeA,
		KeySemiMajorAxis: v.SemiMajorAxis,
		KeySemiMinorAxis: v.SemiMinorAxis,
		KeyVerticalSpeed: v.VerticalSpeed,
		KeyEccentricity:  v.Eccentricity,
		KeyInclination:   v.Inclination,
		KeyGeeForce:      v.GeeForce,
		KeyTimeToAp:      v.TimeToAp,
		KeyTimeToPe:      v.TimeToPe,
		KeyTrueAnomaly:   v.TrueAnomaly,
		KeyAtmDensity:    v.AtmDensity,
		KeyPeriod:        v.Period,
	}
}

// NewAutopilotState builds AUTOPILOT_STATE
func NewAutopilotState(s AutopilotState) map[int]interface{} {
	buttons := make([]byte, len(s.Buttons))
	for i, b := range s.Buttons {
		buttons[i] = byte(b)
	}
	return map[int]interface{}{
		KeyAutopilotPresent: s.Present,
		KeyAutopilotMode:    uint64(s.Mode),
		KeyAutopilotModes:   s.Modes,
		KeyModeButtons:      buttons,
	}
}

// NewControlState builds CONTROL_STATE
func NewControlState(s ControlState) map[int]interface{} {
	return map[int]interface{}{
		KeyThrottle:  s.Throttle,
		KeyTimeWarp:  uint64(s.TimeWarp),
		KeyUIMode:    uint64(s.UIMode),
		KeyHasCamera: s.HasCamera,
	}
}

// State payload parsers. Missing keys leave the zero value.

// ParseVesselState decodes VESSEL_STATE
func ParseVesselState(m map[int]interface{}) (sim.VesselState, bool) {
	var v sim.VesselState
	active, _ := GetMapBool(m, KeyVesselActive)

	fields := []struct {
		key int
		dst *float64
	}{
		{KeyApA, &v.ApA},
		{KeyPeA, &v.PeA},
		{KeySemiMajorAxis, &v.SemiMajorAxis},
		{KeySemiMinorAxis, &v.SemiMinorAxis},
		{KeyVerticalSpeed, &v.VerticalSpeed},
		{KeyEccentricity, &v.Eccentricity},
		{KeyInclination, &v.Inclination},
		{KeyGeeForce, &v.GeeForce},
		{KeyTimeToAp, &v.TimeToAp},
		{KeyTimeToPe, &v.TimeToPe},
		{KeyTrueAnomaly, &v.TrueAnomaly},
		{KeyAtmDensity, &v.AtmDensity},
		{KeyPeriod, &v.Period},
	}
	for _, f := range fields {
		if val, ok := GetMapFloat(m, f.key); ok {
			*f.dst = val
		}
	}

	return v, active
}

// ParseAutopilotState decodes AUTOPILOT_STATE
func ParseAutopilotState(m map[int]interface{}) AutopilotState {
	var s AutopilotState
	s.Present, _ = GetMapBool(m, KeyAutopilotPresent)
	if mode, ok := GetMapUint(m, KeyAutopilotMode); ok {
		s.Mode = sim.AutopilotMode(mode)
	}
	s.Modes, _ = GetMapUint(m, KeyAutopilotModes)
	if buttons, ok := GetMapBytes(m, KeyModeButtons); ok {
		s.Buttons = make([]sim.ButtonState, len(buttons))
		for i, b := range buttons {
			s.Buttons[i] = sim.ButtonState(b)
		}
	}
	return s
}

// ParseControlState decodes CONTROL_STATE
func ParseControlState(m map[int]interface{}) ControlState {
	var s ControlState
	if v, ok := GetMapFloat(m, KeyThrottle); ok {
		s.Throttle = float32(v)
	}
	if v, ok := GetMapUint(m, KeyTimeWarp); ok {
		s.TimeWarp = int(v)
	}
	if v, ok := GetMapUint(m, KeyUIMode); ok {
		s.UIMode = sim.UIMode(v)
	}
	s.HasCamera, _ = GetMapBool(m, KeyHasCamera)
	return s
}
