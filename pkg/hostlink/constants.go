// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package hostlink talks to the in-game companion plugin. Each WebSocket
// binary message is a CBOR array [msg_type, payload_map] with integer map
// keys.
package hostlink

// Bridge -> host commands
const (
	MsgSetActionGroup   = 0x20
	MsgActivateStage    = 0x21
	MsgSetUIMode        = 0x22
	MsgSetTimeWarp      = 0x23
	MsgSetAutopilotMode = 0x24
	MsgSetModeButton    = 0x25
	MsgFlightCtrl       = 0x26
	MsgNextCamera       = 0x27
)

// Host -> bridge state
const (
	MsgVesselState    = 0x30
	MsgAutopilotState = 0x31
	MsgControlState   = 0x32
)

// VESSEL_STATE payload keys
const (
	KeyVesselActive = iota
	KeyApA
	KeyPeA
	KeySemiMajorAxis
	KeySemiMinorAxis
	KeyVerticalSpeed
	KeyEccentricity
	KeyInclination
	KeyGeeForce
	KeyTimeToAp
	KeyTimeToPe
	KeyTrueAnomaly
	KeyAtmDensity
	KeyPeriod
)

// AUTOPILOT_STATE payload keys
const (
	KeyAutopilotPresent = 0 // bool
	KeyAutopilotMode    = 1 // uint
	KeyAutopilotModes   = 2 // uint bitmask of settable modes
	KeyModeButtons      = 3 // bytes, one ButtonState per mode button
)

// CONTROL_STATE payload keys
const (
	KeyThrottle  = 0 // float
	KeyTimeWarp  = 1 // uint
	KeyUIMode    = 2 // uint
	KeyHasCamera = 3 // bool
)

// Command payload keys
const (
	KeyGroup  = 0
	KeyActive = 1

	KeyMode   = 0
	KeyIndex  = 0
	KeyButton = 0
	KeyState  = 1

	KeyCtrlX        = 0
	KeyCtrlY        = 1
	KeyCtrlZ        = 2
	KeyCtrlPitch    = 3
	KeyCtrlYaw      = 4
	KeyCtrlRoll     = 5
	KeyCtrlThrottle = 6
)

// MessageTypeName returns a display name for a message type
func MessageTypeName(msgType uint8) string {
	switch msgType {
	case MsgSetActionGroup:
		return "SET_ACTION_GROUP"
	case MsgActivateStage:
		return "ACTIVATE_STAGE"
	case MsgSetUIMode:
		return "SET_UI_MODE"
	case MsgSetTimeWarp:
		return "SET_TIME_WARP"
	case MsgSetAutopilotMode:
		return "SET_AUTOPILOT_MODE"
	case MsgSetModeButton:
		return "SET_MODE_BUTTON"
	case MsgFlightCtrl:
		return "FLIGHT_CTRL"
	case MsgNextCamera:
		return "NEXT_CAMERA"
	case MsgVesselState:
		return "VESSEL_STATE"
	case MsgAutopilotState:
		return "AUTOPILOT_STATE"
	case MsgControlState:
		return "CONTROL_STATE"
	default:
		return "UNKNOWN"
	}
}
