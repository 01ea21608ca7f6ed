// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package serialio implements the wire formats spoken between the flight
// simulator bridge and the cockpit panel hardware.
//
// Two links exist. The display link carries binary frames
// (0xBE 0xEF, length, payload, XOR checksum) from the bridge to the panel's
// status display. The panel link carries newline-terminated text reports of
// held buttons and joystick axes from the panel to the bridge.
package serialio

// Frame header bytes
const (
	Header1 = 0xBE
	Header2 = 0xEF
)

// Frame size limits
const (
	MaxPayloadSize = 255
	FrameOverhead  = 4 // two header bytes, length, checksum
)

// Record type identifiers (first payload byte)
const (
	RecordHandshake = 0x00
	RecordTelemetry = 0x01
)

// HandshakeMagic identifies the bridge to the panel firmware ("KSP").
var HandshakeMagic = [3]byte{0x4B, 0x53, 0x50}

// Link baud rates
const (
	DisplayBaudRate = 38400
	PanelBaudRate   = 115200
)

// Line decoding limits
const (
	MaxLineLength = 255
)

// Panel input limits
const (
	ButtonCount = 128
)

// InvertedButtons are wired active-low on the panel (rotary and toggle
// controls). ParseInputLine flips them after decoding.
var InvertedButtons = [...]int{35, 37, 39, 41, 43}

// Status line emitted by the display firmware
const (
	StatusPrefix       = "KSP"
	StatusSeparator    = ";"
	StatusDisplayFound = 0
)

// Decoder states (internal)
const (
	stateIdle = iota
	stateHeader2
	stateLength
	statePayload
	stateChecksum
)
