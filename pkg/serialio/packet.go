// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package serialio

import "time"

// Frame represents a decoded display link frame
type Frame struct {
	length    uint8
	payload   []byte
	checksum  uint8
	timestamp time.Time
}

// Length returns the frame's payload length byte
func (f *Frame) Length() uint8 {
	return f.length
}

// Payload returns the raw payload bytes
func (f *Frame) Payload() []byte {
	return f.payload
}

// Checksum returns the frame's checksum byte
func (f *Frame) Checksum() uint8 {
	return f.checksum
}

// Timestamp returns the frame's decode timestamp
func (f *Frame) Timestamp() time.Time {
	return f.timestamp
}

// RecordType returns the first payload byte, or false for an empty payload.
func (f *Frame) RecordType() (uint8, bool) {
	if len(f.payload) == 0 {
		return 0, false
	}
	return f.payload[0], true
}
