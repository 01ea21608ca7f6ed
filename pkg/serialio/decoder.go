// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package serialio

import (
	"fmt"
	"time"
)

// Decoder implements the display link frame decoder state machine
type Decoder struct {
	state int
	frame *Frame
}

// NewDecoder creates a new frame decoder
func NewDecoder() *Decoder {
	return &Decoder{state: stateIdle}
}

// Reset resets the decoder state to idle
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.frame = nil
}

// DecodeByte processes a single byte through the decoder state machine.
// Returns a completed frame, or nil if the frame is incomplete.
// Returns an error if the checksum does not match; the frame is discarded.
func (d *Decoder) DecodeByte(b byte) (*Frame, error) {
	switch d.state {
	case stateIdle:
		if b == Header1 {
			d.state = stateHeader2
		}
		return nil, nil

	case stateHeader2:
		switch b {
		case Header2:
			d.state = stateLength
		case Header1:
			// Repeated first header byte, stay aligned on it
		default:
			d.Reset()
		}
		return nil, nil

	case stateLength:
		d.frame = &Frame{length: b, payload: make([]byte, 0, b)}
		if b == 0 {
			d.state = stateChecksum
		} else {
			d.state = statePayload
		}
		return nil, nil

	case statePayload:
		d.frame.payload = append(d.frame.payload, b)
		if len(d.frame.payload) >= int(d.frame.length) {
			d.state = stateChecksum
		}
		return nil, nil

	case stateChecksum:
		frame := d.frame
		frame.checksum = b
		calculated := Checksum(frame.length, frame.payload)
		d.Reset()
		if calculated != b {
			return nil, fmt.Errorf("%w: expected 0x%02X, got 0x%02X", ErrChecksum, calculated, b)
		}
		frame.timestamp = time.Now()
		return frame, nil

	default:
		d.Reset()
		return nil, fmt.Errorf("invalid state: %d", d.state)
	}
}

// DecodeFrame decodes exactly one frame from data. Leading noise before the
// header is skipped; trailing bytes after the checksum are an error.
func DecodeFrame(data []byte) (*Frame, error) {
	d := NewDecoder()
	for i, b := range data {
		frame, err := d.DecodeByte(b)
		if err != nil {
			return nil, err
		}
		if frame != nil {
			if i != len(data)-1 {
				return nil, fmt.Errorf("%d trailing bytes after frame", len(data)-1-i)
			}
			return frame, nil
		}
	}
	return nil, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(data))
}
