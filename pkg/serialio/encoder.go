// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package serialio

import (
	"fmt"
	"io"
)

// EncodeFrame wraps payload in the display link framing:
//
//	[0xBE][0xEF][len][payload...][checksum]
//
// The payload must not exceed MaxPayloadSize bytes; the length is truncated
// to a single byte without checking.
func EncodeFrame(payload []byte) []byte {
	length := uint8(len(payload))

	frame := make([]byte, 0, len(payload)+FrameOverhead)
	frame = append(frame, Header1, Header2, length)
	frame = append(frame, payload...)
	frame = append(frame, Checksum(length, payload))

	return frame
}

// Encoder writes framed records to a display link.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteFrame frames payload and performs a blocking write.
func (e *Encoder) WriteFrame(payload []byte) error {
	if _, err := e.w.Write(EncodeFrame(payload)); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// WriteHandshake sends the discovery handshake record.
func (e *Encoder) WriteHandshake() error {
	return e.WriteFrame(NewHandshakeRecord().MarshalBinary())
}

// WriteTelemetry sends a telemetry record.
func (e *Encoder) WriteTelemetry(r *TelemetryRecord) error {
	return e.WriteFrame(r.MarshalBinary())
}
