// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package serialio

import (
	"fmt"
	"strings"
)

// FormatFrame formats a frame into a human-readable string
func FormatFrame(f *Frame) string {
	timestamp := f.timestamp.Format("15:04:05.000")
	recordType, _ := f.RecordType()

	result := fmt.Sprintf("[%s] %s (0x%02X) len=%d cs=0x%02X\n",
		timestamp, FormatRecordType(recordType), recordType, f.length, f.checksum)

	return result + FormatPayload(f.payload)
}

// FormatRecordType returns the human-readable name for a record type
func FormatRecordType(recordType uint8) string {
	switch recordType {
	case RecordHandshake:
		return "HANDSHAKE"
	case RecordTelemetry:
		return "TELEMETRY"
	default:
		return "UNKNOWN"
	}
}

// FormatPayload renders a decoded record, falling back to a hex dump
func FormatPayload(payload []byte) string {
	if len(payload) == 0 {
		return "  (no payload)\n"
	}

	switch payload[0] {
	case RecordHandshake:
		if h, err := UnmarshalHandshake(payload); err == nil {
			valid := "valid"
			if !h.IsValid() {
				valid = "unexpected"
			}
			return fmt.Sprintf("  Magic: %q (%s)\n", string(h.Magic[:]), valid)
		}

	case RecordTelemetry:
		if r, err := UnmarshalTelemetry(payload); err == nil {
			return FormatTelemetry(r)
		}
	}

	result := "  Payload: "
	for i, b := range payload {
		if i > 0 && i%16 == 0 {
			result += "\n           "
		}
		result += fmt.Sprintf("%02X ", b)
	}
	return result + "\n"
}

// FormatTelemetry renders a telemetry record
func FormatTelemetry(r *TelemetryRecord) string {
	var s strings.Builder
	fmt.Fprintf(&s, "  AP: %.0f m, PE: %.0f m\n", r.AP, r.PE)
	fmt.Fprintf(&s, "  SMA: %.0f m, SMiA: %.0f m, e: %.4f, inc: %.2f°\n", r.SemiMajorAxis, r.SemiMinorAxis, r.E, r.Inc)
	fmt.Fprintf(&s, "  VVI: %.1f m/s, G: %.2f, density: %.4f\n", r.VVI, r.G, r.Density)
	fmt.Fprintf(&s, "  TAp: %ds, TPe: %ds, period: %ds, true anomaly: %.2f\n", r.TAp, r.TPe, r.Period, r.TrueAnomaly)
	return s.String()
}

// FormatInputState renders a panel report as "x,y b1 b2 ..."
func FormatInputState(s *RawInputState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d,%d", s.X, s.Y)
	for _, i := range s.Pressed() {
		fmt.Fprintf(&b, " %d", i)
	}
	return b.String()
}
