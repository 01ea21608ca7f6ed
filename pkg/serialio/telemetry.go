// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package serialio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// TelemetryRecordSize is the encoded size: type byte plus 16 four-byte fields.
const TelemetryRecordSize = 1 + 16*4

// TelemetryRecord is the vessel state pushed to the panel display. Field order
// and widths are fixed by the display firmware.
type TelemetryRecord struct {
	AP            float32 // apoapsis altitude (m)
	PE            float32 // periapsis altitude (m)
	SemiMajorAxis float32
	SemiMinorAxis float32
	VVI           float32 // vertical speed (m/s)
	E             float32 // eccentricity
	Inc           float32 // inclination (deg)
	G             float32 // surface gravity force
	TAp           int32   // time to apoapsis (s)
	TPe           int32   // time to periapsis (s)
	TrueAnomaly   float32
	Density       float32 // atmospheric density
	Period        int32   // orbital period (s)
	RAlt          float32 // reserved
	FuelP         float32 // reserved
	Vsurf         float32 // reserved
}

// MarshalBinary encodes the record little-endian with the telemetry type byte
// first. Each field is written explicitly so the layout does not depend on
// Go struct layout.
func (r *TelemetryRecord) MarshalBinary() []byte {
	buf := make([]byte, TelemetryRecordSize)
	buf[0] = RecordTelemetry

	le := binary.LittleEndian
	putF := func(off int, v float32) { le.PutUint32(buf[off:], math.Float32bits(v)) }
	putI := func(off int, v int32) { le.PutUint32(buf[off:], uint32(v)) }

	putF(1, r.AP)
	putF(5, r.PE)
	putF(9, r.SemiMajorAxis)
	putF(13, r.SemiMinorAxis)
	putF(17, r.VVI)
	putF(21, r.E)
	putF(25, r.Inc)
	putF(29, r.G)
	putI(33, r.TAp)
	putI(37, r.TPe)
	putF(41, r.TrueAnomaly)
	putF(45, r.Density)
	putI(49, r.Period)
	putF(53, r.RAlt)
	putF(57, r.FuelP)
	putF(61, r.Vsurf)

	return buf
}

// UnmarshalTelemetry decodes a telemetry payload produced by MarshalBinary.
func UnmarshalTelemetry(payload []byte) (*TelemetryRecord, error) {
	if len(payload) < TelemetryRecordSize {
		return nil, fmt.Errorf("%w: telemetry needs %d bytes, got %d", ErrShortRecord, TelemetryRecordSize, len(payload))
	}
	if payload[0] != RecordTelemetry {
		return nil, fmt.Errorf("%w: 0x%02X (want 0x%02X)", ErrRecordType, payload[0], RecordTelemetry)
	}

	le := binary.LittleEndian
	getF := func(off int) float32 { return math.Float32frombits(le.Uint32(payload[off:])) }
	getI := func(off int) int32 { return int32(le.Uint32(payload[off:])) }

	return &TelemetryRecord{
		AP:            getF(1),
		PE:            getF(5),
		SemiMajorAxis: getF(9),
		SemiMinorAxis: getF(13),
		VVI:           getF(17),
		E:             getF(21),
		Inc:           getF(25),
		G:             getF(29),
		TAp:           getI(33),
		TPe:           getI(37),
		TrueAnomaly:   getF(41),
		Density:       getF(45),
		Period:        getI(49),
		RAlt:          getF(53),
		FuelP:         getF(57),
		Vsurf:         getF(61),
	}, nil
}

// HandshakeRecordSize is the encoded handshake size.
const HandshakeRecordSize = 4

// HandshakeRecord greets the display firmware during port discovery.
type HandshakeRecord struct {
	Magic [3]byte
}

// NewHandshakeRecord returns the handshake carrying HandshakeMagic.
func NewHandshakeRecord() *HandshakeRecord {
	return &HandshakeRecord{Magic: HandshakeMagic}
}

// MarshalBinary encodes the handshake as {0x00, 'K', 'S', 'P'}.
func (h *HandshakeRecord) MarshalBinary() []byte {
	return []byte{RecordHandshake, h.Magic[0], h.Magic[1], h.Magic[2]}
}

// UnmarshalHandshake decodes a handshake payload.
func UnmarshalHandshake(payload []byte) (*HandshakeRecord, error) {
	if len(payload) < HandshakeRecordSize {
		return nil, fmt.Errorf("%w: handshake needs %d bytes, got %d", ErrShortRecord, HandshakeRecordSize, len(payload))
	}
	if payload[0] != RecordHandshake {
		return nil, fmt.Errorf("%w: 0x%02X (want 0x%02X)", ErrRecordType, payload[0], RecordHandshake)
	}
	return &HandshakeRecord{Magic: [3]byte{payload[1], payload[2], payload[3]}}, nil
}

// IsValid reports whether the handshake carries the expected magic.
func (h *HandshakeRecord) IsValid() bool {
	return h.Magic == HandshakeMagic
}
