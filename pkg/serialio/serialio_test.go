// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package serialio

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
)

// ============================================================
// Checksum Tests
// ============================================================

func TestChecksum_Empty(t *testing.T) {
	if cs := Checksum(0, nil); cs != 0 {
		t.Errorf("Checksum of empty payload should be 0, got 0x%02X", cs)
	}
}

func TestChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		expected byte
	}{
		{"handshake", []byte{0x00, 0x4B, 0x53, 0x50}, 0x04 ^ 0x00 ^ 0x4B ^ 0x53 ^ 0x50},
		{"single byte", []byte{0xFF}, 0x01 ^ 0xFF},
		{"cancelling pair", []byte{0xAA, 0xAA}, 0x02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := Checksum(uint8(len(tt.payload)), tt.payload)
			if cs != tt.expected {
				t.Errorf("Checksum mismatch: expected 0x%02X, got 0x%02X", tt.expected, cs)
			}
		})
	}
}

// ============================================================
// Frame Encoding Tests
// ============================================================

func TestEncodeFrame_Layout(t *testing.T) {
	payload := []byte{0x00, 0x4B, 0x53, 0x50}
	frame := EncodeFrame(payload)

	expected := []byte{0xBE, 0xEF, 0x04, 0x00, 0x4B, 0x53, 0x50, 0x04 ^ 0x4B ^ 0x53 ^ 0x50}
	if !bytes.Equal(frame, expected) {
		t.Errorf("EncodeFrame = % X, want % X", frame, expected)
	}
}

func TestEncodeFrame_EmptyPayload(t *testing.T) {
	frame := EncodeFrame(nil)
	expected := []byte{Header1, Header2, 0x00, 0x00}
	if !bytes.Equal(frame, expected) {
		t.Errorf("EncodeFrame(nil) = % X, want % X", frame, expected)
	}
}

func TestEncoder_WriteHandshake(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).WriteHandshake(); err != nil {
		t.Fatalf("WriteHandshake: %v", err)
	}

	frame, err := DecodeFrame(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	h, err := UnmarshalHandshake(frame.Payload())
	if err != nil {
		t.Fatalf("UnmarshalHandshake: %v", err)
	}
	if !h.IsValid() {
		t.Errorf("handshake magic = %q, want %q", h.Magic[:], HandshakeMagic[:])
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }

func TestEncoder_WriteError(t *testing.T) {
	err := NewEncoder(failingWriter{}).WriteFrame([]byte{1})
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("expected wrapped io.ErrClosedPipe, got %v", err)
	}
}

// ============================================================
// Frame Decoding Tests
// ============================================================

func TestDecodeFrame_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", []byte{}},
		{"handshake", NewHandshakeRecord().MarshalBinary()},
		{"contains header bytes", []byte{0xBE, 0xEF, 0xBE, 0xEF}},
		{"max size", bytes.Repeat([]byte{0x5A}, MaxPayloadSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := DecodeFrame(EncodeFrame(tt.payload))
			if err != nil {
				t.Fatalf("DecodeFrame: %v", err)
			}
			if !bytes.Equal(frame.Payload(), tt.payload) {
				t.Errorf("payload = % X, want % X", frame.Payload(), tt.payload)
			}
			if int(frame.Length()) != len(tt.payload)%256 {
				t.Errorf("length = %d, want %d", frame.Length(), len(tt.payload))
			}
		})
	}
}

func TestDecodeFrame_SkipsLeadingNoise(t *testing.T) {
	data := append([]byte{0x00, 0x12, 0xBE, 0x99}, EncodeFrame([]byte{1, 2, 3})...)
	frame, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if !bytes.Equal(frame.Payload(), []byte{1, 2, 3}) {
		t.Errorf("payload = % X", frame.Payload())
	}
}

func TestDecodeFrame_ChecksumMismatch(t *testing.T) {
	data := EncodeFrame([]byte{1, 2, 3})
	data[len(data)-1] ^= 0x01

	_, err := DecodeFrame(data)
	if !errors.Is(err, ErrChecksum) {
		t.Errorf("expected ErrChecksum, got %v", err)
	}
}

func TestDecodeFrame_Truncated(t *testing.T) {
	data := EncodeFrame([]byte{1, 2, 3})
	_, err := DecodeFrame(data[:len(data)-1])
	if !errors.Is(err, ErrShortFrame) {
		t.Errorf("expected ErrShortFrame, got %v", err)
	}
}

func TestDecodeFrame_SingleBitCorruption(t *testing.T) {
	payload := NewHandshakeRecord().MarshalBinary()
	encoded := EncodeFrame(payload)

	for i := range encoded {
		for bit := 0; bit < 8; bit++ {
			corrupted := append([]byte(nil), encoded...)
			corrupted[i] ^= 1 << bit

			frame, err := DecodeFrame(corrupted)
			if err == nil && bytes.Equal(frame.Payload(), payload) {
				t.Errorf("byte %d bit %d: corrupted frame decoded as original", i, bit)
			}
		}
	}
}

func TestDecoder_RecoversAfterChecksumError(t *testing.T) {
	bad := EncodeFrame([]byte{9, 9})
	bad[len(bad)-1] ^= 0xFF
	stream := append(bad, EncodeFrame([]byte{7})...)

	d := NewDecoder()
	var frames []*Frame
	var errs int
	for _, b := range stream {
		frame, err := d.DecodeByte(b)
		if err != nil {
			errs++
		}
		if frame != nil {
			frames = append(frames, frame)
		}
	}

	if errs != 1 {
		t.Errorf("expected 1 decode error, got %d", errs)
	}
	if len(frames) != 1 || !bytes.Equal(frames[0].Payload(), []byte{7}) {
		t.Errorf("expected one frame with payload 07, got %d frames", len(frames))
	}
}

// ============================================================
// Record Tests
// ============================================================

func TestTelemetryRecord_Size(t *testing.T) {
	r := &TelemetryRecord{}
	data := r.MarshalBinary()
	if len(data) != TelemetryRecordSize {
		t.Errorf("encoded size = %d, want %d", len(data), TelemetryRecordSize)
	}
	if data[0] != RecordTelemetry {
		t.Errorf("record type = 0x%02X, want 0x%02X", data[0], RecordTelemetry)
	}
	if RecordTelemetry == RecordHandshake {
		t.Error("telemetry and handshake record types must differ")
	}
}

func TestTelemetryRecord_FieldOffsets(t *testing.T) {
	r := &TelemetryRecord{AP: 1.0, TAp: -2, Vsurf: 3.5}
	data := r.MarshalBinary()

	// AP is the first field, little-endian float32 1.0 = 0x3F800000
	if !bytes.Equal(data[1:5], []byte{0x00, 0x00, 0x80, 0x3F}) {
		t.Errorf("AP bytes = % X", data[1:5])
	}
	// TAp is the ninth field
	if !bytes.Equal(data[33:37], []byte{0xFE, 0xFF, 0xFF, 0xFF}) {
		t.Errorf("TAp bytes = % X", data[33:37])
	}
	// Vsurf is the last field
	if !bytes.Equal(data[61:65], []byte{0x00, 0x00, 0x60, 0x40}) {
		t.Errorf("Vsurf bytes = % X", data[61:65])
	}
}

func TestTelemetryRecord_RoundTripThroughFrame(t *testing.T) {
	in := &TelemetryRecord{
		AP:            80123.5,
		PE:            -120000.25,
		SemiMajorAxis: 675000,
		SemiMinorAxis: 674000,
		VVI:           -12.75,
		E:             0.0012,
		Inc:           5.5,
		G:             9.81,
		TAp:           1234,
		TPe:           -55,
		TrueAnomaly:   3.14159,
		Density:       0.0042,
		Period:        1876,
		RAlt:          0,
		FuelP:         0,
		Vsurf:         0,
	}

	frame, err := DecodeFrame(EncodeFrame(in.MarshalBinary()))
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	out, err := UnmarshalTelemetry(frame.Payload())
	if err != nil {
		t.Fatalf("UnmarshalTelemetry: %v", err)
	}

	floats := []struct {
		name     string
		got, exp float32
	}{
		{"AP", out.AP, in.AP}, {"PE", out.PE, in.PE},
		{"SemiMajorAxis", out.SemiMajorAxis, in.SemiMajorAxis},
		{"SemiMinorAxis", out.SemiMinorAxis, in.SemiMinorAxis},
		{"VVI", out.VVI, in.VVI}, {"E", out.E, in.E}, {"Inc", out.Inc, in.Inc},
		{"G", out.G, in.G}, {"TrueAnomaly", out.TrueAnomaly, in.TrueAnomaly},
		{"Density", out.Density, in.Density}, {"RAlt", out.RAlt, in.RAlt},
		{"FuelP", out.FuelP, in.FuelP}, {"Vsurf", out.Vsurf, in.Vsurf},
	}
	for _, f := range floats {
		if math.Abs(float64(f.got-f.exp)) > 1e-6*math.Max(1, math.Abs(float64(f.exp))) {
			t.Errorf("%s = %v, want %v", f.name, f.got, f.exp)
		}
	}
	if out.TAp != in.TAp || out.TPe != in.TPe || out.Period != in.Period {
		t.Errorf("integer fields = (%d, %d, %d), want (%d, %d, %d)",
			out.TAp, out.TPe, out.Period, in.TAp, in.TPe, in.Period)
	}
}

func TestUnmarshalTelemetry_Errors(t *testing.T) {
	if _, err := UnmarshalTelemetry([]byte{RecordTelemetry, 1, 2}); !errors.Is(err, ErrShortRecord) {
		t.Errorf("expected ErrShortRecord, got %v", err)
	}
	data := (&TelemetryRecord{}).MarshalBinary()
	data[0] = RecordHandshake
	if _, err := UnmarshalTelemetry(data); !errors.Is(err, ErrRecordType) {
		t.Errorf("expected ErrRecordType, got %v", err)
	}
}

// ============================================================
// Line Reader Tests
// ============================================================

func TestLineReader_Lines(t *testing.T) {
	lr := NewLineReader(strings.NewReader("25 30 370 610\nKSP;0;ok\r\n\n"))

	want := []string{"25 30 370 610", "KSP;0;ok", ""}
	for _, w := range want {
		line, err := lr.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if line != w {
			t.Errorf("line = %q, want %q", line, w)
		}
	}

	_, err := lr.ReadLine()
	var lineErr *LineReadError
	if !errors.As(err, &lineErr) || !errors.Is(err, io.EOF) {
		t.Errorf("expected LineReadError wrapping EOF, got %v", err)
	}
}

func TestLineReader_PartialLineDiscarded(t *testing.T) {
	lr := NewLineReader(strings.NewReader("17 500"))
	_, err := lr.ReadLine()

	var lineErr *LineReadError
	if !errors.As(err, &lineErr) {
		t.Fatalf("expected LineReadError, got %v", err)
	}
	if lineErr.Partial != 6 {
		t.Errorf("Partial = %d, want 6", lineErr.Partial)
	}
}

func TestLineReader_TooLong(t *testing.T) {
	long := strings.Repeat("1", MaxLineLength+10) + "\n1 2\n"
	lr := NewLineReader(strings.NewReader(long))

	if _, err := lr.ReadLine(); !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("expected ErrLineTooLong, got %v", err)
	}

	// The rest of the long line is skipped
	line, err := lr.ReadLine()
	if err != nil || line != "1 2" {
		t.Errorf("next line = %q, %v", line, err)
	}
}

func TestLineReader_TooLongSplitRead(t *testing.T) {
	r, w := io.Pipe()
	lr := NewLineReader(r)

	go func() {
		w.Write([]byte(strings.Repeat("9", MaxLineLength+5)))
		w.Write([]byte(" 31 370 610\n"))
		w.Write([]byte("25 370 610\n"))
		w.Close()
	}()

	if _, err := lr.ReadLine(); !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("expected ErrLineTooLong, got %v", err)
	}
	line, err := lr.ReadLine()
	if err != nil || line != "25 370 610" {
		t.Errorf("next line = %q, %v", line, err)
	}
	if _, err := lr.ReadLine(); err == nil {
		t.Error("expected error at end of stream")
	}
}

// ============================================================
// Input Decoding Tests
// ============================================================

func TestParseInputLine(t *testing.T) {
	state, err := ParseInputLine("25 30 370 610")
	if err != nil {
		t.Fatalf("ParseInputLine: %v", err)
	}

	if state.X != 370 || state.Y != 610 {
		t.Errorf("axes = (%d, %d), want (370, 610)", state.X, state.Y)
	}

	// 25 and 30 reported, inverted buttons idle (reported as not held) read as held
	want := []int{25, 30, 35, 37, 39, 41, 43}
	got := state.Pressed()
	if len(got) != len(want) {
		t.Fatalf("pressed = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pressed = %v, want %v", got, want)
			break
		}
	}
}

func TestParseInputLine_InvertedButtonReported(t *testing.T) {
	state, err := ParseInputLine("35 43 0 0")
	if err != nil {
		t.Fatalf("ParseInputLine: %v", err)
	}
	if state.Held(35) || state.Held(43) {
		t.Error("reported inverted buttons should read as not held")
	}
	if !state.Held(37) {
		t.Error("unreported inverted button should read as held")
	}
}

func TestParseInputLine_AxesOnly(t *testing.T) {
	state, err := ParseInputLine("500 610")
	if err != nil {
		t.Fatalf("ParseInputLine: %v", err)
	}
	if state.X != 500 || state.Y != 610 {
		t.Errorf("axes = (%d, %d)", state.X, state.Y)
	}
}

func TestParseInputLine_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"one token", "370"},
		{"non-integer axis", "25 abc 610"},
		{"non-integer button", "x 370 610"},
		{"index too large", "128 370 610"},
		{"negative index", "-1 370 610"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInputLine(tt.line)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("expected ParseError, got %v", err)
			}
		})
	}
}

func TestFormatInputLine_RoundTrip(t *testing.T) {
	var state RawInputState
	state.Buttons[0] = true
	state.Buttons[127] = true
	state.Buttons[35] = true // inverted: idle on the wire
	state.X = -4
	state.Y = 1023

	line := FormatInputLine(state)
	if line != "0 37 39 41 43 127 -4 1023" {
		t.Errorf("FormatInputLine = %q", line)
	}

	parsed, err := ParseInputLine(line)
	if err != nil {
		t.Fatalf("ParseInputLine: %v", err)
	}
	if parsed != state {
		t.Errorf("round trip mismatch: %v != %v", parsed.Pressed(), state.Pressed())
	}
}

// ============================================================
// Status Line Tests
// ============================================================

func TestParseStatusLine(t *testing.T) {
	tests := []struct {
		line      string
		wantErr   bool
		wantFound bool
	}{
		{"KSP;0;ok", false, true},
		{"KSP;0", false, true},
		{"KSP;3;busy", false, false},
		{"KSP;x;ok", true, false},
		{"HELLO;0", true, false},
		{"", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			status, err := ParseStatusLine(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && status.DisplayFound() != tt.wantFound {
				t.Errorf("DisplayFound = %v, want %v", status.DisplayFound(), tt.wantFound)
			}
		})
	}
}

// ============================================================
// Formatter / Statistics Tests
// ============================================================

func TestFormatFrame_Telemetry(t *testing.T) {
	frame, err := DecodeFrame(EncodeFrame((&TelemetryRecord{AP: 100000, TAp: 42}).MarshalBinary()))
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	out := FormatFrame(frame)
	if !strings.Contains(out, "TELEMETRY") || !strings.Contains(out, "TAp: 42s") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestFormatPayload_HexFallback(t *testing.T) {
	out := FormatPayload([]byte{0x7A, 0x01})
	if !strings.Contains(out, "7A 01") {
		t.Errorf("expected hex dump, got %q", out)
	}
}

func TestStatistics_Update(t *testing.T) {
	s := NewStatistics()
	s.Update(nil)
	s.Update(&ParseError{Line: "x"})
	s.Update(&LineReadError{Err: io.EOF})
	s.Update(ErrChecksum)
	s.RecordSent()

	if s.TotalReports != 4 || s.ValidReports != 1 {
		t.Errorf("total=%d valid=%d", s.TotalReports, s.ValidReports)
	}
	if s.ParseErrors != 1 || s.LineErrors != 1 || s.ChecksumErrors != 1 {
		t.Errorf("parse=%d line=%d checksum=%d", s.ParseErrors, s.LineErrors, s.ChecksumErrors)
	}
	if s.TotalErrors() != 3 || s.FramesSent != 1 {
		t.Errorf("errors=%d sent=%d", s.TotalErrors(), s.FramesSent)
	}
}
