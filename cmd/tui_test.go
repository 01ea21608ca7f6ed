// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"strings"
	"testing"

	"github.com/Thermoquad/kspio/pkg/serialio"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		ms   uint64
		want string
	}{
		{0, "0 seconds"},
		{1000, "1 second"},
		{61000, "1 minute and 1 second"},
		{3600000, "1 hour"},
		{90061000, "1 day, 1 hour, 1 minute, and 1 second"},
	}

	for _, tt := range tests {
		if got := formatUptime(tt.ms); got != tt.want {
			t.Errorf("formatUptime(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestAxisPercent(t *testing.T) {
	if axisPercent(-1) != 0 || axisPercent(0) != 0.5 || axisPercent(1) != 1 {
		t.Error("axisPercent does not map [-1, 1] onto [0, 1]")
	}
}

func TestModel_SnapshotLogsNewErrors(t *testing.T) {
	m := initialModel("COM3 @ 115200 baud", "disabled")

	next, _ := m.Update(snapshotMsg{stats: serialio.Statistics{TotalReports: 10, ValidReports: 10}})
	m = next.(model)
	if len(m.eventLog) != 0 {
		t.Fatalf("first snapshot logged %d events", len(m.eventLog))
	}

	next, _ = m.Update(snapshotMsg{stats: serialio.Statistics{TotalReports: 12, ValidReports: 10, ParseErrors: 2}})
	m = next.(model)
	if len(m.eventLog) != 1 || !m.eventLog[0].isError {
		t.Fatalf("eventLog = %+v, want one error entry", m.eventLog)
	}

	view := m.View()
	if !strings.Contains(view, "2 malformed report(s)") {
		t.Error("View() missing error entry")
	}
	if !strings.Contains(view, "STAGING") {
		t.Error("View() missing control mode")
	}
}

func TestModel_EventLogBounded(t *testing.T) {
	m := initialModel("test", "disabled")
	for i := 0; i < m.maxLogEntries+10; i++ {
		next, _ := m.Update(eventMsg{message: "stage activated"})
		m = next.(model)
	}
	if len(m.eventLog) != m.maxLogEntries {
		t.Errorf("eventLog length = %d, want %d", len(m.eventLog), m.maxLogEntries)
	}
}
