// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package controls

import (
	"math"
	"math/rand"
	"testing"

	"github.com/Thermoquad/kspio/pkg/serialio"
	"github.com/Thermoquad/kspio/pkg/sim"
)

func mustParse(t *testing.T, line string) serialio.RawInputState {
	t.Helper()
	state, err := serialio.ParseInputLine(line)
	if err != nil {
		t.Fatalf("ParseInputLine(%q): %v", line, err)
	}
	return state
}

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

// ============================================================
// Edge Detection Tests
// ============================================================

func TestEdges_DirectionAndOrder(t *testing.T) {
	var prev EdgeState
	prev[3] = true
	prev[10] = true

	var cur [serialio.ButtonCount]bool
	cur[3] = true
	cur[5] = true

	edges := Edges(prev, cur)
	want := []Edge{{Index: 5, Down: true}, {Index: 10, Down: false}}
	if len(edges) != len(want) {
		t.Fatalf("edges = %v, want %v", edges, want)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("edge %d = %v, want %v", i, edges[i], want[i])
		}
	}
}

func TestEdges_NoChange(t *testing.T) {
	var prev EdgeState
	prev[0] = true
	if edges := Edges(prev, prev); len(edges) != 0 {
		t.Errorf("expected no edges, got %v", edges)
	}
}

func TestDetector_RandomSequence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var d Detector

	for round := 0; round < 500; round++ {
		prev := d.Previous()
		var cur [serialio.ButtonCount]bool
		for i := range cur {
			cur[i] = rng.Intn(4) == 0
		}

		differing := 0
		for i := range cur {
			if prev[i] != cur[i] {
				differing++
			}
		}

		edges := d.Update(cur)
		if len(edges) != differing {
			t.Fatalf("round %d: %d edges, want %d", round, len(edges), differing)
		}
		for _, e := range edges {
			if e.Down != cur[e.Index] || prev[e.Index] == cur[e.Index] {
				t.Fatalf("round %d: bad edge %v", round, e)
			}
		}
		if d.Previous() != EdgeState(cur) {
			t.Fatalf("round %d: snapshot not committed", round)
		}
	}
}

// ============================================================
// Axis Normalisation Tests
// ============================================================

func TestNormalizeAxis_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		raw      int
		expected float32
	}{
		{"dead min", 370, 0},
		{"dead max", 405, 0},
		{"inside", 390, 0},
		{"below", 330, -0.1},
		{"above", 445, 0.1},
		{"full negative", -30, -1},
		{"clamped negative", -5000, -1},
		{"clamped positive", 5000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAxis(tt.raw, 370, 405, DefaultAxisScale)
			if !approx(got, tt.expected) {
				t.Errorf("NormalizeAxis(%d) = %v, want %v", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestNormalizeAxis_Monotonic(t *testing.T) {
	prev := NormalizeAxis(-2000, 610, 635, DefaultAxisScale)
	for raw := -1999; raw <= 3000; raw++ {
		v := NormalizeAxis(raw, 610, 635, DefaultAxisScale)
		if v < prev {
			t.Fatalf("not monotonic at %d: %v < %v", raw, v, prev)
		}
		if v < -1 || v > 1 {
			t.Fatalf("out of range at %d: %v", raw, v)
		}
		prev = v
	}
}

// ============================================================
// Autopilot Selection Tests
// ============================================================

func TestSelectAutopilotMode_AllCombinations(t *testing.T) {
	tests := []struct {
		apPe, radial, normal, target, modifier bool
		expected                               sim.AutopilotMode
	}{
		{true, false, false, false, false, sim.Prograde},
		{true, false, false, false, true, sim.Retrograde},
		{false, true, false, false, false, sim.RadialIn},
		{false, true, false, false, true, sim.RadialOut},
		{false, false, true, false, false, sim.Normal},
		{false, false, true, false, true, sim.Antinormal},
		{false, false, false, true, false, sim.AntiTarget},
		{false, false, false, true, true, sim.Target},
		{false, false, false, false, false, sim.StabilityAssist},
		{false, false, false, false, true, sim.Maneuver},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			got := SelectAutopilotMode(tt.apPe, tt.radial, tt.normal, tt.target, tt.modifier)
			if got != tt.expected {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestSelectAutopilotMode_Priority(t *testing.T) {
	if got := SelectAutopilotMode(true, true, true, true, false); got != sim.Prograde {
		t.Errorf("Ap/Pe should win, got %s", got)
	}
	if got := SelectAutopilotMode(false, true, true, true, true); got != sim.RadialOut {
		t.Errorf("radial should beat normal and target, got %s", got)
	}
	if got := SelectAutopilotMode(false, false, true, true, false); got != sim.Normal {
		t.Errorf("normal should beat target, got %s", got)
	}
}

func TestReconcileAutopilotUI_WritesOnlyChanges(t *testing.T) {
	ap := sim.NewMemoryAutopilot()
	ap.SetAvailable(sim.Target, false)
	ap.SetAvailable(sim.AntiTarget, false)
	ui := sim.NewMemoryAutopilotUI(sim.AutopilotModeCount)

	ap.SetMode(sim.Prograde)
	if n := ReconcileAutopilotUI(ap, ui); n != 3 {
		t.Errorf("first reconcile wrote %d buttons, want 3", n)
	}
	if ui.ButtonState(int(sim.Prograde)) != sim.ButtonTrue {
		t.Error("prograde button should be pressed")
	}
	if ui.ButtonState(int(sim.Target)) != sim.ButtonDisabled {
		t.Error("target button should be disabled")
	}

	if n := ReconcileAutopilotUI(ap, ui); n != 0 {
		t.Errorf("second reconcile wrote %d buttons, want 0", n)
	}

	ap.SetMode(sim.Retrograde)
	if n := ReconcileAutopilotUI(ap, ui); n != 2 {
		t.Errorf("mode change wrote %d buttons, want 2", n)
	}
}

// ============================================================
// Action Table Tests
// ============================================================

func TestNewActionTable_DefaultLayout(t *testing.T) {
	table := NewActionTable(DefaultLayout())

	tests := []struct {
		index int
		kind  ActionKind
		group sim.ActionGroup
	}{
		{25, ActionToggleGroup, sim.GroupSAS},
		{27, ActionToggleGroup, sim.GroupGear},
		{33, ActionToggleGroup, sim.GroupLight},
		{29, ActionToggleGroup, sim.GroupBrakes},
		{31, ActionTriggerStage, sim.GroupStage},
		{34, ActionToggleGroup, sim.GroupCustom01},
		{52, ActionToggleGroup, sim.GroupCustom10},
		{24, ActionSetUIMode, 0},
		{35, ActionAdjustTimeWarp, 0},
		{53, ActionAdjustTimeWarp, 0},
		{43, ActionNextCamera, 0},
		{30, ActionRecomputeAutopilot, 0},
		{32, ActionRecomputeAutopilot, 0},
		{20, ActionRecomputeAutopilot, 0},
		{15, ActionNoOp, 0},
		{17, ActionNoOp, 0},
		{127, ActionNoOp, 0},
	}

	for _, tt := range tests {
		a := table[tt.index]
		if a.Kind != tt.kind {
			t.Errorf("button %d kind = %s, want %s", tt.index, a.Kind, tt.kind)
			continue
		}
		if tt.kind == ActionToggleGroup && a.Group != tt.group {
			t.Errorf("button %d group = %s, want %s", tt.index, a.Group, tt.group)
		}
	}

	if !table[25].Recompute {
		t.Error("SAS should recompute the autopilot mode")
	}
	if table[35].Step != -1 || table[53].Step != 1 {
		t.Errorf("warp steps = %d/%d", table[35].Step, table[53].Step)
	}
	// SAS, gear, lights, brakes, mode, stage, 2 warp, camera, 5 autopilot, 10 custom
	if n := len(table.Mapped()); n != 24 {
		t.Errorf("mapped buttons = %d, want 24", n)
	}
}

// ============================================================
// Mapper Tests
// ============================================================

func newTestMapper() (*Mapper, *sim.Memory) {
	host := sim.NewMemory()
	return NewMapper(host, DefaultConfig(), nil), host
}

func TestMapper_Scenario_SASPrograde(t *testing.T) {
	m, host := newTestMapper()

	m.Update(mustParse(t, "25 30 370 610"))

	if !host.ActionGroup(sim.GroupSAS) {
		t.Error("SAS group should be active")
	}
	if mode := host.MemoryAutopilot().Mode(); mode != sim.Prograde {
		t.Errorf("autopilot mode = %s, want Prograde", mode)
	}
	if x, y := m.Axes(); x != 0 || y != 0 {
		t.Errorf("axes = (%v, %v), want (0, 0)", x, y)
	}
	if writes := host.MemoryAutopilotUI().Writes(); writes != 1 {
		t.Errorf("UI writes = %d, want 1", writes)
	}
}

func TestMapper_Scenario_ThrottleDown(t *testing.T) {
	m, host := newTestMapper()
	m.Update(mustParse(t, "17 500 610"))

	const dt = 0.02
	for i := 1; i <= 10; i++ {
		m.AdjustThrottle(dt)
		want := float32(-ThrottleRate * dt * float64(i))
		if !approx(host.MainThrottle(), want) {
			t.Fatalf("tick %d: throttle = %v, want %v", i, host.MainThrottle(), want)
		}
	}

	for i := 0; i < 1000; i++ {
		m.AdjustThrottle(dt)
	}
	if host.MainThrottle() != -1 {
		t.Errorf("throttle = %v, want clamp at -1", host.MainThrottle())
	}
}

func TestMapper_ThrottleUpClamps(t *testing.T) {
	m, host := newTestMapper()
	m.Update(mustParse(t, "18 370 610"))

	for i := 0; i < 1000; i++ {
		m.AdjustThrottle(0.02)
	}
	if host.MainThrottle() != 1 {
		t.Errorf("throttle = %v, want 1", host.MainThrottle())
	}
}

func TestMapper_DockingZeroesThrottle(t *testing.T) {
	m, host := newTestMapper()
	host.SetMainThrottle(0.7)

	m.Update(mustParse(t, "24 18 370 610"))
	m.AdjustThrottle(0.02)

	if host.MainThrottle() != 0 {
		t.Errorf("throttle = %v, want 0 in docking mode", host.MainThrottle())
	}
	if host.UIMode() != sim.UIDocking {
		t.Errorf("ui mode = %s, want Docking", host.UIMode())
	}

	m.Update(mustParse(t, "370 610"))
	if host.UIMode() != sim.UIStaging {
		t.Errorf("ui mode = %s, want Staging after release", host.UIMode())
	}
}

func TestMapper_RecomputeRequiresSAS(t *testing.T) {
	m, host := newTestMapper()
	host.MemoryAutopilot().SetMode(sim.Normal)

	m.Update(mustParse(t, "30 32 370 610"))

	if mode := host.MemoryAutopilot().Mode(); mode != sim.Normal {
		t.Errorf("mode changed to %s without SAS held", mode)
	}
	if _, ok := m.RecomputeAutopilot(); ok {
		t.Error("RecomputeAutopilot should not apply without SAS")
	}
}

func TestMapper_RecomputeWithoutAutopilot(t *testing.T) {
	m, host := newTestMapper()
	host.RemoveAutopilot()

	m.Update(mustParse(t, "25 30 370 610"))
	if _, ok := m.RecomputeAutopilot(); ok {
		t.Error("RecomputeAutopilot should not apply without an autopilot")
	}
}

func TestMapper_ModifierSelectsSecondMode(t *testing.T) {
	m, host := newTestMapper()

	m.Update(mustParse(t, "25 370 610"))
	if mode := host.MemoryAutopilot().Mode(); mode != sim.StabilityAssist {
		t.Errorf("mode = %s, want StabilityAssist", mode)
	}

	m.Update(mustParse(t, "25 26 32 370 610"))
	if mode := host.MemoryAutopilot().Mode(); mode != sim.RadialOut {
		t.Errorf("mode = %s, want RadialOut", mode)
	}
}

func TestMapper_StageAndGroups(t *testing.T) {
	m, host := newTestMapper()

	m.Update(mustParse(t, "31 27 34 370 610"))
	if host.StagesActivated() != 1 {
		t.Errorf("stages = %d, want 1", host.StagesActivated())
	}
	if !host.ActionGroup(sim.GroupStage) || !host.ActionGroup(sim.GroupGear) || !host.ActionGroup(sim.GroupCustom01) {
		t.Error("stage, gear and custom01 should be active")
	}

	m.Update(mustParse(t, "370 610"))
	if host.StagesActivated() != 1 {
		t.Errorf("release should not stage, stages = %d", host.StagesActivated())
	}
	if host.ActionGroup(sim.GroupStage) || host.ActionGroup(sim.GroupGear) || host.ActionGroup(sim.GroupCustom01) {
		t.Error("groups should follow the release edge")
	}
}

func TestMapper_TimeWarp(t *testing.T) {
	m, host := newTestMapper()

	// First report: inverted 35 idles as held, a down edge that warps down
	// from 0 (clamped by the host).
	m.Update(mustParse(t, "370 610"))
	if host.TimeWarpIndex() != 0 {
		t.Fatalf("warp = %d", host.TimeWarpIndex())
	}

	m.Update(mustParse(t, "53 370 610"))
	m.Update(mustParse(t, "370 610"))
	m.Update(mustParse(t, "53 370 610"))
	if host.TimeWarpIndex() != 2 {
		t.Errorf("warp = %d, want 2", host.TimeWarpIndex())
	}

	// Warp-down is active-low: reporting 35 releases it, idling presses it
	m.Update(mustParse(t, "35 370 610"))
	m.Update(mustParse(t, "370 610"))
	if host.TimeWarpIndex() != 1 {
		t.Errorf("warp = %d, want 1", host.TimeWarpIndex())
	}
}

func TestMapper_NextCamera(t *testing.T) {
	m, host := newTestMapper()

	m.Update(mustParse(t, "370 610")) // 43 idles held: press
	m.Update(mustParse(t, "43 370 610"))
	m.Update(mustParse(t, "370 610"))

	if host.CameraSwaps() != 2 {
		t.Errorf("camera swaps = %d, want 2", host.CameraSwaps())
	}
}

func TestMapper_ApplyAxes(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		check func(s sim.FlightCtrlState) bool
		want  sim.FlightCtrlChannel
	}{
		{"staging yaw and pitch", "450 675", func(s sim.FlightCtrlState) bool {
			return approx(s.Yaw, -0.1125) && approx(s.Pitch, 0.1) && s.Roll == 0.5
		}, sim.ChannelYaw | sim.ChannelPitch},
		{"staging roll with modifier", "16 450 610", func(s sim.FlightCtrlState) bool {
			return approx(s.Roll, -0.1125) && s.Yaw == 0.5 && s.Pitch == 0.5
		}, sim.ChannelRoll},
		{"staging centred leaves frame", "380 620", func(s sim.FlightCtrlState) bool {
			return s.Yaw == 0.5 && s.Pitch == 0.5 && s.Roll == 0.5
		}, 0},
		{"docking Z and Y", "24 330 570", func(s sim.FlightCtrlState) bool {
			return approx(s.Z, 0.1) && approx(s.Y, -0.1) && s.X == 0.5
		}, sim.ChannelZ | sim.ChannelY},
		{"docking X with modifier", "24 16 330 620", func(s sim.FlightCtrlState) bool {
			return approx(s.X, 0.1) && s.Y == 0 && s.Z == 0.5
		}, sim.ChannelX | sim.ChannelY},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMapper()
			m.Update(mustParse(t, tt.line))

			s := sim.FlightCtrlState{X: 0.5, Z: 0.5, Yaw: 0.5, Pitch: 0.5, Roll: 0.5}
			m.ApplyAxes(&s)
			if !tt.check(s) {
				t.Errorf("unexpected control state %+v", s)
			}
			if s.Written != tt.want {
				t.Errorf("written channels = %06b, want %06b", s.Written, tt.want)
			}
		})
	}
}

func TestMapper_InitialStateIsCentred(t *testing.T) {
	m, _ := newTestMapper()
	if x, y := m.Axes(); x != 0 || y != 0 {
		t.Errorf("axes before first report = (%v, %v)", x, y)
	}
	if m.Docking() {
		t.Error("should start in staging mode")
	}
}
