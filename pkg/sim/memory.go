// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sim

import (
	"fmt"
	"sync"
)

// Memory is an in-process Host. It backs dry runs without a simulator and
// the package tests. All methods are safe for concurrent use.
type Memory struct {
	mu sync.Mutex

	vessel       VesselState
	vesselActive bool
	groups       map[ActionGroup]bool
	stages       int
	uiMode       UIMode
	warpIndex    int
	maxWarp      int
	throttle     float32
	cameraSwaps  int
	flightCtrl   FlightCtrlState
	flightFrames int

	autopilot   *MemoryAutopilot
	autopilotUI *MemoryAutopilotUI

	// Observer, if set, is called with a description of every write.
	Observer func(event string)
}

// NewMemory creates a host with an active vessel, an autopilot allowing every
// mode and an autopilot UI with one button per mode.
func NewMemory() *Memory {
	return &Memory{
		vesselActive: true,
		groups:       make(map[ActionGroup]bool),
		maxWarp:      7,
		autopilot:    NewMemoryAutopilot(),
		autopilotUI:  NewMemoryAutopilotUI(AutopilotModeCount),
	}
}

func (m *Memory) observe(format string, args ...interface{}) {
	if m.Observer != nil {
		m.Observer(fmt.Sprintf(format, args...))
	}
}

// SetVessel replaces the active vessel state.
func (m *Memory) SetVessel(v VesselState, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vessel = v
	m.vesselActive = active
}

// ActiveVessel implements Host
func (m *Memory) ActiveVessel() (VesselState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vessel, m.vesselActive
}

// SetActionGroup implements Host
func (m *Memory) SetActionGroup(group ActionGroup, active bool) {
	m.mu.Lock()
	m.groups[group] = active
	m.mu.Unlock()
	m.observe("action group %s = %v", group, active)
}

// ActionGroup returns the last value written to group.
func (m *Memory) ActionGroup(group ActionGroup) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.groups[group]
}

// ActivateNextStage implements Host
func (m *Memory) ActivateNextStage() {
	m.mu.Lock()
	m.stages++
	m.mu.Unlock()
	m.observe("stage activated")
}

// StagesActivated returns how many times staging was triggered.
func (m *Memory) StagesActivated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stages
}

// SetUIMode implements Host
func (m *Memory) SetUIMode(mode UIMode) {
	m.mu.Lock()
	m.uiMode = mode
	m.mu.Unlock()
	m.observe("ui mode = %s", mode)
}

// UIMode returns the current UI mode.
func (m *Memory) UIMode() UIMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uiMode
}

// TimeWarpIndex implements Host
func (m *Memory) TimeWarpIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.warpIndex
}

// SetTimeWarpIndex implements Host. The index is clamped to the available
// rates the way the simulator clamps it.
func (m *Memory) SetTimeWarpIndex(index int) {
	m.mu.Lock()
	if index < 0 {
		index = 0
	}
	if index > m.maxWarp {
		index = m.maxWarp
	}
	m.warpIndex = index
	m.mu.Unlock()
	m.observe("time warp index = %d", index)
}

// MainThrottle implements Host
func (m *Memory) MainThrottle() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.throttle
}

// SetMainThrottle implements Host
func (m *Memory) SetMainThrottle(value float32) {
	m.mu.Lock()
	m.throttle = value
	m.mu.Unlock()
}

// Autopilot implements Host
func (m *Memory) Autopilot() Autopilot {
	if m.autopilot == nil {
		return nil
	}
	return m.autopilot
}

// AutopilotUI implements Host
func (m *Memory) AutopilotUI() AutopilotUI {
	if m.autopilotUI == nil {
		return nil
	}
	return m.autopilotUI
}

// MemoryAutopilot returns the concrete autopilot for inspection.
func (m *Memory) MemoryAutopilot() *MemoryAutopilot {
	return m.autopilot
}

// MemoryAutopilotUI returns the concrete autopilot UI for inspection.
func (m *Memory) MemoryAutopilotUI() *MemoryAutopilotUI {
	return m.autopilotUI
}

// RemoveAutopilot simulates a vessel without SAS.
func (m *Memory) RemoveAutopilot() {
	m.autopilot = nil
	m.autopilotUI = nil
}

// NextCamera implements CameraSwitcher
func (m *Memory) NextCamera() {
	m.mu.Lock()
	m.cameraSwaps++
	m.mu.Unlock()
	m.observe("next camera")
}

// CameraSwaps returns how many times the camera was cycled.
func (m *Memory) CameraSwaps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cameraSwaps
}

// SendFlightCtrl implements FlightCtrlSink
func (m *Memory) SendFlightCtrl(state FlightCtrlState) {
	m.mu.Lock()
	m.flightCtrl = state
	m.flightFrames++
	m.mu.Unlock()
}

// FlightCtrl returns the last fly-by-wire frame and how many were sent.
func (m *Memory) FlightCtrl() (FlightCtrlState, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flightCtrl, m.flightFrames
}

// MemoryAutopilot is an in-process Autopilot
type MemoryAutopilot struct {
	mu       sync.Mutex
	mode     AutopilotMode
	disabled map[AutopilotMode]bool
}

// NewMemoryAutopilot creates an autopilot in stability assist with every
// mode available.
func NewMemoryAutopilot() *MemoryAutopilot {
	return &MemoryAutopilot{disabled: make(map[AutopilotMode]bool)}
}

// Mode implements Autopilot
func (a *MemoryAutopilot) Mode() AutopilotMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// SetMode implements Autopilot. Unavailable modes are refused.
func (a *MemoryAutopilot) SetMode(mode AutopilotMode) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disabled[mode] {
		return false
	}
	a.mode = mode
	return true
}

// CanSetMode implements Autopilot
func (a *MemoryAutopilot) CanSetMode(mode AutopilotMode) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.disabled[mode]
}

// SetAvailable marks mode as selectable or not.
func (a *MemoryAutopilot) SetAvailable(mode AutopilotMode, available bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.disabled[mode] = !available
}

// MemoryAutopilotUI is an in-process AutopilotUI that counts writes
type MemoryAutopilotUI struct {
	mu     sync.Mutex
	states []ButtonState
	writes int
}

// NewMemoryAutopilotUI creates n buttons, all False.
func NewMemoryAutopilotUI(n int) *MemoryAutopilotUI {
	return &MemoryAutopilotUI{states: make([]ButtonState, n)}
}

// ButtonCount implements AutopilotUI
func (u *MemoryAutopilotUI) ButtonCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.states)
}

// ButtonState implements AutopilotUI
func (u *MemoryAutopilotUI) ButtonState(n int) ButtonState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.states[n]
}

// SetButtonState implements AutopilotUI
func (u *MemoryAutopilotUI) SetButtonState(n int, state ButtonState) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.states[n] = state
	u.writes++
}

// Writes returns the number of SetButtonState calls.
func (u *MemoryAutopilotUI) Writes() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.writes
}
