// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package controls

import "github.com/Thermoquad/kspio/pkg/sim"

// SelectAutopilotMode picks the autopilot mode from the axis buttons. The
// first held axis wins (Ap/Pe, radial, normal, target); the modifier picks
// the second mode of that axis.
func SelectAutopilotMode(apPe, radial, normal, target, modifier bool) sim.AutopilotMode {
	pick := func(plain, modified sim.AutopilotMode) sim.AutopilotMode {
		if modifier {
			return modified
		}
		return plain
	}

	switch {
	case apPe:
		return pick(sim.Prograde, sim.Retrograde)
	case radial:
		return pick(sim.RadialIn, sim.RadialOut)
	case normal:
		return pick(sim.Normal, sim.Antinormal)
	case target:
		// The target switch is wired with its positions swapped
		return pick(sim.AntiTarget, sim.Target)
	default:
		return pick(sim.StabilityAssist, sim.Maneuver)
	}
}

// DesiredButtonState is the state a mode button should display.
func DesiredButtonState(ap sim.Autopilot, mode sim.AutopilotMode) sim.ButtonState {
	state := sim.ButtonFalse
	if !ap.CanSetMode(mode) {
		state = sim.ButtonDisabled
	}
	if mode == ap.Mode() {
		state = sim.ButtonTrue
	}
	return state
}

// ReconcileAutopilotUI brings the mode buttons in line with the autopilot,
// writing only buttons whose displayed state differs. Returns the number of
// buttons written.
func ReconcileAutopilotUI(ap sim.Autopilot, ui sim.AutopilotUI) int {
	written := 0
	for n := 0; n < ui.ButtonCount(); n++ {
		state := DesiredButtonState(ap, sim.AutopilotMode(n))
		if state != ui.ButtonState(n) {
			ui.SetButtonState(n, state)
			written++
		}
	}
	return written
}
