// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// kspio - flight simulator bridge for a hardware control panel
//
// Reads buttons and a joystick from the panel, drives the simulator with
// them, and streams orbital telemetry to the panel's display.

package main

import (
	"os"

	"github.com/Thermoquad/kspio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
