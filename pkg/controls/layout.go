// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package controls turns panel reports into simulator control inputs: button
// edge detection, a static button action table, autopilot mode selection,
// joystick dead zones and throttle ramping.
package controls

// Axis scaling and throttle ramp
const (
	DefaultAxisScale = 400.0 // raw units per full deflection
	ThrottleRate     = 0.2   // throttle change per second while held
)

// ButtonLayout names the panel buttons with a fixed meaning.
type ButtonLayout struct {
	Fire         int
	Modifier     int // joystick top button, swaps axis assignments
	ThrottleDown int
	ThrottleUp   int
	Mode         int // held = docking mode
	SAS          int
	Gear         int
	Lights       int
	Brakes       int
	Stage        int
	WarpDown     int
	WarpUp       int
	NextCamera   int
	APApPe       int // autopilot axis buttons, highest priority first
	APRadial     int
	APNormal     int
	APTarget     int
	APModifier   int // selects the second mode of each axis
	CustomGroups [10]int
}

// DefaultLayout returns the wiring of the reference panel.
func DefaultLayout() ButtonLayout {
	return ButtonLayout{
		Fire:         15,
		Modifier:     16,
		ThrottleDown: 17,
		ThrottleUp:   18,
		Mode:         24,
		SAS:          25,
		Gear:         27,
		Lights:       33,
		Brakes:       29,
		Stage:        31,
		WarpDown:     35,
		WarpUp:       53,
		NextCamera:   43,
		APApPe:       30,
		APRadial:     26,
		APNormal:     20,
		APTarget:     28,
		APModifier:   32,
		CustomGroups: [10]int{34, 36, 38, 40, 42, 44, 46, 48, 50, 52},
	}
}

// DeadZone is the raw range treated as the joystick's centre.
type DeadZone struct {
	Min int
	Max int
}

// AxisConfig holds both joystick dead zones and the normalisation scale.
type AxisConfig struct {
	X     DeadZone
	Y     DeadZone
	Scale float32
}

// DefaultAxisConfig returns the dead zones measured on the reference panel.
func DefaultAxisConfig() AxisConfig {
	return AxisConfig{
		X:     DeadZone{Min: 370, Max: 405},
		Y:     DeadZone{Min: 610, Max: 635},
		Scale: DefaultAxisScale,
	}
}
