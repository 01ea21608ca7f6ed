// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package controls

// NormalizeAxis maps a raw joystick reading to [-1, 1]. Readings inside
// [deadMin, deadMax] are centre; outside it the distance from the nearest
// dead zone edge is divided by scale.
func NormalizeAxis(raw, deadMin, deadMax int, scale float32) float32 {
	var v float32
	if raw < deadMin {
		v = float32(raw-deadMin) / scale
	}
	if raw > deadMax {
		v = float32(raw-deadMax) / scale
	}
	return clamp(v)
}

func clamp(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
