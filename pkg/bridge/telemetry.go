// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"math"

	"github.com/Thermoquad/kspio/pkg/serialio"
	"github.com/Thermoquad/kspio/pkg/sim"
)

// Sample packs the vessel state into a display record. Times are rounded to
// whole seconds; the reserved fields stay zero.
func Sample(v sim.VesselState) serialio.TelemetryRecord {
	return serialio.TelemetryRecord{
		AP:            float32(v.ApA),
		PE:            float32(v.PeA),
		SemiMajorAxis: float32(v.SemiMajorAxis),
		SemiMinorAxis: float32(v.SemiMinorAxis),
		VVI:           float32(v.VerticalSpeed),
		E:             float32(v.Eccentricity),
		Inc:           float32(v.Inclination),
		G:             float32(v.GeeForce),
		TAp:           roundSeconds(v.TimeToAp),
		TPe:           roundSeconds(v.TimeToPe),
		TrueAnomaly:   float32(v.TrueAnomaly),
		Density:       float32(v.AtmDensity),
		Period:        roundSeconds(v.Period),
	}
}

// roundSeconds rounds to the nearest second, saturating at the int32 range
// (hyperbolic orbits report infinite periods).
func roundSeconds(s float64) int32 {
	switch {
	case math.IsNaN(s):
		return 0
	case s >= math.MaxInt32:
		return math.MaxInt32
	case s <= math.MinInt32:
		return math.MinInt32
	}
	return int32(math.Round(s))
}
