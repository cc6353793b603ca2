// Package wind provides circular angle math and wind vector decomposition
// used by the altitude interpolator, the risk scorer and the route engine.
package wind

import "math"

// Components holds the wind vector resolved along and across an aircraft course.
// Headwind and tailwind are mutually exclusive: exactly one of them is zero.
type Components struct {
	Headwind  float64 `json:"headwind"`  // m/s, >= 0
	Tailwind  float64 `json:"tailwind"`  // m/s, >= 0
	Crosswind float64 `json:"crosswind"` // m/s, >= 0
}

// NormalizeAngle maps an angle in degrees to the range [0, 360).
// Negative inputs are corrected before the modulo.
func NormalizeAngle(deg float64) float64 {
	return math.Mod(math.Mod(deg, 360)+360, 360)
}

// Interpolate linearly interpolates between two values. A nil input
// propagates as nil so that missing forecast fields never turn into
// fabricated numbers here; the caller decides the fallback.
func Interpolate(lower, upper *float64, ratio float64) *float64 {
	if lower == nil || upper == nil {
		return nil
	}
	v := *lower + (*upper-*lower)*ratio
	return &v
}

// InterpolateDirection interpolates between two wind directions along the
// shortest arc, so interpolating 350° to 10° passes through 0° rather than
// sweeping across 180°. Inputs are normalized first; nil propagates as nil.
func InterpolateDirection(lower, upper *float64, ratio float64) *float64 {
	if lower == nil || upper == nil {
		return nil
	}

	lo := NormalizeAngle(*lower)
	hi := NormalizeAngle(*upper)

	diff := hi - lo
	if diff > 180 {
		diff -= 360
	}
	if diff < -180 {
		diff += 360
	}

	result := NormalizeAngle(lo + diff*ratio)
	return &result
}

// Resolve decomposes a wind vector into headwind/tailwind and crosswind
// components relative to an aircraft course. Speed is in m/s, direction and
// heading in degrees.
func Resolve(speed, direction, heading float64) Components {
	angle := (direction - heading) * math.Pi / 180

	along := speed * math.Cos(angle)
	across := speed * math.Sin(angle)

	c := Components{Crosswind: math.Abs(across)}
	if along > 0 {
		c.Headwind = along
	} else {
		c.Tailwind = -along
	}
	return c
}
