// Package altitude maps surface and upper-air forecast data onto an arbitrary
// target altitude by interpolating between standard pressure levels.
package altitude

import "github.com/devskill-org/preflight/wind"

// PressureLevel identifies one of the standard upper-air forecast levels, in hPa.
type PressureLevel int

// Standard pressure levels and their approximate geopotential heights above
// mean sea level. The heights are table constants, not recalculated from the
// actual surface pressure.
const (
	Level975 PressureLevel = 975
	Level950 PressureLevel = 950
	Level925 PressureLevel = 925
	Level900 PressureLevel = 900
)

type levelHeight struct {
	level  PressureLevel
	height float64 // m MSL
}

// Ordered by increasing height; interpolation brackets a target between
// adjacent entries and refuses to extrapolate beyond the table.
var levelHeights = []levelHeight{
	{Level975, 300},
	{Level950, 550},
	{Level925, 800},
	{Level900, 1050},
}

// LevelConditions holds the forecast values at a single pressure level.
// Nil fields mean the provider did not report the value; they propagate as
// nil through interpolation instead of failing.
type LevelConditions struct {
	Temperature   *float64 // °C
	WindSpeed     *float64 // m/s
	WindDirection *float64 // degrees
	Humidity      *float64 // %
}

// Profile maps each standard pressure level to its forecast conditions.
// Using an explicit level-keyed structure keeps the provider's flat
// "temperature_950hPa"-style field naming out of the interpolation code.
type Profile map[PressureLevel]LevelConditions

// Conditions is the interpolation result at the target altitude.
type Conditions struct {
	Temperature   *float64 `json:"temperature"`
	WindSpeed     *float64 `json:"windspeed"`
	WindDirection *float64 `json:"winddirection"`
	Humidity      *float64 `json:"humidity"`
}

// Interpolate computes the weather at targetAGL meters above a surface at
// surfaceElevation meters MSL. It returns nil when the absolute target height
// falls outside the covered range [300, 1050] m MSL; there is no
// extrapolation below the lowest or above the highest level.
func Interpolate(profile Profile, targetAGL, surfaceElevation float64) *Conditions {
	target := surfaceElevation + targetAGL

	var lower, upper *levelHeight
	for i := 0; i < len(levelHeights)-1; i++ {
		if levelHeights[i].height <= target && levelHeights[i+1].height >= target {
			lower = &levelHeights[i]
			upper = &levelHeights[i+1]
			break
		}
	}
	if lower == nil || upper == nil {
		return nil
	}

	ratio := (target - lower.height) / (upper.height - lower.height)
	lo := profile[lower.level]
	hi := profile[upper.level]

	return &Conditions{
		Temperature:   wind.Interpolate(lo.Temperature, hi.Temperature, ratio),
		WindSpeed:     wind.Interpolate(lo.WindSpeed, hi.WindSpeed, ratio),
		WindDirection: wind.InterpolateDirection(lo.WindDirection, hi.WindDirection, ratio),
		Humidity:      wind.Interpolate(lo.Humidity, hi.Humidity, ratio),
	}
}

// CoveredRange returns the lowest and highest absolute heights (m MSL) the
// level table can interpolate between.
func CoveredRange() (low, high float64) {
	return levelHeights[0].height, levelHeights[len(levelHeights)-1].height
}
