package windows

import (
	"time"

	"github.com/sixdouglas/suncalc"
)

// OperatingMargin extends the daylight span on both ends; visual line
// operations are permitted in civil twilight.
const OperatingMargin = 30 * time.Minute

// OperatingWindow returns the daylight operating span for the given date and
// location, from sunrise minus the margin to sunset plus the margin.
func OperatingWindow(date time.Time, lat, lon float64) (start, end time.Time) {
	sunTimes := suncalc.GetTimes(date, lat, lon)
	sunrise := sunTimes["sunrise"].Value
	sunset := sunTimes["sunset"].Value
	return sunrise.Add(-OperatingMargin), sunset.Add(OperatingMargin)
}

// ClipToOperating keeps only the windows fully contained in [start, end].
func ClipToOperating(windows []Window, start, end time.Time) []Window {
	var clipped []Window
	for _, w := range windows {
		if !w.StartTime.Before(start) && !w.EndTime.After(end) {
			clipped = append(clipped, w)
		}
	}
	return clipped
}

// ClipToDaylight keeps only the windows inside the daylight operating span of
// their own calendar day, so a multi-day forecast loses its night hours but
// keeps every day's daytime windows.
func ClipToDaylight(windows []Window, lat, lon float64) []Window {
	var clipped []Window
	for _, w := range windows {
		start, end := OperatingWindow(w.StartTime, lat, lon)
		clipped = append(clipped, ClipToOperating([]Window{w}, start, end)...)
	}
	return clipped
}
