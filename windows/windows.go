// Package windows slices an hourly forecast into flight time windows, rates
// each one, and aggregates them into continuous flyable periods and departure
// recommendations.
package windows

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/devskill-org/preflight/meteo"
	"github.com/devskill-org/preflight/risk"
)

// WindowDuration is the nominal span credited to one window when summing
// period durations.
const WindowDuration = 30 * time.Minute

// MinRating is the rating floor below which a window is restricted.
const MinRating = 0.4

// Window is one scored forecast slice between two consecutive hourly samples.
type Window struct {
	StartTime       time.Time    `json:"start_time"`
	EndTime         time.Time    `json:"end_time"`
	Sample          meteo.Sample `json:"sample"`
	Rating          float64      `json:"rating"`
	Status          risk.Status  `json:"status"`
	Recommendations []string     `json:"recommendations"`
}

// Trend describes how window ratings evolve over the forecast horizon.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendWorsening Trend = "worsening"
	TrendStable    Trend = "stable"
)

// Calculate builds one window per consecutive pair of hourly samples, using
// the earlier sample's parameters for the whole span. A nil or empty series
// falls back to generated demo windows so the caller always has something to
// show.
func Calculate(h *meteo.Hourly) []Window {
	if h == nil || h.Len() == 0 {
		return DemoWindows(time.Now())
	}

	windows := make([]Window, 0, h.Len()-1)
	for i := 0; i < h.Len()-1; i++ {
		s := h.SampleAt(i)
		rating := Rate(s)
		status := StatusOf(rating, s)

		windows = append(windows, Window{
			StartTime:       h.TimeAt(i),
			EndTime:         h.TimeAt(i + 1),
			Sample:          s,
			Rating:          round2(rating),
			Status:          status,
			Recommendations: Recommendations(status, s),
		})
	}

	return windows
}

// Rate scores one sample by additive penalties starting from 1.0. The bands
// are intentionally looser than the hard status thresholds so the rating
// degrades before the status does.
func Rate(s meteo.Sample) float64 {
	rating := 1.0

	switch {
	case s.WindSpeed > 15:
		rating -= 0.3
	case s.WindSpeed > 10:
		rating -= 0.15
	case s.WindSpeed > 7:
		rating -= 0.05
	}

	visibilityKm := s.Visibility / 1000
	switch {
	case visibilityKm < 3:
		rating -= 0.3
	case visibilityKm < 5:
		rating -= 0.15
	case visibilityKm < 8:
		rating -= 0.05
	}

	switch {
	case s.Precipitation > 2.5:
		rating -= 0.25
	case s.Precipitation > 1.4:
		rating -= 0.15
	case s.Precipitation > 0.5:
		rating -= 0.05
	}

	icing := risk.IcingRisk(s.Temperature, s.Humidity, s.Precipitation)
	switch {
	case icing > 0.6:
		rating -= 0.15
	case icing > 0.3:
		rating -= 0.08
	case icing > 0.1:
		rating -= 0.03
	}

	fog := risk.FogProbability(s.Temperature, s.Dewpoint, s.Humidity, s.WindSpeed)
	switch {
	case fog > 0.7:
		rating -= 0.1
	case fog > 0.5:
		rating -= 0.05
	}

	return math.Max(0, math.Min(1, rating))
}

// StatusOf classifies a window. Its thresholds form a third policy, distinct
// from both risk.FlightStatus and risk.SafetyRating, and additionally fold
// the rating floor into the restricted band.
func StatusOf(rating float64, s meteo.Sample) risk.Status {
	icing := risk.IcingRisk(s.Temperature, s.Humidity, s.Precipitation)

	if s.WindSpeed > 15 || s.Visibility < 3000 || s.Precipitation > 2.5 || icing > 0.6 {
		return risk.StatusForbidden
	}
	if rating < MinRating || s.WindSpeed > 10 || s.Visibility < 5000 || s.Precipitation > 1.4 {
		return risk.StatusRestricted
	}
	return risk.StatusAllowed
}

// Recommendations renders the short operator-facing notes for a window.
func Recommendations(status risk.Status, s meteo.Sample) []string {
	var recs []string

	switch status {
	case risk.StatusForbidden:
		recs = append(recs, "Flight prohibited")
		if s.WindSpeed > 15 {
			recs = append(recs, "Strong wind")
		}
		if s.Visibility < 3000 {
			recs = append(recs, "Low visibility")
		}
		if s.Precipitation > 2.5 {
			recs = append(recs, "Heavy precipitation")
		}
	case risk.StatusRestricted:
		recs = append(recs, "Flight with restrictions")
		if s.WindSpeed > 10 {
			recs = append(recs, "Moderate wind")
		}
		if s.Visibility < 5000 {
			recs = append(recs, "Reduced visibility")
		}
	default:
		recs = append(recs, "Flight permitted", "Conditions favorable")
	}

	return recs
}

// Groups partitions windows by status, preserving order within each group.
type Groups struct {
	Allowed    []Window `json:"allowed"`
	Restricted []Window `json:"restricted"`
	Forbidden  []Window `json:"forbidden"`
}

// GroupByStatus partitions windows into the three status groups.
func GroupByStatus(windows []Window) Groups {
	var g Groups
	for _, w := range windows {
		switch w.Status {
		case risk.StatusAllowed:
			g.Allowed = append(g.Allowed, w)
		case risk.StatusRestricted:
			g.Restricted = append(g.Restricted, w)
		case risk.StatusForbidden:
			g.Forbidden = append(g.Forbidden, w)
		}
	}
	return g
}

// FindAllowed returns the allowed windows in order.
func FindAllowed(windows []Window) []Window {
	var allowed []Window
	for _, w := range windows {
		if w.Status == risk.StatusAllowed {
			allowed = append(allowed, w)
		}
	}
	return allowed
}

// FindBestWindows returns up to n allowed windows by descending rating.
// Ties keep their original relative order.
func FindBestWindows(windows []Window, n int) []Window {
	best := FindAllowed(windows)
	sort.SliceStable(best, func(i, j int) bool {
		return best[i].Rating > best[j].Rating
	})
	if len(best) > n {
		best = best[:n]
	}
	return best
}

// ContinuousPeriod is a maximal run of consecutive allowed windows.
type ContinuousPeriod struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Windows   []Window  `json:"windows"`
	AvgRating float64   `json:"avg_rating"`
}

// Duration is the nominal period span, credited per window.
func (p ContinuousPeriod) Duration() time.Duration {
	return time.Duration(len(p.Windows)) * WindowDuration
}

// FindContinuousPeriods collects runs of consecutive allowed windows and
// discards runs shorter than minDuration. The running average uses the
// recurrence (prev + new) / 2, which weights recent windows more heavily
// than a true mean; downstream consumers depend on these exact values.
func FindContinuousPeriods(windows []Window, minDuration time.Duration) []ContinuousPeriod {
	var periods []ContinuousPeriod
	var current *ContinuousPeriod

	flush := func() {
		if current != nil && current.Duration() >= minDuration {
			periods = append(periods, *current)
		}
		current = nil
	}

	for _, w := range windows {
		if w.Status != risk.StatusAllowed {
			flush()
			continue
		}
		if current == nil {
			current = &ContinuousPeriod{
				Start:     w.StartTime,
				End:       w.EndTime,
				Windows:   []Window{w},
				AvgRating: w.Rating,
			}
			continue
		}
		current.End = w.EndTime
		current.Windows = append(current.Windows, w)
		current.AvgRating = (current.AvgRating + w.Rating) / 2
	}
	flush()

	return periods
}

// DepartureRecommendation is the outcome of the departure time search.
type DepartureRecommendation struct {
	Recommended  bool      `json:"recommended"`
	StartTime    time.Time `json:"start_time,omitempty"`
	EndTime      time.Time `json:"end_time,omitempty"`
	Duration     int       `json:"duration_minutes,omitempty"`
	AvgRating    float64   `json:"avg_rating,omitempty"`
	Reason       string    `json:"reason"`
	Alternatives []Window  `json:"alternatives,omitempty"`
}

// RecommendDeparture picks the continuous period (minimum one hour) with the
// highest average rating. Without any qualifying period it degrades to the
// single best allowed window offered as an alternative.
func RecommendDeparture(windows []Window) DepartureRecommendation {
	periods := FindContinuousPeriods(windows, time.Hour)

	if len(periods) == 0 {
		return DepartureRecommendation{
			Recommended:  false,
			Reason:       "no favorable windows",
			Alternatives: FindBestWindows(windows, 1),
		}
	}

	best := periods[0]
	for _, p := range periods[1:] {
		if p.AvgRating > best.AvgRating {
			best = p
		}
	}

	return DepartureRecommendation{
		Recommended: true,
		StartTime:   best.Start,
		EndTime:     best.End,
		Duration:    int(best.Duration().Minutes()),
		AvgRating:   round2(best.AvgRating),
		Reason:      "best sustained conditions",
	}
}

// AnalyzeTrend compares the mean rating of the first and second halves of the
// horizon. Fewer than two windows reads as stable.
func AnalyzeTrend(windows []Window) Trend {
	if len(windows) < 2 {
		return TrendStable
	}

	mid := len(windows) / 2
	diff := meanRating(windows[mid:]) - meanRating(windows[:mid])

	if diff > 0.1 {
		return TrendImproving
	}
	if diff < -0.1 {
		return TrendWorsening
	}
	return TrendStable
}

// DemoWindows generates a plausible 48 hour window set for operation without
// forecast data. Daylight hours trend allowed, night hours restricted, with
// occasional forbidden windows mixed in.
func DemoWindows(now time.Time) []Window {
	windows := make([]Window, 0, 48)

	for i := 0; i < 48; i++ {
		start := now.Add(time.Duration(i) * time.Hour)

		status := risk.StatusAllowed
		rating := 0.8 + rand.Float64()*0.2
		if hour := start.Hour(); hour < 6 || hour > 20 {
			status = risk.StatusRestricted
			rating = 0.5 + rand.Float64()*0.3
		}
		if rand.Float64() < 0.1 {
			status = risk.StatusForbidden
			rating = 0.2 + rand.Float64()*0.3
		}

		s := meteo.DefaultSample(start)
		s.Temperature = -8 + rand.Float64()*4
		s.WindSpeed = 5 + rand.Float64()*5
		if rand.Float64() < 0.2 {
			s.Precipitation = rand.Float64()
		}

		recs := []string{"Flight permitted"}
		if status != risk.StatusAllowed {
			recs = []string{"Restrictions apply"}
		}

		windows = append(windows, Window{
			StartTime:       start,
			EndTime:         start.Add(WindowDuration),
			Sample:          s,
			Rating:          round2(rating),
			Status:          status,
			Recommendations: recs,
		})
	}

	return windows
}

func meanRating(windows []Window) float64 {
	sum := 0.0
	for _, w := range windows {
		sum += w.Rating
	}
	return sum / float64(len(windows))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
