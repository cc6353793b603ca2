// Package risk converts instantaneous weather parameters into flight risk
// indices and go/no-go classifications for small unmanned aircraft.
package risk

import (
	"errors"
	"math"

	"github.com/devskill-org/preflight/meteo"
)

// Status is the three-level go/no-go flight classification.
type Status string

const (
	StatusAllowed    Status = "allowed"
	StatusRestricted Status = "restricted"
	StatusForbidden  Status = "forbidden"
)

// ErrZeroHeightDiff is returned by TurbulenceIndex when the layer thickness
// is zero; the shear and gradient terms are undefined in that case.
var ErrZeroHeightDiff = errors.New("turbulence index requires a non-zero height difference")

// Conditions are the inputs to the status classifiers. Note that visibility
// is in kilometers here, unlike the raw forecast samples which carry meters.
type Conditions struct {
	WindSpeed     float64 // m/s
	VisibilityKm  float64 // km
	Precipitation float64 // mm/h
	Icing         float64 // [0,1]
	Fog           float64 // [0,1]
}

// IcingRisk estimates airframe icing risk in [0,1]. Risk peaks at 0°C and
// vanishes beyond ±10°C; saturation and active precipitation amplify it.
func IcingRisk(temp, humidity, precipitation float64) float64 {
	tempFactor := math.Max(0, 1-math.Abs(temp)/10)
	humidityFactor := humidity / 100
	precipFactor := 0.3
	if precipitation > 0.1 {
		precipFactor = 1
	}
	return clamp01(tempFactor * humidityFactor * precipFactor)
}

// FogProbability estimates fog probability in [0,1]. Fog requires near
// saturation (humidity above 90%) and calm wind (below 5 m/s); within those
// bounds the probability grows as the dewpoint spread closes.
func FogProbability(temp, dewpoint, humidity, windSpeed float64) float64 {
	if humidity <= 90 || windSpeed >= 5 {
		return 0
	}
	return math.Max(0, 1-(temp-dewpoint)/2.0)
}

// CloudBase estimates the cloud base height in meters above the surface using
// the standard lifted-condensation-level approximation (125 m per °C of
// dewpoint spread). The value goes negative when the dewpoint meets or
// exceeds the temperature; that signals saturation at the surface and callers
// should treat it as zero or fog rather than a real height.
func CloudBase(temp, dewpoint float64) float64 {
	return 125 * (temp - dewpoint)
}

// TurbulenceIndex estimates low-level turbulence from wind shear and
// temperature gradient across a layer of heightDiff meters.
func TurbulenceIndex(windShear, tempGradient, heightDiff float64) (float64, error) {
	if heightDiff == 0 {
		return 0, ErrZeroHeightDiff
	}
	return math.Abs(windShear/(heightDiff/100)) * math.Abs(tempGradient/heightDiff), nil
}

// FlightStatus classifies conditions with hard thresholds, first match wins.
// This is the classification the dashboard shows as the flight status badge.
func FlightStatus(c Conditions) Status {
	if c.WindSpeed > 15 || c.VisibilityKm < 3 || c.Precipitation > 2.5 || c.Icing > 0.6 {
		return StatusForbidden
	}
	if c.WindSpeed > 10 || c.VisibilityKm < 5 || c.Precipitation > 1.4 || c.Icing > 0.3 || c.Fog > 0.7 {
		return StatusRestricted
	}
	return StatusAllowed
}

// Scores holds the banded 0/1/2 score for each rated dimension.
type Scores struct {
	Wind          int `json:"wind"`
	Visibility    int `json:"visibility"`
	Precipitation int `json:"precipitation"`
	Icing         int `json:"icing"`
}

// Rating is the result of the banded safety-rating computation.
type Rating struct {
	Rating float64 `json:"rating"` // [0,1]
	Status Status  `json:"status"`
	Scores Scores  `json:"scores"`
}

// SafetyRating scores four dimensions into 0/1/2 bands and normalizes the sum
// to [0,1]. Its status thresholds differ from FlightStatus: the two
// classifiers can disagree near the boundaries and are kept as separate
// operations on purpose. Callers pick one as canonical; the planner uses
// FlightStatus for the badge and this rating for the numeric gauge.
func SafetyRating(c Conditions) Rating {
	s := Scores{}

	switch {
	case c.WindSpeed > 15:
		s.Wind = 0
	case c.WindSpeed > 10:
		s.Wind = 1
	default:
		s.Wind = 2
	}

	switch {
	case c.VisibilityKm > 5:
		s.Visibility = 2
	case c.VisibilityKm > 3:
		s.Visibility = 1
	default:
		s.Visibility = 0
	}

	switch {
	case c.Precipitation > 2.5:
		s.Precipitation = 0
	case c.Precipitation > 1.4:
		s.Precipitation = 1
	default:
		s.Precipitation = 2
	}

	switch {
	case c.Icing > 0.6:
		s.Icing = 0
	case c.Icing > 0.3:
		s.Icing = 1
	default:
		s.Icing = 2
	}

	total := s.Wind + s.Visibility + s.Precipitation + s.Icing
	rating := float64(total) / 8.0

	status := StatusForbidden
	if rating > 0.7 {
		status = StatusAllowed
	} else if rating > 0.4 {
		status = StatusRestricted
	}

	return Rating{Rating: rating, Status: status, Scores: s}
}

// Assessment bundles the derived indices for one weather sample. It is
// recomputed on demand and never stored.
type Assessment struct {
	IcingRisk      float64 `json:"icing_risk"`      // [0,1]
	FogProbability float64 `json:"fog_probability"` // [0,1]
	CloudBase      float64 `json:"cloud_base"`      // m, negative means saturated
	SafetyRating   float64 `json:"safety_rating"`   // [0,1]
	Scores         Scores  `json:"scores"`
	Status         Status  `json:"status"`        // FlightStatus policy
	RatingStatus   Status  `json:"rating_status"` // SafetyRating policy
}

// Assess derives the full risk assessment from one sanitized weather sample.
func Assess(s meteo.Sample) Assessment {
	icing := IcingRisk(s.Temperature, s.Humidity, s.Precipitation)
	fog := FogProbability(s.Temperature, s.Dewpoint, s.Humidity, s.WindSpeed)

	c := Conditions{
		WindSpeed:     s.WindSpeed,
		VisibilityKm:  s.Visibility / 1000,
		Precipitation: s.Precipitation,
		Icing:         icing,
		Fog:           fog,
	}

	rating := SafetyRating(c)

	return Assessment{
		IcingRisk:      icing,
		FogProbability: fog,
		CloudBase:      CloudBase(s.Temperature, s.Dewpoint),
		SafetyRating:   rating.Rating,
		Scores:         rating.Scores,
		Status:         FlightStatus(c),
		RatingStatus:   rating.Status,
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
