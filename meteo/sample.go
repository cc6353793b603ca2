package meteo

import (
	"time"

	"github.com/devskill-org/preflight/altitude"
)

// Sample is one sanitized instant of forecast data. Unlike the raw Hourly
// arrays its fields are always populated: missing provider values were
// replaced by the Default* constants when the sample was built.
type Sample struct {
	Time                     time.Time `json:"time"`
	Temperature              float64   `json:"temperature"`        // °C
	Humidity                 float64   `json:"humidity"`           // %
	Dewpoint                 float64   `json:"dewpoint"`           // °C
	WindSpeed                float64   `json:"wind_speed"`         // m/s
	WindDirection            float64   `json:"wind_direction"`     // degrees
	SurfacePressure          float64   `json:"surface_pressure"`   // hPa
	Precipitation            float64   `json:"precipitation"`      // mm/h
	PrecipitationProbability float64   `json:"precipitation_prob"` // %
	Visibility               float64   `json:"visibility"`         // m
	CloudCover               float64   `json:"cloud_cover"`        // %
}

// Fallback values substituted for missing or null provider fields. These are
// compatibility constants: reports built from degraded data must match what
// the dashboard has always shown, so do not retune them casually.
const (
	DefaultTemperature     = -8.0    // °C
	DefaultHumidity        = 70.0    // %
	DefaultDewpoint        = -12.0   // °C
	DefaultWindSpeed       = 5.0     // m/s
	DefaultWindDirection   = 240.0   // degrees
	DefaultSurfacePressure = 1013.25 // hPa
	DefaultPrecipitation   = 0.0     // mm/h
	DefaultVisibility      = 10000.0 // m
	DefaultCloudCover      = 30.0    // %
)

func valueOr(arr []*float64, i int, fallback float64) float64 {
	if i < 0 || i >= len(arr) || arr[i] == nil {
		return fallback
	}
	return *arr[i]
}

// SampleAt builds the sanitized sample for hour i. Absent arrays and null
// entries fall back to the documented defaults; this is deliberate graceful
// degradation, not an error condition.
func (h *Hourly) SampleAt(i int) Sample {
	if h == nil {
		return DefaultSample(time.Time{})
	}

	return Sample{
		Time:                     h.TimeAt(i),
		Temperature:              valueOr(h.Temperature, i, DefaultTemperature),
		Humidity:                 valueOr(h.RelativeHumidity, i, DefaultHumidity),
		Dewpoint:                 valueOr(h.Dewpoint, i, DefaultDewpoint),
		WindSpeed:                valueOr(h.WindSpeed, i, DefaultWindSpeed),
		WindDirection:            valueOr(h.WindDirection, i, DefaultWindDirection),
		SurfacePressure:          valueOr(h.SurfacePressure, i, DefaultSurfacePressure),
		Precipitation:            valueOr(h.Precipitation, i, DefaultPrecipitation),
		PrecipitationProbability: valueOr(h.PrecipitationProbability, i, 0),
		Visibility:               valueOr(h.Visibility, i, DefaultVisibility),
		CloudCover:               valueOr(h.CloudCover, i, DefaultCloudCover),
	}
}

// DefaultSample returns a sample holding only the fallback constants, used
// when no forecast data is available at all.
func DefaultSample(t time.Time) Sample {
	return Sample{
		Time:            t,
		Temperature:     DefaultTemperature,
		Humidity:        DefaultHumidity,
		Dewpoint:        DefaultDewpoint,
		WindSpeed:       DefaultWindSpeed,
		WindDirection:   DefaultWindDirection,
		SurfacePressure: DefaultSurfacePressure,
		Precipitation:   DefaultPrecipitation,
		Visibility:      DefaultVisibility,
		CloudCover:      DefaultCloudCover,
	}
}

// ProfileAt builds the upper-air profile for hour i from the pressure-level
// arrays. Fields the provider did not return stay nil and propagate as nil
// through the altitude interpolation.
func (h *Hourly) ProfileAt(i int) altitude.Profile {
	if h == nil {
		return altitude.Profile{}
	}

	at := func(arr []*float64) *float64 {
		if i < 0 || i >= len(arr) {
			return nil
		}
		return arr[i]
	}

	return altitude.Profile{
		altitude.Level975: {
			Temperature:   at(h.Temperature975),
			WindSpeed:     at(h.WindSpeed975),
			WindDirection: at(h.WindDirection975),
			Humidity:      at(h.Humidity975),
		},
		altitude.Level950: {
			Temperature:   at(h.Temperature950),
			WindSpeed:     at(h.WindSpeed950),
			WindDirection: at(h.WindDirection950),
			Humidity:      at(h.Humidity950),
		},
		altitude.Level925: {
			Temperature:   at(h.Temperature925),
			WindSpeed:     at(h.WindSpeed925),
			WindDirection: at(h.WindDirection925),
			Humidity:      at(h.Humidity925),
		},
		altitude.Level900: {
			Temperature:   at(h.Temperature900),
			WindSpeed:     at(h.WindSpeed900),
			WindDirection: at(h.WindDirection900),
			Humidity:      at(h.Humidity900),
		},
	}
}

// Float64Ptr is a helper function to get a pointer to a float64 value.
func Float64Ptr(f float64) *float64 {
	return &f
}
