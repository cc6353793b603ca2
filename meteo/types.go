package meteo

import "time"

// TimeLayout is the truncated ISO-8601 layout Open-Meteo uses for hourly
// timestamps ("2024-01-07T14:00").
const TimeLayout = "2006-01-02T15:04"

// Location represents coordinates for a forecast request.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// QueryParams represents query parameters for forecast requests.
type QueryParams struct {
	Location     Location `json:"location"`
	ForecastDays int      `json:"forecast_days,omitempty"` // default 1
	UpperAir     bool     `json:"upper_air,omitempty"`     // request pressure-level variables too
}

// Forecast is the root response of the Open-Meteo forecast endpoint.
type Forecast struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
	Timezone  string  `json:"timezone"`
	Hourly    *Hourly `json:"hourly,omitempty"`
}

// Hourly holds the provider's parallel hourly arrays. Every value array is
// expected to have the same length as Time; entries may be null when the
// provider has no data for that hour.
type Hourly struct {
	Time []string `json:"time"`

	Temperature              []*float64 `json:"temperature_2m,omitempty"`
	RelativeHumidity         []*float64 `json:"relativehumidity_2m,omitempty"`
	Dewpoint                 []*float64 `json:"dewpoint_2m,omitempty"`
	WindSpeed                []*float64 `json:"windspeed_10m,omitempty"`
	WindDirection            []*float64 `json:"winddirection_10m,omitempty"`
	SurfacePressure          []*float64 `json:"surface_pressure,omitempty"`
	Precipitation            []*float64 `json:"precipitation,omitempty"`
	PrecipitationProbability []*float64 `json:"precipitation_probability,omitempty"`
	Visibility               []*float64 `json:"visibility,omitempty"`
	CloudCover               []*float64 `json:"cloudcover,omitempty"`

	// Upper-air variables at the standard pressure levels, present only when
	// the request asked for them.
	Temperature975   []*float64 `json:"temperature_975hPa,omitempty"`
	Temperature950   []*float64 `json:"temperature_950hPa,omitempty"`
	Temperature925   []*float64 `json:"temperature_925hPa,omitempty"`
	Temperature900   []*float64 `json:"temperature_900hPa,omitempty"`
	WindSpeed975     []*float64 `json:"windspeed_975hPa,omitempty"`
	WindSpeed950     []*float64 `json:"windspeed_950hPa,omitempty"`
	WindSpeed925     []*float64 `json:"windspeed_925hPa,omitempty"`
	WindSpeed900     []*float64 `json:"windspeed_900hPa,omitempty"`
	WindDirection975 []*float64 `json:"winddirection_975hPa,omitempty"`
	WindDirection950 []*float64 `json:"winddirection_950hPa,omitempty"`
	WindDirection925 []*float64 `json:"winddirection_925hPa,omitempty"`
	WindDirection900 []*float64 `json:"winddirection_900hPa,omitempty"`
	Humidity975      []*float64 `json:"relativehumidity_975hPa,omitempty"`
	Humidity950      []*float64 `json:"relativehumidity_950hPa,omitempty"`
	Humidity925      []*float64 `json:"relativehumidity_925hPa,omitempty"`
	Humidity900      []*float64 `json:"relativehumidity_900hPa,omitempty"`
}

// Len returns the number of hourly entries.
func (h *Hourly) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Time)
}

// TimeAt parses the timestamp at index i. The zero time is returned for an
// index out of range or an unparsable timestamp.
func (h *Hourly) TimeAt(i int) time.Time {
	if h == nil || i < 0 || i >= len(h.Time) {
		return time.Time{}
	}
	t, err := time.Parse(TimeLayout, h.Time[i])
	if err != nil {
		return time.Time{}
	}
	return t
}

// Validate checks that every populated value array matches the length of the
// time array. A mismatched array would silently misalign values with hours,
// which is worse than rejecting the payload outright.
func (h *Hourly) Validate() error {
	if h == nil {
		return &ValidationError{Field: "hourly", Message: "missing hourly block"}
	}

	arrays := map[string][]*float64{
		"temperature_2m":            h.Temperature,
		"relativehumidity_2m":       h.RelativeHumidity,
		"dewpoint_2m":               h.Dewpoint,
		"windspeed_10m":             h.WindSpeed,
		"winddirection_10m":         h.WindDirection,
		"surface_pressure":          h.SurfacePressure,
		"precipitation":             h.Precipitation,
		"precipitation_probability": h.PrecipitationProbability,
		"visibility":                h.Visibility,
		"cloudcover":                h.CloudCover,
	}

	for name, arr := range arrays {
		if arr != nil && len(arr) != len(h.Time) {
			return &ValidationError{
				Field:   name,
				Message: "array length does not match hourly time array",
			}
		}
	}

	return nil
}

// ValidateLocation validates that coordinates are within acceptable ranges.
func ValidateLocation(loc Location) error {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return &ValidationError{
			Field:   "latitude",
			Message: "must be between -90 and 90",
		}
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return &ValidationError{
			Field:   "longitude",
			Message: "must be between -180 and 180",
		}
	}
	return nil
}
