// Package report assembles a pre-flight briefing from the mission, the
// current weather assessment, the route plan, and the time window analysis.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/devskill-org/preflight/altitude"
	"github.com/devskill-org/preflight/meteo"
	"github.com/devskill-org/preflight/mission"
	"github.com/devskill-org/preflight/risk"
	"github.com/devskill-org/preflight/route"
	"github.com/devskill-org/preflight/windows"
)

// profileAltitudes are the chart reference altitudes carried in every report.
var profileAltitudes = []float64{250, 400, 550, 650, 800}

// WindowCounts summarizes the window analysis for the briefing header.
type WindowCounts struct {
	Allowed    int           `json:"allowed"`
	Restricted int           `json:"restricted"`
	Forbidden  int           `json:"forbidden"`
	Trend      windows.Trend `json:"trend"`
}

// Profiles carries the first day of hourly wind and temperature values for
// the briefing charts.
type Profiles struct {
	Wind      []float64 `json:"wind"`
	Temp      []float64 `json:"temp"`
	Time      []string  `json:"time"` // HH:MM labels
	Altitudes []float64 `json:"altitudes"`
}

// Report is the complete pre-flight briefing.
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`

	MissionName string `json:"mission_name"`
	Date        string `json:"date"`
	Aerodrome   string `json:"aerodrome"`

	Status     risk.Status          `json:"status"`
	Weather    meteo.Sample         `json:"weather"`
	Aloft      *altitude.Conditions `json:"aloft,omitempty"`
	Assessment risk.Assessment      `json:"assessment"`

	Plan *route.Plan `json:"plan,omitempty"`

	Windows         WindowCounts                    `json:"time_windows"`
	Departure       windows.DepartureRecommendation `json:"departure"`
	Summary         []string                        `json:"summary"`
	Recommendations []string                        `json:"recommendations"`
	Profiles        Profiles                        `json:"profiles"`
}

// Build assembles a briefing for the mission at targetAGL meters above the
// aerodrome. A nil forecast degrades to default weather and demo windows
// rather than failing; a pre-flight document is still useful with placeholder
// meteorology.
func Build(m *mission.Mission, hourly *meteo.Hourly, targetAGL float64, now time.Time) (*Report, error) {
	sample := meteo.DefaultSample(now)
	if hourly.Len() > 0 {
		sample = hourly.SampleAt(0)
	}
	assessment := risk.Assess(sample)

	// Route wind prefers the interpolated upper-air values at the flight
	// altitude; the surface observation is the fallback.
	var aloft *altitude.Conditions
	if hourly.Len() > 0 {
		aloft = altitude.Interpolate(hourly.ProfileAt(0), targetAGL, m.Aerodrome.Elevation)
	}
	windModel := route.Wind{Speed: sample.WindSpeed, Direction: sample.WindDirection}
	if aloft != nil && aloft.WindSpeed != nil && aloft.WindDirection != nil {
		windModel = route.Wind{Speed: *aloft.WindSpeed, Direction: *aloft.WindDirection}
	}
	plan, err := route.BuildPlan(m.Coordinates.Route, windModel, m.Aircraft.Profile())
	if err != nil {
		return nil, fmt.Errorf("route evaluation failed: %w", err)
	}

	ws := windows.Calculate(hourly)
	groups := windows.GroupByStatus(ws)
	departure := windows.RecommendDeparture(ws)

	return &Report{
		ID:          uuid.New().String(),
		GeneratedAt: now,

		MissionName: m.Info.Name,
		Date:        m.Info.Date,
		Aerodrome:   m.Aerodrome.Name,

		Status:     assessment.Status,
		Weather:    sample,
		Aloft:      aloft,
		Assessment: assessment,
		Plan:       plan,

		Windows: WindowCounts{
			Allowed:    len(groups.Allowed),
			Restricted: len(groups.Restricted),
			Forbidden:  len(groups.Forbidden),
			Trend:      windows.AnalyzeTrend(ws),
		},
		Departure:       departure,
		Summary:         buildSummary(ws),
		Recommendations: buildRecommendations(departure),
		Profiles:        extractProfiles(hourly),
	}, nil
}

func buildSummary(ws []windows.Window) []string {
	percentage := 0
	if len(ws) > 0 {
		percentage = int(math.Round(float64(len(windows.FindAllowed(ws))) / float64(len(ws)) * 100))
	}

	summary := []string{
		fmt.Sprintf("Favorable windows: %d%%", percentage),
		"Flight permitted subject to:",
		"- visibility at least 5 km",
		"- wind at altitude at most 15 m/s",
		"- no precipitation above 1.4 mm/h",
		"- landing energy reserve at least 25%",
	}

	if percentage < 30 {
		summary = append([]string{"Few favorable windows, consider an alternative time"}, summary...)
	}

	return summary
}

func buildRecommendations(departure windows.DepartureRecommendation) []string {
	var recs []string

	if departure.Recommended {
		recs = append(recs,
			fmt.Sprintf("1. Recommended departure: %s - %s",
				departure.StartTime.Format("15:04"), departure.EndTime.Format("15:04")),
			fmt.Sprintf("2. Favorable window duration: %d min", departure.Duration),
			fmt.Sprintf("3. Conditions rating: %.2f", departure.AvgRating),
		)
	} else {
		recs = append(recs,
			"1. No favorable windows in the next 24 hours",
			"2. Consider postponing the flight",
			"3. Keep monitoring the forecast",
		)
	}

	recs = append(recs,
		"4. Route entry altitude: 500 m",
		"5. Cruise altitude: 750 m",
		"6. On visibility dropping below 5 km, land immediately",
		"7. Minimum landing voltage: 21.0 V (3.5 V per cell)",
	)

	return recs
}

func extractProfiles(hourly *meteo.Hourly) Profiles {
	p := Profiles{Altitudes: profileAltitudes}

	n := hourly.Len()
	if n > 24 {
		n = 24
	}
	for i := 0; i < n; i++ {
		s := hourly.SampleAt(i)
		p.Wind = append(p.Wind, s.WindSpeed)
		p.Temp = append(p.Temp, s.Temperature)
		p.Time = append(p.Time, hourly.TimeAt(i).Format("15:04"))
	}

	return p
}
