package report

import (
	"strings"
	"testing"
	"time"

	"github.com/devskill-org/preflight/meteo"
	"github.com/devskill-org/preflight/mission"
	"github.com/devskill-org/preflight/risk"
)

func ptr(f float64) *float64 { return &f }

func calmHourly(hours int) *meteo.Hourly {
	h := &meteo.Hourly{}
	base := time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC)
	for i := 0; i < hours; i++ {
		h.Time = append(h.Time, base.Add(time.Duration(i)*time.Hour).Format(meteo.TimeLayout))
		h.Temperature = append(h.Temperature, ptr(12))
		h.RelativeHumidity = append(h.RelativeHumidity, ptr(50))
		h.Dewpoint = append(h.Dewpoint, ptr(2))
		h.WindSpeed = append(h.WindSpeed, ptr(3))
		h.WindDirection = append(h.WindDirection, ptr(240))
		h.Precipitation = append(h.Precipitation, ptr(0))
		h.Visibility = append(h.Visibility, ptr(10000))
		h.CloudCover = append(h.CloudCover, ptr(20))
	}
	return h
}

func TestBuild(t *testing.T) {
	now := time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC)
	r, err := Build(mission.Demo(), calmHourly(6), 500, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.ID == "" {
		t.Error("report ID missing")
	}
	if r.MissionName != mission.Demo().Info.Name {
		t.Errorf("mission name = %q", r.MissionName)
	}
	if r.Aerodrome != "Severny" {
		t.Errorf("aerodrome = %q", r.Aerodrome)
	}
	if r.Status != risk.StatusAllowed {
		t.Errorf("status = %v, expected allowed for calm weather", r.Status)
	}
	if r.Plan == nil || len(r.Plan.Segments) != 3 {
		t.Fatalf("expected 3 route segments, got %+v", r.Plan)
	}

	// 6 hourly entries give 5 windows, all allowed in calm weather
	if r.Windows.Allowed != 5 || r.Windows.Restricted != 0 || r.Windows.Forbidden != 0 {
		t.Errorf("window counts = %+v", r.Windows)
	}
	if !r.Departure.Recommended {
		t.Error("expected a departure recommendation")
	}
	if len(r.Summary) == 0 || !strings.Contains(r.Summary[0], "100%") {
		t.Errorf("summary = %v", r.Summary)
	}
	if len(r.Recommendations) < 4 {
		t.Errorf("recommendations = %v", r.Recommendations)
	}
	if len(r.Profiles.Wind) != 6 || r.Profiles.Time[0] != "08:00" {
		t.Errorf("profiles = %+v", r.Profiles)
	}
}

func TestBuildWithoutForecast(t *testing.T) {
	now := time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC)
	r, err := Build(mission.Demo(), nil, 500, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// default weather sample stands in for the missing forecast
	if r.Weather.Temperature != meteo.DefaultTemperature {
		t.Errorf("temperature = %v, expected default", r.Weather.Temperature)
	}
	// the demo window generator backs the analysis
	if r.Windows.Allowed+r.Windows.Restricted+r.Windows.Forbidden != 48 {
		t.Errorf("window counts = %+v, expected 48 total", r.Windows)
	}
	if len(r.Profiles.Wind) != 0 {
		t.Errorf("expected empty profiles, got %d entries", len(r.Profiles.Wind))
	}
	if r.Plan == nil {
		t.Fatal("expected a route plan")
	}
}

func TestBuildSummaryWarnsOnFewWindows(t *testing.T) {
	// wind 12 restricts every window
	h := calmHourly(6)
	for i := range h.WindSpeed {
		h.WindSpeed[i] = ptr(12)
	}

	r, err := Build(mission.Demo(), h, 500, time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(r.Summary[0], "alternative time") {
		t.Errorf("expected low-availability warning first, got %v", r.Summary)
	}
	if r.Departure.Recommended {
		t.Error("expected no departure recommendation")
	}
}

func TestBuildInterpolatesWindAloft(t *testing.T) {
	h := calmHourly(3)
	for i := 0; i < 3; i++ {
		h.WindSpeed950 = append(h.WindSpeed950, ptr(8))
		h.WindSpeed925 = append(h.WindSpeed925, ptr(12))
		h.WindDirection950 = append(h.WindDirection950, ptr(240))
		h.WindDirection925 = append(h.WindDirection925, ptr(240))
	}

	// demo aerodrome sits at 195 m MSL, so 500 m AGL lands between the
	// 950 hPa (550 m) and 925 hPa (800 m) levels at ratio 0.58
	r, err := Build(mission.Demo(), h, 500, time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Aloft == nil || r.Aloft.WindSpeed == nil {
		t.Fatalf("expected interpolated wind aloft, got %+v", r.Aloft)
	}
	if got := *r.Aloft.WindSpeed; got < 10.31 || got > 10.33 {
		t.Errorf("wind aloft = %v, expected 10.32", got)
	}

	// the route plan budgets against the stronger wind aloft
	surface, err := Build(mission.Demo(), calmHourly(3), 500, time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Plan.Summary.TotalEnergy == surface.Plan.Summary.TotalEnergy {
		t.Error("expected wind aloft to change the route energy budget")
	}
}

func TestBuildUniqueIDs(t *testing.T) {
	now := time.Now()
	a, err := Build(mission.Demo(), calmHourly(3), 500, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Build(mission.Demo(), calmHourly(3), 500, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == b.ID {
		t.Error("report IDs must be unique")
	}
}
