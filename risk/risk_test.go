package risk

import (
	"errors"
	"math"
	"testing"

	"github.com/devskill-org/preflight/meteo"
)

const epsilon = 0.0001

func TestIcingRisk(t *testing.T) {
	tests := []struct {
		name          string
		temp          float64
		humidity      float64
		precipitation float64
		expected      float64
	}{
		{
			// tempFactor = 1 - 0/10 = 1, humidityFactor = 1, precipFactor = 1
			name:          "worst case at freezing with rain",
			temp:          0,
			humidity:      100,
			precipitation: 1,
			expected:      1.0,
		},
		{
			// tempFactor = 1 - 8/10 = 0.2, humidityFactor = 0.7, precipFactor = 0.3
			name:          "cold and dry without precipitation",
			temp:          -8,
			humidity:      70,
			precipitation: 0,
			expected:      0.2 * 0.7 * 0.3,
		},
		{
			// |temp| = 12 > 10 so tempFactor clamps to 0
			name:          "deep cold gives zero risk",
			temp:          -12,
			humidity:      100,
			precipitation: 2,
			expected:      0,
		},
		{
			name:          "warm air gives zero risk",
			temp:          15,
			humidity:      100,
			precipitation: 2,
			expected:      0,
		},
		{
			// precipitation exactly 0.1 stays on the dry factor
			name:          "trace precipitation uses dry factor",
			temp:          0,
			humidity:      100,
			precipitation: 0.1,
			expected:      0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IcingRisk(tt.temp, tt.humidity, tt.precipitation)
			if math.Abs(got-tt.expected) > epsilon {
				t.Errorf("IcingRisk(%v, %v, %v) = %v, expected %v",
					tt.temp, tt.humidity, tt.precipitation, got, tt.expected)
			}
			if got < 0 || got > 1 {
				t.Errorf("IcingRisk out of [0,1]: %v", got)
			}
		})
	}
}

func TestFogProbability(t *testing.T) {
	tests := []struct {
		name      string
		temp      float64
		dewpoint  float64
		humidity  float64
		windSpeed float64
		expected  float64
	}{
		{
			// spread 1°C: 1 - 1/2 = 0.5
			name:      "saturated calm air",
			temp:      -8,
			dewpoint:  -9,
			humidity:  95,
			windSpeed: 2,
			expected:  0.5,
		},
		{
			name:      "humidity at threshold gives zero",
			temp:      -8,
			dewpoint:  -9,
			humidity:  90,
			windSpeed: 2,
			expected:  0,
		},
		{
			name:      "wind at threshold gives zero",
			temp:      -8,
			dewpoint:  -9,
			humidity:  95,
			windSpeed: 5,
			expected:  0,
		},
		{
			// spread 6°C drives the probability below zero, so zero
			name:      "wide spread gives zero",
			temp:      0,
			dewpoint:  -6,
			humidity:  95,
			windSpeed: 1,
			expected:  0,
		},
		{
			// zero spread gives the maximum
			name:      "dewpoint equals temperature",
			temp:      -5,
			dewpoint:  -5,
			humidity:  99,
			windSpeed: 0,
			expected:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FogProbability(tt.temp, tt.dewpoint, tt.humidity, tt.windSpeed)
			if math.Abs(got-tt.expected) > epsilon {
				t.Errorf("FogProbability(%v, %v, %v, %v) = %v, expected %v",
					tt.temp, tt.dewpoint, tt.humidity, tt.windSpeed, got, tt.expected)
			}
		})
	}
}

func TestCloudBase(t *testing.T) {
	// spread 4°C: 125 * 4 = 500 m
	if got := CloudBase(-8, -12); math.Abs(got-500) > epsilon {
		t.Errorf("CloudBase(-8, -12) = %v, expected 500", got)
	}
	// saturated surface goes negative, no clamping
	if got := CloudBase(-5, -3); math.Abs(got-(-250)) > epsilon {
		t.Errorf("CloudBase(-5, -3) = %v, expected -250", got)
	}
	if got := CloudBase(10, 10); got != 0 {
		t.Errorf("CloudBase(10, 10) = %v, expected 0", got)
	}
}

func TestTurbulenceIndex(t *testing.T) {
	// shear 4 m/s over 200 m: |4/2| * |1.5/200| = 2 * 0.0075 = 0.015
	got, err := TurbulenceIndex(4, 1.5, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-0.015) > epsilon {
		t.Errorf("TurbulenceIndex(4, 1.5, 200) = %v, expected 0.015", got)
	}

	// negative inputs produce the same magnitude
	got, err = TurbulenceIndex(-4, -1.5, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-0.015) > epsilon {
		t.Errorf("TurbulenceIndex(-4, -1.5, 200) = %v, expected 0.015", got)
	}

	if _, err := TurbulenceIndex(4, 1.5, 0); !errors.Is(err, ErrZeroHeightDiff) {
		t.Errorf("expected ErrZeroHeightDiff, got %v", err)
	}
}

func TestFlightStatus(t *testing.T) {
	tests := []struct {
		name     string
		c        Conditions
		expected Status
	}{
		{
			name:     "calm clear day is allowed",
			c:        Conditions{WindSpeed: 5, VisibilityKm: 10, Precipitation: 0, Icing: 0.1, Fog: 0},
			expected: StatusAllowed,
		},
		{
			name:     "strong wind is forbidden",
			c:        Conditions{WindSpeed: 16, VisibilityKm: 10},
			expected: StatusForbidden,
		},
		{
			name:     "moderate wind is restricted",
			c:        Conditions{WindSpeed: 12, VisibilityKm: 10},
			expected: StatusRestricted,
		},
		{
			name:     "low visibility is forbidden",
			c:        Conditions{WindSpeed: 3, VisibilityKm: 2.5},
			expected: StatusForbidden,
		},
		{
			name:     "reduced visibility is restricted",
			c:        Conditions{WindSpeed: 3, VisibilityKm: 4},
			expected: StatusRestricted,
		},
		{
			name:     "heavy precipitation is forbidden",
			c:        Conditions{WindSpeed: 3, VisibilityKm: 10, Precipitation: 3},
			expected: StatusForbidden,
		},
		{
			name:     "high icing is forbidden",
			c:        Conditions{WindSpeed: 3, VisibilityKm: 10, Icing: 0.7},
			expected: StatusForbidden,
		},
		{
			name:     "moderate icing is restricted",
			c:        Conditions{WindSpeed: 3, VisibilityKm: 10, Icing: 0.4},
			expected: StatusRestricted,
		},
		{
			name:     "dense fog is restricted",
			c:        Conditions{WindSpeed: 3, VisibilityKm: 10, Fog: 0.8},
			expected: StatusRestricted,
		},
		{
			// fog alone never reaches forbidden in this policy
			name:     "maximum fog alone stays restricted",
			c:        Conditions{WindSpeed: 3, VisibilityKm: 10, Fog: 1},
			expected: StatusRestricted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlightStatus(tt.c); got != tt.expected {
				t.Errorf("FlightStatus(%+v) = %v, expected %v", tt.c, got, tt.expected)
			}
		})
	}
}

func TestFlightStatusWindMonotonicity(t *testing.T) {
	// status never improves as the wind picks up
	rank := map[Status]int{StatusAllowed: 0, StatusRestricted: 1, StatusForbidden: 2}
	prev := StatusAllowed
	for wind := 0.0; wind <= 25; wind += 0.5 {
		got := FlightStatus(Conditions{WindSpeed: wind, VisibilityKm: 10})
		if rank[got] < rank[prev] {
			t.Fatalf("status improved from %v to %v at wind %v", prev, got, wind)
		}
		prev = got
	}
}

func TestSafetyRating(t *testing.T) {
	tests := []struct {
		name           string
		c              Conditions
		expectedRating float64
		expectedStatus Status
		expectedScores Scores
	}{
		{
			// all dimensions at the best band: 8/8 = 1.0
			name:           "perfect conditions",
			c:              Conditions{WindSpeed: 3, VisibilityKm: 10, Precipitation: 0, Icing: 0},
			expectedRating: 1.0,
			expectedStatus: StatusAllowed,
			expectedScores: Scores{Wind: 2, Visibility: 2, Precipitation: 2, Icing: 2},
		},
		{
			// wind 1, visibility 1, precipitation 2, icing 1: 5/8 = 0.625
			name:           "marginal conditions",
			c:              Conditions{WindSpeed: 12, VisibilityKm: 4, Precipitation: 1, Icing: 0.4},
			expectedRating: 0.625,
			expectedStatus: StatusRestricted,
			expectedScores: Scores{Wind: 1, Visibility: 1, Precipitation: 2, Icing: 1},
		},
		{
			// everything at the worst band: 0/8
			name:           "severe conditions",
			c:              Conditions{WindSpeed: 20, VisibilityKm: 1, Precipitation: 5, Icing: 0.9},
			expectedRating: 0,
			expectedStatus: StatusForbidden,
			expectedScores: Scores{Wind: 0, Visibility: 0, Precipitation: 0, Icing: 0},
		},
		{
			// 6/8 = 0.75 crosses the allowed threshold
			name:           "single marginal dimension stays allowed",
			c:              Conditions{WindSpeed: 12, VisibilityKm: 10, Precipitation: 0, Icing: 0.1},
			expectedRating: 0.75,
			expectedStatus: StatusAllowed,
			expectedScores: Scores{Wind: 1, Visibility: 2, Precipitation: 2, Icing: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafetyRating(tt.c)
			if math.Abs(got.Rating-tt.expectedRating) > epsilon {
				t.Errorf("rating = %v, expected %v", got.Rating, tt.expectedRating)
			}
			if got.Status != tt.expectedStatus {
				t.Errorf("status = %v, expected %v", got.Status, tt.expectedStatus)
			}
			if got.Scores != tt.expectedScores {
				t.Errorf("scores = %+v, expected %+v", got.Scores, tt.expectedScores)
			}
		})
	}
}

func TestSafetyRatingDisagreesWithFlightStatus(t *testing.T) {
	// fog influences FlightStatus but not the banded rating, so the two
	// classifiers disagree here by design of their separate threshold sets
	c := Conditions{WindSpeed: 3, VisibilityKm: 10, Precipitation: 0, Icing: 0.1, Fog: 0.9}
	if got := FlightStatus(c); got != StatusRestricted {
		t.Errorf("FlightStatus = %v, expected restricted", got)
	}
	if got := SafetyRating(c); got.Status != StatusAllowed {
		t.Errorf("SafetyRating status = %v, expected allowed", got.Status)
	}
}

func TestAssess(t *testing.T) {
	s := meteo.Sample{
		Temperature:   -8,
		Humidity:      70,
		Dewpoint:      -12,
		WindSpeed:     5,
		WindDirection: 240,
		Precipitation: 0,
		Visibility:    10000,
		CloudCover:    30,
	}

	a := Assess(s)

	// 0.2 * 0.7 * 0.3 = 0.042
	if math.Abs(a.IcingRisk-0.042) > epsilon {
		t.Errorf("icing risk = %v, expected 0.042", a.IcingRisk)
	}
	if a.FogProbability != 0 {
		t.Errorf("fog probability = %v, expected 0", a.FogProbability)
	}
	if math.Abs(a.CloudBase-500) > epsilon {
		t.Errorf("cloud base = %v, expected 500", a.CloudBase)
	}
	if a.Status != StatusAllowed {
		t.Errorf("status = %v, expected allowed", a.Status)
	}
	if math.Abs(a.SafetyRating-1.0) > epsilon {
		t.Errorf("safety rating = %v, expected 1.0", a.SafetyRating)
	}
}

func TestAssessVisibilityUnitConversion(t *testing.T) {
	// 2500 m visibility must classify as 2.5 km, below the forbidden bound
	s := meteo.Sample{
		Temperature: 10,
		Humidity:    50,
		Dewpoint:    2,
		WindSpeed:   3,
		Visibility:  2500,
	}
	if a := Assess(s); a.Status != StatusForbidden {
		t.Errorf("status = %v, expected forbidden for 2.5 km visibility", a.Status)
	}
}
