// Package mission loads and validates the mission file: operation metadata,
// the waypoint route, landing zones, and restricted zones.
package mission

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/devskill-org/preflight/route"
)

// Info identifies the operation.
type Info struct {
	Name string `json:"name"`
	Date string `json:"date"` // YYYY-MM-DD
}

// Aerodrome describes the departure aerodrome.
type Aerodrome struct {
	Name      string  `json:"name"`
	ICAO      string  `json:"icao"`
	Elevation float64 `json:"elevation"` // m MSL
}

// Aircraft identifies the airframe flying the mission. Unset performance
// fields fall back to the reference profile when planning.
type Aircraft struct {
	Model           string  `json:"model"`
	Speed           float64 `json:"speed"`            // km/h cruise
	BatteryCapacity float64 `json:"battery_capacity"` // mAh
}

// Profile converts the mission aircraft into a planning profile.
func (a Aircraft) Profile() route.Aircraft {
	return route.Aircraft{
		CruiseSpeed:     a.Speed,
		BatteryCapacity: a.BatteryCapacity,
	}
}

// Zone is a circular area of interest on the map.
type Zone struct {
	Lat    float64     `json:"lat"`
	Lon    float64     `json:"lon"`
	Radius float64     `json:"radius"` // m
	Name   string      `json:"name"`
	Level  route.Level `json:"level,omitempty"` // set for risk zones only
}

// Coordinates carries the geometry of the mission.
type Coordinates struct {
	Start        route.Waypoint   `json:"start"`
	Route        []route.Waypoint `json:"route"`
	LandingZones []Zone           `json:"landing_zones,omitempty"`
	RiskZones    []Zone           `json:"risk_zones,omitempty"`
}

// Mission is the full mission file.
type Mission struct {
	Info        Info        `json:"mission"`
	Coordinates Coordinates `json:"coordinates"`
	Aerodrome   Aerodrome   `json:"aerodrome"`
	Aircraft    Aircraft    `json:"aircraft"`
}

// Load loads a mission from a JSON file.
func Load(filename string) (*Mission, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open mission file: %w", err)
	}
	defer file.Close()

	return LoadFromReader(file)
}

// LoadFromReader loads a mission from an io.Reader.
func LoadFromReader(reader io.Reader) (*Mission, error) {
	var m Mission

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode mission JSON: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mission: %w", err)
	}

	return &m, nil
}

// Validate checks the mission geometry before it reaches planning.
func (m *Mission) Validate() error {
	if m.Info.Name == "" {
		return fmt.Errorf("mission name cannot be empty")
	}

	if len(m.Coordinates.Route) < 2 {
		return fmt.Errorf("route must have at least 2 waypoints, got: %d", len(m.Coordinates.Route))
	}

	points := append([]route.Waypoint{m.Coordinates.Start}, m.Coordinates.Route...)
	for _, p := range points {
		if p.Lat < -90 || p.Lat > 90 {
			return fmt.Errorf("latitude must be between -90 and 90, got: %f", p.Lat)
		}
		if p.Lon < -180 || p.Lon > 180 {
			return fmt.Errorf("longitude must be between -180 and 180, got: %f", p.Lon)
		}
	}

	for _, z := range append(append([]Zone{}, m.Coordinates.LandingZones...), m.Coordinates.RiskZones...) {
		if z.Radius < 0 {
			return fmt.Errorf("zone %q radius must be non-negative, got: %f", z.Name, z.Radius)
		}
	}

	return nil
}

// Demo returns the built-in reference mission used when no mission file is
// available.
func Demo() *Mission {
	return &Mission{
		Info: Info{Name: "Severny survey", Date: "2026-02-13"},
		Coordinates: Coordinates{
			Start: route.Waypoint{Lat: 55.302107, Lon: 66.598778, Name: "launch"},
			Route: []route.Waypoint{
				{Lat: 55.294118, Lon: 66.074007, Name: "route start", Altitude: 500},
				{Lat: 55.275456, Lon: 66.235891, Name: "checkpoint 1", Altitude: 600},
				{Lat: 55.268234, Lon: 66.412567, Name: "checkpoint 2", Altitude: 750},
				{Lat: 55.256834, Lon: 66.970183, Name: "route end", Altitude: 500},
			},
			LandingZones: []Zone{
				{Lat: 55.285, Lon: 66.150, Radius: 500, Name: "landing zone 1"},
				{Lat: 55.270, Lon: 66.420, Radius: 500, Name: "landing zone 2"},
				{Lat: 55.260, Lon: 66.850, Radius: 500, Name: "landing zone 3"},
			},
			RiskZones: []Zone{
				{Lat: 55.280, Lon: 66.300, Radius: 2000, Name: "turbulence area", Level: route.LevelModerate},
				{Lat: 55.265, Lon: 66.700, Radius: 1500, Name: "restricted area", Level: route.LevelHigh},
			},
		},
		Aerodrome: Aerodrome{Name: "Severny", ICAO: "USKK", Elevation: 195},
		Aircraft:  Aircraft{Model: "DJI M300 RTK", Speed: 62, BatteryCapacity: 25300},
	}
}

// LoadOrDemo loads the mission file when the path is set and falls back to
// the built-in demo mission otherwise.
func LoadOrDemo(filename string) (*Mission, error) {
	if filename == "" {
		return Demo(), nil
	}
	return Load(filename)
}
