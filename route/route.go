// Package route computes great-circle route segments, wind-adjusted ground
// speed and energy consumption, the point of no return, and overall flight
// feasibility for a battery-powered aircraft.
package route

import (
	"errors"
	"fmt"
	"math"

	"github.com/devskill-org/preflight/wind"
)

// earthRadiusKm is the mean Earth radius used by the haversine distance.
const earthRadiusKm = 6371

// minGroundSpeed is the floor below which a ground speed cannot produce a
// meaningful segment time.
const minGroundSpeed = 0.1

// ErrNoGroundSpeed is returned when wind cancels the airspeed almost exactly
// and the aircraft cannot make progress along the course.
var ErrNoGroundSpeed = errors.New("ground speed too low to complete segment")

// InvalidWaypointError reports a waypoint with out-of-range coordinates.
type InvalidWaypointError struct {
	Index int
	Field string
	Value float64
}

func (e *InvalidWaypointError) Error() string {
	return fmt.Sprintf("waypoint %d: %s %v out of range", e.Index, e.Field, e.Value)
}

// Waypoint is one route point. Altitude is meters above ground and defaults
// to 500 when left zero.
type Waypoint struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Name     string  `json:"name,omitempty"`
	Altitude float64 `json:"altitude,omitempty"`
}

// DefaultAltitude is assumed for waypoints that do not specify one.
const DefaultAltitude = 500

// Wind is the wind model applied uniformly over the route. Zero fields fall
// back to the standard 5 m/s from 240 degrees.
type Wind struct {
	Speed     float64 `json:"speed"`     // m/s
	Direction float64 `json:"direction"` // degrees, meteorological
}

// DefaultWind returns the fallback wind model.
func DefaultWind() Wind {
	return Wind{Speed: 5, Direction: 240}
}

func (w Wind) withDefaults() Wind {
	d := DefaultWind()
	if w.Speed == 0 {
		w.Speed = d.Speed
	}
	if w.Direction == 0 {
		w.Direction = d.Direction
	}
	return w
}

// Aircraft is the performance profile used for time and energy budgeting.
type Aircraft struct {
	CruiseSpeed       float64 `json:"cruise_speed"`        // km/h
	BatteryCapacity   float64 `json:"battery_capacity"`    // mAh
	ConsumptionRate   float64 `json:"consumption_rate"`    // mAh/min
	MinReservePercent float64 `json:"min_reserve_percent"` // % of capacity kept in reserve
}

// DefaultAircraft returns the reference quadcopter profile.
func DefaultAircraft() Aircraft {
	return Aircraft{
		CruiseSpeed:       62,
		BatteryCapacity:   25300,
		ConsumptionRate:   177.3,
		MinReservePercent: 25,
	}
}

func (a Aircraft) withDefaults() Aircraft {
	d := DefaultAircraft()
	if a.CruiseSpeed == 0 {
		a.CruiseSpeed = d.CruiseSpeed
	}
	if a.BatteryCapacity == 0 {
		a.BatteryCapacity = d.BatteryCapacity
	}
	if a.ConsumptionRate == 0 {
		a.ConsumptionRate = d.ConsumptionRate
	}
	if a.MinReservePercent == 0 {
		a.MinReservePercent = d.MinReservePercent
	}
	return a
}

// minReserve is the energy kept untouched as the landing reserve.
func (a Aircraft) minReserve() float64 {
	return a.BatteryCapacity * a.MinReservePercent / 100
}

// Level is the qualitative segment risk classification.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// Distance returns the great-circle distance between two coordinates in km.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Course returns the initial great-circle bearing from the first coordinate
// to the second, in degrees [0, 360).
func Course(lat1, lon1, lat2, lon2 float64) float64 {
	dLon := (lon2 - lon1) * math.Pi / 180
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) -
		math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLon)

	bearing := math.Atan2(y, x) * 180 / math.Pi
	return wind.NormalizeAngle(bearing)
}

// GroundSpeed combines airspeed and the wind vector along the course by the
// law of cosines. Airspeed is km/h and wind speed m/s; the reference
// implementation mixes the units this way and every downstream energy budget
// is calibrated against it, so the mix is kept.
func GroundSpeed(airspeed float64, w Wind, course float64) (float64, error) {
	windAngle := (w.Direction - course) * math.Pi / 180
	gs := math.Sqrt(airspeed*airspeed + w.Speed*w.Speed +
		2*airspeed*w.Speed*math.Cos(windAngle))
	if gs < minGroundSpeed {
		return 0, ErrNoGroundSpeed
	}
	return gs, nil
}

// EnergyCoefficient scales consumption by the wind components. Headwind
// raises it, tailwind lowers it, crosswind adds a correction penalty.
func EnergyCoefficient(c wind.Components) float64 {
	return 1.0 + 0.12*(c.Headwind/5) - 0.08*(c.Tailwind/5) + 0.05*(c.Crosswind/5)
}

// Segment is one leg between consecutive waypoints with its derived metrics.
type Segment struct {
	Index       int             `json:"index"`
	Name        string          `json:"name"`
	Start       Waypoint        `json:"start"`
	End         Waypoint        `json:"end"`
	Distance    float64         `json:"distance"`     // km
	Course      float64         `json:"course"`       // degrees
	Wind        wind.Components `json:"wind"`         // m/s
	GroundSpeed float64         `json:"ground_speed"` // km/h
	Time        float64         `json:"time"`         // minutes
	EnergyCoeff float64         `json:"energy_coeff"`
	Energy      float64         `json:"energy"` // mAh
	Risk        Level           `json:"risk"`
}

// Segments builds the per-leg metrics for an ordered waypoint sequence.
// Coordinates are validated up front; fewer than two waypoints yields an
// empty route rather than an error.
func Segments(points []Waypoint, w Wind, aircraft Aircraft) ([]Segment, error) {
	if err := validatePoints(points); err != nil {
		return nil, err
	}

	w = w.withDefaults()
	aircraft = aircraft.withDefaults()

	segments := make([]Segment, 0)
	for i := 0; i+1 < len(points); i++ {
		start, end := normalize(points[i], i), normalize(points[i+1], i+1)

		distance := Distance(start.Lat, start.Lon, end.Lat, end.Lon)
		course := Course(start.Lat, start.Lon, end.Lat, end.Lon)
		components := wind.Resolve(w.Speed, w.Direction, course)

		groundSpeed, err := GroundSpeed(aircraft.CruiseSpeed, w, course)
		if err != nil {
			return nil, fmt.Errorf("segment %d (%s): %w", i+1, segmentName(start, end), err)
		}

		timeMinutes := distance / groundSpeed * 60
		coeff := EnergyCoefficient(components)
		energy := timeMinutes * aircraft.ConsumptionRate * coeff

		segments = append(segments, Segment{
			Index:       i + 1,
			Name:        segmentName(start, end),
			Start:       start,
			End:         end,
			Distance:    distance,
			Course:      course,
			Wind:        components,
			GroundSpeed: groundSpeed,
			Time:        timeMinutes,
			EnergyCoeff: coeff,
			Energy:      energy,
			Risk:        segmentRisk(w.Speed, components.Crosswind),
		})
	}

	return segments, nil
}

func segmentName(start, end Waypoint) string {
	return start.Name + " - " + end.Name
}

func normalize(p Waypoint, i int) Waypoint {
	if p.Name == "" {
		p.Name = fmt.Sprintf("point %d", i+1)
	}
	if p.Altitude == 0 {
		p.Altitude = DefaultAltitude
	}
	return p
}

func validatePoints(points []Waypoint) error {
	for i, p := range points {
		if p.Lat < -90 || p.Lat > 90 || math.IsNaN(p.Lat) {
			return &InvalidWaypointError{Index: i, Field: "latitude", Value: p.Lat}
		}
		if p.Lon < -180 || p.Lon > 180 || math.IsNaN(p.Lon) {
			return &InvalidWaypointError{Index: i, Field: "longitude", Value: p.Lon}
		}
	}
	return nil
}

func segmentRisk(windSpeed, crosswind float64) Level {
	if windSpeed > 15 || crosswind > 10 {
		return LevelHigh
	}
	if windSpeed > 10 || crosswind > 5 {
		return LevelModerate
	}
	return LevelLow
}

// PNR describes the point of no return: the farthest point along the route
// from which the aircraft can still turn back and land within reserve.
type PNR struct {
	Distance        float64 `json:"distance"` // km outbound
	Time            float64 `json:"time"`     // minutes outbound
	MinReserve      float64 `json:"min_reserve"`
	AvailableEnergy float64 `json:"available_energy"`
	Index           int     `json:"index"` // segments fully completed before PNR
}

// PointOfNoReturn walks the segments budgeting each leg at twice its energy
// to cover the return, then interpolates into the first leg that no longer
// fits. An empty route pins the PNR at the start.
func PointOfNoReturn(segments []Segment, aircraft Aircraft) PNR {
	aircraft = aircraft.withDefaults()

	minReserve := aircraft.minReserve()
	available := aircraft.BatteryCapacity - minReserve

	var accEnergy, accDistance, accTime float64
	index := 0
	for _, s := range segments {
		if accEnergy+s.Energy*2 > available {
			break
		}
		accEnergy += s.Energy
		accDistance += s.Distance
		accTime += s.Time
		index = s.Index
	}

	if index < len(segments) {
		next := segments[index]
		ratio := (available - accEnergy) / (next.Energy * 2)
		accDistance += next.Distance * ratio
		accTime += next.Time * ratio
	}

	return PNR{
		Distance:        accDistance,
		Time:            accTime,
		MinReserve:      minReserve,
		AvailableEnergy: available,
		Index:           index,
	}
}

// Feasibility is the energy budget verdict for the whole route.
type Feasibility struct {
	Feasible       bool    `json:"feasible"`
	TotalEnergy    float64 `json:"total_energy"`   // mAh
	TotalDistance  float64 `json:"total_distance"` // km
	TotalTime      float64 `json:"total_time"`     // minutes
	MinReserve     float64 `json:"min_reserve"`
	RequiredEnergy float64 `json:"required_energy"`
	Margin         float64 `json:"margin"`
	MarginPercent  float64 `json:"margin_percent"`
}

// CheckFeasibility sums the route totals and verifies the battery covers the
// route plus the landing reserve. An empty route is trivially feasible.
func CheckFeasibility(segments []Segment, aircraft Aircraft) Feasibility {
	aircraft = aircraft.withDefaults()

	var totalEnergy, totalDistance, totalTime float64
	for _, s := range segments {
		totalEnergy += s.Energy
		totalDistance += s.Distance
		totalTime += s.Time
	}

	minReserve := aircraft.minReserve()
	required := totalEnergy + minReserve
	margin := aircraft.BatteryCapacity - required

	return Feasibility{
		Feasible:       required <= aircraft.BatteryCapacity,
		TotalEnergy:    totalEnergy,
		TotalDistance:  totalDistance,
		TotalTime:      totalTime,
		MinReserve:     minReserve,
		RequiredEnergy: required,
		Margin:         margin,
		MarginPercent:  margin / aircraft.BatteryCapacity * 100,
	}
}

// OverallRisk averages the per-segment risk scores. An empty route reads as
// low risk.
func OverallRisk(segments []Segment) Level {
	if len(segments) == 0 {
		return LevelLow
	}

	scores := map[Level]float64{LevelLow: 1, LevelModerate: 2, LevelHigh: 3}
	total := 0.0
	for _, s := range segments {
		total += scores[s.Risk]
	}
	avg := total / float64(len(segments))

	if avg < 1.5 {
		return LevelLow
	}
	if avg < 2.5 {
		return LevelModerate
	}
	return LevelHigh
}

// Summary carries the headline route numbers for display.
type Summary struct {
	TotalDistance float64 `json:"total_distance"` // km
	TotalTime     float64 `json:"total_time"`     // minutes
	TotalEnergy   float64 `json:"total_energy"`   // mAh
	RiskLevel     Level   `json:"risk_level"`
}

// Plan is the full route evaluation.
type Plan struct {
	Segments    []Segment   `json:"segments"`
	PNR         PNR         `json:"pnr"`
	Feasibility Feasibility `json:"feasibility"`
	Summary     Summary     `json:"summary"`
}

// BuildPlan evaluates a waypoint sequence end to end.
func BuildPlan(points []Waypoint, w Wind, aircraft Aircraft) (*Plan, error) {
	segments, err := Segments(points, w, aircraft)
	if err != nil {
		return nil, err
	}

	feasibility := CheckFeasibility(segments, aircraft)

	return &Plan{
		Segments:    segments,
		PNR:         PointOfNoReturn(segments, aircraft),
		Feasibility: feasibility,
		Summary: Summary{
			TotalDistance: feasibility.TotalDistance,
			TotalTime:     feasibility.TotalTime,
			TotalEnergy:   feasibility.TotalEnergy,
			RiskLevel:     OverallRisk(segments),
		},
	}, nil
}
