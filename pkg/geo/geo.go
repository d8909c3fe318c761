// Package geo provides great-circle distance and travel-time estimates
// between catalog coordinates.
package geo

import (
	"github.com/golang/geo/s2"
	"github.com/shopspring/decimal"
)

// EarthRadiusKm is the mean Earth radius used for all distance figures.
const EarthRadiusKm = 6371.0

// MinTravelMinutes is the floor applied to every travel-time estimate.
const MinTravelMinutes = 5

// Point is a coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lng" yaml:"lng"`
}

// Valid reports whether p lies inside the latitude/longitude ranges.
func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// DistanceKm returns the great-circle distance between two coordinates.
// s2 computes the central angle with the haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lon1)
	b := s2.LatLngFromDegrees(lat2, lon2)
	d := a.Distance(b).Radians() * EarthRadiusKm
	if d < 0 {
		return 0
	}
	return d
}

// Distance is DistanceKm for two Points.
func Distance(a, b Point) float64 {
	return DistanceKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// Speed profile per urgency label in km/h. Unknown labels use the LOW profile.
var averageSpeedKmh = map[string]float64{
	"HIGH":   35,
	"MEDIUM": 25,
	"LOW":    20,
}

// TravelTimeMinutes estimates door-to-door minutes for a trip of distanceKm
// under the given urgency label.
func TravelTimeMinutes(distanceKm float64, urgency string) int {
	speed, ok := averageSpeedKmh[urgency]
	if !ok {
		speed = averageSpeedKmh["LOW"]
	}
	if distanceKm < 0 {
		distanceKm = 0
	}

	var buffer float64
	switch {
	case distanceKm < 3:
		buffer = 5
	case distanceKm < 10:
		buffer = 10
	default:
		buffer = 15
	}

	minutes := int(distanceKm/speed*60 + buffer)
	if minutes < MinTravelMinutes {
		return MinTravelMinutes
	}
	return minutes
}

// Round2 rounds v half away from zero to two decimal places.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
