package coords

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/geodesic"
)

// ErrInvalidCoordinate is returned when a distance endpoint cannot be parsed.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// MetersPerMile is the international statute mile.
const MetersPerMile = 1609.344

// Proximity thresholds in miles.
const (
	OKMiles      = 2.0
	WarningMiles = 2.5
)

// Proximity classifies how far a solved coordinate is from the listed one.
type Proximity string

const (
	ProximityOK      Proximity = "ok"
	ProximityWarning Proximity = "warning"
	ProximityFar     Proximity = "far"
)

// DistanceResult is a geodesic distance with its proximity class.
type DistanceResult struct {
	Meters float64   `json:"meters"`
	Miles  float64   `json:"miles"`
	Status Proximity `json:"status"`
}

// Classify maps a distance in miles to a proximity class.
func Classify(miles float64) Proximity {
	switch {
	case miles <= OKMiles:
		return ProximityOK
	case miles <= WarningMiles:
		return ProximityWarning
	default:
		return ProximityFar
	}
}

// Distance computes the WGS84 geodesic distance between two DDM positions.
func Distance(originLat, originLon, destLat, destLon string) (DistanceResult, error) {
	origin := ToDecimal(originLat, originLon)
	if !origin.Complete() {
		return DistanceResult{}, fmt.Errorf("origin %q %q: %w", originLat, originLon, ErrInvalidCoordinate)
	}
	dest := ToDecimal(destLat, destLon)
	if !dest.Complete() {
		return DistanceResult{}, fmt.Errorf("destination %q %q: %w", destLat, destLon, ErrInvalidCoordinate)
	}
	return DistanceDecimal(*origin.Latitude, *origin.Longitude, *dest.Latitude, *dest.Longitude), nil
}

// DistanceDecimal computes the WGS84 geodesic distance between two decimal positions
// using Karney's inverse solution.
func DistanceDecimal(lat1, lon1, lat2, lon2 float64) DistanceResult {
	var meters float64
	geodesic.WGS84.Inverse(lat1, lon1, lat2, lon2, &meters, nil, nil)

	miles := meters / MetersPerMile
	return DistanceResult{
		Meters: round2(meters),
		Miles:  round2(miles),
		Status: Classify(miles),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
