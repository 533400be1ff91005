// Package distance defines the two-field road distance result consumed by the
// estimation engine and a haversine-based approximation used when no external
// resolver answered in time.
package distance

import (
	"context"
	"math"
)

// Source tags where a resolved distance came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
	// SourceApprox marks a great-circle approximation computed locally from
	// coordinates, used for previews before address resolution completes.
	SourceApprox Source = "approx"
)

// Result is the resolved road distance between two sites.
type Result struct {
	Km     float64
	Source Source
}

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// Resolver resolves the road distance between two points. Implementations
// may consult a cache or a live routing service.
type Resolver interface {
	Resolve(ctx context.Context, from, to Point) (Result, error)
}

const (
	earthRadiusKm = 6371
	// roadFactor inflates the great-circle distance to approximate actual
	// road distance; minApproxKm keeps city moves from quoting near-zero drives.
	roadFactor  = 1.25
	minApproxKm = 3
)

// Approximate returns a road distance estimate from the great-circle
// distance between two coordinates. It never fails and is used as the
// resolver of last resort for live previews.
func Approximate(from, to Point) Result {
	km := haversineKm(from, to) * roadFactor
	if km < minApproxKm {
		km = minApproxKm
	}
	return Result{Km: math.Round(km*100) / 100, Source: SourceApprox}
}

func haversineKm(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180

	x := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(x), math.Sqrt(1-x))
	return earthRadiusKm * c
}
