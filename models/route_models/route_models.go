package route_models

import (
	"context"
	"math"
	"time"

	"github.com/rechargetravels/booking/logger"
	"github.com/rechargetravels/booking/models/transfer_models"
)

const (
	// RoadDistanceFactor inflates great-circle distance to approximate road
	// distance. Straight-line estimates undershoot Sri Lankan roads badly.
	RoadDistanceFactor = 1.3

	// AverageSpeedKmh drives duration estimates. No live traffic data.
	AverageSpeedKmh = 40.0

	// DefaultFallbackKm is used when a destination has no coordinates and no
	// route-table match, so a conservative estimate can still be shown.
	DefaultFallbackKm = 30.0

	lookupTimeout = 5 * time.Second
)

// RouteLookup resolves road distance and duration through an external
// directions provider. Implementations must respect the context deadline.
type RouteLookup interface {
	Distance(ctx context.Context, origin, dest transfer_models.LatLng) (km float64, duration time.Duration, err error)
}

// Request describes the two ends of a transfer. DestArea is the named
// destination fallback used when no coordinates are available.
type Request struct {
	Origin     *transfer_models.LatLng
	DestCoords *transfer_models.LatLng
	DestArea   string
}

// Estimate is the resolved route. Degraded marks estimates produced by the
// documented fallback policy rather than a measured distance.
type Estimate struct {
	DistanceKm float64       `json:"distance_km"`
	Duration   time.Duration `json:"duration"`
	Source     string        `json:"source"` // directions, haversine, table, fallback
	Degraded   bool          `json:"degraded"`
}

// EstimateRoute resolves a route using, in order: the external directions
// lookup, a haversine estimate over known coordinates, the named route table,
// and finally the default fallback distance. It never returns an error; a
// failed lookup degrades to the next source.
func EstimateRoute(ctx context.Context, lookup RouteLookup, req Request) Estimate {
	if req.Origin != nil && req.DestCoords != nil {
		if lookup != nil {
			lctx, cancel := context.WithTimeout(ctx, lookupTimeout)
			km, dur, err := lookup.Distance(lctx, *req.Origin, *req.DestCoords)
			cancel()
			if err == nil && km >= 0 {
				return Estimate{DistanceKm: km, Duration: dur, Source: "directions"}
			}
			logger.WarnLogger.Warnf("Directions lookup failed, falling back to haversine: %v", err)
		}
		km := Haversine(*req.Origin, *req.DestCoords) * RoadDistanceFactor
		return Estimate{DistanceKm: km, Duration: DurationFor(km), Source: "haversine"}
	}

	if req.DestArea != "" {
		if km, ok := transfer_models.RouteDistances[transfer_models.NormalizeArea(req.DestArea)]; ok {
			return Estimate{DistanceKm: km, Duration: DurationFor(km), Source: "table"}
		}
	}

	logger.WarnLogger.Warnf("No coordinates or route-table match for %q, using %vkm fallback", req.DestArea, DefaultFallbackKm)
	return Estimate{DistanceKm: DefaultFallbackKm, Duration: DurationFor(DefaultFallbackKm), Source: "fallback", Degraded: true}
}

// Haversine returns the great-circle distance between two points in km.
func Haversine(a, b transfer_models.LatLng) float64 {
	const earthRadiusKm = 6371

	lat1 := toRadians(a.Lat)
	lon1 := toRadians(a.Lng)
	lat2 := toRadians(b.Lat)
	lon2 := toRadians(b.Lng)

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// DurationFor converts a distance to an estimated travel time at the assumed
// average speed.
func DurationFor(km float64) time.Duration {
	if km <= 0 {
		return 0
	}
	return time.Duration(km / AverageSpeedKmh * float64(time.Hour))
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180)
}
