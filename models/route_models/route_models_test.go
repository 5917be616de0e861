package route_models

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rechargetravels/booking/logger"
	"github.com/rechargetravels/booking/models/transfer_models"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	os.Exit(m.Run())
}

type stubLookup struct {
	km  float64
	dur time.Duration
	err error
}

func (s stubLookup) Distance(ctx context.Context, origin, dest transfer_models.LatLng) (float64, time.Duration, error) {
	return s.km, s.dur, s.err
}

var (
	cmb   = transfer_models.LatLng{Lat: 7.1808, Lng: 79.8841}
	kandy = transfer_models.LatLng{Lat: 7.2906, Lng: 80.6337}
)

func TestEstimateRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("DirectionsPreferred", func(t *testing.T) {
		lookup := stubLookup{km: 115, dur: 3 * time.Hour}
		est := EstimateRoute(ctx, lookup, Request{Origin: &cmb, DestCoords: &kandy})

		assert.Equal(t, "directions", est.Source)
		assert.Equal(t, 115.0, est.DistanceKm)
		assert.Equal(t, 3*time.Hour, est.Duration)
		assert.False(t, est.Degraded)
	})

	t.Run("LookupFailureFallsBackToHaversine", func(t *testing.T) {
		lookup := stubLookup{err: errors.New("quota exceeded")}
		est := EstimateRoute(ctx, lookup, Request{Origin: &cmb, DestCoords: &kandy})

		assert.Equal(t, "haversine", est.Source)
		straight := Haversine(cmb, kandy)
		assert.InDelta(t, straight*RoadDistanceFactor, est.DistanceKm, 0.01)
	})

	t.Run("NilLookupUsesHaversine", func(t *testing.T) {
		est := EstimateRoute(ctx, nil, Request{Origin: &cmb, DestCoords: &kandy})
		assert.Equal(t, "haversine", est.Source)
	})

	t.Run("NamedAreaUsesTable", func(t *testing.T) {
		est := EstimateRoute(ctx, nil, Request{DestArea: "Kandy"})

		assert.Equal(t, "table", est.Source)
		assert.Equal(t, transfer_models.RouteDistances["kandy"], est.DistanceKm)
	})

	t.Run("UnknownAreaUsesFallbackNotZero", func(t *testing.T) {
		est := EstimateRoute(ctx, nil, Request{DestArea: "Atlantis"})

		assert.Equal(t, "fallback", est.Source)
		assert.Equal(t, DefaultFallbackKm, est.DistanceKm)
		assert.True(t, est.Degraded)
		assert.Greater(t, est.DistanceKm, 0.0)
	})

	t.Run("NoDestinationAtAllUsesFallback", func(t *testing.T) {
		est := EstimateRoute(ctx, nil, Request{})
		assert.Equal(t, "fallback", est.Source)
		assert.True(t, est.Degraded)
	})
}

func TestHaversine(t *testing.T) {
	// CMB to Kandy is roughly 85km as the crow flies.
	d := Haversine(cmb, kandy)
	assert.InDelta(t, 85, d, 5)

	assert.Equal(t, 0.0, Haversine(cmb, cmb))
}

func TestDurationFor(t *testing.T) {
	assert.Equal(t, time.Hour, DurationFor(AverageSpeedKmh))
	assert.Equal(t, time.Duration(0), DurationFor(0))
	assert.Equal(t, time.Duration(0), DurationFor(-5))
}
