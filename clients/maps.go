package clients

import (
	"context"
	"fmt"
	"time"

	maps "googlemaps.github.io/maps"

	"github.com/rechargetravels/booking/models/transfer_models"
)

// MapsRouteClient resolves road distance via the Google Directions API. It
// satisfies route_models.RouteLookup; callers fall back to haversine or the
// route table when it errors.
type MapsRouteClient struct {
	client *maps.Client
}

// NewMapsRouteClient builds a directions client, or an error when the API key
// is rejected by the SDK.
func NewMapsRouteClient(apiKey string) (*MapsRouteClient, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("maps.NewClient: %w", err)
	}
	return &MapsRouteClient{client: c}, nil
}

// Distance returns the driving distance and duration of the first suggested
// route between two points.
func (m *MapsRouteClient) Distance(ctx context.Context, origin, dest transfer_models.LatLng) (float64, time.Duration, error) {
	req := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", origin.Lat, origin.Lng),
		Destination: fmt.Sprintf("%f,%f", dest.Lat, dest.Lng),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := m.client.Directions(ctx, req)
	if err != nil {
		return 0, 0, fmt.Errorf("directions lookup: %w", err)
	}
	if len(routes) == 0 {
		return 0, 0, fmt.Errorf("directions lookup: no routes")
	}

	var meters int
	var duration time.Duration
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
		duration += leg.Duration
	}

	return float64(meters) / 1000, duration, nil
}
