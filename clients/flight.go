package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rechargetravels/booking/logger"
)

// FlightInfo is the subset of flight status used to pre-fill pickup times.
type FlightInfo struct {
	FlightNumber     string `json:"flight_number"`
	Airline          string `json:"airline"`
	Status           string `json:"status"`
	ScheduledArrival string `json:"scheduled_arrival"`
	EstimatedArrival string `json:"estimated_arrival"`
}

// FlightLookup resolves a flight number to its current status. The flight
// step treats every failure as non-critical.
type FlightLookup interface {
	Lookup(ctx context.Context, flightNumber string) (*FlightInfo, error)
}

// HTTPFlightClient calls an aviationstack-compatible status endpoint.
type HTTPFlightClient struct {
	baseURL   string
	accessKey string
	client    *http.Client
}

// NewHTTPFlightClient reads FLIGHT_API_URL and FLIGHT_API_KEY. It returns nil
// when the integration is not configured; callers must treat a nil client as
// "no flight data".
func NewHTTPFlightClient() *HTTPFlightClient {
	baseURL := os.Getenv("FLIGHT_API_URL")
	accessKey := os.Getenv("FLIGHT_API_KEY")
	if baseURL == "" || accessKey == "" {
		logger.WarnLogger.Warn("Flight status lookup not configured (FLIGHT_API_URL / FLIGHT_API_KEY)")
		return nil
	}
	return &HTTPFlightClient{
		baseURL:   baseURL,
		accessKey: accessKey,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Lookup fetches the latest status record for a flight number.
func (c *HTTPFlightClient) Lookup(ctx context.Context, flightNumber string) (*FlightInfo, error) {
	endpoint := fmt.Sprintf("%s?access_key=%s&flight_iata=%s",
		c.baseURL, url.QueryEscape(c.accessKey), url.QueryEscape(flightNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to construct flight status request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flight status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flight status API returned %d", resp.StatusCode)
	}

	var payload struct {
		Data []struct {
			FlightStatus string `json:"flight_status"`
			Airline      struct {
				Name string `json:"name"`
			} `json:"airline"`
			Flight struct {
				IATA string `json:"iata"`
			} `json:"flight"`
			Arrival struct {
				Scheduled string `json:"scheduled"`
				Estimated string `json:"estimated"`
			} `json:"arrival"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid flight status response: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("no status data for flight %s", flightNumber)
	}

	d := payload.Data[0]
	return &FlightInfo{
		FlightNumber:     d.Flight.IATA,
		Airline:          d.Airline.Name,
		Status:           d.FlightStatus,
		ScheduledArrival: d.Arrival.Scheduled,
		EstimatedArrival: d.Arrival.Estimated,
	}, nil
}
