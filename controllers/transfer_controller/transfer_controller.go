package transfer_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rechargetravels/booking/models/pricing_models"
	"github.com/rechargetravels/booking/models/route_models"
	"github.com/rechargetravels/booking/models/transfer_models"
	"github.com/rechargetravels/booking/utils"
)

// TransferController serves the reference data the booking UI is built from
// and a stateless quote endpoint for price previews.
type TransferController struct {
	DB     *pgxpool.Pool
	Lookup route_models.RouteLookup
}

func NewTransferController(db *pgxpool.Pool, lookup route_models.RouteLookup) *TransferController {
	return &TransferController{DB: db, Lookup: lookup}
}

// ListAirports returns supported airports, optionally filtered by q.
func (tc *TransferController) ListAirports(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"airports": transfer_models.SearchAirports(c.Query("q"))})
}

// ListDestinations returns known destinations, optionally filtered by q.
func (tc *TransferController) ListDestinations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"destinations": transfer_models.SearchDestinations(c.Query("q"))})
}

// ListExtras returns the extras catalogue.
func (tc *TransferController) ListExtras(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"extras": transfer_models.TransferExtras})
}

// ListVehicles returns the fleet with any admin pricing overrides applied.
// Passing passengers and luggage narrows the fleet to vehicles that fit.
func (tc *TransferController) ListVehicles(c *gin.Context) {
	vehicles := pricing_models.ListVehicles(c.Request.Context(), tc.DB)

	passengers := queryInt(c, "passengers", 0)
	luggage := queryInt(c, "luggage", 0)
	if passengers > 0 || luggage > 0 {
		vehicles = pricing_models.SuitableVehicles(vehicles, passengers, luggage)
	}

	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}

type quoteRequest struct {
	AirportCode     string                  `json:"airport_code" binding:"required"`
	DestinationArea string                  `json:"destination_area"`
	DestCoords      *transfer_models.LatLng `json:"dest_coords"`
	VehicleID       string                  `json:"vehicle_id" binding:"required"`
	Extras          []string                `json:"extras"`
	ExtraQuantities map[string]int          `json:"extra_quantities"`
	RoundTrip       bool                    `json:"round_trip"`
}

// Quote prices a hypothetical transfer without a wizard session. The UI uses
// it for the vehicle comparison grid.
func (tc *TransferController) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	rreq := route_models.Request{
		DestCoords: req.DestCoords,
		DestArea:   req.DestinationArea,
	}
	if airport, ok := transfer_models.FindAirport(req.AirportCode); ok {
		rreq.Origin = airport.Coordinates
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown airport code"})
		return
	}
	estimate := route_models.EstimateRoute(c.Request.Context(), tc.Lookup, rreq)

	vehicle, err := pricing_models.GetVehicle(c.Request.Context(), tc.DB, req.VehicleID)
	if err != nil {
		var cfgErr *utils.ConfigurationError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown vehicle"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load vehicle pricing"})
		return
	}

	breakdown, err := pricing_models.CalculatePrice(
		estimate.DistanceKm, vehicle, req.Extras, req.ExtraQuantities, req.RoundTrip)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"route":    estimate,
		"pricing":  breakdown,
		"estimate": estimate.Degraded,
	})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	var n int
	for _, r := range v {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
	}
	return n
}
