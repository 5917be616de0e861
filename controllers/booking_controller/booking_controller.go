package booking_controller

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/rechargetravels/booking/clients"
	"github.com/rechargetravels/booking/logger"
	"github.com/rechargetravels/booking/models/booking_models"
	"github.com/rechargetravels/booking/models/pricing_models"
	"github.com/rechargetravels/booking/models/route_models"
	"github.com/rechargetravels/booking/models/transfer_models"
	"github.com/rechargetravels/booking/models/wizard_models"
	"github.com/rechargetravels/booking/utils"
)

// BookingController holds the collaborators of the booking wizard flow.
type BookingController struct {
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Gateway clients.PaymentGateway
	Lookup  route_models.RouteLookup
	Flights clients.FlightLookup
}

// NewBookingController creates a new instance of BookingController.
func NewBookingController(db *pgxpool.Pool, rdb *redis.Client, gateway clients.PaymentGateway, lookup route_models.RouteLookup, flights clients.FlightLookup) *BookingController {
	return &BookingController{
		DB:      db,
		Redis:   rdb,
		Gateway: gateway,
		Lookup:  lookup,
		Flights: flights,
	}
}

type createWizardRequest struct {
	BookingType string `json:"booking_type" binding:"required,oneof=airport-transfer tour custom"`
}

// CreateWizard opens a new booking session at step 1.
func (bc *BookingController) CreateWizard(c *gin.Context) {
	var req createWizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	w, err := wizard_models.New(wizard_models.BookingType(req.BookingType))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := wizard_models.SaveSession(c.Request.Context(), bc.Redis, w); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking session"})
		return
	}

	logger.InfoLogger.Infof("Wizard session %s opened (%s)", w.ID, w.BookingType)
	c.JSON(http.StatusCreated, gin.H{"wizard": w, "steps": w.Steps()})
}

// GetWizard returns the session state plus its step list.
func (bc *BookingController) GetWizard(c *gin.Context) {
	w, ok := bc.loadWizard(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wizard":       w,
		"steps":        w.Steps(),
		"field_errors": w.Validate(w.CurrentStep),
	})
}

// CloseWizard discards the session. Any in-flight lookup result is simply
// dropped with it.
func (bc *BookingController) CloseWizard(c *gin.Context) {
	id, err := uuid.Parse(c.Param("wizard_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wizard id"})
		return
	}
	if err := wizard_models.DeleteSession(c.Request.Context(), bc.Redis, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to close booking session"})
		return
	}
	c.Status(http.StatusNoContent)
}

// updateFieldsRequest carries partial field updates. Pointer fields
// distinguish "not sent" from zero values so steps can be edited piecemeal.
type updateFieldsRequest struct {
	TransferType *string `json:"transfer_type" binding:"omitempty,oneof=arrival departure round-trip"`

	AirportCode     *string                  `json:"airport_code"`
	DestinationName *string                  `json:"destination_name"`
	DestinationArea *string                  `json:"destination_area"`
	DestCoords      *transfer_models.LatLng  `json:"dest_coords"`

	PickupDate *string `json:"pickup_date"`
	PickupTime *string `json:"pickup_time"`
	ReturnDate *string `json:"return_date"`
	ReturnTime *string `json:"return_time"`

	Adults   *int `json:"adults" binding:"omitempty,min=0,max=50"`
	Children *int `json:"children" binding:"omitempty,min=0,max=50"`
	Infants  *int `json:"infants" binding:"omitempty,min=0,max=50"`
	Luggage  *int `json:"luggage" binding:"omitempty,min=0,max=100"`

	FlightNumber *string `json:"flight_number"`

	VehicleID       *string         `json:"vehicle_id"`
	Extras          *[]string       `json:"extras"`
	ExtraQuantities *map[string]int `json:"extra_quantities"`

	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Country         *string `json:"country"`
	SpecialRequests *string `json:"special_requests"`

	PaymentMethod *string `json:"payment_method" binding:"omitempty,oneof=card paypal wallet cash"`
	AgreedToTerms *bool   `json:"agreed_to_terms"`
}

// UpdateFields merges a partial update into the session's field set. Included
// extras are re-pinned afterwards so they cannot be deselected.
func (bc *BookingController) UpdateFields(c *gin.Context) {
	w, ok := bc.loadWizard(c)
	if !ok {
		return
	}

	var req updateFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	applyFieldUpdates(&w.Fields, &req)
	w.UpdatedAt = time.Now()

	if err := wizard_models.SaveSession(c.Request.Context(), bc.Redis, w); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save booking session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wizard":       w,
		"field_errors": w.Validate(w.CurrentStep),
	})
}

// Advance moves the wizard one step forward when the current step validates.
// A failing validation is a 200 with field errors, not an error response.
func (bc *BookingController) Advance(c *gin.Context) {
	w, ok := bc.loadWizard(c)
	if !ok {
		return
	}

	moved, fieldErrs := w.Advance()
	if moved {
		if err := wizard_models.SaveSession(c.Request.Context(), bc.Redis, w); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save booking session"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"wizard":       w,
		"moved":        moved,
		"field_errors": fieldErrs,
	})
}

// Retreat moves one step back, keeping all entered data.
func (bc *BookingController) Retreat(c *gin.Context) {
	w, ok := bc.loadWizard(c)
	if !ok {
		return
	}

	moved := w.Retreat()
	if moved {
		if err := wizard_models.SaveSession(c.Request.Context(), bc.Redis, w); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save booking session"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"wizard": w, "moved": moved})
}

type gotoStepRequest struct {
	Step int `json:"step" binding:"required,min=1"`
}

// GoToStep jumps to a previously reached step.
func (bc *BookingController) GoToStep(c *gin.Context) {
	w, ok := bc.loadWizard(c)
	if !ok {
		return
	}

	var req gotoStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	moved := w.JumpTo(req.Step)
	if moved {
		if err := wizard_models.SaveSession(c.Request.Context(), bc.Redis, w); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save booking session"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"wizard": w, "moved": moved})
}

// Quote returns the current route estimate and price breakdown for the
// session without touching its step state.
func (bc *BookingController) Quote(c *gin.Context) {
	w, ok := bc.loadWizard(c)
	if !ok {
		return
	}
	if w.Fields.VehicleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "select a vehicle before requesting a quote"})
		return
	}

	estimate, breakdown, err := bc.computeQuote(c.Request.Context(), w)
	if err != nil {
		var cfgErr *utils.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.ErrorLogger.Errorf("Quote configuration error for wizard %s: %v", w.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "pricing configuration problem, please contact support"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute quote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"route":    estimate,
		"pricing":  breakdown,
		"estimate": estimate.Degraded, // conservative default-distance estimate
	})
}

type flightLookupRequest struct {
	FlightNumber string `json:"flight_number" binding:"required,min=3"`
}

// LookupFlight resolves a flight number and pre-fills the pickup time from
// its arrival estimate. Lookup failure is not an error for the wizard.
func (bc *BookingController) LookupFlight(c *gin.Context) {
	w, ok := bc.loadWizard(c)
	if !ok {
		return
	}

	var req flightLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	w.Fields.FlightNumber = req.FlightNumber

	var info *clients.FlightInfo
	if bc.Flights != nil {
		lctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var err error
		info, err = bc.Flights.Lookup(lctx, req.FlightNumber)
		if err != nil {
			logger.WarnLogger.Warnf("Flight lookup for %s degraded: %v", req.FlightNumber, err)
			info = nil
		}
	}

	if info != nil {
		arrival := info.EstimatedArrival
		if arrival == "" {
			arrival = info.ScheduledArrival
		}
		if t, err := time.Parse(time.RFC3339, arrival); err == nil {
			w.Fields.PickupTime = t.Format("15:04")
		}
	}

	if err := wizard_models.SaveSession(c.Request.Context(), bc.Redis, w); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save booking session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wizard": w, "flight": info})
}

// GetBookingByReference returns one booking by its public reference.
func (bc *BookingController) GetBookingByReference(c *gin.Context) {
	booking, err := booking_models.GetBookingByReference(c.Request.Context(), bc.DB, c.Param("reference"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// GetMyBookings lists the authenticated customer's bookings by email.
func (bc *BookingController) GetMyBookings(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
		return
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	bookings, total, err := booking_models.GetBookingsByEmail(c.Request.Context(), bc.DB, email, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page, "limit": limit})
}

func (bc *BookingController) loadWizard(c *gin.Context) (*wizard_models.Wizard, bool) {
	id, err := uuid.Parse(c.Param("wizard_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wizard id"})
		return nil, false
	}

	w, err := wizard_models.LoadSession(c.Request.Context(), bc.Redis, id)
	if err != nil {
		if errors.Is(err, wizard_models.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking session not found or expired"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load booking session"})
		return nil, false
	}
	return w, true
}

// computeQuote resolves the route and prices the current selection.
func (bc *BookingController) computeQuote(ctx context.Context, w *wizard_models.Wizard) (route_models.Estimate, pricing_models.Breakdown, error) {
	req := route_models.Request{
		DestCoords: w.Fields.DestCoords,
		DestArea:   w.Fields.DestinationArea,
	}
	if airport, ok := transfer_models.FindAirport(w.Fields.AirportCode); ok {
		req.Origin = airport.Coordinates
	}
	estimate := route_models.EstimateRoute(ctx, bc.Lookup, req)

	vehicle, err := pricing_models.GetVehicle(ctx, bc.DB, w.Fields.VehicleID)
	if err != nil {
		return estimate, pricing_models.Breakdown{}, err
	}

	breakdown, err := pricing_models.CalculatePrice(
		estimate.DistanceKm, vehicle, w.Fields.Extras, w.Fields.ExtraQuantities, w.IsRoundTrip())
	if err != nil {
		return estimate, pricing_models.Breakdown{}, err
	}
	return estimate, breakdown, nil
}

func applyFieldUpdates(f *wizard_models.Fields, req *updateFieldsRequest) {
	if req.TransferType != nil {
		f.TransferType = *req.TransferType
	}
	if req.AirportCode != nil {
		f.AirportCode = *req.AirportCode
	}
	if req.DestinationName != nil {
		f.DestinationName = *req.DestinationName
	}
	if req.DestinationArea != nil {
		f.DestinationArea = *req.DestinationArea
	}
	if req.DestCoords != nil {
		f.DestCoords = req.DestCoords
	}
	if req.PickupDate != nil {
		f.PickupDate = *req.PickupDate
	}
	if req.PickupTime != nil {
		f.PickupTime = *req.PickupTime
	}
	if req.ReturnDate != nil {
		f.ReturnDate = *req.ReturnDate
	}
	if req.ReturnTime != nil {
		f.ReturnTime = *req.ReturnTime
	}
	if req.Adults != nil {
		f.Adults = *req.Adults
	}
	if req.Children != nil {
		f.Children = *req.Children
	}
	if req.Infants != nil {
		f.Infants = *req.Infants
	}
	if req.Luggage != nil {
		f.Luggage = *req.Luggage
	}
	if req.FlightNumber != nil {
		f.FlightNumber = *req.FlightNumber
	}
	if req.VehicleID != nil {
		f.VehicleID = *req.VehicleID
	}
	if req.Extras != nil {
		f.Extras = pinIncludedExtras(*req.Extras)
	}
	if req.ExtraQuantities != nil {
		f.ExtraQuantities = *req.ExtraQuantities
	}
	if req.FirstName != nil {
		f.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		f.LastName = *req.LastName
	}
	if req.Email != nil {
		f.Email = *req.Email
	}
	if req.Phone != nil {
		f.Phone = *req.Phone
	}
	if req.Country != nil {
		f.Country = *req.Country
	}
	if req.SpecialRequests != nil {
		f.SpecialRequests = *req.SpecialRequests
	}
	if req.PaymentMethod != nil {
		f.PaymentMethod = *req.PaymentMethod
	}
	if req.AgreedToTerms != nil {
		f.AgreedToTerms = *req.AgreedToTerms
	}
}

// pinIncludedExtras keeps included extras in the selection no matter what the
// client sent.
func pinIncludedExtras(selected []string) []string {
	seen := make(map[string]bool, len(selected))
	out := make([]string, 0, len(selected)+1)
	for _, id := range selected {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, e := range transfer_models.TransferExtras {
		if e.IsIncluded && !seen[e.ID] {
			out = append(out, e.ID)
		}
	}
	return out
}

func totalCents(total float64) int64 {
	return int64(math.Round(total * 100))
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
	if n == 0 {
		return fallback
	}
	return n
}
