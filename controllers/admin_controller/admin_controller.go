package admin_controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rechargetravels/booking/logger"
	"github.com/rechargetravels/booking/models/booking_models"
	"github.com/rechargetravels/booking/models/payment_transaction_models"
	"github.com/rechargetravels/booking/models/pricing_models"
)

// AdminController is the back-office surface: booking oversight, driver
// assignment and pricing.
type AdminController struct {
	DB *pgxpool.Pool
}

func NewAdminController(db *pgxpool.Pool) *AdminController {
	return &AdminController{DB: db}
}

// ListBookings returns all bookings, optionally filtered by status.
func (ac *AdminController) ListBookings(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	bookings, total, err := booking_models.GetAllBookings(c.Request.Context(), ac.DB, c.Query("status"), page, limit)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list bookings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page, "limit": limit})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateBookingStatus applies any valid status transition.
func (ac *AdminController) UpdateBookingStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := booking_models.UpdateBookingStatus(c.Request.Context(), ac.DB, bookingID, req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.InfoLogger.Infof("Booking %s status set to %s", bookingID, req.Status)
	c.JSON(http.StatusOK, gin.H{"booking_id": bookingID, "status": req.Status})
}

type assignDriverRequest struct {
	DriverID    string `json:"driver_id" binding:"required,uuid"`
	DriverName  string `json:"driver_name" binding:"required"`
	DriverPhone string `json:"driver_phone" binding:"required"`
	VehicleID   string `json:"vehicle_id"`
}

// AssignDriver attaches a driver to a booking and moves it to assigned.
func (ac *AdminController) AssignDriver(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var req assignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver id"})
		return
	}

	if err := booking_models.AssignDriver(c.Request.Context(), ac.DB, bookingID, driverID, req.DriverName, req.DriverPhone, req.VehicleID); err != nil {
		logger.ErrorLogger.Errorf("Failed to assign driver %s to booking %s: %v", driverID, bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign driver"})
		return
	}

	logger.InfoLogger.Infof("Driver %s assigned to booking %s", driverID, bookingID)
	c.JSON(http.StatusOK, gin.H{"booking_id": bookingID, "driver_id": driverID})
}

type vehiclePricingRequest struct {
	BasePrice float64 `json:"base_price" binding:"required,min=0"`
	PerKmRate float64 `json:"per_km_rate" binding:"required,min=0"`
}

// UpsertVehiclePricing overrides a vehicle's base price and per-km rate.
func (ac *AdminController) UpsertVehiclePricing(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")
	if _, ok := pricing_models.FindVehicle(vehicleID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown vehicle"})
		return
	}

	var req vehiclePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := pricing_models.UpsertVehiclePricing(c.Request.Context(), ac.DB, vehicleID, req.BasePrice, req.PerKmRate); err != nil {
		logger.ErrorLogger.Errorf("Failed to update pricing for vehicle %s: %v", vehicleID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update pricing"})
		return
	}

	logger.InfoLogger.Infof("Pricing for vehicle %s set to base %.2f, per-km %.2f", vehicleID, req.BasePrice, req.PerKmRate)
	c.JSON(http.StatusOK, gin.H{"vehicle_id": vehicleID, "base_price": req.BasePrice, "per_km_rate": req.PerKmRate})
}

// ListReconciliations returns payment transactions stuck in the
// manual-reconciliation queue for one booking reference.
func (ac *AdminController) ListReconciliations(c *gin.Context) {
	reference := c.Param("reference")
	txs, err := payment_transaction_models.GetByBookingReference(c.Request.Context(), ac.DB, reference)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payment transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
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
