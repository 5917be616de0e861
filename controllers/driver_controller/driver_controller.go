package driver_controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rechargetravels/booking/logger"
	"github.com/rechargetravels/booking/models/booking_models"
	"github.com/rechargetravels/booking/utils"
)

// DriverController is the driver-facing surface: assigned jobs and the two
// status transitions a driver is allowed to make.
type DriverController struct {
	DB *pgxpool.Pool
}

func NewDriverController(db *pgxpool.Pool) *DriverController {
	return &DriverController{DB: db}
}

// driverStatuses are the only transitions a driver may apply.
var driverStatuses = map[string]bool{
	booking_models.StatusInProgress: true,
	booking_models.StatusCompleted:  true,
}

// GetMyBookings lists bookings assigned to the authenticated driver.
func (dc *DriverController) GetMyBookings(c *gin.Context) {
	driverID, ok := authedDriverID(c)
	if !ok {
		return
	}

	bookings, err := booking_models.GetBookingsByDriver(c.Request.Context(), dc.DB, driverID, c.Query("status"))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to load bookings for driver %s: %v", driverID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

type driverStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves an assigned booking to in-progress or completed. Any
// other target status is rejected; those belong to the admin surface.
func (dc *DriverController) UpdateStatus(c *gin.Context) {
	driverID, ok := authedDriverID(c)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var req driverStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if !driverStatuses[req.Status] {
		c.JSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Drivers may only mark bookings in-progress or completed."})
		return
	}

	booking, err := booking_models.GetBookingByID(c.Request.Context(), dc.DB, bookingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if booking.AssignedDriverID == nil || *booking.AssignedDriverID != driverID {
		c.JSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "This booking is not assigned to you."})
		return
	}

	if err := booking_models.UpdateBookingStatus(c.Request.Context(), dc.DB, bookingID, req.Status); err != nil {
		logger.ErrorLogger.Errorf("Driver %s failed to update booking %s: %v", driverID, bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update booking"})
		return
	}

	logger.InfoLogger.Infof("Driver %s set booking %s to %s", driverID, bookingID, req.Status)
	c.JSON(http.StatusOK, gin.H{"booking_id": bookingID, "status": req.Status})
}

func authedDriverID(c *gin.Context) (uuid.UUID, bool) {
	id, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Authentication required."})
		return uuid.Nil, false
	}
	return id, true
}
