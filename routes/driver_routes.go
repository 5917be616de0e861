package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rechargetravels/booking/config/db"
	"github.com/rechargetravels/booking/controllers/driver_controller"
	"github.com/rechargetravels/booking/middlewares/auth"
)

// RegisterDriverRoutes wires the driver job list and status updates.
func RegisterDriverRoutes(router *gin.Engine) {
	driverController := driver_controller.NewDriverController(db.DB)

	driver := router.Group("/driver")
	driver.Use(auth.AuthMiddleware(), auth.RequireRole("driver"))
	{
		driver.GET("/bookings", driverController.GetMyBookings)
		driver.PATCH("/bookings/:booking_id/status", driverController.UpdateStatus)
	}
}
