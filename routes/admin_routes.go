package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rechargetravels/booking/config/db"
	"github.com/rechargetravels/booking/controllers/admin_controller"
	"github.com/rechargetravels/booking/middlewares/auth"
)

// RegisterAdminRoutes wires the back-office surface.
func RegisterAdminRoutes(router *gin.Engine) {
	adminController := admin_controller.NewAdminController(db.DB)

	admin := router.Group("/admin")
	admin.Use(auth.AuthMiddleware(), auth.RequireRole("admin"))
	{
		admin.GET("/bookings", adminController.ListBookings)
		admin.PATCH("/bookings/:booking_id/status", adminController.UpdateBookingStatus)
		admin.POST("/bookings/:booking_id/assign-driver", adminController.AssignDriver)
		admin.PUT("/vehicles/:vehicle_id/pricing", adminController.UpsertVehiclePricing)
		admin.GET("/payments/:reference", adminController.ListReconciliations)
	}
}
