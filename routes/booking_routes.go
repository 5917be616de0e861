package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/rechargetravels/booking/clients"
	"github.com/rechargetravels/booking/config/db"
	"github.com/rechargetravels/booking/controllers/booking_controller"
	"github.com/rechargetravels/booking/middlewares"
	"github.com/rechargetravels/booking/middlewares/auth"
	"github.com/rechargetravels/booking/models/route_models"
)

// RegisterBookingRoutes wires the wizard session endpoints and submission.
// The wizard is open to guests; a bearer token, when present, is attached so
// wallet payments can identify the account.
func RegisterBookingRoutes(router *gin.Engine, rdb *redis.Client, gateway clients.PaymentGateway, lookup route_models.RouteLookup, flights clients.FlightLookup) {
	bookingController := booking_controller.NewBookingController(db.DB, rdb, gateway, lookup, flights)

	wizard := router.Group("/wizard")
	wizard.Use(auth.OptionalAuthMiddleware())
	{
		wizard.POST("", middleware.NewRateLimiter("30-1m", "wizard_create"), bookingController.CreateWizard)
		wizard.GET("/:wizard_id", bookingController.GetWizard)
		wizard.PATCH("/:wizard_id/fields", bookingController.UpdateFields)
		wizard.POST("/:wizard_id/next", bookingController.Advance)
		wizard.POST("/:wizard_id/back", bookingController.Retreat)
		wizard.POST("/:wizard_id/goto", bookingController.GoToStep)
		wizard.GET("/:wizard_id/quote", bookingController.Quote)
		wizard.POST("/:wizard_id/flight", bookingController.LookupFlight)
		wizard.POST("/:wizard_id/submit", middleware.NewRateLimiter("5-1m", "wizard_submit"), bookingController.Submit)
		wizard.DELETE("/:wizard_id", bookingController.CloseWizard)
	}

	bookings := router.Group("/bookings")
	{
		bookings.GET("/:reference", bookingController.GetBookingByReference)
		bookings.GET("", bookingController.GetMyBookings)
	}

	router.POST("/payments/webhook", bookingController.HandlePaymentWebhook)
}
