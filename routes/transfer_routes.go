package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rechargetravels/booking/config/db"
	"github.com/rechargetravels/booking/controllers/transfer_controller"
	"github.com/rechargetravels/booking/models/route_models"
)

// RegisterTransferRoutes wires the public reference data and quote preview.
func RegisterTransferRoutes(router *gin.Engine, lookup route_models.RouteLookup) {
	transferController := transfer_controller.NewTransferController(db.DB, lookup)

	transfers := router.Group("/transfers")
	{
		transfers.GET("/airports", transferController.ListAirports)
		transfers.GET("/destinations", transferController.ListDestinations)
		transfers.GET("/vehicles", transferController.ListVehicles)
		transfers.GET("/extras", transferController.ListExtras)
		transfers.POST("/quote", transferController.Quote)
	}
}
