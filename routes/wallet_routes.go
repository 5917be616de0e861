package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rechargetravels/booking/clients"
	"github.com/rechargetravels/booking/config/db"
	"github.com/rechargetravels/booking/controllers/wallet_controller"
	"github.com/rechargetravels/booking/middlewares"
	"github.com/rechargetravels/booking/middlewares/auth"
)

// RegisterWalletRoutes wires the signed-in customer wallet.
func RegisterWalletRoutes(router *gin.Engine, gateway clients.PaymentGateway) {
	walletController := wallet_controller.NewWalletController(db.DB, gateway)

	wallet := router.Group("/wallet")
	wallet.Use(auth.AuthMiddleware())
	{
		wallet.GET("", walletController.GetWallet)
		wallet.POST("/recharge", middleware.NewRateLimiter("10-1m", "wallet_recharge"), walletController.Recharge)
		wallet.GET("/transactions", walletController.GetTransactions)
	}
}
