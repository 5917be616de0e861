package main

import (
	"context"
	"embed"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rechargetravels/booking/clients"
	"github.com/rechargetravels/booking/config"
	"github.com/rechargetravels/booking/config/db"
	redisclient "github.com/rechargetravels/booking/config/redis"
	"github.com/rechargetravels/booking/logger"
	"github.com/rechargetravels/booking/middlewares/cors"
	"github.com/rechargetravels/booking/models/route_models"
	"github.com/rechargetravels/booking/routes"
	"github.com/rechargetravels/booking/utils/mail"
)

//go:embed templates/email/*
var embeddedEmailTemplates embed.FS

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	db.Connect()
	defer db.Close()

	rdb, err := redisclient.GetRedisClient(context.Background())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	defer redisclient.CloseRedis()

	mail.InitTemplates(embeddedEmailTemplates)
	logger.InfoLogger.Info("Email templates initialized.")

	gateway := clients.NewRazorpayGateway(os.Getenv("RAZORPAY_KEY_ID"), os.Getenv("RAZORPAY_KEY_SECRET"))

	var lookup route_models.RouteLookup
	if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" {
		mapsClient, err := clients.NewMapsRouteClient(key)
		if err != nil {
			logger.WarnLogger.Warnf("Maps client unavailable, falling back to estimates: %v", err)
		} else {
			lookup = mapsClient
		}
	} else {
		logger.WarnLogger.Warn("GOOGLE_MAPS_API_KEY not set, distances use estimates")
	}

	var flights clients.FlightLookup
	if fc := clients.NewHTTPFlightClient(); fc != nil {
		flights = fc
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())

	routes.RegisterTransferRoutes(r, lookup)
	routes.RegisterBookingRoutes(r, rdb, gateway, lookup, flights)
	routes.RegisterWalletRoutes(r, gateway)
	routes.RegisterDriverRoutes(r)
	routes.RegisterAdminRoutes(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok from booking service"})
	})

	port := config.GetEnv("PORT", "8081")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.InfoLogger.Infof("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorLogger.Errorf("Server failed: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.InfoLogger.Info("Server exited.")
}
