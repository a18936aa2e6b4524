package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hotel-booking-api/config"
	"hotel-booking-api/controllers"
	"hotel-booking-api/payments"
	"hotel-booking-api/routes"
	"hotel-booking-api/services"
	"hotel-booking-api/utils"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found or couldn't load it; continuing with environment variables")
	}

	config.LoadConfig()

	logger := utils.GetLogger()
	defer logger.Sync()

	if config.AppConfig.StripeSecretKey == "" {
		logger.Sugar().Fatal("STRIPE_SECRET_KEY environment variable is not set. Cannot initialize payment gateway.")
	}
	if config.IsProduction() && config.AppConfig.JWTSecret == "" {
		logger.Sugar().Fatal("JWT_SECRET must be set in production")
	}

	if err := config.ConnectDatabase(); err != nil {
		logger.Sugar().Fatalf("Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		logger.Sugar().Fatal("config.DB is nil after ConnectDatabase()")
	}
	logger.Sugar().Info("Database connection established and migrations applied")

	gateway := payments.NewStripeGateway(config.AppConfig.StripeSecretKey)

	// Initialize services
	userService := services.NewUserService(db)
	roomService := services.NewRoomService(db)
	bookingService := services.NewBookingService(db, gateway, logger, config.AppConfig.Currency)

	// Initialize controllers
	authController := controllers.NewAuthController(userService)
	roomController := controllers.NewRoomController(roomService)
	bookingController := controllers.NewBookingController(bookingService)

	// Background reclaim of abandoned Pending bookings
	sweeper := services.NewPendingSweeper(
		db,
		logger,
		time.Duration(config.AppConfig.PendingBookingTTLMin)*time.Minute,
		time.Duration(config.AppConfig.SweepIntervalMin)*time.Minute,
	)
	sweeper.Start()

	router := routes.SetupRouter(logger, userService, authController, roomController, bookingController)

	addr := ":" + config.AppConfig.AppPort

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Sugar().Infof("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("ListenAndServe(): %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("Shutdown signal received, shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("Server stopped gracefully")
}
