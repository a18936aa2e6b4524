package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-booking-api/config"
	"hotel-booking-api/controllers"
	"hotel-booking-api/middleware"
	"hotel-booking-api/services"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(config.AppConfig.CorsOrigins)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires middleware and route groups around the controllers.
func SetupRouter(
	logger *zap.Logger,
	users *services.UserService,
	ac *controllers.AuthController,
	rc *controllers.RoomController,
	bc *controllers.BookingController,
) *gin.Engine {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RateLimit(config.AppConfig.MaxRequestsPerMin))

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", ac.Register)
			auth.POST("/login", ac.Login)

			authed := auth.Group("")
			authed.Use(middleware.RequireAuth(users))
			{
				authed.GET("/profile", ac.Profile)
				authed.PUT("/profile", ac.UpdateProfile)
				authed.PUT("/change-password", ac.ChangePassword)
			}
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", rc.GetRooms)
			rooms.GET("/:id", rc.GetRoom)

			admin := rooms.Group("")
			admin.Use(middleware.RequireAuth(users), middleware.RequireAdmin())
			{
				admin.POST("", rc.CreateRoom)
				admin.PUT("/:id", rc.UpdateRoom)
				admin.PATCH("/:id", rc.UpdateRoom)
				admin.DELETE("/:id", rc.DeleteRoom)
			}
		}

		bookings := api.Group("/bookings")
		bookings.Use(middleware.RequireAuth(users))
		{
			bookings.GET("", bc.GetBookings)
			bookings.GET("/:id", bc.GetBooking)
			bookings.PUT("/:id/cancel", bc.CancelBooking)

			customer := bookings.Group("")
			customer.Use(middleware.RequireCustomer())
			{
				customer.POST("/create-payment-intent", bc.CreatePaymentIntent)
				customer.POST("/confirm", bc.ConfirmBooking)
			}
		}
	}

	return r
}
