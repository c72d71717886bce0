package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"sixfinity_gym/internal/handlers"
	authMiddleware "sixfinity_gym/internal/middleware"
	"sixfinity_gym/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Firebase (auth + push messaging)
	credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credPath == "" {
		credPath = "./firebase-service-account.json"
	}

	authClient, messagingClient, err := services.InitFirebase(credPath)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Auth and push notifications will not work until valid credentials are provided")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis (gym/trainer caching, callback de-duplication)
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	cache, err := services.NewRedisCache(redisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.Close()

	// Session timezone for scheduling math
	loc := time.Local
	if tz := os.Getenv("BOOKING_TIMEZONE"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("Invalid BOOKING_TIMEZONE %q: %v", tz, err)
		}
	}

	// Build the service graph: gateways behind the currency router, then the
	// booking lifecycle, payment orchestrator and cancellation engine on top.
	emailService := services.NewEmailService()
	notifier := services.NewNotificationService(db, messagingClient, emailService)

	payhere := services.NewPayHereService()
	stripe := services.NewStripeService()
	router := services.NewGatewayRouter(payhere, stripe)

	bookingService := services.NewBookingService(db, notifier, loc)
	paymentService := services.NewPaymentService(db, router, cache, bookingService, notifier)
	cancellationService := services.NewCancellationService(db, bookingService, paymentService, notifier)

	// Create Echo instance
	e := echo.New()
	e.HTTPErrorHandler = authMiddleware.CustomErrorHandler

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(db, bookingService, cancellationService)
	paymentHandler := handlers.NewPaymentHandler(db, paymentService, bookingService, cancellationService, payhere, stripe)
	gymHandler := handlers.NewGymHandler(db, cache)
	userHandler := handlers.NewUserHandler(db)

	// Public routes: the regional gateway posts its notify callback without
	// auth, and the return/cancel pages are plain browser redirects.
	e.POST("/payments/payhere/notify", paymentHandler.PayHereNotify)
	e.GET("/payments/payhere/return", paymentHandler.PayHereReturn)
	e.GET("/payments/payhere/cancel", paymentHandler.PayHereCancel)

	// Protected routes
	api := e.Group("/api/v1")
	api.Use(authMiddleware.RequireAuth(authClient, db))

	// Profile and notification preferences
	api.GET("/me", userHandler.GetProfile)
	api.PATCH("/me", userHandler.UpdateProfile)
	api.POST("/me/devices", userHandler.RegisterDevice)
	api.DELETE("/me/devices", userHandler.UnregisterDevice)
	api.GET("/me/notifications", userHandler.GetNotifPreference)
	api.PATCH("/me/notifications", userHandler.UpdateNotifPreference)

	// Gyms and trainers
	api.GET("/gyms", gymHandler.ListGyms)
	api.GET("/gyms/:id", gymHandler.GetGym)
	api.GET("/trainers", gymHandler.ListTrainers)

	// Booking lifecycle
	api.POST("/bookings", bookingHandler.CreateBooking)
	api.GET("/bookings", bookingHandler.ListBookings)
	api.GET("/bookings/:id", bookingHandler.GetBooking)
	api.POST("/bookings/:id/confirm", bookingHandler.ConfirmBooking)
	api.POST("/bookings/:id/check-in", bookingHandler.CheckIn)
	api.POST("/bookings/:id/check-out", bookingHandler.CheckOut)
	api.POST("/bookings/:id/reschedule", bookingHandler.Reschedule)
	api.GET("/bookings/:id/cancel-quote", bookingHandler.CancelQuote)
	api.POST("/bookings/:id/cancel", bookingHandler.CancelBooking)
	api.POST("/bookings/:id/rate", bookingHandler.RateBooking)
	api.GET("/bookings/:id/history", bookingHandler.BookingHistory)

	// Payments
	api.POST("/bookings/:id/pay", paymentHandler.InitiatePayment)
	api.POST("/bookings/:id/verify-payment", paymentHandler.VerifyPayment)
	api.GET("/bookings/:id/transactions", paymentHandler.ListTransactions)
	api.GET("/payments/fee", paymentHandler.EstimateFee)
	api.POST("/payments/stripe/next-action", paymentHandler.StripeNextAction)

	// Admin
	admin := api.Group("/admin")
	admin.Use(authMiddleware.RequireAdmin())
	admin.POST("/cancellations/:id/refund", paymentHandler.ProcessRefund)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
