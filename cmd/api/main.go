package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"fundi/internal/config"
	"fundi/internal/database"
	"fundi/internal/middleware"
	"fundi/internal/modules/admin"
	"fundi/internal/modules/booking"
	"fundi/internal/modules/payment"
	"fundi/internal/modules/review"
	"fundi/internal/mpesa"
	jwtsvc "fundi/internal/pkg/jwt"
	"fundi/internal/repository"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	mpesaCfg, err := config.LoadMpesaRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	fundiRepo := repository.NewFundiRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	j := jwtsvc.New(secret, 24*time.Hour)

	gateway := mpesa.NewClient(mpesa.Config{
		BaseURL:        mpesaCfg.BaseURL,
		ConsumerKey:    mpesaCfg.ConsumerKey,
		ConsumerSecret: mpesaCfg.ConsumerSecret,
		Shortcode:      mpesaCfg.Shortcode,
		Passkey:        mpesaCfg.Passkey,
		Timeout:        mpesaCfg.Timeout,
	})

	paymentService := payment.NewService(paymentRepo, bookingRepo, bookingRepo, gateway, mpesaCfg.CallbackURL, log.Printf)
	paymentHandler := payment.NewHandler(paymentService, log.Printf)

	bookingService := booking.NewService(bookingRepo, fundiRepo, serviceRepo, paymentRepo, reviewRepo, log.Printf)
	bookingHandler := booking.NewHandler(bookingService)

	reviewService := review.NewService(reviewRepo, bookingRepo)
	reviewHandler := review.NewHandler(reviewService)

	adminService := admin.NewService(userRepo, fundiRepo, reviewRepo, bookingRepo, paymentRepo, paymentService)
	adminHandler := admin.NewHandler(adminService)

	r := gin.Default()
	// The payment webhook contract answers non-POST with 405, not 404.
	r.HandleMethodNotAllowed = true
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		// public: the provider posts callbacks here unauthenticated
		paymentHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			paymentHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterProtectedRoutes(protected)
			reviewHandler.RegisterProtectedRoutes(protected)

			adminGroup := protected.Group("/")
			adminGroup.Use(middleware.AdminOnly())
			{
				adminHandler.RegisterAdminRoutes(adminGroup)
			}
		}
	}

	addr := ":" + getEnv("PORT", "8080")
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}

func getEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
