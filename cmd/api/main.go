package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"lendaround/internal/config"
	"lendaround/internal/database"
	"lendaround/internal/middleware"
	"lendaround/internal/modules/booking"
	"lendaround/internal/modules/catalog"
	"lendaround/internal/modules/chat"
	"lendaround/internal/modules/notification"
	"lendaround/internal/modules/payment"
	jwtsvc "lendaround/internal/pkg/jwt"
	"lendaround/internal/repository"
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

	paymentsCfg, err := config.LoadPayments()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}

	bookingRepo := repository.NewBookingRepository(db)
	listingRepo := repository.NewListingRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)

	j := jwtsvc.New(secret, 24*time.Hour)

	hub := chat.NewHub()
	notificationService := notification.NewService(notificationRepo, hub, log.Printf)
	notificationHandler := notification.NewHandler(notificationService)

	chatService := chat.NewService(conversationRepo, userRepo, hub, notificationService)
	chatHandler := chat.NewHandler(chatService, hub)

	bookingService := booking.NewService(bookingRepo, listingRepo, notificationService, chatService)
	bookingHandler := booking.NewHandler(bookingService)

	provider := payment.NewClient(paymentsCfg)
	paymentService := payment.NewService(bookingRepo, listingRepo, provider, notificationService, paymentsCfg, log.Printf)
	paymentHandler := payment.NewHandler(paymentService)

	catalogService := catalog.NewService(listingRepo, bookingRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		catalogHandler.RegisterRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			bookingHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(protected)
			notificationHandler.RegisterRoutes(protected)
			chatHandler.RegisterRoutes(protected)

			admin := protected.Group("/")
			admin.Use(middleware.AdminOnly())
			{
				paymentHandler.RegisterAdminRoutes(admin)
			}
		}

		// maintenance, shared-secret auth
		internal := v1.Group("/internal")
		internal.Use(middleware.InternalTokenAuth())
		{
			bookingHandler.RegisterInternalRoutes(internal)
		}
	}

	addr := ":" + envOrDefault("PORT", "8080")
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
