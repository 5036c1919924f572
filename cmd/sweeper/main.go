package main

import (
	"context"
	"log"
	"os"

	"lendaround/internal/database"
	"lendaround/internal/modules/booking"
	"lendaround/internal/modules/notification"
	"lendaround/internal/repository"

	"github.com/joho/godotenv"
)

// One-shot expiry sweep, meant to run from cron. The same sweep is also
// reachable over POST /api/v1/internal/bookings/sweep.
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	bookingRepo := repository.NewBookingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	// no hub in the cron binary: notifications are written durably, pushes skipped
	notificationService := notification.NewService(notificationRepo, nil, log.Printf)

	service := booking.NewService(bookingRepo, nil, notificationService, nil)

	count, err := service.SweepExpired(context.Background())
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}

	log.Printf("level=info msg=expiry sweep completed swept=%d", count)
}
