package main

import (
	"log"
	"os"
	"time"

	"lendaround/internal/database"
	"lendaround/internal/domain"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "lendaround.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	// AutoMigrate to ensure schema is up to date
	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Listing{},
		&domain.Booking{},
		&domain.Conversation{},
		&domain.ConversationParticipant{},
		&domain.Message{},
		&domain.Notification{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM messages")
	db.Exec("DELETE FROM conversation_participants")
	db.Exec("DELETE FROM conversations")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM listings")
	db.Exec("DELETE FROM users")

	// ================== USERS ==================
	log.Println("Creating users...")

	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin := domain.User{
		Email:        "admin@lendaround.kz",
		PasswordHash: string(adminHash),
		Role:         domain.RoleAdmin,
		Name:         "Администратор",
	}
	db.Create(&admin)
	log.Println("Admin created: admin@lendaround.kz / admin123")

	userHash, _ := bcrypt.GenerateFromPassword([]byte("user123"), bcrypt.DefaultCost)
	owner := domain.User{
		Email:        "aidar@mail.kz",
		PasswordHash: string(userHash),
		Role:         domain.RoleUser,
		Name:         "Айдар",
	}
	db.Create(&owner)

	borrower := domain.User{
		Email:        "asel@gmail.com",
		PasswordHash: string(userHash),
		Role:         domain.RoleUser,
		Name:         "Асель",
	}
	db.Create(&borrower)
	log.Println("Users created: aidar@mail.kz, asel@gmail.com / user123")

	// ================== LISTINGS ==================
	log.Println("Creating listings...")

	listings := []domain.Listing{
		{
			OwnerID:       owner.ID,
			Title:         "Перфоратор Bosch GBH 2-26",
			Description:   "Мощный перфоратор, подходит для бетона. Кейс и три бура в комплекте.",
			PricePerDay:   50,
			DepositAmount: 200,
			Status:        domain.ListingActive,
		},
		{
			OwnerID:       owner.ID,
			Title:         "Палатка 4-местная",
			Description:   "Просторная палатка для кемпинга, непромокаемая.",
			PricePerDay:   30,
			DepositAmount: 100,
			Status:        domain.ListingActive,
		},
		{
			OwnerID:       owner.ID,
			Title:         "Проектор Epson EB-X05",
			Description:   "Для презентаций и домашнего кино, HDMI.",
			PricePerDay:   80,
			DepositAmount: 400,
			Status:        domain.ListingApproved,
		},
	}
	for i := range listings {
		db.Create(&listings[i])
	}

	// ================== BOOKING ==================
	log.Println("Creating a demo booking request...")

	start := domain.DateOnly(time.Now().UTC().AddDate(0, 0, 7))
	end := start.AddDate(0, 0, 2)
	expiresAt := time.Now().UTC().Add(time.Hour)
	b := domain.Booking{
		ListingID:   listings[0].ID,
		BorrowerID:  borrower.ID,
		StartDate:   start,
		EndDate:     end,
		TotalAmount: listings[0].PricePerDay * float64(domain.DayCount(start, end)),
		DepositHeld: listings[0].DepositAmount,
		Status:      domain.BookingPending,
		ExpiresAt:   &expiresAt,
	}
	db.Create(&b)

	conv := domain.Conversation{BookingID: b.ID}
	db.Create(&conv)
	db.Create(&[]domain.ConversationParticipant{
		{ConversationID: conv.ID, UserID: borrower.ID},
		{ConversationID: conv.ID, UserID: owner.ID},
	})
	db.Model(&domain.Booking{}).Where("id = ?", b.ID).Update("conversation_id", conv.ID)

	log.Println("Seed completed")
}
