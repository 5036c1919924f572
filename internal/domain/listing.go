package domain

import (
	"time"

	"gorm.io/gorm"
)

type ListingStatus string

const (
	ListingDraft     ListingStatus = "draft"
	ListingApproved  ListingStatus = "approved"
	ListingActive    ListingStatus = "active"
	ListingSuspended ListingStatus = "suspended"
)

// Listing is a rentable item. Listing management itself lives outside this
// service; the booking core only reads listings for ownership, pricing and
// availability queries.
type Listing struct {
	ID            int64          `json:"id" gorm:"primaryKey"`
	OwnerID       int64          `json:"owner_id" gorm:"index;not null"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty" gorm:"type:text"`
	PricePerDay   float64        `json:"price_per_day" validate:"required,gte=0"`
	DepositAmount float64        `json:"deposit_amount" validate:"gte=0"`
	Status        ListingStatus  `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Listing) TableName() string { return "listings" }

// Rentable reports whether bookings may target this listing.
func (l *Listing) Rentable() bool {
	return l.Status == ListingActive || l.Status == ListingApproved
}
