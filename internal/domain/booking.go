package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingConfirmed BookingStatus = "confirmed"
	BookingActive    BookingStatus = "active"
	BookingReturned  BookingStatus = "returned"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingDispute   BookingStatus = "dispute"
)

// NonTerminalStatuses are the states in which a booking still occupies the
// borrower's one-open-request-per-listing slot.
var NonTerminalStatuses = []BookingStatus{
	BookingPending, BookingApproved, BookingConfirmed, BookingActive, BookingReturned,
}

// BlockingStatuses are the states that make a date range unavailable to
// other borrowers. Pending and approved requests hold no resource lock.
var BlockingStatuses = []BookingStatus{BookingConfirmed, BookingActive}

func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingRejected, BookingCompleted, BookingCancelled, BookingDispute:
		return true
	}
	return false
}

// PaymentRefKind tags the stored provider identifier: an order id exists
// before settlement, a payment id after. Refunds require the latter.
type PaymentRefKind string

const (
	RefNone    PaymentRefKind = ""
	RefOrder   PaymentRefKind = "order"
	RefPayment PaymentRefKind = "payment"
)

type PaymentRef struct {
	Kind PaymentRefKind `json:"kind"`
	ID   string         `json:"id"`
}

type Booking struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	ListingID  int64     `json:"listing_id" gorm:"index;not null" validate:"required"`
	BorrowerID int64     `json:"borrower_id" gorm:"index;not null" validate:"required"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" validate:"required"`

	// Fixed at creation, never recomputed.
	TotalAmount float64 `json:"total_amount" validate:"gte=0"`
	DepositHeld float64 `json:"deposit_held" validate:"gte=0"`

	Status    BookingStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty" gorm:"index"`

	PaymentRefKind PaymentRefKind `json:"payment_ref_kind,omitempty" gorm:"type:varchar(10)"`
	PaymentRefID   string         `json:"payment_ref_id,omitempty" gorm:"type:varchar(64)"`

	ConversationID int64 `json:"conversation_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Listing *Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) PaymentReference() PaymentRef {
	return PaymentRef{Kind: b.PaymentRefKind, ID: b.PaymentRefID}
}

func (b *Booking) SetPaymentReference(ref PaymentRef) {
	b.PaymentRefKind = ref.Kind
	b.PaymentRefID = ref.ID
}
