package payment

import (
	"context"

	"lendaround/internal/domain"
)

type bookingStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	SetOrderRef(ctx context.Context, id int64, orderID string) error
	ConfirmPaid(ctx context.Context, id int64, paymentID string) error
}

type listingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
}

// orderProvider is the upstream payment gateway surface this engine needs:
// create an order, enumerate its payments, refund one.
type orderProvider interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency string, notes map[string]string) (string, error)
	PaymentsForOrder(ctx context.Context, orderID string) ([]ProviderPayment, error)
	Refund(ctx context.Context, paymentID string, amountMinor int64) (*ProviderRefund, error)
}

type notifier interface {
	NotifyBookingConfirmed(ctx context.Context, ownerID, bookingID int64) error
	NotifyRefundIssued(ctx context.Context, borrowerID, bookingID int64, amount float64) error
}
