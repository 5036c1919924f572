package booking

import (
	"context"
	"time"

	"lendaround/internal/domain"
)

// BookingRepository is the transactional booking store.
type BookingRepository interface {
	CreateRequest(ctx context.Context, b *domain.Booking, ownerID int64) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatusGuarded(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) (bool, error)
	SweepExpired(ctx context.Context, now time.Time) ([]domain.Booking, error)
	ListByBorrower(ctx context.Context, borrowerID int64, limit, offset int) ([]domain.Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error)
}

// ListingReader resolves listings; listing management is out of scope.
type ListingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
}

// NotificationSender dispatches the durable+realtime side effects of a
// transition.
type NotificationSender interface {
	NotifyBookingRequested(ctx context.Context, ownerID, bookingID, listingID int64, start, end time.Time) error
	NotifyBookingApproved(ctx context.Context, borrowerID, bookingID int64) error
	NotifyBookingRejected(ctx context.Context, borrowerID, bookingID int64) error
	NotifyBookingExpired(ctx context.Context, borrowerID, bookingID int64) error
	NotifyBookingDisputed(ctx context.Context, recipientID, bookingID int64) error
}

// ConversationPoster posts engine-generated messages into the booking's
// conversation.
type ConversationPoster interface {
	AppendSystemMessage(ctx context.Context, conversationID int64, body string) error
}
