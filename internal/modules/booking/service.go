package booking

import (
	"context"
	"errors"
	"math"
	"time"

	"lendaround/internal/domain"
	"lendaround/internal/repository"

	"gorm.io/gorm"
)

const pendingTTL = time.Hour

// Actor identifies who performs an operation. Role comes from the session
// token; ownership is resolved against the listing, not the token.
type Actor struct {
	ID   int64
	Role string
}

func (a Actor) admin() bool { return a.Role == string(domain.RoleAdmin) }

type Service struct {
	bookings BookingRepository
	listings ListingReader
	notifs   NotificationSender
	chat     ConversationPoster
}

func NewService(bookings BookingRepository, listings ListingReader, notifs NotificationSender, chat ConversationPoster) *Service {
	return &Service{
		bookings: bookings,
		listings: listings,
		notifs:   notifs,
		chat:     chat,
	}
}

// RequestBooking creates a pending booking and its conversation. The amount
// and deposit are computed here once; later transitions never touch them.
func (s *Service) RequestBooking(ctx context.Context, listingID, borrowerID int64, start, end time.Time) (*domain.Booking, error) {
	start = domain.DateOnly(start)
	end = domain.DateOnly(end)

	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	if start.Before(domain.DateOnly(time.Now().UTC())) {
		return nil, ErrInvalidRange
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !listing.Rentable() {
		return nil, ErrNotFound
	}
	if listing.OwnerID == borrowerID {
		return nil, ErrForbidden
	}

	total := listing.PricePerDay * float64(domain.DayCount(start, end))
	total = math.Round(total*100) / 100

	expiresAt := time.Now().UTC().Add(pendingTTL)
	b := &domain.Booking{
		ListingID:   listingID,
		BorrowerID:  borrowerID,
		StartDate:   start,
		EndDate:     end,
		TotalAmount: total,
		DepositHeld: listing.DepositAmount,
		Status:      domain.BookingPending,
		ExpiresAt:   &expiresAt,
	}

	if err := s.bookings.CreateRequest(ctx, b, listing.OwnerID); err != nil {
		switch {
		case errors.Is(err, repository.ErrOverlap), errors.Is(err, repository.ErrDuplicateRequest):
			return nil, ErrConflict
		}
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyBookingRequested(ctx, listing.OwnerID, b.ID, listingID, start, end)
	}

	return b, nil
}

// authorize is the single relationship check run before any mutation.
func (s *Service) authorize(actor Actor, action string, b *domain.Booking, ownerID int64) error {
	isOwner := actor.ID == ownerID
	isBorrower := actor.ID == b.BorrowerID

	switch action {
	case "decide":
		if isOwner {
			return nil
		}
	case "handover", "return":
		if isOwner || isBorrower {
			return nil
		}
	case "complete":
		if isOwner || actor.admin() {
			return nil
		}
	case "dispute":
		if isOwner || isBorrower || actor.admin() {
			return nil
		}
	}
	return ErrForbidden
}

func (s *Service) load(ctx context.Context, bookingID int64) (*domain.Booking, *domain.Listing, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	listing, err := s.listings.GetByID(ctx, b.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return b, listing, nil
}

// Decide applies the owner's approve/reject. The guarded update is what
// decides a race between two concurrent calls: the loser sees zero affected
// rows and gets ErrInvalidState.
func (s *Service) Decide(ctx context.Context, bookingID int64, actor Actor, decision string) (*domain.Booking, error) {
	b, listing, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, "decide", b, listing.OwnerID); err != nil {
		return nil, err
	}

	var to domain.BookingStatus
	switch decision {
	case "approve":
		to = domain.BookingApproved
	case "reject":
		to = domain.BookingRejected
	default:
		return nil, ErrValidation
	}

	ok, err := s.bookings.UpdateStatusGuarded(ctx, bookingID, []domain.BookingStatus{domain.BookingPending}, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	if s.notifs != nil {
		if to == domain.BookingApproved {
			_ = s.notifs.NotifyBookingApproved(ctx, b.BorrowerID, b.ID)
		} else {
			_ = s.notifs.NotifyBookingRejected(ctx, b.BorrowerID, b.ID)
		}
	}
	if s.chat != nil && b.ConversationID > 0 {
		msg := "Запрос на аренду одобрен владельцем"
		if to == domain.BookingRejected {
			msg = "Запрос на аренду отклонён владельцем"
		}
		_ = s.chat.AppendSystemMessage(ctx, b.ConversationID, msg)
	}

	return s.bookings.GetByID(ctx, bookingID)
}

// Handover marks the item as handed to the borrower.
func (s *Service) Handover(ctx context.Context, bookingID int64, actor Actor) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, actor, "handover",
		[]domain.BookingStatus{domain.BookingConfirmed}, domain.BookingActive)
}

// Return marks the item as returned to the owner.
func (s *Service) Return(ctx context.Context, bookingID int64, actor Actor) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, actor, "return",
		[]domain.BookingStatus{domain.BookingActive}, domain.BookingReturned)
}

// Complete closes the booking after the owner (or an admin) confirms the
// safe return.
func (s *Service) Complete(ctx context.Context, bookingID int64, actor Actor) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, actor, "complete",
		[]domain.BookingStatus{domain.BookingReturned}, domain.BookingCompleted)
}

func (s *Service) transition(ctx context.Context, bookingID int64, actor Actor, action string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error) {
	b, listing, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, action, b, listing.OwnerID); err != nil {
		return nil, err
	}

	ok, err := s.bookings.UpdateStatusGuarded(ctx, bookingID, from, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}
	return s.bookings.GetByID(ctx, bookingID)
}

// Dispute moves any non-terminal booking into the dispute state; resolution
// is an administrative concern outside this engine.
func (s *Service) Dispute(ctx context.Context, bookingID int64, actor Actor) (*domain.Booking, error) {
	b, listing, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, "dispute", b, listing.OwnerID); err != nil {
		return nil, err
	}

	ok, err := s.bookings.UpdateStatusGuarded(ctx, bookingID, domain.NonTerminalStatuses, domain.BookingDispute)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	if s.notifs != nil {
		// notify the counterparty, not the initiator
		recipient := b.BorrowerID
		if actor.ID == b.BorrowerID {
			recipient = listing.OwnerID
		}
		_ = s.notifs.NotifyBookingDisputed(ctx, recipient, b.ID)
	}

	return s.bookings.GetByID(ctx, bookingID)
}

// SweepExpired cancels stale pending requests. Safe to run repeatedly: the
// pending-status guard in the repository makes a second pass a no-op.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	swept, err := s.bookings.SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	if s.notifs != nil {
		for _, b := range swept {
			_ = s.notifs.NotifyBookingExpired(ctx, b.BorrowerID, b.ID)
		}
	}
	return len(swept), nil
}

func (s *Service) GetByID(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) ListMy(ctx context.Context, borrowerID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByBorrower(ctx, borrowerID, limit, offset)
}

func (s *Service) ListForOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByOwner(ctx, ownerID, limit, offset)
}
