package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"strconv"

	"lendaround/internal/config"
	"lendaround/internal/domain"
	"lendaround/internal/repository"

	"gorm.io/gorm"
)

type Service struct {
	bookings bookingStore
	listings listingReader
	provider orderProvider
	notifs   notifier
	loggerf  func(format string, args ...interface{})

	currency      string
	webhookSecret []byte
}

func NewService(bookings bookingStore, listings listingReader, provider orderProvider, notifs notifier, cfg *config.Payments, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		bookings:      bookings,
		listings:      listings,
		provider:      provider,
		notifs:        notifs,
		loggerf:       loggerf,
		currency:      cfg.Currency,
		webhookSecret: []byte(cfg.WebhookSecret),
	}
}

// MinorUnits converts a major-unit amount to the provider's integer minor
// units.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateOrder opens a provider order for the booking's full charge (rent
// plus deposit) and stores the order reference on the booking.
func (s *Service) CreateOrder(ctx context.Context, bookingID, actorID int64) (*CreateOrderResponse, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.BorrowerID != actorID {
		return nil, ErrForbidden
	}
	switch b.Status {
	case domain.BookingPending, domain.BookingApproved:
	default:
		return nil, ErrInvalidState
	}

	amountMinor := MinorUnits(b.TotalAmount + b.DepositHeld)
	notes := map[string]string{"booking_id": strconv.FormatInt(b.ID, 10)}

	orderID, err := s.provider.CreateOrder(ctx, amountMinor, s.currency, notes)
	if err != nil {
		s.loggerf("level=error msg=create order failed booking_id=%d err=%v", b.ID, err)
		return nil, ErrUpstreamUnavailable
	}

	if err := s.bookings.SetOrderRef(ctx, b.ID, orderID); err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=order created booking_id=%d order_id=%s amount_minor=%d", b.ID, orderID, amountMinor)
	return &CreateOrderResponse{OrderID: orderID, AmountMinor: amountMinor, Currency: s.currency}, nil
}

// VerifyPayment authenticates the provider callback and, only then,
// confirms the booking. The availability recheck happens inside ConfirmPaid
// under a row lock; a race lost there surfaces as ErrConflict and the
// payment must be refunded out of band.
func (s *Service) VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (*domain.Booking, error) {
	if !s.signatureValid(req.OrderID, req.PaymentID, req.Signature) {
		s.loggerf("level=warn msg=payment signature rejected booking_id=%d order_id=%s", req.BookingID, req.OrderID)
		return nil, ErrInvalidSignature
	}

	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// A valid signature replayed against another booking still fails here.
	if b.PaymentRefKind != domain.RefOrder || b.PaymentRefID != req.OrderID {
		return nil, ErrInvalidSignature
	}

	if err := s.bookings.ConfirmPaid(ctx, b.ID, req.PaymentID); err != nil {
		switch {
		case errors.Is(err, repository.ErrStateChanged):
			return nil, ErrInvalidState
		case errors.Is(err, repository.ErrOverlap):
			s.loggerf("level=warn msg=dates taken at settlement booking_id=%d payment_id=%s", b.ID, req.PaymentID)
			return nil, ErrConflict
		}
		return nil, err
	}

	s.loggerf("level=info msg=payment verified booking_id=%d payment_id=%s", b.ID, req.PaymentID)

	if s.notifs != nil {
		if listing, lerr := s.listings.GetByID(ctx, b.ListingID); lerr == nil {
			_ = s.notifs.NotifyBookingConfirmed(ctx, listing.OwnerID, b.ID)
		}
	}

	return s.bookings.GetByID(ctx, b.ID)
}

func (s *Service) signatureValid(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, s.webhookSecret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, expected)
}

// Refund issues a single refund attempt against the booking's settled
// payment. An order reference is resolved to its captured payment first.
// The provider call is never retried; a failure is reported and left to an
// operator.
func (s *Service) Refund(ctx context.Context, bookingID int64, amount *float64) (*RefundResponse, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	paymentID, err := s.resolvePaymentID(ctx, b)
	if err != nil {
		return nil, err
	}

	amountMajor := b.TotalAmount + b.DepositHeld
	if amount != nil {
		if *amount <= 0 {
			return nil, ErrInvalidAmount
		}
		amountMajor = *amount
	}
	amountMinor := MinorUnits(amountMajor)

	refund, err := s.provider.Refund(ctx, paymentID, amountMinor)
	if err != nil {
		s.loggerf("level=error msg=refund failed booking_id=%d payment_id=%s amount_minor=%d err=%v",
			b.ID, paymentID, amountMinor, err)
		return nil, ErrRefundFailed
	}

	s.loggerf("level=info msg=refund issued booking_id=%d payment_id=%s refund_id=%s amount_minor=%d",
		b.ID, paymentID, refund.ID, amountMinor)

	if s.notifs != nil {
		_ = s.notifs.NotifyRefundIssued(ctx, b.BorrowerID, b.ID, amountMajor)
	}

	return &RefundResponse{
		RefundID:    refund.ID,
		PaymentID:   paymentID,
		AmountMinor: amountMinor,
		Status:      refund.Status,
	}, nil
}

func (s *Service) resolvePaymentID(ctx context.Context, b *domain.Booking) (string, error) {
	switch b.PaymentRefKind {
	case domain.RefPayment:
		return b.PaymentRefID, nil
	case domain.RefOrder:
		payments, err := s.provider.PaymentsForOrder(ctx, b.PaymentRefID)
		if err != nil {
			s.loggerf("level=error msg=payment lookup failed booking_id=%d order_id=%s err=%v",
				b.ID, b.PaymentRefID, err)
			return "", ErrUpstreamUnavailable
		}
		for _, p := range payments {
			if p.Status == "captured" {
				return p.ID, nil
			}
		}
		return "", ErrNoPayment
	default:
		return "", ErrNoPayment
	}
}
