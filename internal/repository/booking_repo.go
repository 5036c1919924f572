package repository

import (
	"context"
	"time"

	"lendaround/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID             int64      `gorm:"column:id;primaryKey"`
	ListingID      int64      `gorm:"column:listing_id"`
	BorrowerID     int64      `gorm:"column:borrower_id"`
	StartDate      time.Time  `gorm:"column:start_date"`
	EndDate        time.Time  `gorm:"column:end_date"`
	TotalAmount    float64    `gorm:"column:total_amount"`
	DepositHeld    float64    `gorm:"column:deposit_held"`
	Status         string     `gorm:"column:status"`
	ExpiresAt      *time.Time `gorm:"column:expires_at"`
	PaymentRefKind string     `gorm:"column:payment_ref_kind"`
	PaymentRefID   string     `gorm:"column:payment_ref_id"`
	ConversationID int64      `gorm:"column:conversation_id"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:             m.ID,
		ListingID:      m.ListingID,
		BorrowerID:     m.BorrowerID,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		TotalAmount:    m.TotalAmount,
		DepositHeld:    m.DepositHeld,
		Status:         domain.BookingStatus(m.Status),
		ExpiresAt:      m.ExpiresAt,
		PaymentRefKind: domain.PaymentRefKind(m.PaymentRefKind),
		PaymentRefID:   m.PaymentRefID,
		ConversationID: m.ConversationID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:             b.ID,
		ListingID:      b.ListingID,
		BorrowerID:     b.BorrowerID,
		StartDate:      b.StartDate,
		EndDate:        b.EndDate,
		TotalAmount:    b.TotalAmount,
		DepositHeld:    b.DepositHeld,
		Status:         string(b.Status),
		ExpiresAt:      b.ExpiresAt,
		PaymentRefKind: string(b.PaymentRefKind),
		PaymentRefID:   b.PaymentRefID,
		ConversationID: b.ConversationID,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func statusStrings(in []domain.BookingStatus) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

// CreateRequest inserts the booking together with its conversation. The
// overlap and single-open-request guards run inside the same transaction so
// two concurrent requests cannot both pass the read phase.
func (r *BookingRepository) CreateRequest(ctx context.Context, b *domain.Booking, ownerID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var overlapping int64
		err := tx.Model(&bookingModel{}).
			Where("listing_id = ? AND status IN ?", b.ListingID, statusStrings(domain.BlockingStatuses)).
			Where("start_date <= ? AND end_date >= ?", b.EndDate, b.StartDate).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrOverlap
		}

		var open int64
		err = tx.Model(&bookingModel{}).
			Where("listing_id = ? AND borrower_id = ? AND status IN ?",
				b.ListingID, b.BorrowerID, statusStrings(domain.NonTerminalStatuses)).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrDuplicateRequest
		}

		m := toBookingModel(b)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}

		conv := domain.Conversation{BookingID: m.ID}
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		participants := []domain.ConversationParticipant{
			{ConversationID: conv.ID, UserID: b.BorrowerID},
			{ConversationID: conv.ID, UserID: ownerID},
		}
		if err := tx.Create(&participants).Error; err != nil {
			return err
		}

		m.ConversationID = conv.ID
		if err := tx.Model(&bookingModel{}).Where("id = ?", m.ID).
			Update("conversation_id", conv.ID).Error; err != nil {
			return err
		}

		*b = *toDomainBooking(m)
		return nil
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// UpdateStatusGuarded performs the guarded status flip. Returns false when
// the row was no longer in any of the expected states.
func (r *BookingRepository) UpdateStatusGuarded(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) (bool, error) {
	updates := map[string]any{
		"status":     string(to),
		"updated_at": time.Now().UTC(),
	}
	if to != domain.BookingPending {
		// expires_at only has meaning while pending
		updates["expires_at"] = nil
	}
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status IN ?", id, statusStrings(from)).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// ConfirmPaid transitions a pending/approved booking to confirmed, storing
// the settled payment id. The availability recheck runs under a row lock in
// the same transaction; this is the authoritative double-booking gate.
func (r *BookingRepository) ConfirmPaid(ctx context.Context, id int64, paymentID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m bookingModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error; err != nil {
			return err
		}

		switch domain.BookingStatus(m.Status) {
		case domain.BookingPending, domain.BookingApproved:
		default:
			return ErrStateChanged
		}

		var overlapping int64
		err := tx.Model(&bookingModel{}).
			Where("listing_id = ? AND id <> ? AND status IN ?",
				m.ListingID, m.ID, statusStrings(domain.BlockingStatuses)).
			Where("start_date <= ? AND end_date >= ?", m.EndDate, m.StartDate).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrOverlap
		}

		return tx.Model(&bookingModel{}).Where("id = ?", m.ID).Updates(map[string]any{
			"status":           string(domain.BookingConfirmed),
			"payment_ref_kind": string(domain.RefPayment),
			"payment_ref_id":   paymentID,
			"expires_at":       nil,
			"updated_at":       time.Now().UTC(),
		}).Error
	})
	if isNoDoubleConfirmViolation(err) {
		return ErrOverlap
	}
	return err
}

// isNoDoubleConfirmViolation detects the idx_no_double_confirm constraint
// backstop (unique 23505 or exclusion 23P01) for stores that cannot
// serialize the recheck.
func isNoDoubleConfirmViolation(err error) bool {
	pgErr, ok := err.(*pgconn.PgError)
	if !ok {
		return false
	}
	if pgErr.Code != "23505" && pgErr.Code != "23P01" {
		return false
	}
	return pgErr.ConstraintName == "idx_no_double_confirm"
}

// SetOrderRef stores the provider order id ahead of settlement. Does not
// touch the booking status.
func (r *BookingRepository) SetOrderRef(ctx context.Context, id int64, orderID string) error {
	return r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", id).Updates(map[string]any{
		"payment_ref_kind": string(domain.RefOrder),
		"payment_ref_id":   orderID,
		"updated_at":       time.Now().UTC(),
	}).Error
}

// SweepExpired cancels all pending bookings past their expiry and returns
// the swept rows. The status guard in the UPDATE makes repeated sweeps
// no-ops.
func (r *BookingRepository) SweepExpired(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	var swept []domain.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []bookingModel
		err := tx.
			Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?",
				string(domain.BookingPending), now).
			Find(&rows).Error
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(rows))
		for _, m := range rows {
			ids = append(ids, m.ID)
		}

		err = tx.Model(&bookingModel{}).
			Where("id IN ? AND status = ?", ids, string(domain.BookingPending)).
			Updates(map[string]any{
				"status":     string(domain.BookingCancelled),
				"expires_at": nil,
				"updated_at": now,
			}).Error
		if err != nil {
			return err
		}

		swept = make([]domain.Booking, 0, len(rows))
		for _, m := range rows {
			m.Status = string(domain.BookingCancelled)
			swept = append(swept, *toDomainBooking(m))
		}
		return nil
	})
	return swept, err
}

// HasConflict is the availability predicate: true iff a confirmed/active
// booking on the listing intersects [start,end]. excludeID skips the
// booking being confirmed.
func (r *BookingRepository) HasConflict(ctx context.Context, listingID int64, start, end time.Time, excludeID int64) (bool, error) {
	var cnt int64
	q := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("listing_id = ? AND status IN ?", listingID, statusStrings(domain.BlockingStatuses)).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *BookingRepository) HasOpenRequest(ctx context.Context, listingID, borrowerID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("listing_id = ? AND borrower_id = ? AND status IN ?",
			listingID, borrowerID, statusStrings(domain.NonTerminalStatuses)).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *BookingRepository) ListByBorrower(ctx context.Context, borrowerID int64, limit, offset int) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Joins("JOIN listings ON listings.id = bookings.listing_id").
		Where("listings.owner_id = ?", ownerID).
		Order("bookings.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// ConflictingListingIDs feeds the browse-time availability filter. It is a
// point-in-time read and may lag booking transitions.
func (r *BookingRepository) ConflictingListingIDs(ctx context.Context, start, end time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Distinct("listing_id").
		Where("status IN ?", statusStrings(domain.BlockingStatuses)).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Pluck("listing_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
