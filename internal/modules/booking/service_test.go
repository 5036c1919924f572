package booking

import (
	"context"
	"testing"
	"time"

	"lendaround/internal/domain"
	"lendaround/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock repositories
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateRequest(ctx context.Context, b *domain.Booking, ownerID int64) error {
	args := m.Called(ctx, b, ownerID)
	if b != nil && args.Error(0) == nil {
		b.ID = 999 // simulate DB insert
		b.ConversationID = 555
	}
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatusGuarded(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) SweepExpired(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByBorrower(ctx context.Context, borrowerID int64, limit, offset int) ([]domain.Booking, error) {
	args := m.Called(ctx, borrowerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockListingReader struct {
	mock.Mock
}

func (m *MockListingReader) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) NotifyBookingRequested(ctx context.Context, ownerID, bookingID, listingID int64, start, end time.Time) error {
	args := m.Called(ctx, ownerID, bookingID, listingID, start, end)
	return args.Error(0)
}

func (m *MockNotificationSender) NotifyBookingApproved(ctx context.Context, borrowerID, bookingID int64) error {
	args := m.Called(ctx, borrowerID, bookingID)
	return args.Error(0)
}

func (m *MockNotificationSender) NotifyBookingRejected(ctx context.Context, borrowerID, bookingID int64) error {
	args := m.Called(ctx, borrowerID, bookingID)
	return args.Error(0)
}

func (m *MockNotificationSender) NotifyBookingExpired(ctx context.Context, borrowerID, bookingID int64) error {
	args := m.Called(ctx, borrowerID, bookingID)
	return args.Error(0)
}

func (m *MockNotificationSender) NotifyBookingDisputed(ctx context.Context, recipientID, bookingID int64) error {
	args := m.Called(ctx, recipientID, bookingID)
	return args.Error(0)
}

type MockConversationPoster struct {
	mock.Mock
}

func (m *MockConversationPoster) AppendSystemMessage(ctx context.Context, conversationID int64, body string) error {
	args := m.Called(ctx, conversationID, body)
	return args.Error(0)
}

func futureDate(y int, mth time.Month, d int) time.Time {
	return time.Date(y, mth, d, 0, 0, 0, 0, time.UTC)
}

func TestService_RequestBooking_Success(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockListings := new(MockListingReader)
	mockNotifs := new(MockNotificationSender)

	mockListings.On("GetByID", mock.Anything, int64(10)).Return(&domain.Listing{
		ID:            10,
		OwnerID:       1,
		PricePerDay:   50.0,
		DepositAmount: 200.0,
		Status:        domain.ListingActive,
	}, nil)

	start := futureDate(2027, time.March, 10)
	end := futureDate(2027, time.March, 12)

	mockBookings.On("CreateRequest", mock.Anything, mock.Anything, int64(1)).Return(nil)
	mockNotifs.On("NotifyBookingRequested", mock.Anything, int64(1), int64(999), int64(10), start, end).Return(nil)

	service := NewService(mockBookings, mockListings, mockNotifs, nil)

	b, err := service.RequestBooking(context.Background(), 10, 7, start, end)

	assert.NoError(t, err)
	assert.NotNil(t, b)
	assert.Equal(t, 100.0, b.TotalAmount) // 2 days x 50
	assert.Equal(t, 200.0, b.DepositHeld)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.NotNil(t, b.ExpiresAt)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), *b.ExpiresAt, 5*time.Second)
	mockBookings.AssertExpectations(t)
	mockNotifs.AssertExpectations(t)
}

func TestService_RequestBooking_SameDayChargedOneDay(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockListings := new(MockListingReader)

	mockListings.On("GetByID", mock.Anything, int64(10)).Return(&domain.Listing{
		ID: 10, OwnerID: 1, PricePerDay: 50.0, Status: domain.ListingActive,
	}, nil)
	mockBookings.On("CreateRequest", mock.Anything, mock.Anything, int64(1)).Return(nil)

	service := NewService(mockBookings, mockListings, nil, nil)

	day := futureDate(2027, time.March, 10)
	b, err := service.RequestBooking(context.Background(), 10, 7, day, day)

	assert.NoError(t, err)
	assert.Equal(t, 50.0, b.TotalAmount)
}

func TestService_RequestBooking_OwnListing(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockListings := new(MockListingReader)

	mockListings.On("GetByID", mock.Anything, int64(10)).Return(&domain.Listing{
		ID: 10, OwnerID: 7, PricePerDay: 50.0, Status: domain.ListingActive,
	}, nil)

	service := NewService(mockBookings, mockListings, nil, nil)

	_, err := service.RequestBooking(context.Background(), 10, 7,
		futureDate(2027, time.March, 10), futureDate(2027, time.March, 12))

	assert.ErrorIs(t, err, ErrForbidden)
	mockBookings.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RequestBooking_EndBeforeStart(t *testing.T) {
	service := NewService(new(MockBookingRepository), new(MockListingReader), nil, nil)

	_, err := service.RequestBooking(context.Background(), 10, 7,
		futureDate(2027, time.March, 12), futureDate(2027, time.March, 10))

	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestService_RequestBooking_PastStart(t *testing.T) {
	service := NewService(new(MockBookingRepository), new(MockListingReader), nil, nil)

	_, err := service.RequestBooking(context.Background(), 10, 7,
		futureDate(2020, time.March, 10), futureDate(2020, time.March, 12))

	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestService_RequestBooking_Overlap(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockListings := new(MockListingReader)

	mockListings.On("GetByID", mock.Anything, int64(10)).Return(&domain.Listing{
		ID: 10, OwnerID: 1, PricePerDay: 50.0, Status: domain.ListingActive,
	}, nil)
	mockBookings.On("CreateRequest", mock.Anything, mock.Anything, int64(1)).Return(repository.ErrOverlap)

	service := NewService(mockBookings, mockListings, nil, nil)

	_, err := service.RequestBooking(context.Background(), 10, 7,
		futureDate(2027, time.March, 10), futureDate(2027, time.March, 12))

	assert.ErrorIs(t, err, ErrConflict)
}

func TestService_RequestBooking_DuplicateRequest(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockListings := new(MockListingReader)

	mockListings.On("GetByID", mock.Anything, int64(10)).Return(&domain.Listing{
		ID: 10, OwnerID: 1, PricePerDay: 50.0, Status: domain.ListingActive,
	}, nil)
	mockBookings.On("CreateRequest", mock.Anything, mock.Anything, int64(1)).Return(repository.ErrDuplicateRequest)

	service := NewService(mockBookings, mockListings, nil, nil)

	_, err := service.RequestBooking(context.Background(), 10, 7,
		futureDate(2027, time.March, 10), futureDate(2027, time.March, 12))

	assert.ErrorIs(t, err, ErrConflict)
}

func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:             123,
		ListingID:      10,
		BorrowerID:     7,
		Status:         domain.BookingPending,
		ConversationID: 555,
	}
}

func ownersListing() *domain.Listing {
	return &domain.Listing{ID: 10, OwnerID: 1, Status: domain.ListingActive}
}

func TestService_Decide_Approve(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockListings := new(MockListingReader)
	mockNotifs := new(MockNotificationSender)
	mockChat := new(MockConversationPoster)

	b := pendingBooking()
	mockBookings.On("GetByID", mock.Anything, int64(123)).Return(b, nil).Once()
	mockListings.On("GetByID", mock.Anything, int64(10)).Return(ownersListing(), nil)
	mockBookings.On("UpdateStatusGuarded", mock.Anything, int64(123),
		[]domain.BookingStatus{domain.BookingPending}, domain.BookingApproved).Return(true, nil)
	mockNotifs.On("NotifyBookingApproved", mock.Anything, int64(7), int64(123)).Return(nil)
	mockChat.On("AppendSystemMessage", mock.Anything, int64(555), mock.Anything).Return(nil)

	approved := pendingBooking()
	approved.Status = domain.BookingApproved
	mockBookings.On("GetByID", mock.Anything, int64(123)).Return(approved, nil).Once()

	service := NewService(mockBookings, mockListings, mockNotifs, mockChat)

	result, err := service.Decide(context.Background(), 123, Actor{ID: 1}, "approve")

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingApproved, result.Status)
	mockBookings.AssertExpectations(t)
	mockNotifs.AssertExpectations(t)
}

func TestService_Decide_Forbidden(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockListings := new(MockListingReader)

	mockBookings.On("GetByID", mock.Anything, int64(123)).Return(pendingBooking(), nil)
	mockListings.On("GetByID", mock.Anything, int64(10)).Return(ownersListing(), nil)

	service := NewService(mockBookings, mockListings, nil, nil)

	// borrower cannot decide, neither can a stranger
	_, err := service.Decide(context.Background(), 123, Actor{ID: 7}, "approve")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = service.Decide(context.Background(), 123, Actor{ID: 42}, "reject")
	assert.ErrorIs(t, err, ErrForbidden)

	mockBookings.AssertNotCalled(t, "UpdateStatusGuarded", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Decide_AlreadyDecided(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockListings := new(MockListingReader)

	mockBookings.On("GetByID", mock.Anything, int64(123)).Return(pendingBooking(), nil)
	mockListings.On("GetByID", mock.Anything, int64(10)).Return(ownersListing(), nil)
	// Another request won the race: zero rows matched the guard.
	mockBookings.On("UpdateStatusGuarded", mock.Anything, int64(123),
		[]domain.BookingStatus{domain.BookingPending}, domain.BookingRejected).Return(false, nil)

	service := NewService(mockBookings, mockListings, nil, nil)

	_, err := service.Decide(context.Background(), 123, Actor{ID: 1}, "reject")

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestService_Decide_BadDecision(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockListings := new(MockListingReader)

	mockBookings.On("GetByID", mock.Anything, int64(123)).Return(pendingBooking(), nil)
	mockListings.On("GetByID", mock.Anything, int64(10)).Return(ownersListing(), nil)

	service := NewService(mockBookings, mockListings, nil, nil)

	_, err := service.Decide(context.Background(), 123, Actor{ID: 1}, "maybe")

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Handover_ByBorrower(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockListings := new(MockListingReader)

	b := pendingBooking()
	b.Status = domain.BookingConfirmed
	mockBookings.On("GetByID", mock.Anything, int64(123)).Return(b, nil).Once()
	mockListings.On("GetByID", mock.Anything, int64(10)).Return(ownersListing(), nil)
	mockBookings.On("UpdateStatusGuarded", mock.Anything, int64(123),
		[]domain.BookingStatus{domain.BookingConfirmed}, domain.BookingActive).Return(true, nil)

	active := pendingBooking()
	active.Status = domain.BookingActive
	mockBookings.On("GetByID", mock.Anything, int64(123)).Return(active, nil).Once()

	service := NewService(mockBookings, mockListings, nil, nil)

	result, err := service.Handover(context.Background(), 123, Actor{ID: 7})

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingActive, result.Status)
}

func TestService_Complete_BorrowerForbidden(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockListings := new(MockListingReader)

	b := pendingBooking()
	b.Status = domain.BookingReturned
	mockBookings.On("GetByID", mock.Anything, int64(123)).Return(b, nil)
	mockListings.On("GetByID", mock.Anything, int64(10)).Return(ownersListing(), nil)

	service := NewService(mockBookings, mockListings, nil, nil)

	// only the owner or an admin closes a booking
	_, err := service.Complete(context.Background(), 123, Actor{ID: 7})
	assert.ErrorIs(t, err, ErrForbidden)

	mockBookings.On("UpdateStatusGuarded", mock.Anything, int64(123),
		[]domain.BookingStatus{domain.BookingReturned}, domain.BookingCompleted).Return(true, nil)
	mockBookings.On("GetByID", mock.Anything, int64(123)).Return(b, nil)

	_, err = service.Complete(context.Background(), 123, Actor{ID: 42, Role: string(domain.RoleAdmin)})
	assert.NoError(t, err)
}

func TestService_Dispute_NotifiesCounterparty(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockListings := new(MockListingReader)
	mockNotifs := new(MockNotificationSender)

	b := pendingBooking()
	b.Status = domain.BookingActive
	mockBookings.On("GetByID", mock.Anything, int64(123)).Return(b, nil)
	mockListings.On("GetByID", mock.Anything, int64(10)).Return(ownersListing(), nil)
	mockBookings.On("UpdateStatusGuarded", mock.Anything, int64(123),
		domain.NonTerminalStatuses, domain.BookingDispute).Return(true, nil)
	// borrower opens the dispute, owner is notified
	mockNotifs.On("NotifyBookingDisputed", mock.Anything, int64(1), int64(123)).Return(nil)

	service := NewService(mockBookings, mockListings, mockNotifs, nil)

	_, err := service.Dispute(context.Background(), 123, Actor{ID: 7})

	assert.NoError(t, err)
	mockNotifs.AssertExpectations(t)
}

func TestService_Dispute_TerminalBooking(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockListings := new(MockListingReader)

	b := pendingBooking()
	b.Status = domain.BookingCompleted
	mockBookings.On("GetByID", mock.Anything, int64(123)).Return(b, nil)
	mockListings.On("GetByID", mock.Anything, int64(10)).Return(ownersListing(), nil)
	mockBookings.On("UpdateStatusGuarded", mock.Anything, int64(123),
		domain.NonTerminalStatuses, domain.BookingDispute).Return(false, nil)

	service := NewService(mockBookings, mockListings, nil, nil)

	_, err := service.Dispute(context.Background(), 123, Actor{ID: 7})

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestService_SweepExpired_NotifiesEachBorrower(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockNotifs := new(MockNotificationSender)

	swept := []domain.Booking{
		{ID: 1, BorrowerID: 7},
		{ID: 2, BorrowerID: 8},
	}
	mockBookings.On("SweepExpired", mock.Anything, mock.Anything).Return(swept, nil)
	mockNotifs.On("NotifyBookingExpired", mock.Anything, int64(7), int64(1)).Return(nil)
	mockNotifs.On("NotifyBookingExpired", mock.Anything, int64(8), int64(2)).Return(nil)

	service := NewService(mockBookings, new(MockListingReader), mockNotifs, nil)

	count, err := service.SweepExpired(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	mockNotifs.AssertExpectations(t)
}

func TestService_SweepExpired_Empty(t *testing.T) {
	mockBookings := new(MockBookingRepository)

	mockBookings.On("SweepExpired", mock.Anything, mock.Anything).Return([]domain.Booking{}, nil)

	service := NewService(mockBookings, new(MockListingReader), new(MockNotificationSender), nil)

	count, err := service.SweepExpired(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}
