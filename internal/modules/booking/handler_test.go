package booking

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lendaround/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupRouter(svc *Service, userID int64, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("/api/v1")
	grp.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(grp)
	return r
}

func TestHandler_Create_InvalidBodyReturnsDetails(t *testing.T) {
	svc := NewService(new(MockBookingRepository), new(MockListingReader), new(MockNotificationSender), nil)
	r := setupRouter(svc, 7, "user")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{"listing_id": "oops"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	assert.Contains(t, w.Body.String(), "details")
}

func TestHandler_Decide_InvalidBodyReturnsDetails(t *testing.T) {
	svc := NewService(new(MockBookingRepository), new(MockListingReader), new(MockNotificationSender), nil)
	r := setupRouter(svc, 1, "user")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/5/decision", strings.NewReader(`not json`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	assert.Contains(t, w.Body.String(), "details")
}

func TestHandler_Create_Success(t *testing.T) {
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
	mockBookings.On("CreateRequest", mock.Anything, mock.Anything, int64(1)).Return(nil)
	mockNotifs.On("NotifyBookingRequested", mock.Anything, int64(1), int64(999), int64(10), mock.Anything, mock.Anything).Return(nil)

	svc := NewService(mockBookings, mockListings, mockNotifs, nil)
	r := setupRouter(svc, 7, "user")

	body := `{"listing_id":10,"start_date":"2027-03-10","end_date":"2027-03-12"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
	mockBookings.AssertExpectations(t)
}
