package booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"lendaround/internal/domain"
	"lendaround/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings/my", h.ListMy)
	rg.GET("/bookings/owner", h.ListOwner)
	rg.GET("/bookings/:id", h.Get)
	rg.POST("/bookings/:id/decision", h.Decide)
	rg.POST("/bookings/:id/handover", h.Handover)
	rg.POST("/bookings/:id/return", h.Return)
	rg.POST("/bookings/:id/complete", h.Complete)
	rg.POST("/bookings/:id/dispute", h.Dispute)
}

// RegisterInternalRoutes wires maintenance endpoints; callers must put these
// behind the internal token middleware.
func (h *Handler) RegisterInternalRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/sweep", h.Sweep)
}

func actorFrom(c *gin.Context) Actor {
	return Actor{ID: c.GetInt64("user_id"), Role: c.GetString("role")}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking or listing not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not allowed for this booking")
	case errors.Is(err, ErrInvalidState):
		response.Error(c, http.StatusConflict, "INVALID_STATE", "Booking is not in a state that allows this action")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "Dates are taken or an open request already exists")
	case errors.Is(err, ErrInvalidRange):
		response.Error(c, http.StatusBadRequest, "INVALID_RANGE", "Invalid or past date range")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_RANGE", "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_RANGE", "end_date must be YYYY-MM-DD")
		return
	}

	b, err := h.service.RequestBooking(c.Request.Context(), req.ListingID, c.GetInt64("user_id"), start, end)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, b)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, b)
}

func (h *Handler) Decide(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	b, err := h.service.Decide(c.Request.Context(), id, actorFrom(c), req.Decision)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, b)
}

func (h *Handler) Handover(c *gin.Context) { h.act(c, h.service.Handover) }
func (h *Handler) Return(c *gin.Context)   { h.act(c, h.service.Return) }
func (h *Handler) Complete(c *gin.Context) { h.act(c, h.service.Complete) }
func (h *Handler) Dispute(c *gin.Context)  { h.act(c, h.service.Dispute) }

func (h *Handler) act(c *gin.Context, fn func(ctx context.Context, bookingID int64, actor Actor) (*domain.Booking, error)) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	b, err := fn(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, b)
}

func (h *Handler) Sweep(c *gin.Context) {
	count, err := h.service.SweepExpired(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Sweep failed")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"swept": count})
}

func (h *Handler) ListMy(c *gin.Context) {
	limit, offset := pageParams(c)
	list, err := h.service.ListMy(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) ListOwner(c *gin.Context) {
	limit, offset := pageParams(c)
	list, err := h.service.ListForOwner(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func pageParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
