package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"lendaround/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/listings", h.Browse)
	rg.GET("/listings/:id", h.Get)
	rg.GET("/listings/:id/availability", h.Availability)
}

func (h *Handler) Browse(c *gin.Context) {
	minPrice, _ := strconv.ParseFloat(c.Query("min_price"), 64)
	maxPrice, _ := strconv.ParseFloat(c.Query("max_price"), 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := h.service.Browse(c.Request.Context(), BrowseQuery{
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			response.Error(c, http.StatusBadRequest, "INVALID_RANGE", "start_date and end_date must be YYYY-MM-DD")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load listings")
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid listing ID")
		return
	}

	l, err := h.service.GetListing(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Listing not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load listing")
		return
	}

	response.Success(c, http.StatusOK, l)
}

func (h *Handler) Availability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid listing ID")
		return
	}

	resp, err := h.service.Availability(c.Request.Context(), id, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Listing not found")
		case errors.Is(err, ErrInvalidRange):
			response.Error(c, http.StatusBadRequest, "INVALID_RANGE", "start_date and end_date must be YYYY-MM-DD")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check availability")
		}
		return
	}

	response.Success(c, http.StatusOK, resp)
}
