package catalog

import (
	"context"
	"errors"
	"time"

	"lendaround/internal/domain"
	"lendaround/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("listing not found")
	ErrInvalidRange = errors.New("invalid date range")
)

type Service struct {
	listings *repository.ListingRepository
	bookings *repository.BookingRepository
}

func NewService(listings *repository.ListingRepository, bookings *repository.BookingRepository) *Service {
	return &Service{listings: listings, bookings: bookings}
}

// Browse lists rentable listings. When a date range is supplied, listings
// with a confirmed or active booking over that range are filtered out. This
// is a browse-time convenience; booking creation re-checks availability.
func (s *Service) Browse(ctx context.Context, q BrowseQuery) (*BrowseResponse, error) {
	var excludeIDs []int64
	if q.StartDate != "" || q.EndDate != "" {
		start, end, err := parseRange(q.StartDate, q.EndDate)
		if err != nil {
			return nil, err
		}
		excludeIDs, err = s.bookings.ConflictingListingIDs(ctx, start, end)
		if err != nil {
			return nil, err
		}
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	listings, total, err := s.listings.ListActive(ctx, repository.ListingFilters{
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Limit:    limit,
		Offset:   offset,
	}, excludeIDs)
	if err != nil {
		return nil, err
	}

	return &BrowseResponse{Listings: listings, Total: total}, nil
}

func (s *Service) GetListing(ctx context.Context, id int64) (*domain.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !l.Rentable() {
		return nil, ErrNotFound
	}
	return l, nil
}

// Availability answers whether a listing is free for the inclusive range.
func (s *Service) Availability(ctx context.Context, listingID int64, startStr, endStr string) (*AvailabilityResponse, error) {
	if _, err := s.GetListing(ctx, listingID); err != nil {
		return nil, err
	}

	start, end, err := parseRange(startStr, endStr)
	if err != nil {
		return nil, err
	}

	conflict, err := s.bookings.HasConflict(ctx, listingID, start, end, 0)
	if err != nil {
		return nil, err
	}

	return &AvailabilityResponse{
		ListingID: listingID,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Available: !conflict,
	}, nil
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	start = domain.DateOnly(start)
	end = domain.DateOnly(end)
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return start, end, nil
}
