package catalog

import "lendaround/internal/domain"

type BrowseQuery struct {
	MinPrice  float64
	MaxPrice  float64
	StartDate string // 2006-01-02, optional
	EndDate   string
	Limit     int
	Offset    int
}

type BrowseResponse struct {
	Listings []domain.Listing `json:"listings"`
	Total    int64            `json:"total"`
}

type AvailabilityResponse struct {
	ListingID int64  `json:"listing_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Available bool   `json:"available"`
}
