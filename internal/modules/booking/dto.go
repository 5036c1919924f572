package booking

type CreateBookingRequest struct {
	ListingID int64  `json:"listing_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"` // 2006-01-02
	EndDate   string `json:"end_date" binding:"required"`   // 2006-01-02
}

type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"` // approve | reject
}
