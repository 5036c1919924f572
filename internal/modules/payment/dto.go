package payment

type CreateOrderRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

type CreateOrderResponse struct {
	OrderID     string `json:"order_id"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
}

type VerifyPaymentRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type RefundRequest struct {
	// Amount in major units. Omitted means full amount (rent + deposit).
	Amount *float64 `json:"amount,omitempty"`
}

type RefundResponse struct {
	RefundID    string `json:"refund_id"`
	PaymentID   string `json:"payment_id"`
	AmountMinor int64  `json:"amount_minor"`
	Status      string `json:"status"`
}
