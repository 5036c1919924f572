package payment

import "errors"

var (
	ErrNotFound            = errors.New("booking not found")
	ErrForbidden           = errors.New("actor is not the borrower")
	ErrInvalidState        = errors.New("booking no longer payable")
	ErrConflict            = errors.New("dates taken while payment was in flight")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrNoPayment           = errors.New("no settled payment behind the reference")
	ErrInvalidAmount       = errors.New("invalid refund amount")
	ErrRefundFailed        = errors.New("provider rejected the refund")
	ErrUpstreamUnavailable = errors.New("payment provider unavailable")
)
