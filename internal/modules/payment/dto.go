package payment

import (
	"time"

	"fundi/internal/domain"
)

type CreatePaymentRequest struct {
	BookingID int64  `json:"booking_id" binding:"required" example:"42"`
	Method    string `json:"method" binding:"required,oneof=mobile_money cash" example:"mobile_money"`
	Phone     string `json:"phone" example:"0712345678"`

	// UserID comes from the auth context, never from the request body.
	UserID int64 `json:"-"`
}

// CreatePaymentResult pairs the persisted payment with the provider's
// customer-facing prompt text (empty for cash).
type CreatePaymentResult struct {
	Payment         *domain.Payment
	CustomerMessage string
}

type PaymentResponse struct {
	ID                int64      `json:"id"`
	BookingID         int64      `json:"booking_id"`
	Amount            string     `json:"amount"`
	Status            string     `json:"status"`
	Method            string     `json:"method"`
	TransactionID     string     `json:"transaction_id,omitempty"`
	MerchantRequestID string     `json:"merchant_request_id,omitempty"`
	CheckoutRequestID string     `json:"checkout_request_id,omitempty"`
	CustomerMessage   string     `json:"customer_message,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

func toPaymentResponse(p *domain.Payment, customerMessage string) PaymentResponse {
	return PaymentResponse{
		ID:                p.ID,
		BookingID:         p.BookingID,
		Amount:            p.Amount.StringFixed(2),
		Status:            string(p.Status),
		Method:            string(p.Method),
		TransactionID:     p.TransactionID,
		MerchantRequestID: p.MerchantRequestID,
		CheckoutRequestID: p.CheckoutRequestID,
		CustomerMessage:   customerMessage,
		CompletedAt:       p.CompletedAt,
	}
}

type ErrorResponse struct {
	Error string `json:"error" example:"payment already exists for this booking"`
}
