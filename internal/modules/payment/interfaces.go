package payment

import (
	"context"
	"time"

	"fundi/internal/domain"
	"fundi/internal/mpesa"

	"github.com/shopspring/decimal"
)

type bookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type bookingStatusWriter interface {
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

type paymentRepo interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	FindByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	GetByCheckoutRequestID(ctx context.Context, id string) (*domain.Payment, error)
	GetByMerchantRequestID(ctx context.Context, id string) (*domain.Payment, error)
	MarkCompletedIdempotent(ctx context.Context, id int64, transactionID, rawBody string, completedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id int64, reason, rawBody string) error
	SetStatus(ctx context.Context, id int64, status domain.PaymentStatus, completedAt *time.Time) error
}

type chargeGateway interface {
	InitiateCharge(ctx context.Context, phone string, amount decimal.Decimal, reference, description, callbackURL string) (*mpesa.ChargeAccepted, error)
	QueryChargeStatus(ctx context.Context, checkoutRequestID string) (*mpesa.ChargeStatus, error)
}
