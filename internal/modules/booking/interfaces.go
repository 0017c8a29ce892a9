package booking

import (
	"context"

	"fundi/internal/domain"
)

type bookingRepo interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error)
	ListByFundi(ctx context.Context, fundiID int64) ([]domain.Booking, error)
}

type fundiReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Fundi, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Fundi, error)
}

type serviceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// paymentFinder and reviewFinder return (nil, nil) when the booking has no
// payment or review yet; absence is a normal answer, not an error.
type paymentFinder interface {
	FindByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
}

type reviewFinder interface {
	FindByBookingID(ctx context.Context, bookingID int64) (*domain.Review, error)
}
