package review

import (
	"context"

	"fundi/internal/domain"
)

type reviewRepo interface {
	Create(ctx context.Context, rv *domain.Review) error
	FindByBookingID(ctx context.Context, bookingID int64) (*domain.Review, error)
}

type bookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}
