package review

import (
	"context"
	"errors"

	"fundi/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrNotAllowed          = errors.New("only the booking's customer may review it")
	ErrBookingNotCompleted = errors.New("only completed bookings can be reviewed")
	ErrAlreadyReviewed     = errors.New("booking already has a review")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
)

type Service struct {
	reviews  reviewRepo
	bookings bookingReader
}

func NewService(reviews reviewRepo, bookings bookingReader) *Service {
	return &Service{reviews: reviews, bookings: bookings}
}

// CreateReview accepts one review per completed booking, written by the
// customer who made the booking.
func (s *Service) CreateReview(ctx context.Context, req CreateReviewRequest) (*domain.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if b.CustomerID != req.CustomerID {
		return nil, ErrNotAllowed
	}
	if b.Status != domain.BookingCompleted {
		return nil, ErrBookingNotCompleted
	}

	existing, err := s.reviews.FindByBookingID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyReviewed
	}

	rv := &domain.Review{
		BookingID: b.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}
