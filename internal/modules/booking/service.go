package booking

import (
	"context"
	"errors"
	"time"

	"fundi/internal/domain"

	"gorm.io/gorm"
)

type Service struct {
	bookings bookingRepo
	fundis   fundiReader
	services serviceReader
	payments paymentFinder
	reviews  reviewFinder
	loggerf  func(format string, args ...interface{})
}

func NewService(bookings bookingRepo, fundis fundiReader, services serviceReader, payments paymentFinder, reviews reviewFinder, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		bookings: bookings,
		fundis:   fundis,
		services: services,
		payments: payments,
		reviews:  reviews,
		loggerf:  loggerf,
	}
}

// CreateBooking snapshots the fundi's current hourly rate onto the booking so
// later rate edits do not change what this booking costs.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if req.EstimatedHours < 1 {
		req.EstimatedHours = 1
	}
	if !req.BookingDate.After(time.Now()) {
		return nil, ErrPastBookingDate
	}

	f, err := s.fundis.GetByID(ctx, req.FundiID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFundiNotFound
		}
		return nil, err
	}
	if !f.IsAvailable {
		return nil, ErrFundiUnavailable
	}

	if _, err := s.services.GetByID(ctx, req.ServiceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	b := &domain.Booking{
		CustomerID:     req.CustomerID,
		FundiID:        f.ID,
		ServiceID:      req.ServiceID,
		Description:    req.Description,
		Address:        req.Address,
		BookingDate:    req.BookingDate,
		EstimatedHours: req.EstimatedHours,
		HourlyRate:     f.HourlyRate,
		Status:         domain.BookingPending,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	s.loggerf("level=info msg=booking created booking_id=%d customer_id=%d fundi_id=%d total=%s",
		b.ID, b.CustomerID, b.FundiID, b.TotalCost().StringFixed(2))
	return b, nil
}

// UpdateStatus applies a status change on behalf of a user. The fundi walks
// the booking through its lifecycle; the customer may only cancel. Every
// change must be a legal transition.
func (s *Service) UpdateStatus(ctx context.Context, bookingID, userID int64, next domain.BookingStatus) (*domain.Booking, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	actorIsCustomer := b.CustomerID == userID
	actorIsFundi := false
	if !actorIsCustomer {
		f, err := s.fundis.GetByUserID(ctx, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		actorIsFundi = f != nil && f.ID == b.FundiID
	}
	if !actorIsCustomer && !actorIsFundi {
		return nil, ErrNotAllowed
	}
	if actorIsCustomer && next != domain.BookingCancelled {
		return nil, ErrNotAllowed
	}

	if !b.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	if err := s.bookings.UpdateStatus(ctx, b.ID, next); err != nil {
		return nil, err
	}
	s.loggerf("level=info msg=booking status changed booking_id=%d from=%s to=%s user_id=%d",
		b.ID, b.Status, next, userID)
	return s.bookings.GetByID(ctx, b.ID)
}

// GetDetail returns the booking with its payment and review, each of which
// may be absent. Only the booking's customer or fundi may see it.
func (s *Service) GetDetail(ctx context.Context, bookingID, userID int64) (*BookingDetail, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	allowed := b.CustomerID == userID
	if !allowed {
		f, err := s.fundis.GetByUserID(ctx, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		allowed = f != nil && f.ID == b.FundiID
	}
	if !allowed {
		return nil, ErrNotAllowed
	}

	p, err := s.payments.FindByBookingID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	rv, err := s.reviews.FindByBookingID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return &BookingDetail{Booking: toBookingResponse(b), Payment: p, Review: rv}, nil
}

func (s *Service) ListForCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	return s.bookings.ListByCustomer(ctx, customerID)
}

// ListForFundi resolves the caller's fundi profile first; a user without one
// has no assigned bookings.
func (s *Service) ListForFundi(ctx context.Context, userID int64) ([]domain.Booking, error) {
	f, err := s.fundis.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFundiNotFound
		}
		return nil, err
	}
	return s.bookings.ListByFundi(ctx, f.ID)
}
