package admin

import (
	"context"

	"fundi/internal/domain"
)

type counter interface {
	Count(ctx context.Context) (int64, error)
}

type bookingCounter interface {
	CountByStatus(ctx context.Context) (map[domain.BookingStatus]int64, error)
}

type paymentCounter interface {
	CountByStatus(ctx context.Context) (map[domain.PaymentStatus]int64, error)
}

// paymentOverrider is the manual reconciliation entry point of the payment
// ledger; the admin module never writes payment state itself.
type paymentOverrider interface {
	AdminSetStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) (*domain.Payment, error)
}

// Dashboard is the operator overview: every count in one response.
type Dashboard struct {
	Users            int64                          `json:"users"`
	Fundis           int64                          `json:"fundis"`
	Reviews          int64                          `json:"reviews"`
	BookingsByStatus map[domain.BookingStatus]int64 `json:"bookings_by_status"`
	PaymentsByStatus map[domain.PaymentStatus]int64 `json:"payments_by_status"`
}

type Service struct {
	users    counter
	fundis   counter
	reviews  counter
	bookings bookingCounter
	payments paymentCounter
	ledger   paymentOverrider
}

func NewService(users, fundis, reviews counter, bookings bookingCounter, payments paymentCounter, ledger paymentOverrider) *Service {
	return &Service{
		users:    users,
		fundis:   fundis,
		reviews:  reviews,
		bookings: bookings,
		payments: payments,
		ledger:   ledger,
	}
}

func (s *Service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{}
	var err error
	if d.Users, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if d.Fundis, err = s.fundis.Count(ctx); err != nil {
		return nil, err
	}
	if d.Reviews, err = s.reviews.Count(ctx); err != nil {
		return nil, err
	}
	if d.BookingsByStatus, err = s.bookings.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if d.PaymentsByStatus, err = s.payments.CountByStatus(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) SetPaymentStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) (*domain.Payment, error) {
	return s.ledger.AdminSetStatus(ctx, paymentID, status)
}
