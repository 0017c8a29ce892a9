package admin

import (
	"context"
	"testing"

	"fundi/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCounter struct {
	mock.Mock
}

func (m *MockCounter) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockBookingCounter struct {
	mock.Mock
}

func (m *MockBookingCounter) CountByStatus(ctx context.Context) (map[domain.BookingStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.BookingStatus]int64), args.Error(1)
}

type MockPaymentCounter struct {
	mock.Mock
}

func (m *MockPaymentCounter) CountByStatus(ctx context.Context) (map[domain.PaymentStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.PaymentStatus]int64), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) AdminSetStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func TestGetDashboard_AggregatesCounters(t *testing.T) {
	users := new(MockCounter)
	fundis := new(MockCounter)
	reviews := new(MockCounter)
	bookings := new(MockBookingCounter)
	payments := new(MockPaymentCounter)
	svc := NewService(users, fundis, reviews, bookings, payments, new(MockLedger))

	users.On("Count", mock.Anything).Return(int64(12), nil)
	fundis.On("Count", mock.Anything).Return(int64(5), nil)
	reviews.On("Count", mock.Anything).Return(int64(3), nil)
	bookings.On("CountByStatus", mock.Anything).Return(map[domain.BookingStatus]int64{
		domain.BookingPending:   2,
		domain.BookingCompleted: 4,
	}, nil)
	payments.On("CountByStatus", mock.Anything).Return(map[domain.PaymentStatus]int64{
		domain.PaymentCompleted: 4,
		domain.PaymentFailed:    1,
	}, nil)

	d, err := svc.GetDashboard(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(12), d.Users)
	assert.Equal(t, int64(5), d.Fundis)
	assert.Equal(t, int64(4), d.BookingsByStatus[domain.BookingCompleted])
	assert.Equal(t, int64(1), d.PaymentsByStatus[domain.PaymentFailed])
}

func TestSetPaymentStatus_DelegatesToLedger(t *testing.T) {
	ledger := new(MockLedger)
	svc := NewService(new(MockCounter), new(MockCounter), new(MockCounter), new(MockBookingCounter), new(MockPaymentCounter), ledger)

	want := &domain.Payment{ID: 10, Status: domain.PaymentRefunded}
	ledger.On("AdminSetStatus", mock.Anything, int64(10), domain.PaymentRefunded).Return(want, nil)

	got, err := svc.SetPaymentStatus(context.Background(), 10, domain.PaymentRefunded)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
	ledger.AssertExpectations(t)
}
